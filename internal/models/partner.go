package models

// Partner is the authenticated tenant on whose behalf requests are made.
// The JSON shape is what the credential store holds under partner:{login}.
type Partner struct {
	Login      string `json:"api_login"`
	SecretHash string `json:"api_key"`
	PartnerID  int    `json:"partner_id"`
}
