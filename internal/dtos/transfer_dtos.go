package dtos

// ----------------------
// Requests
// ----------------------

// TransferBase holds the fields common to both transfer directions.
type TransferBase struct {
	Reference          string            `json:"reference" validate:"required,max=255"`
	RepresentativeName *string           `json:"representative_name" validate:"omitempty,max=255"`
	RepresentativeTel  *string           `json:"representative_tel" validate:"omitempty,max=64"`
	Products           []TransferProduct `json:"products" validate:"required,min=1,dive"`
}

type InboundTransferRequest struct {
	TransferBase
	InboundDate string `json:"inbound_date" validate:"required,isodate"`
}

type OutboundTransferRequest struct {
	TransferBase
	OutboundDate string `json:"outbound_date" validate:"required,isodate"`
	Packaging    bool   `json:"packaging"`
}
