package routes

const (
	Health = "/health"

	AuthToken  = "/auth/token"
	AuthRevoke = "/auth/revoke"

	TransferInbound  = "/transfer/inbound"
	TransferOutbound = "/transfer/outbound"
	TransferState    = "/transfer/state"

	InvoiceIssue  = "/invoice/issue"
	InvoiceActual = "/invoice/actual"
	InvoiceState  = "/invoice/state"
)
