package dtos

// ProductBase is the shape shared by every product line.
type ProductBase struct {
	DefaultCode string  `json:"default_code" validate:"required,max=128"`
	Barcode     *string `json:"barcode" validate:"omitempty,max=128"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// TransferProduct is a product line of an inbound or outbound transfer.
type TransferProduct struct {
	ProductBase
	Quantity int     `json:"quantity" validate:"min=1"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// InvoiceLine is a product line of an invoice produced by a worker.
type InvoiceLine struct {
	ProductBase
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
	Tax    float64 `json:"tax"`
}
