package dtos

import "github.com/google/uuid"

// ----------------------
// Requests
// ----------------------

type InvoiceIssueRequest struct {
	DateStart          string `json:"date_start" validate:"required,isodate"`
	DateEnd            string `json:"date_end" validate:"required,isodate"`
	IncludeInvoiceFile bool   `json:"include_invoice_file"`
}

// ----------------------
// Worker results
// ----------------------

type Requisites struct {
	SignerName     string  `json:"signer_name"`
	SignerPosition *string `json:"signer_position,omitempty"`
	CompanyName    string  `json:"company_name"`
	VAT            *string `json:"vat,omitempty"`
	Zip            *string `json:"zip,omitempty"`
	Country        *string `json:"country,omitempty"`
	Region         *string `json:"region,omitempty"`
	City           *string `json:"city,omitempty"`
	Street         *string `json:"street,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

type Invoice struct {
	UUID         uuid.UUID     `json:"uuid"`
	Reference    string        `json:"reference"`
	IssueDate    string        `json:"issue_date"`
	DeadlineDate string        `json:"deadline_date"`
	Requisites   Requisites    `json:"requisites"`
	InvoiceLines []InvoiceLine `json:"invoice_lines"`
	AmountTotal  float64       `json:"amount_total"`
	AmountTax    float64       `json:"amount_tax"`
}

// InvoiceList is what a worker leaves under actual_invoices:{partner_id}.
type InvoiceList struct {
	ActualInvoices []Invoice `json:"actual_invoices"`
}
