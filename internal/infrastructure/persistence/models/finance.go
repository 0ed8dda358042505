package models

import (
	"time"

	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierInvoiceModel is the persistence model for the SupplierInvoice aggregate root.
type SupplierInvoiceModel struct {
	VersionedRow
	InvoiceNumber   string                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_invoice_number,priority:2"`
	SupplierID      uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_invoice_number,priority:1"`
	PurchaseOrderID *uuid.UUID                 `gorm:"type:uuid;index"`
	IssueDate       time.Time                  `gorm:"not null"`
	DueDate         *time.Time                 `gorm:"index"`
	Subtotal        decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	Taxes           decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPayable    decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid      decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	Status          finance.InvoiceStatus      `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notes           string                     `gorm:"type:text"`
	VoidedAt        *time.Time
	VoidReason      string                     `gorm:"type:varchar(500)"`
	Lines           []SupplierInvoiceLineModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (SupplierInvoiceModel) TableName() string {
	return "supplier_invoices"
}

// ToDomain converts the persistence model to a domain SupplierInvoice entity.
func (m *SupplierInvoiceModel) ToDomain() *finance.SupplierInvoice {
	lines := make([]finance.SupplierInvoiceLine, len(m.Lines))
	for i, line := range m.Lines {
		lines[i] = *line.ToDomain()
	}
	return &finance.SupplierInvoice{
		BaseAggregateRoot: m.root(),
		InvoiceNumber:     m.InvoiceNumber,
		SupplierID:        m.SupplierID,
		PurchaseOrderID:   m.PurchaseOrderID,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		Subtotal:          m.Subtotal,
		Taxes:             m.Taxes,
		TotalPayable:      m.TotalPayable,
		AmountPaid:        m.AmountPaid,
		Status:            m.Status,
		Notes:             m.Notes,
		Lines:             lines,
		VoidedAt:          m.VoidedAt,
		VoidReason:        m.VoidReason,
	}
}

// FromDomain populates the persistence model from a domain SupplierInvoice entity.
func (m *SupplierInvoiceModel) FromDomain(inv *finance.SupplierInvoice) {
	m.setRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.SupplierID = inv.SupplierID
	m.PurchaseOrderID = inv.PurchaseOrderID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Subtotal = inv.Subtotal
	m.Taxes = inv.Taxes
	m.TotalPayable = inv.TotalPayable
	m.AmountPaid = inv.AmountPaid
	m.Status = inv.Status
	m.Notes = inv.Notes
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
	m.Lines = make([]SupplierInvoiceLineModel, len(inv.Lines))
	for i := range inv.Lines {
		m.Lines[i] = *SupplierInvoiceLineModelFromDomain(&inv.Lines[i])
	}
}

// SupplierInvoiceModelFromDomain creates a new persistence model from a domain SupplierInvoice entity.
func SupplierInvoiceModelFromDomain(inv *finance.SupplierInvoice) *SupplierInvoiceModel {
	m := &SupplierInvoiceModel{}
	m.FromDomain(inv)
	return m
}

// SupplierInvoiceLineModel is the persistence model for invoice lines.
type SupplierInvoiceLineModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null"`
	OrderLineID     *uuid.UUID      `gorm:"type:uuid;index"`
	ReceiptLineID   *uuid.UUID      `gorm:"type:uuid;index"`
	Description     string          `gorm:"type:varchar(200)"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Taxes           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SupplierInvoiceLineModel) TableName() string {
	return "supplier_invoice_lines"
}

// ToDomain converts the persistence model to a domain SupplierInvoiceLine.
func (m *SupplierInvoiceLineModel) ToDomain() *finance.SupplierInvoiceLine {
	return &finance.SupplierInvoiceLine{
		ID:              m.ID,
		InvoiceID:       m.InvoiceID,
		InventoryItemID: m.InventoryItemID,
		OrderLineID:     m.OrderLineID,
		ReceiptLineID:   m.ReceiptLineID,
		Description:     m.Description,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		Subtotal:        m.Subtotal,
		Taxes:           m.Taxes,
		Total:           m.Total,
	}
}

// SupplierInvoiceLineModelFromDomain creates a persistence model from a domain SupplierInvoiceLine.
func SupplierInvoiceLineModelFromDomain(l *finance.SupplierInvoiceLine) *SupplierInvoiceLineModel {
	return &SupplierInvoiceLineModel{
		ID:              l.ID,
		InvoiceID:       l.InvoiceID,
		InventoryItemID: l.InventoryItemID,
		OrderLineID:     l.OrderLineID,
		ReceiptLineID:   l.ReceiptLineID,
		Description:     l.Description,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		Subtotal:        l.Subtotal,
		Taxes:           l.Taxes,
		Total:           l.Total,
	}
}

// PaymentModel is the persistence model for supplier payments.
type PaymentModel struct {
	Row
	InvoiceID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount             decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAt             time.Time             `gorm:"not null"`
	Method             finance.PaymentMethod `gorm:"type:varchar(20);not null"`
	BankAccountID      *uuid.UUID            `gorm:"type:uuid;index"`
	TreasuryMovementID *uuid.UUID            `gorm:"type:uuid"`
	Reference          string                `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseEntity:         m.Row.entity(),
		InvoiceID:          m.InvoiceID,
		Amount:             m.Amount,
		PaidAt:             m.PaidAt,
		Method:             m.Method,
		BankAccountID:      m.BankAccountID,
		TreasuryMovementID: m.TreasuryMovementID,
		Reference:          m.Reference,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		InvoiceID:          p.InvoiceID,
		Amount:             p.Amount,
		PaidAt:             p.PaidAt,
		Method:             p.Method,
		BankAccountID:      p.BankAccountID,
		TreasuryMovementID: p.TreasuryMovementID,
		Reference:          p.Reference,
	}
	m.setEntity(p.BaseEntity)
	return m
}
