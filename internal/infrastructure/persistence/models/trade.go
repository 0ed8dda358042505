package models

import (
	"time"

	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	VersionedRow
	OrderNumber      string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Status           trade.PurchaseOrderStatus `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	AmountOrdered    decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	AmountReceived   decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	AmountInvoiced   decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	TotalReceivedQty decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Invoiced         bool                      `gorm:"not null;default:false"`
	Notes            string                    `gorm:"type:text"`
	SentAt           *time.Time
	ClosedAt         *time.Time
	CloseReason      string                   `gorm:"type:varchar(500)"`
	Lines            []PurchaseOrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	lines := make([]trade.PurchaseOrderLine, len(m.Lines))
	for i, line := range m.Lines {
		lines[i] = *line.ToDomain()
	}
	return &trade.PurchaseOrder{
		BaseAggregateRoot: m.root(),
		OrderNumber:       m.OrderNumber,
		SupplierID:        m.SupplierID,
		Status:            m.Status,
		Lines:             lines,
		AmountOrdered:     m.AmountOrdered,
		AmountReceived:    m.AmountReceived,
		AmountInvoiced:    m.AmountInvoiced,
		TotalReceivedQty:  m.TotalReceivedQty,
		Invoiced:          m.Invoiced,
		Notes:             m.Notes,
		SentAt:            m.SentAt,
		ClosedAt:          m.ClosedAt,
		CloseReason:       m.CloseReason,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) FromDomain(o *trade.PurchaseOrder) {
	m.setRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.SupplierID = o.SupplierID
	m.Status = o.Status
	m.AmountOrdered = o.AmountOrdered
	m.AmountReceived = o.AmountReceived
	m.AmountInvoiced = o.AmountInvoiced
	m.TotalReceivedQty = o.TotalReceivedQty
	m.Invoiced = o.Invoiced
	m.Notes = o.Notes
	m.SentAt = o.SentAt
	m.ClosedAt = o.ClosedAt
	m.CloseReason = o.CloseReason
	m.Lines = make([]PurchaseOrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i] = *PurchaseOrderLineModelFromDomain(&o.Lines[i])
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder entity.
func PurchaseOrderModelFromDomain(o *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderLineModel is the persistence model for purchase order lines.
type PurchaseOrderLineModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description      string          `gorm:"type:varchar(200)"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityInvoiced decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedComplete bool            `gorm:"not null;default:false"`
	InvoicedComplete bool            `gorm:"not null;default:false"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLineModel) TableName() string {
	return "purchase_order_lines"
}

// ToDomain converts the persistence model to a domain PurchaseOrderLine.
func (m *PurchaseOrderLineModel) ToDomain() *trade.PurchaseOrderLine {
	return &trade.PurchaseOrderLine{
		ID:               m.ID,
		OrderID:          m.OrderID,
		InventoryItemID:  m.InventoryItemID,
		Description:      m.Description,
		QuantityOrdered:  m.QuantityOrdered,
		QuantityReceived: m.QuantityReceived,
		QuantityInvoiced: m.QuantityInvoiced,
		UnitPrice:        m.UnitPrice,
		Amount:           m.Amount,
		ReceivedComplete: m.ReceivedComplete,
		InvoicedComplete: m.InvoicedComplete,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// PurchaseOrderLineModelFromDomain creates a persistence model from a domain PurchaseOrderLine.
func PurchaseOrderLineModelFromDomain(l *trade.PurchaseOrderLine) *PurchaseOrderLineModel {
	return &PurchaseOrderLineModel{
		ID:               l.ID,
		OrderID:          l.OrderID,
		InventoryItemID:  l.InventoryItemID,
		Description:      l.Description,
		QuantityOrdered:  l.QuantityOrdered,
		QuantityReceived: l.QuantityReceived,
		QuantityInvoiced: l.QuantityInvoiced,
		UnitPrice:        l.UnitPrice,
		Amount:           l.Amount,
		ReceivedComplete: l.ReceivedComplete,
		InvoicedComplete: l.InvoicedComplete,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

// ReceiptModel is the persistence model for goods receipts.
type ReceiptModel struct {
	Row
	ReceiptNumber   string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status          trade.ReceiptStatus `gorm:"type:varchar(20);not null"`
	ReceivedAt      time.Time           `gorm:"not null"`
	RecordedBy      *uuid.UUID          `gorm:"type:uuid"`
	Notes           string              `gorm:"type:text"`
	Lines           []ReceiptLineModel  `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt.
func (m *ReceiptModel) ToDomain() *trade.Receipt {
	lines := make([]trade.ReceiptLine, len(m.Lines))
	for i, line := range m.Lines {
		lines[i] = *line.ToDomain()
	}
	return &trade.Receipt{
		BaseEntity:      m.Row.entity(),
		ReceiptNumber:   m.ReceiptNumber,
		PurchaseOrderID: m.PurchaseOrderID,
		Status:          m.Status,
		ReceivedAt:      m.ReceivedAt,
		RecordedBy:      m.RecordedBy,
		Notes:           m.Notes,
		Lines:           lines,
	}
}

// ReceiptModelFromDomain creates a persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *trade.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		ReceiptNumber:   r.ReceiptNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		Status:          r.Status,
		ReceivedAt:      r.ReceivedAt,
		RecordedBy:      r.RecordedBy,
		Notes:           r.Notes,
		Lines:           make([]ReceiptLineModel, len(r.Lines)),
	}
	m.setEntity(r.BaseEntity)
	for i := range r.Lines {
		m.Lines[i] = *ReceiptLineModelFromDomain(&r.Lines[i])
	}
	return m
}

// ReceiptLineModel is the persistence model for receipt lines.
type ReceiptLineModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderLineID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InventoryItemID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceAtReceipt decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InventoryEntryID   uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ReceiptLineModel) TableName() string {
	return "receipt_lines"
}

// ToDomain converts the persistence model to a domain ReceiptLine.
func (m *ReceiptLineModel) ToDomain() *trade.ReceiptLine {
	return &trade.ReceiptLine{
		ID:                 m.ID,
		ReceiptID:          m.ReceiptID,
		OrderLineID:        m.OrderLineID,
		InventoryItemID:    m.InventoryItemID,
		Quantity:           m.Quantity,
		UnitPriceAtReceipt: m.UnitPriceAtReceipt,
		InventoryEntryID:   m.InventoryEntryID,
	}
}

// ReceiptLineModelFromDomain creates a persistence model from a domain ReceiptLine.
func ReceiptLineModelFromDomain(l *trade.ReceiptLine) *ReceiptLineModel {
	return &ReceiptLineModel{
		ID:                 l.ID,
		ReceiptID:          l.ReceiptID,
		OrderLineID:        l.OrderLineID,
		InventoryItemID:    l.InventoryItemID,
		Quantity:           l.Quantity,
		UnitPriceAtReceipt: l.UnitPriceAtReceipt,
		InventoryEntryID:   l.InventoryEntryID,
	}
}
