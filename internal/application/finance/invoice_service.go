package finance

import (
	"bytes"
	"context"
	"sort"

	"github.com/fieldops/backend/internal/application/common"
	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService matches supplier invoices against purchase orders and
// receipts. Every mutation keeps the order lines' invoiced quantities and the
// order's invoiced amount in step with the stored invoices.
type InvoiceService struct {
	scope uow.Scope
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope uow.Scope) *InvoiceService {
	return &InvoiceService{scope: scope}
}

// Create registers an invoice in PENDING status. Lines linked to order lines
// raise those lines' invoiced quantity.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "invoice", "create",
		telemetry.AttrLineCount.Int(len(req.Lines)))
	defer span.End()

	if len(req.Lines) == 0 {
		return nil, common.Fail(ctx, span, "Invoice rejected", shared.NewValidationError("Invoice must have at least one line"))
	}

	var inv *finance.SupplierInvoice
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		exists, err := repos.SupplierInvoices().ExistsByNumber(ctx, req.SupplierID, req.InvoiceNumber, nil)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewValidationError("Invoice number " + req.InvoiceNumber + " is already registered for this supplier")
		}

		var order *trade.PurchaseOrder
		if req.PurchaseOrderID != nil && *req.PurchaseOrderID != uuid.Nil {
			order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, *req.PurchaseOrderID)
			if err != nil {
				return err
			}
			if order.SupplierID != req.SupplierID {
				return shared.NewValidationError("Invoice supplier does not match the purchase order supplier")
			}
		}

		inv, err = finance.NewSupplierInvoice(req.InvoiceNumber, req.SupplierID, req.PurchaseOrderID, common.TimeOrZero(req.IssueDate), req.DueDate)
		if err != nil {
			return err
		}
		inv.Notes = req.Notes

		inputs := toInputs(req.Lines)
		if err := checkLinks(ctx, repos, order, inputs); err != nil {
			return err
		}
		for _, in := range inputs {
			if _, err := inv.AddLine(in); err != nil {
				return err
			}
		}
		if err := inv.RecalculateTotals(); err != nil {
			return err
		}
		if err := repos.SupplierInvoices().Save(ctx, inv); err != nil {
			return err
		}

		if order == nil {
			return nil
		}
		if err := applyOrderDeltas(order, inv.OrderLineQuantities()); err != nil {
			return err
		}
		return syncAmountInvoiced(ctx, repos, order)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Invoice rejected", err)
	}

	span.SetAttributes(telemetry.AttrInvoiceID.String(inv.ID.String()))
	logger.L(ctx).Info("Supplier invoice registered",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total_payable", inv.TotalPayable.String()))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Update replaces the invoice's line set. Only the difference between the
// stored and incoming lines is applied to the order's invoiced quantities;
// totals are recomputed from the final line set.
func (s *InvoiceService) Update(ctx context.Context, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "invoice", "update",
		telemetry.AttrInvoiceID.String(invoiceID.String()),
		telemetry.AttrLineCount.Int(len(req.Lines)))
	defer span.End()

	if len(req.Lines) == 0 {
		return nil, common.Fail(ctx, span, "Invoice update rejected", shared.NewValidationError("Invoice must have at least one line"))
	}

	var inv *finance.SupplierInvoice
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		order, locked, err := lockInvoice(ctx, repos, invoiceID)
		if err != nil {
			return err
		}
		inv = locked
		if err := inv.EnsureEditable(); err != nil {
			return err
		}

		inputs := toInputs(req.Lines)
		if err := checkLinks(ctx, repos, order, inputs); err != nil {
			return err
		}
		diff, err := finance.DiffLines(inv.Lines, inputs)
		if err != nil {
			return err
		}
		deltas := diff.OrderLineDeltas()
		if err := diff.Apply(inv); err != nil {
			return err
		}

		if req.DueDate != nil {
			if req.DueDate.Before(inv.IssueDate) {
				return shared.NewValidationError("Due date cannot be before issue date")
			}
			inv.DueDate = req.DueDate
		}
		if req.Notes != nil {
			inv.Notes = *req.Notes
		}
		if err := repos.SupplierInvoices().Save(ctx, inv); err != nil {
			return err
		}

		if order == nil {
			return nil
		}
		if err := applyOrderDeltas(order, deltas); err != nil {
			return err
		}
		return syncAmountInvoiced(ctx, repos, order)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Invoice update rejected", err)
	}

	logger.L(ctx).Info("Supplier invoice updated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("total_payable", inv.TotalPayable.String()),
		zap.String("status", string(inv.Status)))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Delete removes an unpaid PENDING invoice and reverts its effect on the
// order. Invoices with payments must be voided instead.
func (s *InvoiceService) Delete(ctx context.Context, invoiceID uuid.UUID) error {
	ctx, span := telemetry.StartSpan(ctx, "invoice", "delete",
		telemetry.AttrInvoiceID.String(invoiceID.String()))
	defer span.End()

	var removedPayments int64
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		order, inv, err := lockInvoice(ctx, repos, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.EnsureDeletable(); err != nil {
			return err
		}

		removedPayments, err = repos.Payments().DeleteByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		if err := repos.SupplierInvoices().Delete(ctx, inv.ID); err != nil {
			return err
		}

		if order == nil {
			return nil
		}
		if err := applyOrderDeltas(order, negate(inv.OrderLineQuantities())); err != nil {
			return err
		}
		return syncAmountInvoiced(ctx, repos, order)
	})
	if err != nil {
		return common.Fail(ctx, span, "Invoice deletion rejected", err)
	}

	logger.L(ctx).Info("Supplier invoice deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.Int64("payments_removed", removedPayments))
	return nil
}

// Void marks an invoice VOIDED and fully reverses its effect on the order.
// Payments must be deleted first.
func (s *InvoiceService) Void(ctx context.Context, invoiceID uuid.UUID, req VoidInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "invoice", "void",
		telemetry.AttrInvoiceID.String(invoiceID.String()))
	defer span.End()

	var inv *finance.SupplierInvoice
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		order, locked, err := lockInvoice(ctx, repos, invoiceID)
		if err != nil {
			return err
		}
		inv = locked
		if err := inv.Void(req.Reason); err != nil {
			return err
		}
		if err := repos.SupplierInvoices().Save(ctx, inv); err != nil {
			return err
		}

		if order == nil {
			return nil
		}
		if err := applyOrderDeltas(order, negate(inv.OrderLineQuantities())); err != nil {
			return err
		}
		return syncAmountInvoiced(ctx, repos, order)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Invoice void rejected", err)
	}

	logger.L(ctx).Info("Supplier invoice voided",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("reason", inv.VoidReason))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByID retrieves an invoice with its lines
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var inv *finance.SupplierInvoice
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		inv, err = repos.SupplierInvoices().FindByID(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List retrieves a page of invoices
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Status != "" && !finance.InvoiceStatus(filter.Status).IsValid() {
		return nil, 0, shared.NewValidationError("Unknown invoice status " + filter.Status)
	}

	var (
		invoices []finance.SupplierInvoice
		total    int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		invoices, total, err = repos.SupplierInvoices().FindAll(ctx, filter.toDomain())
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out, total, nil
}

// lockInvoice locks the invoice's order (if any) and then the invoice itself
func lockInvoice(ctx context.Context, repos uow.Repositories, invoiceID uuid.UUID) (*trade.PurchaseOrder, *finance.SupplierInvoice, error) {
	current, err := repos.SupplierInvoices().FindByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	var order *trade.PurchaseOrder
	if current.PurchaseOrderID != nil {
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, *current.PurchaseOrderID)
		if err != nil {
			return nil, nil, err
		}
	}
	inv, err := repos.SupplierInvoices().FindByIDForUpdate(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return order, inv, nil
}

// checkLinks verifies every line's item exists and that order and receipt
// links point into the invoice's order
func checkLinks(ctx context.Context, repos uow.Repositories, order *trade.PurchaseOrder, inputs []finance.LineInput) error {
	for _, in := range inputs {
		if _, err := repos.InventoryItems().FindByID(ctx, in.InventoryItemID); err != nil {
			return err
		}
		if in.OrderLineID == nil {
			continue
		}
		if order == nil {
			return shared.NewValidationError("Invoice lines can only reference order lines when the invoice has a purchase order")
		}
		orderLine := order.GetLine(*in.OrderLineID)
		if orderLine == nil {
			return shared.NewValidationError("Order line " + in.OrderLineID.String() + " does not belong to order " + order.OrderNumber)
		}
		if orderLine.InventoryItemID != in.InventoryItemID {
			return shared.NewValidationError("Invoice line item differs from order line " + in.OrderLineID.String())
		}
		if in.ReceiptLineID == nil {
			continue
		}
		receiptLine, err := repos.Receipts().FindLineByID(ctx, *in.ReceiptLineID)
		if err != nil {
			return err
		}
		if receiptLine.OrderLineID != orderLine.ID {
			return shared.NewValidationError("Receipt line " + in.ReceiptLineID.String() + " does not belong to order line " + orderLine.ID.String())
		}
	}
	return nil
}

// applyOrderDeltas moves order lines' invoiced quantity in ascending line ID order
func applyOrderDeltas(order *trade.PurchaseOrder, deltas map[uuid.UUID]decimal.Decimal) error {
	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	for _, id := range ids {
		if err := order.AddInvoicedQuantity(id, deltas[id]); err != nil {
			return err
		}
	}
	return nil
}

// syncAmountInvoiced re-sums the order's non-voided invoices and saves the order
func syncAmountInvoiced(ctx context.Context, repos uow.Repositories, order *trade.PurchaseOrder) error {
	amount, err := repos.SupplierInvoices().SumSubtotalByOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	order.SetAmountInvoiced(amount)
	return repos.PurchaseOrders().Save(ctx, order)
}

func negate(quantities map[uuid.UUID]decimal.Decimal) map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(quantities))
	for id, q := range quantities {
		out[id] = q.Neg()
	}
	return out
}
