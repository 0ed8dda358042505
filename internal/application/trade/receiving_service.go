package trade

import (
	"context"

	"github.com/fieldops/backend/internal/application/common"
	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/trade"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceivingService records deliveries against purchase orders and reverses them.
//
// Lock order inside one unit of work: the purchase order, then the inventory
// items of the touched lines in ascending ID order.
type ReceivingService struct {
	scope uow.Scope
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(scope uow.Scope) *ReceivingService {
	return &ReceivingService{scope: scope}
}

// Create records a receipt. Each line raises the order line's received
// quantity, writes one inventory entry and reprices the item at weighted
// average cost. Any failing line aborts the whole receipt.
func (s *ReceivingService) Create(ctx context.Context, req CreateReceiptRequest) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "receiving", "create",
		telemetry.AttrOrderID.String(req.PurchaseOrderID.String()),
		telemetry.AttrLineCount.Int(len(req.Lines)))
	defer span.End()

	if len(req.Lines) == 0 {
		return nil, common.Fail(ctx, span, "Receipt rejected", shared.NewValidationError("Receipt must have at least one line"))
	}
	seen := make(map[uuid.UUID]struct{}, len(req.Lines))
	for _, l := range req.Lines {
		if _, dup := seen[l.OrderLineID]; dup {
			return nil, common.Fail(ctx, span, "Receipt rejected",
				shared.NewValidationError("Order line "+l.OrderLineID.String()+" appears more than once in receipt"))
		}
		seen[l.OrderLineID] = struct{}{}
	}

	var (
		receipt *trade.Receipt
		order   *trade.PurchaseOrder
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}
		if err := order.EnsureReceivable(); err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, 0, len(req.Lines))
		for _, l := range req.Lines {
			line := order.GetLine(l.OrderLineID)
			if line == nil {
				return shared.NewNotFoundError("purchase order line", l.OrderLineID)
			}
			itemIDs = append(itemIDs, line.InventoryItemID)
		}
		items, err := uow.LockInventoryItems(ctx, repos.InventoryItems(), itemIDs)
		if err != nil {
			return err
		}

		number, err := repos.Receipts().GenerateReceiptNumber(ctx)
		if err != nil {
			return err
		}
		receivedAt := common.TimeOrZero(req.ReceivedAt)
		receipt, err = trade.NewReceipt(number, order.ID, receivedAt, req.RecordedBy, req.Notes)
		if err != nil {
			return err
		}

		for _, l := range req.Lines {
			line := order.GetLine(l.OrderLineID)
			price := line.UnitPrice
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}
			if _, err := order.ReceiveLine(line.ID, l.Quantity, price); err != nil {
				return err
			}

			item := items[line.InventoryItemID]
			entry, err := item.ReceiveStock(l.Quantity, price, inventory.SourceTypeReceipt, receipt.ID.String())
			if err != nil {
				return err
			}
			entry.Reference = receipt.ReceiptNumber
			entry.OccurredAt = receipt.ReceivedAt
			if err := repos.InventoryEntries().Create(ctx, entry); err != nil {
				return err
			}
			if _, err := receipt.AddLine(line, l.Quantity, price, entry.ID); err != nil {
				return err
			}
		}

		if err := order.RefreshReceivingStatus(); err != nil {
			return err
		}
		receipt.MarkCompleteIf(order)

		for _, id := range uow.SortIDs(itemIDs) {
			if err := repos.InventoryItems().Save(ctx, items[id]); err != nil {
				return err
			}
		}
		if err := repos.Receipts().Create(ctx, receipt); err != nil {
			return err
		}
		return repos.PurchaseOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Receipt rejected", err)
	}

	span.SetAttributes(telemetry.AttrReceiptID.String(receipt.ID.String()))
	logger.L(ctx).Info("Receipt recorded",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("receipt_number", receipt.ReceiptNumber),
		zap.String("order_id", order.ID.String()),
		zap.String("order_status", string(order.Status)))
	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// Delete reverses a receipt: its inventory entries are removed, stock goes
// back down (never below zero) and the order lines and status are
// re-derived. The items' average cost is left as it is. A receipt matched by
// an active invoice line cannot be deleted.
func (s *ReceivingService) Delete(ctx context.Context, receiptID uuid.UUID) error {
	ctx, span := telemetry.StartSpan(ctx, "receiving", "delete",
		telemetry.AttrReceiptID.String(receiptID.String()))
	defer span.End()

	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		receipt, err := repos.Receipts().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, receipt.PurchaseOrderID)
		if err != nil {
			return err
		}

		matched, err := repos.SupplierInvoices().CountActiveLinesByReceiptLines(ctx, receipt.LineIDs())
		if err != nil {
			return err
		}
		if matched > 0 {
			return shared.NewInvalidStateError("Receipt " + receipt.ReceiptNumber + " is matched by invoice lines; remove or void those invoices first")
		}

		itemIDs := make([]uuid.UUID, 0, len(receipt.Lines))
		for _, l := range receipt.Lines {
			itemIDs = append(itemIDs, l.InventoryItemID)
		}
		items, err := uow.LockInventoryItems(ctx, repos.InventoryItems(), itemIDs)
		if err != nil {
			return err
		}

		for _, l := range receipt.Lines {
			if err := items[l.InventoryItemID].ReverseReceipt(l.Quantity); err != nil {
				return err
			}
			if err := order.ReverseReceiptLine(l.OrderLineID, l.Quantity, l.UnitPriceAtReceipt); err != nil {
				return err
			}
		}
		if err := order.RefreshReceivingStatus(); err != nil {
			return err
		}

		if err := repos.Receipts().Delete(ctx, receipt.ID); err != nil {
			return err
		}
		for _, l := range receipt.Lines {
			if err := repos.InventoryEntries().Delete(ctx, l.InventoryEntryID); err != nil {
				return err
			}
		}
		for _, id := range uow.SortIDs(itemIDs) {
			if err := repos.InventoryItems().Save(ctx, items[id]); err != nil {
				return err
			}
		}
		return repos.PurchaseOrders().Save(ctx, order)
	})
	if err != nil {
		return common.Fail(ctx, span, "Receipt deletion rejected", err)
	}

	logger.L(ctx).Info("Receipt deleted",
		zap.String("receipt_id", receiptID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("order_status", string(order.Status)))
	return nil
}

// GetByID retrieves a receipt with its lines
func (s *ReceivingService) GetByID(ctx context.Context, receiptID uuid.UUID) (*ReceiptResponse, error) {
	var receipt *trade.Receipt
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		receipt, err = repos.Receipts().FindByID(ctx, receiptID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// ListByOrder lists the receipts of an order
func (s *ReceivingService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ReceiptResponse, error) {
	var receipts []trade.Receipt
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.PurchaseOrders().FindByID(ctx, orderID); err != nil {
			return err
		}
		var err error
		receipts, err = repos.Receipts().FindByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		out[i] = ToReceiptResponse(&receipts[i])
	}
	return out, nil
}
