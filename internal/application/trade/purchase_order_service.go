package trade

import (
	"context"
	"strconv"

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

// PurchaseOrderService handles the order ledger use cases
type PurchaseOrderService struct {
	scope uow.Scope
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(scope uow.Scope) *PurchaseOrderService {
	return &PurchaseOrderService{scope: scope}
}

// Create creates a PENDING purchase order. Every line must reference an
// existing inventory item.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase_order", "create",
		telemetry.AttrLineCount.Int(len(req.Lines)))
	defer span.End()

	if len(req.Lines) == 0 {
		return nil, common.Fail(ctx, span, "Purchase order rejected", shared.NewValidationError("Order must have at least one line"))
	}

	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		number, err := repos.PurchaseOrders().GenerateOrderNumber(ctx)
		if err != nil {
			return err
		}
		order, err = trade.NewPurchaseOrder(number, req.SupplierID)
		if err != nil {
			return err
		}
		order.Notes = req.Notes

		for _, l := range req.Lines {
			item, err := repos.InventoryItems().FindByID(ctx, l.InventoryItemID)
			if err != nil {
				return err
			}
			desc := l.Description
			if desc == "" {
				desc = item.Name
			}
			if _, err := order.AddLine(item.ID, desc, l.Quantity, l.UnitPrice); err != nil {
				return err
			}
		}
		return repos.PurchaseOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Purchase order rejected", err)
	}

	span.SetAttributes(telemetry.AttrOrderID.String(order.ID.String()))
	logger.L(ctx).Info("Purchase order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("amount_ordered", order.AmountOrdered.String()))
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves a purchase order with its lines
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// List lists purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	if filter.Status != "" && !trade.PurchaseOrderStatus(filter.Status).IsValid() {
		return nil, 0, shared.NewValidationError("Unknown order status " + filter.Status)
	}

	var (
		orders []trade.PurchaseOrder
		total  int64
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		orders, total, err = repos.PurchaseOrders().FindAll(ctx, filter.toDomain())
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return out, total, nil
}

// Send moves a PENDING order to SENT
func (s *PurchaseOrderService) Send(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, "send", orderID, func(o *trade.PurchaseOrder) error {
		return o.Send()
	})
}

// Cancel closes a non-terminal order as CANCELLED. Quantity already received
// stays received; the remainder is never received.
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID, req ClosePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, "cancel", orderID, func(o *trade.PurchaseOrder) error {
		return o.Cancel(req.Reason)
	})
}

// Reject closes a non-terminal order as REJECTED
func (s *PurchaseOrderService) Reject(ctx context.Context, orderID uuid.UUID, req ClosePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, "reject", orderID, func(o *trade.PurchaseOrder) error {
		return o.Reject(req.Reason)
	})
}

func (s *PurchaseOrderService) transition(ctx context.Context, method string, orderID uuid.UUID, apply func(*trade.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase_order", method,
		telemetry.AttrOrderID.String(orderID.String()))
	defer span.End()

	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := apply(order); err != nil {
			return err
		}
		return repos.PurchaseOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Purchase order transition rejected", err)
	}

	logger.L(ctx).Info("Purchase order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("action", method),
		zap.String("status", string(order.Status)))
	resp := ToPurchaseOrderResponse(order)
	return &resp, nil
}

// Reconcile re-derives the order's line quantities, flags, status and
// amounts from its receipts and non-voided invoices and reports every stored
// value that differs. Nothing is written.
func (s *PurchaseOrderService) Reconcile(ctx context.Context, orderID uuid.UUID) (*ReconcileReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "purchase_order", "reconcile",
		telemetry.AttrOrderID.String(orderID.String()))
	defer span.End()

	report := &ReconcileReport{OrderID: orderID, Drifts: make([]Drift, 0)}
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		order, err := repos.PurchaseOrders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		receipts, err := repos.Receipts().FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		invoices, _, err := repos.SupplierInvoices().FindAll(ctx, shared.Filter{
			Filters: map[string]interface{}{"purchase_order_id": orderID},
		})
		if err != nil {
			return err
		}
		amountInvoiced, err := repos.SupplierInvoices().SumSubtotalByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		report.Drifts = reconcile(order, receipts, invoices, amountInvoiced)
		return nil
	})
	if err != nil {
		return nil, common.Fail(ctx, span, "Purchase order reconciliation failed", err)
	}

	report.Consistent = len(report.Drifts) == 0
	if !report.Consistent {
		logger.L(ctx).Warn("Purchase order drift detected",
			zap.String("order_id", orderID.String()),
			zap.Int("drifts", len(report.Drifts)))
	}
	return report, nil
}

func reconcile(order *trade.PurchaseOrder, receipts []trade.Receipt, invoices []finance.SupplierInvoice, amountInvoiced decimal.Decimal) []Drift {
	received := make(map[uuid.UUID]decimal.Decimal)
	amountReceived, totalReceived := decimal.Zero, decimal.Zero
	for _, r := range receipts {
		for _, l := range r.Lines {
			received[l.OrderLineID] = received[l.OrderLineID].Add(l.Quantity)
			totalReceived = totalReceived.Add(l.Quantity)
			amountReceived = amountReceived.Add(l.Amount())
		}
	}
	invoiced := make(map[uuid.UUID]decimal.Decimal)
	for i := range invoices {
		if invoices[i].IsVoided() {
			continue
		}
		for id, qty := range invoices[i].OrderLineQuantities() {
			invoiced[id] = invoiced[id].Add(qty)
		}
	}

	drifts := make([]Drift, 0)
	compare := func(field string, lineID *uuid.UUID, stored, derived decimal.Decimal) {
		if !stored.Equal(derived) {
			drifts = append(drifts, Drift{Field: field, OrderLineID: lineID, Stored: stored.String(), Derived: derived.String()})
		}
	}
	flag := func(field string, lineID *uuid.UUID, stored, derived bool) {
		if stored != derived {
			drifts = append(drifts, Drift{Field: field, OrderLineID: lineID, Stored: strconv.FormatBool(stored), Derived: strconv.FormatBool(derived)})
		}
	}

	allInvoiced := len(order.Lines) > 0
	for i := range order.Lines {
		l := &order.Lines[i]
		id := l.ID
		compare("quantity_received", &id, l.QuantityReceived, received[id])
		compare("quantity_invoiced", &id, l.QuantityInvoiced, invoiced[id])
		flag("received_complete", &id, l.ReceivedComplete, l.IsFullyReceived())
		flag("invoiced_complete", &id, l.InvoicedComplete, l.IsFullyInvoiced())
		allInvoiced = allInvoiced && l.IsFullyInvoiced()
	}
	flag("invoiced", nil, order.Invoiced, allInvoiced)
	compare("total_received_qty", nil, order.TotalReceivedQty, totalReceived)
	compare("amount_received", nil, order.AmountReceived, amountReceived)
	compare("amount_invoiced", nil, order.AmountInvoiced, amountInvoiced)

	derivedStatus := order.DeriveReceivingStatus()
	if order.IsClosed() || (order.Status == trade.PurchaseOrderStatusPending && derivedStatus == trade.PurchaseOrderStatusSent) {
		derivedStatus = order.Status
	}
	if order.Status != derivedStatus {
		drifts = append(drifts, Drift{Field: "status", Stored: string(order.Status), Derived: string(derivedStatus)})
	}
	return drifts
}
