package finance

import (
	"context"

	"github.com/fieldops/backend/internal/application/common"
	"github.com/fieldops/backend/internal/application/uow"
	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/treasury"
	"github.com/fieldops/backend/internal/infrastructure/logger"
	"github.com/fieldops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const paymentKeyPrefix = "payment:"

// PaymentService applies payments to supplier invoices and posts the linked
// treasury outflow
type PaymentService struct {
	scope       uow.Scope
	idempotency shared.IdempotencyStore
	config      shared.IdempotencyConfig
}

// NewPaymentService creates a new PaymentService. A nil store disables
// idempotency keys.
func NewPaymentService(scope uow.Scope, store shared.IdempotencyStore, config shared.IdempotencyConfig) *PaymentService {
	return &PaymentService{scope: scope, idempotency: store, config: config}
}

// Create applies a payment to an invoice. With a bank account, an outflow
// movement is posted and the account balance lowered by the same amount.
// A repeated idempotency key within the TTL fails with DUPLICATE_REQUEST.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "payment", "create",
		telemetry.AttrInvoiceID.String(req.InvoiceID.String()),
		telemetry.AttrAmount.String(req.Amount.String()))
	defer span.End()

	payment, err := finance.NewPayment(req.InvoiceID, req.Amount, finance.PaymentMethod(req.Method), common.TimeOrZero(req.PaidAt), req.BankAccountID, req.Reference)
	if err != nil {
		return nil, common.Fail(ctx, span, "Payment rejected", err)
	}

	key := ""
	if req.IdempotencyKey != "" && s.idempotency != nil && s.config.Enabled {
		key = paymentKeyPrefix + req.IdempotencyKey
		span.SetAttributes(telemetry.AttrIdempotency.String(req.IdempotencyKey))
		fresh, err := s.idempotency.Claim(ctx, key, s.config.TTL)
		if err != nil {
			return nil, common.Fail(ctx, span, "Idempotency check failed", err)
		}
		if !fresh {
			return nil, common.Fail(ctx, span, "Payment rejected",
				shared.NewDomainError(shared.CodeDuplicateRequest, "Payment with idempotency key "+req.IdempotencyKey+" was already submitted"))
		}
	}

	var inv *finance.SupplierInvoice
	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		inv, err = repos.SupplierInvoices().FindByIDForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		if err := inv.ApplyPayment(payment.Amount); err != nil {
			return err
		}

		if payment.BankAccountID != nil {
			movement, err := treasury.NewPaymentOutflow(payment.ID, *payment.BankAccountID, payment.Amount,
				paymentReference(inv, payment), payment.PaidAt)
			if err != nil {
				return err
			}
			if err := uow.ApplyBalanceDeltas(ctx, repos.BankAccounts(), movement.Effects()); err != nil {
				return err
			}
			if err := repos.TreasuryMovements().Create(ctx, movement); err != nil {
				return err
			}
			payment.LinkMovement(movement.ID)
		}

		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return repos.SupplierInvoices().Save(ctx, inv)
	})
	if err != nil {
		if key != "" {
			if relErr := s.idempotency.Release(ctx, key); relErr != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}
		return nil, common.Fail(ctx, span, "Payment rejected", err)
	}

	span.SetAttributes(telemetry.AttrPaymentID.String(payment.ID.String()))
	logger.L(ctx).Info("Payment applied",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("invoice_status", string(inv.Status)))
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// Delete removes a payment, lowers the invoice's paid amount and removes the
// linked movement, restoring the bank account balance.
func (s *PaymentService) Delete(ctx context.Context, paymentID uuid.UUID) error {
	ctx, span := telemetry.StartSpan(ctx, "payment", "delete",
		telemetry.AttrPaymentID.String(paymentID.String()))
	defer span.End()

	var inv *finance.SupplierInvoice
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		payment, err := repos.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		inv, err = repos.SupplierInvoices().FindByIDForUpdate(ctx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if err := inv.RevertPayment(payment.Amount); err != nil {
			return err
		}

		if payment.TreasuryMovementID != nil {
			movement, err := repos.TreasuryMovements().FindByIDForUpdate(ctx, *payment.TreasuryMovementID)
			if err != nil {
				return err
			}
			if err := uow.ApplyBalanceDeltas(ctx, repos.BankAccounts(), movement.InverseEffects()); err != nil {
				return err
			}
			if err := repos.TreasuryMovements().Delete(ctx, movement.ID); err != nil {
				return err
			}
		}

		if err := repos.Payments().Delete(ctx, payment.ID); err != nil {
			return err
		}
		return repos.SupplierInvoices().Save(ctx, inv)
	})
	if err != nil {
		return common.Fail(ctx, span, "Payment deletion rejected", err)
	}

	logger.L(ctx).Info("Payment deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_status", string(inv.Status)))
	return nil
}

// GetByID retrieves a payment
func (s *PaymentService) GetByID(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	var payment *finance.Payment
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		payment, err = repos.Payments().FindByID(ctx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// ListByInvoice lists the payments of one invoice
func (s *PaymentService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	var payments []finance.Payment
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := repos.SupplierInvoices().FindByID(ctx, invoiceID); err != nil {
			return err
		}
		var err error
		payments, err = repos.Payments().FindByInvoice(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out, nil
}

func paymentReference(inv *finance.SupplierInvoice, p *finance.Payment) string {
	if p.Reference != "" {
		return p.Reference
	}
	return "Payment " + inv.InvoiceNumber
}
