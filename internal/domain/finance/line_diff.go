package finance

import (
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineUpdate pairs a stored line with its incoming replacement
type LineUpdate struct {
	Existing SupplierInvoiceLine
	Input    LineInput
}

// LineDiff is the result of matching stored invoice lines against an
// incoming line set by line ID.
type LineDiff struct {
	ToDelete []SupplierInvoiceLine
	ToUpdate []LineUpdate
	ToCreate []LineInput
}

// DiffLines splits incoming lines into deletions, updates and creations.
// Incoming lines without an ID are new. An incoming ID that does not exist,
// or appears twice, is a validation error.
func DiffLines(existing []SupplierInvoiceLine, incoming []LineInput) (*LineDiff, error) {
	byID := make(map[uuid.UUID]SupplierInvoiceLine, len(existing))
	for _, l := range existing {
		byID[l.ID] = l
	}

	diff := &LineDiff{}
	seen := make(map[uuid.UUID]struct{}, len(incoming))
	for _, in := range incoming {
		if in.ID == nil || *in.ID == uuid.Nil {
			diff.ToCreate = append(diff.ToCreate, in)
			continue
		}
		if _, dup := seen[*in.ID]; dup {
			return nil, shared.NewValidationError("Invoice line " + in.ID.String() + " appears more than once")
		}
		seen[*in.ID] = struct{}{}

		current, ok := byID[*in.ID]
		if !ok {
			return nil, shared.NewValidationError("Invoice line " + in.ID.String() + " does not belong to this invoice")
		}
		diff.ToUpdate = append(diff.ToUpdate, LineUpdate{Existing: current, Input: in})
	}

	for _, l := range existing {
		if _, kept := seen[l.ID]; !kept {
			diff.ToDelete = append(diff.ToDelete, l)
		}
	}
	return diff, nil
}

// OrderLineDeltas nets the change in invoiced quantity per order line that
// applying the diff causes. Updated lines contribute new minus old; a line
// that moves to another order line reverts the old link and adds the new one.
func (d *LineDiff) OrderLineDeltas() map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal)
	add := func(id *uuid.UUID, qty decimal.Decimal) {
		if id == nil {
			return
		}
		out[*id] = out[*id].Add(qty)
	}

	for _, l := range d.ToDelete {
		add(l.OrderLineID, l.Quantity.Neg())
	}
	for _, u := range d.ToUpdate {
		add(u.Existing.OrderLineID, u.Existing.Quantity.Neg())
		add(u.Input.OrderLineID, u.Input.Quantity)
	}
	for _, in := range d.ToCreate {
		add(in.OrderLineID, in.Quantity)
	}

	for id, delta := range out {
		if delta.IsZero() {
			delete(out, id)
		}
	}
	return out
}

// Apply replays the diff onto the invoice and recalculates totals
func (d *LineDiff) Apply(inv *SupplierInvoice) error {
	for _, l := range d.ToDelete {
		if err := inv.RemoveLine(l.ID); err != nil {
			return err
		}
	}
	for _, u := range d.ToUpdate {
		if err := inv.UpdateLine(u.Existing.ID, u.Input); err != nil {
			return err
		}
	}
	for _, in := range d.ToCreate {
		if _, err := inv.AddLine(in); err != nil {
			return err
		}
	}
	return inv.RecalculateTotals()
}
