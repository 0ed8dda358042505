package persistence

import (
	"strings"

	"github.com/fieldops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortable whitelists the columns a list query may be ordered by. Requested
// names are interpolated into ORDER BY, so anything outside the set falls
// back to the default column.
type sortable struct {
	fallback string
	columns  map[string]struct{}
}

func sortBy(fallback string, columns ...string) sortable {
	s := sortable{fallback: fallback, columns: map[string]struct{}{
		"id":         {},
		"created_at": {},
		"updated_at": {},
		fallback:     {},
	}}
	for _, c := range columns {
		s.columns[c] = struct{}{}
	}
	return s
}

func (s sortable) column(requested string) string {
	requested = strings.TrimSpace(requested)
	if _, ok := s.columns[requested]; ok {
		return requested
	}
	return s.fallback
}

// direction normalizes a requested sort direction, defaulting to DESC
func direction(requested string) string {
	if strings.EqualFold(strings.TrimSpace(requested), "asc") {
		return "ASC"
	}
	return "DESC"
}

var (
	inventoryItemSort    = sortBy("code", "name", "quantity_on_hand", "weighted_average_cost")
	inventoryEntrySort   = sortBy("occurred_at", "entry_type", "quantity")
	purchaseOrderSort    = sortBy("created_at", "order_number", "status", "amount_ordered", "amount_received", "amount_invoiced", "sent_at")
	supplierInvoiceSort  = sortBy("issue_date", "invoice_number", "due_date", "status", "total_payable", "amount_paid")
	bankAccountSort      = sortBy("name", "account_number", "balance")
	treasuryMovementSort = sortBy("occurred_at", "type", "amount")
)

// paginate orders and pages query. Take the total count before calling it.
func paginate(query *gorm.DB, filter shared.Filter, sort sortable) *gorm.DB {
	query = query.Order(sort.column(filter.OrderBy) + " " + direction(filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	return query
}
