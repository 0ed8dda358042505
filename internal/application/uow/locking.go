package uow

import (
	"bytes"
	"context"
	"sort"

	"github.com/fieldops/backend/internal/domain/inventory"
	"github.com/fieldops/backend/internal/domain/treasury"
	"github.com/google/uuid"
)

// SortIDs returns the distinct IDs in ascending byte order
func SortIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

// LockInventoryItems row-locks the given items in ascending ID order
func LockInventoryItems(ctx context.Context, repo inventory.InventoryItemRepository, ids []uuid.UUID) (map[uuid.UUID]*inventory.InventoryItem, error) {
	items := make(map[uuid.UUID]*inventory.InventoryItem, len(ids))
	for _, id := range SortIDs(ids) {
		item, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		items[id] = item
	}
	return items, nil
}

// LockBankAccounts row-locks the given accounts in ascending ID order
func LockBankAccounts(ctx context.Context, repo treasury.BankAccountRepository, ids []uuid.UUID) (map[uuid.UUID]*treasury.BankAccount, error) {
	accounts := make(map[uuid.UUID]*treasury.BankAccount, len(ids))
	for _, id := range SortIDs(ids) {
		acc, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts[id] = acc
	}
	return accounts, nil
}

// ApplyBalanceDeltas locks the touched accounts, applies the deltas and saves them
func ApplyBalanceDeltas(ctx context.Context, repo treasury.BankAccountRepository, deltas []treasury.BalanceDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	accounts, err := LockBankAccounts(ctx, repo, treasury.SortedAccountIDs(deltas))
	if err != nil {
		return err
	}
	for _, d := range deltas {
		accounts[d.AccountID].ApplyDelta(d.Delta)
	}
	for _, id := range treasury.SortedAccountIDs(deltas) {
		if err := repo.Save(ctx, accounts[id]); err != nil {
			return err
		}
	}
	return nil
}
