package store

import (
	"context"
	"fmt"
)

// OwnershipEntry links one owned volume to one user with the price they
// paid. The aggregate cost of a volume is split evenly across its current
// owners when read, never stored pre-divided.
type OwnershipEntry struct {
	ID       int64
	VolumeID int64
	UserID   int64
	Price    float64
	Currency string
	AddedAt  string
}

// OwnershipRepo reads and writes ownership links.
type OwnershipRepo struct {
	q Querier
}

// NewOwnershipRepo binds an ownership repository to a connection or
// transaction.
func NewOwnershipRepo(q Querier) *OwnershipRepo {
	return &OwnershipRepo{q: q}
}

// AddOwner links a user to a volume. A repeated add updates the price.
func (r *OwnershipRepo) AddOwner(ctx context.Context, volumeID, userID int64, price float64, currency string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO ownership (volume_id, user_id, price, currency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (volume_id, user_id) DO UPDATE SET
			price = excluded.price,
			currency = excluded.currency`,
		volumeID, userID, price, currency)
	if err != nil {
		return fmt.Errorf("failed to add owner: %w", err)
	}
	return nil
}

// RemoveOwner unlinks a user from a volume.
func (r *OwnershipRepo) RemoveOwner(ctx context.Context, volumeID, userID int64) error {
	if _, err := r.q.ExecContext(ctx,
		"DELETE FROM ownership WHERE volume_id = ? AND user_id = ?",
		volumeID, userID); err != nil {
		return fmt.Errorf("failed to remove owner: %w", err)
	}
	return nil
}

// ListOwners returns the current owners of a volume.
func (r *OwnershipRepo) ListOwners(ctx context.Context, volumeID int64) ([]OwnershipEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, volume_id, user_id, price, currency, added_at
		FROM ownership WHERE volume_id = ? ORDER BY added_at`, volumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []OwnershipEntry
	for rows.Next() {
		var e OwnershipEntry
		if err := rows.Scan(&e.ID, &e.VolumeID, &e.UserID, &e.Price, &e.Currency, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ownership entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AggregateCost returns the total paid for a volume and each current
// owner's even share of it. A volume with no owners costs nothing.
func (r *OwnershipRepo) AggregateCost(ctx context.Context, volumeID int64) (total, perOwner float64, err error) {
	entries, err := r.ListOwners(ctx, volumeID)
	if err != nil {
		return 0, 0, err
	}
	if len(entries) == 0 {
		return 0, 0, nil
	}
	for _, e := range entries {
		total += e.Price
	}
	return total, total / float64(len(entries)), nil
}
