package billing

import (
	"context"
	"time"
)

// Repository is the storage contract for bills.
type Repository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id string) (*Bill, error)
	List(ctx context.Context) ([]*Bill, error)
	ListByCard(ctx context.Context, cardID string) ([]*Bill, error)
	ListByStatus(ctx context.Context, status string) ([]*Bill, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// MarkOverdue flips every pending bill whose due date is strictly before
	// today to overdue and reports how many rows changed.
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}
