package card

import "context"

// Repository is the storage contract for cards. Implementations must treat
// card_id as unique and surface collisions as ErrCardIDTaken.
type Repository interface {
	Create(ctx context.Context, c *Card) error
	GetByCardID(ctx context.Context, cardID string) (*Card, error)
	List(ctx context.Context) ([]*Card, error)
}
