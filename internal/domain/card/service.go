package card

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Caller-supplied ids must look like the tokens we generate: uppercase
// alphanumerics, optionally dashed, 4 to 32 characters.
var cardIDPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{3,31}$`)

// createRetries bounds the number of fresh ids tried when a generated id
// collides. Collisions are vanishingly rare at 31^10 tokens, so hitting the
// bound means something else is wrong with the store.
const createRetries = 3

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a new card. When the caller supplies a public id its format
// is validated and a collision surfaces as ErrCardIDTaken so the caller can
// pick another; when the id is blank the service generates one and retries
// on collision itself.
func (s *Service) Create(ctx context.Context, c *Card) error {
	if c.CardID != "" {
		if !cardIDPattern.MatchString(c.CardID) {
			return fmt.Errorf("card_id must be 4-32 uppercase letters, digits, or dashes: %w", ErrInvalidCardID)
		}
		return s.repo.Create(ctx, c)
	}

	var err error
	for i := 0; i < createRetries; i++ {
		c.CardID = NewCardID()
		err = s.repo.Create(ctx, c)
		if err != ErrCardIDTaken {
			return err
		}
	}
	return err
}

// GetByCardID resolves a public id to a card. Malformed ids are rejected
// before any query so the store never sees them.
func (s *Service) GetByCardID(ctx context.Context, cardID string) (*Card, error) {
	if !cardIDPattern.MatchString(cardID) {
		return nil, ErrInvalidCardID
	}
	return s.repo.GetByCardID(ctx, cardID)
}

// List returns every card in insertion order. Dashboard search, filtering,
// and sorting happen client-side over this full listing.
func (s *Service) List(ctx context.Context) ([]*Card, error) {
	return s.repo.List(ctx)
}

// Views returns the full listing with the active flag evaluated at the
// current moment.
func (s *Service) Views(ctx context.Context) ([]View, error) {
	cards, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]View, len(cards))
	for i, c := range cards {
		views[i] = c.AsView(now)
	}
	return views, nil
}

// Stats counts total, active, and expired cards at the current moment.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	cards, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	st := &Stats{Total: len(cards)}
	for _, c := range cards {
		if c.IsActive(now) {
			st.Active++
		} else {
			st.Expired++
		}
	}
	return st, nil
}

// Now reports the service clock, used by handlers when wrapping single
// cards into views.
func (s *Service) Now() time.Time {
	return s.now()
}
