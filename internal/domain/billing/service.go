package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/cardvault/cardvault/internal/domain/card"
)

// CardDirectory resolves a public card id to its card, used to denormalize
// names onto new bills. Satisfied by *card.Service.
type CardDirectory interface {
	GetByCardID(ctx context.Context, cardID string) (*card.Card, error)
}

type Service struct {
	repo  Repository
	cards CardDirectory
	now   func() time.Time
}

func NewService(repo Repository, cards CardDirectory) *Service {
	return &Service{repo: repo, cards: cards, now: time.Now}
}

// Create stores a new bill. The total is summed from the service lines at
// creation and the status always starts as pending regardless of input.
// When the referenced card exists its names overwrite the blank name
// fields; a missing card is not an error since bills may reference cards
// entered on paper.
func (s *Service) Create(ctx context.Context, b *Bill) error {
	if b.CardID == "" {
		return fmt.Errorf("card_id is required: %w", ErrInvalidBill)
	}
	if len(b.Services) == 0 {
		return fmt.Errorf("at least one service line is required: %w", ErrInvalidBill)
	}
	for i, line := range b.Services {
		if line.Description == "" {
			return fmt.Errorf("service line %d is missing a description: %w", i, ErrInvalidBill)
		}
		if line.Amount <= 0 {
			return fmt.Errorf("service line %d must have a positive amount: %w", i, ErrInvalidBill)
		}
	}
	if b.DueDate != "" {
		if _, err := time.Parse("2006-01-02", b.DueDate); err != nil {
			return fmt.Errorf("due_date must be YYYY-MM-DD: %w", ErrInvalidBill)
		}
	}

	var total float64
	for _, line := range b.Services {
		total += line.Amount
	}
	b.TotalAmount = total
	b.Status = StatusPending

	if s.cards != nil {
		if c, err := s.cards.GetByCardID(ctx, b.CardID); err == nil {
			if b.PatientName == "" {
				b.PatientName = c.Patient
			}
			if b.DoctorName == "" {
				b.DoctorName = c.Doctor
			}
			if b.LabName == "" {
				b.LabName = c.Lab
			}
		}
	}

	return s.repo.Create(ctx, b)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Bill, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns bills newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]*Bill, error) {
	if status == "" {
		return s.repo.List(ctx)
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status)
}

// ListByCard returns every bill referencing the given public card id,
// newest first. The card itself is not required to exist.
func (s *Service) ListByCard(ctx context.Context, cardID string) ([]*Bill, error) {
	return s.repo.ListByCard(ctx, cardID)
}

// SetStatus moves a bill through the transition table and returns the
// updated bill. Paid and cancelled are terminal.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*Bill, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, status) {
		return nil, fmt.Errorf("cannot move bill from %s to %s: %w", b.Status, status, ErrBadTransition)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	b.Status = status
	return b, nil
}

// MarkOverdue flips pending bills past their due date to overdue. Run from
// the nightly sweep; safe to call repeatedly.
func (s *Service) MarkOverdue(ctx context.Context) (int, error) {
	return s.repo.MarkOverdue(ctx, s.now())
}
