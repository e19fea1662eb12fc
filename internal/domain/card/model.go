package card

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no card exists for a well-formed public id.
	ErrNotFound = errors.New("card not found")
	// ErrInvalidCardID is returned before any lookup when a public id is
	// empty or malformed.
	ErrInvalidCardID = errors.New("invalid card id")
	// ErrCardIDTaken is returned when a public id collides with an existing
	// card. The caller may retry with a different id.
	ErrCardIDTaken = errors.New("card id already taken")
)

// Card maps to the card table. Cards are immutable once created: there is no
// update or delete path, only creation and reads.
type Card struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CardID       string    `db:"card_id" json:"card_id"`
	Patient      string    `db:"patient" json:"patient"`
	Doctor       string    `db:"doctor" json:"doctor"`
	Lab          string    `db:"lab" json:"lab"`
	CaseID       string    `db:"case_id" json:"case_id"`
	DoctorMobile string    `db:"doctor_mobile" json:"doctor_mobile"`
	LabMobile    string    `db:"lab_mobile" json:"lab_mobile"`
	ValidFrom    string    `db:"valid_from" json:"valid_from"`
	ValidTo      string    `db:"valid_to" json:"valid_to"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsActive reports whether the card's validity window extends past now.
// The active flag is never stored; it is recomputed on every read. A card
// with an empty or unparseable valid_to date is treated as expired.
func (c *Card) IsActive(now time.Time) bool {
	expiry, err := time.Parse("2006-01-02", c.ValidTo)
	if err != nil {
		return false
	}
	return expiry.After(now)
}

// View is the JSON shape served to clients: the stored card plus the
// computed active flag.
type View struct {
	*Card
	Active bool `json:"active"`
}

// AsView wraps the card with its validity evaluated at now.
func (c *Card) AsView(now time.Time) View {
	return View{Card: c, Active: c.IsActive(now)}
}

// Stats summarizes the card collection for the dashboard header.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

const cardIDAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const cardIDLength = 10

// NewCardID generates a fresh public card identifier: a short uppercase
// token drawn from an alphabet without easily-confused characters, since
// the id is read aloud over the phone and typed from printed cards.
func NewCardID() string {
	buf := make([]byte, cardIDLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = cardIDAlphabet[int(b)%len(cardIDAlphabet)]
	}
	return string(buf)
}
