package card

import (
	"strings"
	"testing"
	"time"
)

// ── IsActive ──

func TestCard_IsActive(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		validTo string
		want    bool
	}{
		{"future expiry", "2027-01-01", true},
		{"day after now", "2026-03-16", true},
		{"same day", "2026-03-15", false},
		{"past expiry", "2025-12-31", false},
		{"empty", "", false},
		{"garbage", "not-a-date", false},
		{"wrong format", "15/03/2027", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Card{ValidTo: tt.validTo}
			if got := c.IsActive(now); got != tt.want {
				t.Errorf("IsActive(%q) = %v, want %v", tt.validTo, got, tt.want)
			}
		})
	}
}

func TestCard_AsView(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	c := &Card{CardID: "ABCD234567", ValidTo: "2027-01-01"}

	v := c.AsView(now)
	if !v.Active {
		t.Error("expected view of unexpired card to be active")
	}
	if v.Card != c {
		t.Error("expected view to embed the same card")
	}

	expired := &Card{CardID: "WXYZ234567", ValidTo: "2020-01-01"}
	if expired.AsView(now).Active {
		t.Error("expected view of expired card to be inactive")
	}
}

// ── NewCardID ──

func TestNewCardID_Format(t *testing.T) {
	id := NewCardID()
	if len(id) != cardIDLength {
		t.Fatalf("expected length %d, got %d (%q)", cardIDLength, len(id), id)
	}
	for _, r := range id {
		if !strings.ContainsRune(cardIDAlphabet, r) {
			t.Errorf("id %q contains %q outside the alphabet", id, r)
		}
	}
}

func TestNewCardID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewCardID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewCardID_MatchesPattern(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := NewCardID()
		if !cardIDPattern.MatchString(id) {
			t.Errorf("generated id %q rejected by the validation pattern", id)
		}
	}
}
