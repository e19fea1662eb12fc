package card

import "testing"

func TestDraft_SetAndSnapshot(t *testing.T) {
	d := NewDraft()
	fields := map[string]string{
		"patient":       "Jane Doe",
		"doctor":        "Dr. Smith",
		"lab":           "Acme Dental Lab",
		"case_id":       "CASE-042",
		"doctor_mobile": "555-0101",
		"lab_mobile":    "555-0202",
		"valid_from":    "2026-01-01",
		"valid_to":      "2027-01-01",
	}
	for f, v := range fields {
		if err := d.Set(f, v); err != nil {
			t.Fatalf("Set(%q) failed: %v", f, err)
		}
	}

	c := d.Snapshot()
	if c.Patient != "Jane Doe" || c.Doctor != "Dr. Smith" || c.Lab != "Acme Dental Lab" {
		t.Errorf("snapshot missing field values: %+v", c)
	}
	if c.CaseID != "CASE-042" || c.ValidTo != "2027-01-01" {
		t.Errorf("snapshot missing field values: %+v", c)
	}
}

func TestDraft_SetUnknownField(t *testing.T) {
	d := NewDraft()
	if err := d.Set("favourite_colour", "blue"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestDraft_SnapshotGeneratesStableCardID(t *testing.T) {
	d := NewDraft()
	first := d.Snapshot()
	if first.CardID == "" {
		t.Fatal("expected snapshot to generate a card id")
	}
	second := d.Snapshot()
	if second.CardID != first.CardID {
		t.Errorf("card id changed between snapshots: %s vs %s", first.CardID, second.CardID)
	}
}

func TestDraft_SnapshotKeepsExplicitCardID(t *testing.T) {
	d := NewDraft()
	if err := d.Set("card_id", "MYCARD-001"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := d.Snapshot().CardID; got != "MYCARD-001" {
		t.Errorf("expected explicit card id to survive snapshot, got %s", got)
	}
}

func TestDraft_SnapshotIsValue(t *testing.T) {
	d := NewDraft()
	d.Set("patient", "Jane")
	c := d.Snapshot()
	d.Set("patient", "John")
	if c.Patient != "Jane" {
		t.Error("snapshot should not reflect later edits")
	}
}
