package card

import "fmt"

// Draft holds in-progress card form state before it is saved or rendered.
// Fields are set by name, mirroring the generator form; no validation is
// applied and empty values are accepted.
type Draft struct {
	cardID       string
	patient      string
	doctor       string
	lab          string
	caseID       string
	doctorMobile string
	labMobile    string
	validFrom    string
	validTo      string
}

func NewDraft() *Draft {
	return &Draft{}
}

// Set updates a single named field, leaving all others unchanged.
func (d *Draft) Set(field, value string) error {
	switch field {
	case "card_id":
		d.cardID = value
	case "patient":
		d.patient = value
	case "doctor":
		d.doctor = value
	case "lab":
		d.lab = value
	case "case_id":
		d.caseID = value
	case "doctor_mobile":
		d.doctorMobile = value
	case "lab_mobile":
		d.labMobile = value
	case "valid_from":
		d.validFrom = value
	case "valid_to":
		d.validTo = value
	default:
		return fmt.Errorf("unknown card field: %s", field)
	}
	return nil
}

// Snapshot returns the draft as a Card value. A public id is generated
// lazily on the first snapshot if none was set, and is stable across
// subsequent snapshots.
func (d *Draft) Snapshot() Card {
	if d.cardID == "" {
		d.cardID = NewCardID()
	}
	return Card{
		CardID:       d.cardID,
		Patient:      d.patient,
		Doctor:       d.doctor,
		Lab:          d.lab,
		CaseID:       d.caseID,
		DoctorMobile: d.doctorMobile,
		LabMobile:    d.labMobile,
		ValidFrom:    d.validFrom,
		ValidTo:      d.validTo,
	}
}
