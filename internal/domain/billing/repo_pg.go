package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type billRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &billRepoPG{pool: pool}
}

const billCols = `id, card_id, patient_name, doctor_name, lab_name,
	services, total_amount, due_date, status, notes, created_at`

func (r *billRepoPG) scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	var services []byte
	err := row.Scan(&b.ID, &b.CardID, &b.PatientName, &b.DoctorName, &b.LabName,
		&services, &b.TotalAmount, &b.DueDate, &b.Status, &b.Notes, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &b.Services); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func (r *billRepoPG) Create(ctx context.Context, b *Bill) error {
	b.ID = uuid.New()
	services, err := json.Marshal(b.Services)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO bill (id, card_id, patient_name, doctor_name, lab_name,
			services, total_amount, due_date, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		b.ID, b.CardID, b.PatientName, b.DoctorName, b.LabName,
		services, b.TotalAmount, b.DueDate, b.Status, b.Notes).Scan(&b.CreatedAt)
}

func (r *billRepoPG) GetByID(ctx context.Context, id string) (*Bill, error) {
	b, err := r.scanBill(r.pool.QueryRow(ctx, `SELECT `+billCols+` FROM bill WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *billRepoPG) List(ctx context.Context) ([]*Bill, error) {
	return r.queryBills(ctx, `SELECT `+billCols+` FROM bill ORDER BY created_at DESC`)
}

func (r *billRepoPG) ListByCard(ctx context.Context, cardID string) ([]*Bill, error) {
	return r.queryBills(ctx,
		`SELECT `+billCols+` FROM bill WHERE card_id = $1 ORDER BY created_at DESC`, cardID)
}

func (r *billRepoPG) ListByStatus(ctx context.Context, status string) ([]*Bill, error) {
	return r.queryBills(ctx,
		`SELECT `+billCols+` FROM bill WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (r *billRepoPG) queryBills(ctx context.Context, sql string, args ...any) ([]*Bill, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Bill
	for rows.Next() {
		b, err := r.scanBill(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *billRepoPG) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bill SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *billRepoPG) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	// due_date is stored as YYYY-MM-DD, so lexicographic compare is date order
	tag, err := r.pool.Exec(ctx, `
		UPDATE bill SET status = $1
		WHERE status = $2 AND due_date <> '' AND due_date < $3`,
		StatusOverdue, StatusPending, now.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
