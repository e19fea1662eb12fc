package card

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cardRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &cardRepoPG{pool: pool}
}

const cardCols = `id, card_id, patient, doctor, lab, case_id,
	doctor_mobile, lab_mobile, valid_from, valid_to, created_at`

func (r *cardRepoPG) scanCard(row pgx.Row) (*Card, error) {
	var c Card
	err := row.Scan(&c.ID, &c.CardID, &c.Patient, &c.Doctor, &c.Lab, &c.CaseID,
		&c.DoctorMobile, &c.LabMobile, &c.ValidFrom, &c.ValidTo, &c.CreatedAt)
	return &c, err
}

func (r *cardRepoPG) Create(ctx context.Context, c *Card) error {
	c.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO card (id, card_id, patient, doctor, lab, case_id,
			doctor_mobile, lab_mobile, valid_from, valid_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		c.ID, c.CardID, c.Patient, c.Doctor, c.Lab, c.CaseID,
		c.DoctorMobile, c.LabMobile, c.ValidFrom, c.ValidTo).Scan(&c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation on the card_id index
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCardIDTaken
		}
		return err
	}
	return nil
}

func (r *cardRepoPG) GetByCardID(ctx context.Context, cardID string) (*Card, error) {
	c, err := r.scanCard(r.pool.QueryRow(ctx, `SELECT `+cardCols+` FROM card WHERE card_id = $1`, cardID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *cardRepoPG) List(ctx context.Context) ([]*Card, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cardCols+` FROM card ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Card
	for rows.Next() {
		c, err := r.scanCard(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
