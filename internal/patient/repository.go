package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no patient exists for the given id.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context) ([]Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, patientID string) (bool, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, p *Patient) error {
	now := time.Now()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO patients (id, first_name, last_name, age, sex, mrn, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Age, p.Sex, p.MRN, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	query := `SELECT id, first_name, last_name, age, sex, mrn, created_at, updated_at FROM patients WHERE id = $1`

	var p Patient
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.Sex, &p.MRN, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]Patient, error) {
	query := `SELECT id, first_name, last_name, age, sex, mrn, created_at, updated_at FROM patients ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Age, &p.Sex, &p.MRN, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Patient) error {
	p.UpdatedAt = time.Now()

	query := `
		UPDATE patients
		SET first_name = $2, last_name = $3, age = $4, sex = $5, mrn = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Age, p.Sex, p.MRN, p.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether the identifier belongs to a known patient. Callers
// pass the identifier as the opaque string used to key sessions and
// transcripts.
func (r *postgresRepo) Exists(ctx context.Context, patientID string) (bool, error) {
	id, err := uuid.Parse(patientID)
	if err != nil {
		return false, nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM patients WHERE id = $1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("patient existence check: %w", err)
	}
	return true, nil
}
