package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, name, gender, birth_date, phone, email, address,
	next_of_kin, allergies, medications, medical_history,
	created_by, version, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Version = 1
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (
			id, name, gender, birth_date, phone, email, address,
			next_of_kin, allergies, medications, medical_history,
			created_by, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.Name, p.Gender, p.BirthDate, p.Phone, p.Email, p.Address,
		p.NextOfKin, p.Allergies, p.Medications, p.MedicalHistory,
		p.CreatedBy, p.Version,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// Update writes the patient back, asserting the version it was read at.
func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			name=$2, gender=$3, birth_date=$4, phone=$5, email=$6, address=$7,
			next_of_kin=$8, allergies=$9, medications=$10, medical_history=$11,
			version=version+1, updated_at=NOW()
		WHERE id = $1 AND version = $12`,
		p.ID, p.Name, p.Gender, p.BirthDate, p.Phone, p.Email, p.Address,
		p.NextOfKin, p.Allergies, p.Medications, p.MedicalHistory,
		p.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	p.Version++
	return nil
}

func (r *repoPG) List(ctx context.Context, nameSearch string, limit, offset int) ([]*Patient, int, error) {
	var (
		total int
		rows  pgx.Rows
		err   error
	)
	if nameSearch != "" {
		pattern := "%" + nameSearch + "%"
		if err := r.conn(ctx).QueryRow(ctx,
			`SELECT COUNT(*) FROM patients WHERE name ILIKE $1`, pattern).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+patientCols+` FROM patients WHERE name ILIKE $1 ORDER BY name LIMIT $2 OFFSET $3`,
			pattern, limit, offset)
	} else {
		if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.conn(ctx).Query(ctx,
			`SELECT `+patientCols+` FROM patients ORDER BY name LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Gender, &p.BirthDate, &p.Phone, &p.Email, &p.Address,
			&p.NextOfKin, &p.Allergies, &p.Medications, &p.MedicalHistory,
			&p.CreatedBy, &p.Version, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, nil
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.Gender, &p.BirthDate, &p.Phone, &p.Email, &p.Address,
		&p.NextOfKin, &p.Allergies, &p.Medications, &p.MedicalHistory,
		&p.CreatedBy, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
