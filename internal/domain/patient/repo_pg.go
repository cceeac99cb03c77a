package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patientor/patientor/internal/platform/db"
	"github.com/patientor/patientor/pkg/records"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, name, occupation, gender, date_of_birth, ssn`

func (r *patientRepoPG) Create(ctx context.Context, p *records.Patient) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient (id, name, occupation, gender, date_of_birth, ssn)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Occupation, string(p.Gender), p.DateOfBirth, p.SSN,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("patient %s already exists: %w", p.ID, ErrInvalid)
		}
		return fmt.Errorf("patient create: %w", err)
	}
	if p.Entries == nil {
		p.Entries = records.Entries{}
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id string) (*records.Patient, error) {
	q := conn(ctx, r.pool)
	p, err := scanPatient(q.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("patient get by id: %w", err)
	}

	rows, err := q.Query(ctx, `SELECT data FROM entry WHERE patient_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("patient entries: %w", err)
	}
	defer rows.Close()

	p.Entries = records.Entries{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e, err := records.DecodeEntry(data)
		if err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return p, nil
}

func (r *patientRepoPG) List(ctx context.Context) ([]records.Patient, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("patient list: %w", err)
	}
	defer rows.Close()

	var out []records.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p.Summary())
	}
	return out, rows.Err()
}

func (r *patientRepoPG) AddEntry(ctx context.Context, patientID string, e records.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	base := e.Common()
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO entry (id, patient_id, type, entry_date, data)
		SELECT $1, id, $3, $4, $5 FROM patient WHERE id = $2`,
		base.ID, patientID, string(e.Kind()), base.Date, data,
	)
	if err != nil {
		return fmt.Errorf("entry insert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
	}
	return nil
}

func scanPatient(row pgx.Row) (*records.Patient, error) {
	var p records.Patient
	var gender string
	if err := row.Scan(&p.ID, &p.Name, &p.Occupation, &gender, &p.DateOfBirth, &p.SSN); err != nil {
		return nil, err
	}
	p.Gender = records.Gender(gender)
	return &p, nil
}

// -- Diagnosis Repository --

type diagnosisRepoPG struct {
	pool *pgxpool.Pool
}

func NewDiagnosisRepo(pool *pgxpool.Pool) DiagnosisRepository {
	return &diagnosisRepoPG{pool: pool}
}

func (r *diagnosisRepoPG) List(ctx context.Context) ([]records.Diagnosis, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT code, name, latin FROM diagnosis ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("diagnosis list: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[records.Diagnosis])
	if err != nil {
		return nil, fmt.Errorf("scan diagnoses: %w", err)
	}
	return out, nil
}

func (r *diagnosisRepoPG) Upsert(ctx context.Context, d records.Diagnosis) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO diagnosis (code, name, latin) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, latin = EXCLUDED.latin`,
		d.Code, d.Name, d.Latin,
	)
	if err != nil {
		return fmt.Errorf("diagnosis upsert: %w", err)
	}
	return nil
}
