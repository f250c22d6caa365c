// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/platform/apperr"
	"github.com/clinicore/clinicore/internal/platform/dberr"
)

// # Record Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindByID retrieves a patient record from the clinical.patient table.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Patient: Hydrated entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Patient, error) {
	const query = `
		SELECT id, fullname, medicalhistory, updatedat
		FROM clinical.patient
		WHERE id = $1`

	record := &Patient{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&record.ID,
		&record.FullName,
		&record.MedicalHistory,
		&record.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Patient")
		}
		return nil, dberr.Wrap(fmt.Errorf("patient_repo_find_by_id_failed: %w", err))
	}

	return record, nil
}
