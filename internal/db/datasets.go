package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DatasetFilters narrow and page ListDatasets results.
type DatasetFilters struct {
	Status string
	Page   int
	Limit  int
}

// CreateDataset inserts the dataset document and returns its generated id.
func (d *DB) CreateDataset(ctx context.Context, ds *Dataset) (uuid.UUID, error) {
	query := `
		INSERT INTO datasets (name, description, status, import_job_id, stats, classes, storage, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id uuid.UUID
	err := d.pool.QueryRow(ctx, query,
		ds.Name, ds.Description, ds.Status, ds.ImportJobID,
		ds.Stats, ds.Classes, ds.Storage, ds.CreatedAt, ds.CompletedAt).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting dataset for job %s: %w", ds.ImportJobID, err)
	}
	return id, nil
}

// GetDataset returns the dataset document, or nil if the id is unknown.
func (d *DB) GetDataset(ctx context.Context, id uuid.UUID) (*Dataset, error) {
	query := `
		SELECT id, name, description, status, import_job_id, stats, classes, storage, created_at, completed_at
		FROM datasets
		WHERE id = $1`

	var ds Dataset
	err := d.pool.QueryRow(ctx, query, id).Scan(
		&ds.ID, &ds.Name, &ds.Description, &ds.Status, &ds.ImportJobID,
		&ds.Stats, &ds.Classes, &ds.Storage, &ds.CreatedAt, &ds.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching dataset %s: %w", id, err)
	}
	return &ds, nil
}

// ListDatasets returns one page of datasets, newest first, and the total
// matching count.
func (d *DB) ListDatasets(ctx context.Context, filters DatasetFilters) ([]Dataset, int, error) {
	page, limit := normalizePage(filters.Page, filters.Limit)

	where := ""
	args := []any{}
	if filters.Status != "" {
		where = "WHERE status = $1"
		args = append(args, filters.Status)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM datasets %s", where)
	if err := d.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting datasets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, status, import_job_id, stats, classes, storage, created_at, completed_at
		FROM datasets %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]Dataset, 0)
	for rows.Next() {
		var ds Dataset
		if err := rows.Scan(
			&ds.ID, &ds.Name, &ds.Description, &ds.Status, &ds.ImportJobID,
			&ds.Stats, &ds.Classes, &ds.Storage, &ds.CreatedAt, &ds.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning dataset row: %w", err)
		}
		datasets = append(datasets, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating dataset rows: %w", err)
	}
	return datasets, total, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
