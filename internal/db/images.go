package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ImageFilters narrow and page ListDatasetImages results.
type ImageFilters struct {
	Class          string
	HasAnnotations *bool
	Page           int
	Limit          int
}

// CreateImages batch-inserts image records for a dataset via COPY and returns
// the generated ids. An empty batch is a no-op.
func (d *DB) CreateImages(ctx context.Context, datasetID uuid.UUID, imgs []Image) ([]uuid.UUID, error) {
	if len(imgs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(imgs))
	rows := make([][]any, len(imgs))
	for i, img := range imgs {
		ids[i] = uuid.New()
		annotations, err := json.Marshal(img.Annotations)
		if err != nil {
			return nil, fmt.Errorf("encoding annotations for %s: %w", img.Filename, err)
		}
		rows[i] = []any{
			ids[i], datasetID, img.Filename, img.Width, img.Height,
			img.FileSizeBytes, img.StorageURL, annotations,
			img.AnnotationCount, img.ProcessedAt,
		}
	}

	copied, err := d.pool.CopyFrom(ctx,
		pgx.Identifier{"images"},
		[]string{"id", "dataset_id", "filename", "width", "height",
			"file_size_bytes", "storage_url", "annotations",
			"annotation_count", "processed_at"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return nil, fmt.Errorf("copying %d images for dataset %s: %w", len(imgs), datasetID, err)
	}
	if copied != int64(len(imgs)) {
		return nil, fmt.Errorf("copied %d of %d images for dataset %s", copied, len(imgs), datasetID)
	}
	return ids, nil
}

// ListDatasetImages returns one page of a dataset's images and the total
// matching count. Class filters match any annotation with that class name.
func (d *DB) ListDatasetImages(ctx context.Context, datasetID uuid.UUID, filters ImageFilters) ([]Image, int, error) {
	page, limit := normalizePage(filters.Page, filters.Limit)

	conditions := []string{"dataset_id = $1"}
	args := []any{datasetID}
	argNum := 2

	if filters.Class != "" {
		match, err := json.Marshal([]map[string]string{{"class_name": filters.Class}})
		if err != nil {
			return nil, 0, fmt.Errorf("encoding class filter: %w", err)
		}
		conditions = append(conditions, fmt.Sprintf("annotations @> $%d", argNum))
		args = append(args, match)
		argNum++
	}
	if filters.HasAnnotations != nil {
		if *filters.HasAnnotations {
			conditions = append(conditions, "annotation_count > 0")
		} else {
			conditions = append(conditions, "annotation_count = 0")
		}
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM images WHERE %s", where)
	if err := d.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting images: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, dataset_id, filename, width, height, file_size_bytes,
		       storage_url, annotations, annotation_count, processed_at
		FROM images
		WHERE %s
		ORDER BY filename
		LIMIT $%d OFFSET $%d`, where, argNum, argNum+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	imgs := make([]Image, 0)
	for rows.Next() {
		var img Image
		if err := rows.Scan(
			&img.ID, &img.DatasetID, &img.Filename, &img.Width, &img.Height,
			&img.FileSizeBytes, &img.StorageURL, &img.Annotations,
			&img.AnnotationCount, &img.ProcessedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning image row: %w", err)
		}
		imgs = append(imgs, img)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating image rows: %w", err)
	}
	return imgs, total, nil
}
