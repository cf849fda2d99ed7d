package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DirectoryRepository answers existence questions against the subject and
// teacher directories.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository builds repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// MissingSubjectIDs returns the ids not present in the tenant's subjects table.
func (r *DirectoryRepository) MissingSubjectIDs(ctx context.Context, tenantID string, ids []string) ([]string, error) {
	return r.missing(ctx, "subjects", tenantID, ids)
}

// MissingTeacherIDs returns the ids not present in the tenant's teachers table.
func (r *DirectoryRepository) MissingTeacherIDs(ctx context.Context, tenantID string, ids []string) ([]string, error) {
	return r.missing(ctx, "teachers", tenantID, ids)
}

func (r *DirectoryRepository) missing(ctx context.Context, table, tenantID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT id FROM %s WHERE tenant_id = $1 AND id = ANY($2)", table)
	var found []string
	if err := r.db.SelectContext(ctx, &found, query, tenantID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("lookup %s: %w", table, err)
	}
	present := make(map[string]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
