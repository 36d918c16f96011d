package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maturity-dashboard/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

const projectColumns = `p.id, p.tenant_id, p.code, p.name, p.start_date, p.end_date, p.created_at, p.updated_at`

// ListVisible returns the tenant's projects. Unless all is set only projects
// userID is a member of are returned.
func (r *ProjectRepository) ListVisible(ctx context.Context, tenantID, userID int64, all bool) ([]model.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        WHERE p.tenant_id = $1
          AND ($2 OR EXISTS (
              SELECT 1 FROM project_members pm
              WHERE pm.project_id = p.id AND pm.user_id = $3
          ))
        ORDER BY p.code, p.id
    `
	rows, err := r.db.Query(ctx, query, tenantID, all, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// FindByID returns a project of tenantID.
func (r *ProjectRepository) FindByID(ctx context.Context, tenantID, projectID int64) (*model.Project, error) {
	query := `
        SELECT ` + projectColumns + `
        FROM projects p
        WHERE p.id = $1 AND p.tenant_id = $2
    `
	p, err := scanProject(r.db.QueryRow(ctx, query, projectID, tenantID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// IsMember reports whether userID is a member of projectID.
func (r *ProjectRepository) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)
    `, projectID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

// ListIDs returns every (tenant, project) pair. Used by the scheduled scan.
func (r *ProjectRepository) ListIDs(ctx context.Context) ([]model.ProjectRef, error) {
	rows, err := r.db.Query(ctx, `SELECT tenant_id, id FROM projects ORDER BY tenant_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.ProjectRef])
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var (
		p          model.Project
		start, end *time.Time
	)
	err := row.Scan(&p.ID, &p.TenantID, &p.Code, &p.Name, &start, &end, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.StartDate = dateOrZero(start)
	p.EndDate = dateOrZero(end)
	return &p, nil
}
