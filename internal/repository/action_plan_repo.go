package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maturity-dashboard/internal/event"
	"maturity-dashboard/internal/model"
	"maturity-dashboard/pkg/outbox"
	"maturity-dashboard/pkg/trace"
)

type ActionPlanRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewActionPlanRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *ActionPlanRepository {
	return &ActionPlanRepository{db: db, outboxRepo: outboxRepo, logger: logger}
}

const actionPlanColumns = `a.id, a.project_id, a.title, a.owner, a.due_date, a.priority_level, a.status, a.updated_at`

// ListByProject returns every action plan of a project, open or not.
func (r *ActionPlanRepository) ListByProject(ctx context.Context, projectID int64) ([]model.ActionPlan, error) {
	query := `
        SELECT ` + actionPlanColumns + `
        FROM action_plans a
        WHERE a.project_id = $1
        ORDER BY a.id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list action plans: %w", err)
	}
	defer rows.Close()

	plans := make([]model.ActionPlan, 0)
	for rows.Next() {
		a, err := scanActionPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *a)
	}
	return plans, rows.Err()
}

// FindByID returns an action plan whose project belongs to tenantID.
func (r *ActionPlanRepository) FindByID(ctx context.Context, tenantID, planID int64) (*model.ActionPlan, error) {
	query := `
        SELECT ` + actionPlanColumns + `
        FROM action_plans a
        JOIN projects p ON p.id = a.project_id
        WHERE a.id = $1 AND p.tenant_id = $2
    `
	a, err := scanActionPlan(r.db.QueryRow(ctx, query, planID, tenantID))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// UpdateStatus changes the status and stages an actionplan.updated event in
// the same transaction.
func (r *ActionPlanRepository) UpdateStatus(ctx context.Context, tenantID, planID int64, status model.WorkItemStatus, updatedBy int64) (*model.ActionPlan, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := scanActionPlan(tx.QueryRow(ctx, `
        UPDATE action_plans a
        SET status = $1, updated_at = NOW()
        FROM projects p
        WHERE a.id = $2 AND p.id = a.project_id AND p.tenant_id = $3
        RETURNING `+actionPlanColumns,
		string(status), planID, tenantID,
	))
	if err != nil {
		return nil, notFound(err)
	}

	payload := event.ActionPlanUpdatedPayload{
		EventID:      event.NewID(),
		TraceID:      trace.FromContext(ctx),
		TenantID:     tenantID,
		ProjectID:    a.ProjectID,
		ActionPlanID: a.ID,
		Status:       string(a.Status),
		UpdatedBy:    updatedBy,
		OccurredAt:   a.UpdatedAt,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "action_plan", &a.ID, event.ActionPlanUpdated, payload); err != nil {
		r.logger.Error("Failed to insert actionplan.updated to outbox", zap.Int64("action_plan_id", a.ID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit action plan update: %w", err)
	}
	return a, nil
}

func scanActionPlan(row pgx.Row) (*model.ActionPlan, error) {
	var (
		a      model.ActionPlan
		owner  *string
		due    *time.Time
		status string
	)
	if err := row.Scan(&a.ID, &a.ProjectID, &a.Title, &owner, &due, &a.PriorityLevel, &status, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if owner != nil {
		a.Owner = *owner
	}
	a.DueDate = dateOrZero(due)
	if s, ok := model.ParseWorkItemStatus(status); ok {
		a.Status = s
	} else {
		a.Status = model.WorkItemStatus(status)
	}
	return &a, nil
}
