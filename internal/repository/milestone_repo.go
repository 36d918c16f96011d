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

type MilestoneRepository struct {
	db         *pgxpool.Pool
	outboxRepo *outbox.Repository
	logger     *zap.Logger
}

func NewMilestoneRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *MilestoneRepository {
	return &MilestoneRepository{db: db, outboxRepo: outboxRepo, logger: logger}
}

const milestoneColumns = `m.id, m.project_id, m.name, m.phase_order, m.target_date, m.status, m.updated_at`

// ListByProject returns the milestones of a project in phase order.
func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID int64) ([]model.Milestone, error) {
	query := `
        SELECT ` + milestoneColumns + `
        FROM milestones m
        WHERE m.project_id = $1
        ORDER BY m.phase_order, m.id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	milestones := make([]model.Milestone, 0)
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

// FindByID returns a milestone whose project belongs to tenantID.
func (r *MilestoneRepository) FindByID(ctx context.Context, tenantID, milestoneID int64) (*model.Milestone, error) {
	query := `
        SELECT ` + milestoneColumns + `
        FROM milestones m
        JOIN projects p ON p.id = m.project_id
        WHERE m.id = $1 AND p.tenant_id = $2
    `
	m, err := scanMilestone(r.db.QueryRow(ctx, query, milestoneID, tenantID))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

// UpdateStatus changes the status and stages a milestone.updated event in the
// same transaction.
func (r *MilestoneRepository) UpdateStatus(ctx context.Context, tenantID, milestoneID int64, status model.MilestoneStatus, updatedBy int64) (*model.Milestone, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	m, err := scanMilestone(tx.QueryRow(ctx, `
        UPDATE milestones m
        SET status = $1, updated_at = NOW()
        FROM projects p
        WHERE m.id = $2 AND p.id = m.project_id AND p.tenant_id = $3
        RETURNING `+milestoneColumns,
		string(status), milestoneID, tenantID,
	))
	if err != nil {
		return nil, notFound(err)
	}

	payload := event.MilestoneUpdatedPayload{
		EventID:     event.NewID(),
		TraceID:     trace.FromContext(ctx),
		TenantID:    tenantID,
		ProjectID:   m.ProjectID,
		MilestoneID: m.ID,
		Status:      string(m.Status),
		UpdatedBy:   updatedBy,
		OccurredAt:  m.UpdatedAt,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outboxRepo, "milestone", &m.ID, event.MilestoneUpdated, payload); err != nil {
		r.logger.Error("Failed to insert milestone.updated to outbox", zap.Int64("milestone_id", m.ID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit milestone update: %w", err)
	}
	return m, nil
}

func scanMilestone(row pgx.Row) (*model.Milestone, error) {
	var (
		m      model.Milestone
		target *time.Time
		status string
	)
	if err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.PhaseOrder, &target, &status, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.TargetDate = dateOrZero(target)
	// 未知状态原样保留，由 timeline.Classify 兜底
	if s, ok := model.ParseMilestoneStatus(status); ok {
		m.Status = s
	} else {
		m.Status = model.MilestoneStatus(status)
	}
	return &m, nil
}
