package service

import (
	"context"
	"slices"
	"time"

	"maturity-dashboard/internal/event"
	"maturity-dashboard/internal/model"
	"maturity-dashboard/internal/repository"
)

type fakeProjects struct {
	projects []model.Project
	members  map[int64][]int64 // project -> users
}

func (f *fakeProjects) ListVisible(_ context.Context, tenantID, userID int64, all bool) ([]model.Project, error) {
	var out []model.Project
	for _, p := range f.projects {
		if p.TenantID != tenantID {
			continue
		}
		if all || slices.Contains(f.members[p.ID], userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) FindByID(_ context.Context, tenantID, projectID int64) (*model.Project, error) {
	for _, p := range f.projects {
		if p.ID == projectID && p.TenantID == tenantID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProjects) IsMember(_ context.Context, projectID, userID int64) (bool, error) {
	return slices.Contains(f.members[projectID], userID), nil
}

type fakeMilestones struct {
	items   []model.Milestone
	tenants map[int64]int64 // project -> tenant
}

func (f *fakeMilestones) ListByProject(_ context.Context, projectID int64) ([]model.Milestone, error) {
	var out []model.Milestone
	for _, m := range f.items {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMilestones) FindByID(_ context.Context, tenantID, id int64) (*model.Milestone, error) {
	for _, m := range f.items {
		if m.ID == id && f.tenants[m.ProjectID] == tenantID {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMilestones) UpdateStatus(ctx context.Context, tenantID, id int64, status model.MilestoneStatus, _ int64) (*model.Milestone, error) {
	for i := range f.items {
		if f.items[i].ID == id && f.tenants[f.items[i].ProjectID] == tenantID {
			f.items[i].Status = status
			m := f.items[i]
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeActionPlans struct {
	items   []model.ActionPlan
	tenants map[int64]int64
}

func (f *fakeActionPlans) ListByProject(_ context.Context, projectID int64) ([]model.ActionPlan, error) {
	var out []model.ActionPlan
	for _, a := range f.items {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeActionPlans) FindByID(_ context.Context, tenantID, id int64) (*model.ActionPlan, error) {
	for _, a := range f.items {
		if a.ID == id && f.tenants[a.ProjectID] == tenantID {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeActionPlans) UpdateStatus(_ context.Context, tenantID, id int64, status model.WorkItemStatus, _ int64) (*model.ActionPlan, error) {
	for i := range f.items {
		if f.items[i].ID == id && f.tenants[f.items[i].ProjectID] == tenantID {
			f.items[i].Status = status
			a := f.items[i]
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeDigests map[int64]*event.AlertsDigestPayload

func (f fakeDigests) Get(_ context.Context, _, projectID int64) (*event.AlertsDigestPayload, error) {
	if d, ok := f[projectID]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

type fakeGate struct{ seen map[string]bool }

func (g *fakeGate) Allow(_ context.Context, key string) bool {
	if g.seen[key] {
		return false
	}
	g.seen[key] = true
	return true
}

type publishedEvent struct {
	key     string
	payload any
}

type fakePublisher struct{ events []publishedEvent }

func (p *fakePublisher) PublishWithContext(_ context.Context, key string, payload any) error {
	p.events = append(p.events, publishedEvent{key: key, payload: payload})
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
