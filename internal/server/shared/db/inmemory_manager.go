package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/common"
	"github.com/taskdeck/taskdeck/internal/server/models"
	"github.com/taskdeck/taskdeck/internal/server/projects"
	"github.com/taskdeck/taskdeck/internal/server/tasks"
	"github.com/taskdeck/taskdeck/internal/server/users"
)

// InMemoryRepositoryManager backs the repositories with plain maps. It
// mirrors the postgres semantics closely enough to drive service and HTTP
// tests without a database: scoped lookups, email uniqueness, task counting,
// cascade/detach on project delete, and the full list-filter contract.
type InMemoryRepositoryManager struct {
	mu        sync.RWMutex
	users     map[string]*models.User
	projects  map[string]*models.Project
	tasks     map[string]*models.Task
	insertSeq map[string]int
	nextSeq   int
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:     make(map[string]*models.User),
		projects:  make(map[string]*models.Project),
		tasks:     make(map[string]*models.Task),
		insertSeq: make(map[string]int),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Close() error { return nil }

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return &inMemoryUsers{m: m}
}

func (m *InMemoryRepositoryManager) Projects() projects.Repository {
	return &inMemoryProjects{m: m}
}

func (m *InMemoryRepositoryManager) Tasks() tasks.Repository {
	return &inMemoryTasks{m: m}
}

func (m *InMemoryRepositoryManager) taskCount(projectID string) int {
	n := 0
	for _, t := range m.tasks {
		if t.ProjectID != nil && *t.ProjectID == projectID {
			n++
		}
	}
	return n
}

// --- users ---

type inMemoryUsers struct {
	m *InMemoryRepositoryManager
}

func (r *inMemoryUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == user.Email {
			return nil, common.ErrorConflict
		}
	}

	now := time.Now().UTC()
	stored := *user
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.m.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *inMemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, u := range r.m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *inMemoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

// --- projects ---

type inMemoryProjects struct {
	m *InMemoryRepositoryManager
}

func (r *inMemoryProjects) withCount(p *models.Project) *models.Project {
	out := *p
	out.TaskCount = r.m.taskCount(p.ID)
	return &out
}

func (r *inMemoryProjects) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	now := time.Now().UTC()
	stored := *project
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.m.projects[stored.ID] = &stored
	r.m.insertSeq[stored.ID] = r.m.nextSeq
	r.m.nextSeq++

	return r.withCount(&stored), nil
}

func (r *inMemoryProjects) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	p, ok := r.m.projects[id]
	if !ok || p.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return r.withCount(p), nil
}

func (r *inMemoryProjects) List(ctx context.Context, userID string) ([]*models.Project, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := []*models.Project{}
	for _, p := range r.m.projects {
		if p.UserID == userID {
			out = append(out, r.withCount(p))
		}
	}

	// favorites first, then newest
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFavorite != out[j].IsFavorite {
			return out[i].IsFavorite
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *inMemoryProjects) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.projects[project.ID]
	if !ok || p.UserID != project.UserID {
		return nil, common.ErrorNotFound
	}

	p.Name = project.Name
	p.Color = project.Color
	p.IsFavorite = project.IsFavorite
	p.UpdatedAt = time.Now().UTC()

	return r.withCount(p), nil
}

func (r *inMemoryProjects) Delete(ctx context.Context, id, userID string, deleteTasks bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.projects[id]
	if !ok || p.UserID != userID {
		return common.ErrorNotFound
	}

	for taskID, t := range r.m.tasks {
		if t.UserID != userID || t.ProjectID == nil || *t.ProjectID != id {
			continue
		}
		if deleteTasks {
			delete(r.m.tasks, taskID)
			delete(r.m.insertSeq, taskID)
		} else {
			t.ProjectID = nil
			t.UpdatedAt = time.Now().UTC()
		}
	}

	delete(r.m.projects, id)
	delete(r.m.insertSeq, id)
	return nil
}

// --- tasks ---

type inMemoryTasks struct {
	m *InMemoryRepositoryManager
}

func (r *inMemoryTasks) joined(t *models.Task) *models.Task {
	out := *t
	out.Project = nil
	if t.ProjectID != nil {
		if p, ok := r.m.projects[*t.ProjectID]; ok {
			out.Project = &models.ProjectRef{ID: p.ID, Name: p.Name, Color: p.Color}
		}
	}
	return &out
}

func (r *inMemoryTasks) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	now := time.Now().UTC()
	stored := *task
	stored.Project = nil
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.m.tasks[stored.ID] = &stored
	r.m.insertSeq[stored.ID] = r.m.nextSeq
	r.m.nextSeq++

	out := stored
	return &out, nil
}

func (r *inMemoryTasks) GetByID(ctx context.Context, id, userID string) (*models.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return r.joined(t), nil
}

func matchesFilter(t *models.Task, q tasks.ListQuery) bool {
	if q.ProjectID != nil {
		if *q.ProjectID == tasks.ProjectNone {
			if t.ProjectID != nil {
				return false
			}
		} else if t.ProjectID == nil || *t.ProjectID != *q.ProjectID {
			return false
		}
	}
	if q.Priority != nil && t.Priority != *q.Priority {
		return false
	}
	if q.Completed != nil && t.Completed != *q.Completed {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

func sortKeyLess(a, b *models.Task, sortBy string) (less, equal bool) {
	switch sortBy {
	case "updatedAt":
		return a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
	case "dueDate":
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false, true
		case a.DueDate == nil:
			return false, false
		case b.DueDate == nil:
			return true, false
		default:
			return a.DueDate.Before(*b.DueDate), a.DueDate.Equal(*b.DueDate)
		}
	case "priority":
		return a.Priority < b.Priority, a.Priority == b.Priority
	case "title":
		return a.Title < b.Title, a.Title == b.Title
	case "completed":
		return !a.Completed && b.Completed, a.Completed == b.Completed
	default: // createdAt, or anything unrecognized
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}

func (r *inMemoryTasks) List(ctx context.Context, userID string, q tasks.ListQuery) ([]*models.Task, int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	matched := []*models.Task{}
	for _, t := range r.m.tasks {
		if t.UserID == userID && matchesFilter(t, q) {
			matched = append(matched, t)
		}
	}

	asc := strings.EqualFold(q.SortOrder, "asc")
	sort.SliceStable(matched, func(i, j int) bool {
		less, equal := sortKeyLess(matched[i], matched[j], q.SortBy)
		if equal {
			// insertion order keeps pagination stable
			return r.m.insertSeq[matched[i].ID] < r.m.insertSeq[matched[j].ID]
		}
		if asc {
			return less
		}
		return !less
	})

	total := len(matched)

	page := []*models.Task{}
	if q.Limit > 0 {
		start := (q.Page - 1) * q.Limit
		if start < total {
			end := start + q.Limit
			if end > total {
				end = total
			}
			for _, t := range matched[start:end] {
				page = append(page, r.joined(t))
			}
		}
	}

	return page, total, nil
}

func (r *inMemoryTasks) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tasks[task.ID]
	if !ok || t.UserID != task.UserID {
		return nil, common.ErrorNotFound
	}

	t.ProjectID = task.ProjectID
	t.Title = task.Title
	t.Description = task.Description
	t.Priority = task.Priority
	t.DueDate = task.DueDate
	t.Completed = task.Completed
	t.CompletedAt = task.CompletedAt
	t.Tags = task.Tags
	t.UpdatedAt = time.Now().UTC()

	return r.joined(t), nil
}

func (r *inMemoryTasks) Delete(ctx context.Context, id, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return common.ErrorNotFound
	}

	delete(r.m.tasks, id)
	delete(r.m.insertSeq, id)
	return nil
}
