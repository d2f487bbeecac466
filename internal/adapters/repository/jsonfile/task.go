package jsonfile

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/task"
)

type taskRecord struct {
	ID          int            `json:"id"`
	Title       string         `json:"titulo,omitempty"`
	Description string         `json:"descripcion"`
	AreaID      int            `json:"areaId"`
	EmployeeID  *int           `json:"empleadoId"`
	Priority    string         `json:"prioridad"`
	Category    string         `json:"tipoTarea"`
	Attributes  map[string]any `json:"atributos"`
	Status      string         `json:"estado"`
	CreatedAt   string         `json:"fechaCreacion"`
	AssignedAt  *string        `json:"fechaAsignacion,omitempty"`
	DueAt       *string        `json:"fechaVencimiento,omitempty"`
	CompletedAt *string        `json:"fechaCompletada,omitempty"`
}

func (rec taskRecord) toDomain() (*domain.Task, error) {
	createdAt, err := parseTime(rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	assignedAt, err := parseOptionalTime(rec.AssignedAt)
	if err != nil {
		return nil, err
	}
	dueAt, err := parseOptionalTime(rec.DueAt)
	if err != nil {
		return nil, err
	}
	completedAt, err := parseOptionalTime(rec.CompletedAt)
	if err != nil {
		return nil, err
	}

	var employeeID *string
	if rec.EmployeeID != nil {
		id := strconv.Itoa(*rec.EmployeeID)
		employeeID = &id
	}

	attrs := rec.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}

	return &domain.Task{
		ID:          strconv.Itoa(rec.ID),
		Title:       rec.Title,
		Description: rec.Description,
		AreaID:      rec.AreaID,
		EmployeeID:  employeeID,
		Priority:    domain.Priority(rec.Priority),
		Category:    rec.Category,
		Attributes:  attrs,
		Status:      domain.Status(rec.Status),
		CreatedAt:   createdAt,
		AssignedAt:  assignedAt,
		DueAt:       dueAt,
		CompletedAt: completedAt,
	}, nil
}

func newTaskRecord(id int, t *domain.Task) (taskRecord, error) {
	var employeeID *int
	if t.EmployeeID != nil {
		legacyID, ok := parseID(*t.EmployeeID)
		if !ok {
			return taskRecord{}, fmt.Errorf("jsonfile: employee reference %q: %w", *t.EmployeeID, domain.ErrEmployeeNotFound)
		}
		employeeID = &legacyID
	}
	return taskRecord{
		ID:          id,
		Title:       t.Title,
		Description: t.Description,
		AreaID:      t.AreaID,
		EmployeeID:  employeeID,
		Priority:    string(t.Priority),
		Category:    t.Category,
		Attributes:  t.Attributes,
		Status:      string(t.Status),
		CreatedAt:   formatTime(t.CreatedAt),
		AssignedAt:  formatOptionalTime(t.AssignedAt),
		DueAt:       formatOptionalTime(t.DueAt),
		CompletedAt: formatOptionalTime(t.CompletedAt),
	}, nil
}

// TaskRepository は tareas.json 上のタスクリポジトリです。
type TaskRepository struct {
	store *Store
}

var _ task.Repository = (*TaskRepository)(nil)

// Create は最大 ID + 1 を割り当ててタスクを追加します。
func (r *TaskRepository) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[taskRecord](r.store, tasksFile)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}

	rec, err := newTaskRecord(nextID(ids), t)
	if err != nil {
		return nil, err
	}
	records = append(records, rec)
	if err := writeCollection(r.store, tasksFile, records); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// Update はタスクを置き換えます。
func (r *TaskRepository) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	id, ok := parseID(t.ID)
	if !ok {
		return nil, task.ErrTaskNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[taskRecord](r.store, tasksFile)
	if err != nil {
		return nil, err
	}
	for idx := range records {
		if records[idx].ID != id {
			continue
		}
		rec, err := newTaskRecord(id, t)
		if err != nil {
			return nil, err
		}
		records[idx] = rec
		if err := writeCollection(r.store, tasksFile, records); err != nil {
			return nil, err
		}
		return rec.toDomain()
	}
	return nil, task.ErrTaskNotFound
}

// Delete はタスクを削除します。
func (r *TaskRepository) Delete(_ context.Context, rawID string) error {
	id, ok := parseID(rawID)
	if !ok {
		return task.ErrTaskNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[taskRecord](r.store, tasksFile)
	if err != nil {
		return err
	}
	for idx := range records {
		if records[idx].ID == id {
			records = append(records[:idx], records[idx+1:]...)
			return writeCollection(r.store, tasksFile, records)
		}
	}
	return task.ErrTaskNotFound
}

// FindByID はタスクを取得します。
func (r *TaskRepository) FindByID(_ context.Context, rawID string) (*domain.Task, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, task.ErrTaskNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[taskRecord](r.store, tasksFile)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.toDomain()
		}
	}
	return nil, task.ErrTaskNotFound
}

// List は全件を読み込み、Criteria から構築した Predicate で絞り込みます。
func (r *TaskRepository) List(_ context.Context, criteria task.Criteria) ([]*domain.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[taskRecord](r.store, tasksFile)
	if err != nil {
		return nil, err
	}

	match := task.BuildPredicate(criteria)
	tasks := make([]*domain.Task, 0, len(records))
	for _, rec := range records {
		t, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		if match(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}
