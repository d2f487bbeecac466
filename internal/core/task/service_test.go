package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ogurasousui/logiflow/internal/core/category"
	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/validation"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeTaskRepo struct {
	tasks    map[string]*domain.Task
	order    []string
	sequence int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	clone := t.Clone()
	r.sequence++
	clone.ID = fmt.Sprintf("task-%d", r.sequence)
	r.tasks[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return clone.Clone(), nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	if _, ok := r.tasks[t.ID]; !ok {
		return nil, ErrTaskNotFound
	}
	r.tasks[t.ID] = t.Clone()
	return t.Clone(), nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (r *fakeTaskRepo) List(_ context.Context, c Criteria) ([]*domain.Task, error) {
	match := BuildPredicate(c)
	var out []*domain.Task
	for _, id := range r.order {
		if t, ok := r.tasks[id]; ok && match(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

type fakeRefs struct {
	areas     map[int]bool
	employees map[string]bool
}

func (f *fakeRefs) ResolveArea(_ context.Context, id int) (*domain.Area, error) {
	if !f.areas[id] {
		return nil, domain.ErrAreaNotFound
	}
	return &domain.Area{ID: id}, nil
}

func (f *fakeRefs) ResolveRole(_ context.Context, id int) (*domain.Role, error) {
	return &domain.Role{ID: id}, nil
}

func (f *fakeRefs) ResolveEmployee(_ context.Context, id string) (*domain.Employee, error) {
	if !f.employees[id] {
		return nil, domain.ErrEmployeeNotFound
	}
	return &domain.Employee{ID: id}, nil
}

func (f *fakeRefs) ListByDNI(context.Context, string) ([]*domain.Employee, error) {
	return nil, nil
}

func newTestService(now time.Time) (*Service, *fakeTaskRepo, *stubClock) {
	repo := newFakeTaskRepo()
	refs := &fakeRefs{
		areas:     map[int]bool{1: true, 2: true},
		employees: map[string]bool{"emp-1": true, "emp-2": true},
	}
	clk := &stubClock{now: now}
	return NewService(repo, validation.NewEngine(refs, refs), clk, nil), repo, clk
}

func routeAttributes() map[string]any {
	return map[string]any{"origen": "Depósito Central", "destino": "Sucursal Norte", "fechaSalida": "2025-03-01"}
}

func TestService_CreateTask_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	employeeID := " emp-1 "
	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:      "  Ruta zona norte ",
		AreaID:     1,
		EmployeeID: &employeeID,
		Priority:   domain.PriorityHigh,
		Category:   category.PlanDeliveryRoute.String(),
		Attributes: routeAttributes(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	if created.Title != "Ruta zona norte" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if created.Status != domain.StatusPending {
		t.Fatalf("expected default status pendiente, got %s", created.Status)
	}
	if created.EmployeeID == nil || *created.EmployeeID != "emp-1" {
		t.Fatalf("expected normalized employee id, got %+v", created.EmployeeID)
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("expected creation timestamp from clock")
	}
	if created.AssignedAt == nil || !created.AssignedAt.Equal(now) {
		t.Fatalf("expected assignment timestamp to be stamped, got %+v", created.AssignedAt)
	}
}

func TestService_CreateTask_Violations(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	unknownEmployee := "emp-404"

	cases := []struct {
		name string
		in   CreateTaskInput
		want error
		code validation.Code
	}{
		{
			name: "missing title",
			in:   CreateTaskInput{AreaID: 1, Priority: domain.PriorityLow, Category: category.PlanDeliveryRoute.String(), Attributes: routeAttributes()},
			want: ErrInvalidTitle,
		},
		{
			name: "invalid priority",
			in:   CreateTaskInput{Title: "t", AreaID: 1, Priority: "urgente", Category: category.PlanDeliveryRoute.String(), Attributes: routeAttributes()},
			want: ErrInvalidPriority,
		},
		{
			name: "unknown category",
			in:   CreateTaskInput{Title: "t", AreaID: 1, Priority: domain.PriorityLow, Category: "lavar_camion", Attributes: routeAttributes()},
			want: validation.ErrUnknownCategory,
			code: validation.CodeUnknownCategory,
		},
		{
			name: "missing attribute",
			in:   CreateTaskInput{Title: "t", AreaID: 1, Priority: domain.PriorityLow, Category: category.AssignCarrier.String(), Attributes: map[string]any{"transportista": "Andreani"}},
			want: validation.ErrMissingAttribute,
			code: validation.CodeMissingAttribute,
		},
		{
			name: "invalid area",
			in:   CreateTaskInput{Title: "t", AreaID: 9, Priority: domain.PriorityLow, Category: category.PlanDeliveryRoute.String(), Attributes: routeAttributes()},
			want: validation.ErrInvalidReference,
			code: validation.CodeInvalidArea,
		},
		{
			name: "invalid employee",
			in:   CreateTaskInput{Title: "t", AreaID: 1, EmployeeID: &unknownEmployee, Priority: domain.PriorityLow, Category: category.PlanDeliveryRoute.String(), Attributes: routeAttributes()},
			want: validation.ErrInvalidReference,
			code: validation.CodeInvalidEmployee,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTask(context.Background(), tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if tc.code != "" {
				v, ok := validation.AsViolation(err)
				if !ok || v.Code != tc.code {
					t.Fatalf("expected violation %s, got %v", tc.code, err)
				}
			}
		})
	}
}

func TestService_UpdateTask_AttributesValidatedAgainstCurrentCategory(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskInput{
		Title:      "Ruta",
		AreaID:     1,
		Priority:   domain.PriorityMedium,
		Category:   category.PlanDeliveryRoute.String(),
		Attributes: routeAttributes(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	_, err = svc.UpdateTask(ctx, UpdateTaskInput{
		ID:         created.ID,
		Attributes: map[string]any{"transportista": "Andreani", "vehiculo": "AB123CD"},
	})
	v, ok := validation.AsViolation(err)
	if !ok || v.Code != validation.CodeMissingAttribute || v.Field != "origen" {
		t.Fatalf("expected missing origen against current category, got %v", err)
	}

	carrier := category.AssignCarrier.String()
	updated, err := svc.UpdateTask(ctx, UpdateTaskInput{
		ID:         created.ID,
		Category:   &carrier,
		Attributes: map[string]any{"transportista": "Andreani", "vehiculo": "AB123CD"},
	})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.Category != carrier {
		t.Fatalf("expected category %s, got %s", carrier, updated.Category)
	}

	incident := category.LogRouteIncident.String()
	if _, err := svc.UpdateTask(ctx, UpdateTaskInput{ID: created.ID, Category: &incident}); !errors.Is(err, validation.ErrMissingAttribute) {
		t.Fatalf("expected category change to re-validate existing attributes, got %v", err)
	}
}

func TestService_UpdateTask_ImmutableFieldsAndStamps(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _, clk := newTestService(start)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskInput{
		Title:      "Ruta",
		AreaID:     1,
		Priority:   domain.PriorityMedium,
		Category:   category.PlanDeliveryRoute.String(),
		Attributes: routeAttributes(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	if created.AssignedAt != nil {
		t.Fatalf("unassigned task must not carry an assignment timestamp")
	}

	clk.now = start.Add(2 * time.Hour)
	emp := "emp-2"
	done := domain.StatusCompleted
	updated, err := svc.UpdateTask(ctx, UpdateTaskInput{
		ID:            created.ID,
		EmployeeID:    &emp,
		EmployeeIDSet: true,
		Status:        &done,
	})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}

	if updated.ID != created.ID || !updated.CreatedAt.Equal(start) {
		t.Fatalf("id and creation timestamp must not change")
	}
	if updated.AssignedAt == nil || !updated.AssignedAt.Equal(clk.now) {
		t.Fatalf("expected assignment stamp, got %+v", updated.AssignedAt)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(clk.now) {
		t.Fatalf("expected completion stamp, got %+v", updated.CompletedAt)
	}

	unassigned, err := svc.UpdateTask(ctx, UpdateTaskInput{ID: created.ID, EmployeeIDSet: true})
	if err != nil {
		t.Fatalf("UpdateTask unassign returned error: %v", err)
	}
	if unassigned.EmployeeID != nil {
		t.Fatalf("expected employee to be cleared")
	}
}

func TestService_UpdateTask_InvalidReference(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskInput{
		Title:      "Ruta",
		AreaID:     1,
		Priority:   domain.PriorityMedium,
		Category:   category.PlanDeliveryRoute.String(),
		Attributes: routeAttributes(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	area := 77
	if _, err := svc.UpdateTask(ctx, UpdateTaskInput{ID: created.ID, AreaID: &area}); !errors.Is(err, validation.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	if _, err := svc.UpdateTask(ctx, UpdateTaskInput{ID: "task-999"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_DeleteTask(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskInput{
		Title:      "Ruta",
		AreaID:     1,
		Priority:   domain.PriorityMedium,
		Category:   category.PlanDeliveryRoute.String(),
		Attributes: routeAttributes(),
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	if err := svc.DeleteTask(ctx, DeleteTaskInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if err := svc.DeleteTask(ctx, DeleteTaskInput{ID: created.ID}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
	if err := svc.DeleteTask(ctx, DeleteTaskInput{ID: " "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_ListTasks_IgnoresInvalidCriteria(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	ctx := context.Background()

	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, area := range []int{1, 2} {
		in := CreateTaskInput{
			Title:      fmt.Sprintf("Ruta %d", i),
			AreaID:     area,
			Priority:   domain.PriorityMedium,
			Category:   category.PlanDeliveryRoute.String(),
			Attributes: routeAttributes(),
		}
		if area == 1 {
			in.DueAt = &due
		}
		if _, err := svc.CreateTask(ctx, in); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	all, err := svc.ListTasks(ctx, RawCriteria{Status: "archivada", Priority: "urgente"})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected invalid criteria to be ignored, got %d tasks", len(all))
	}

	due1, err := svc.ListTasks(ctx, RawCriteria{DueFrom: "2025-03-01", DueTo: "2025-03-31"})
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(due1) != 1 || due1[0].AreaID != 1 {
		t.Fatalf("expected only the task with a due date, got %+v", due1)
	}
}

func TestService_RequiredAttributes(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(time.Now().UTC())
	keys, err := svc.RequiredAttributes(category.PrepareOrder.String())
	if err != nil {
		t.Fatalf("RequiredAttributes returned error: %v", err)
	}
	if len(keys) != 3 || keys[0] != "numeroPedido" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if _, err := svc.RequiredAttributes("x"); !errors.Is(err, category.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}
