package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/task"
)

var taskRowColumns = []string{"id", "title", "description", "area_id", "employee_id", "priority", "category", "attributes", "status", "created_at", "assigned_at", "due_at", "completed_at"}

const taskID = "0b8f3c1d-2a4e-4f6a-8b9c-1d2e3f4a5b6c"

func TestBuildTaskWhere(t *testing.T) {
	t.Parallel()

	criteria := task.NewCriteria(task.RawCriteria{
		AreaID:   "2",
		Status:   "pendiente",
		Priority: "desconocida",
		DueFrom:  "2025-03-01",
		DueTo:    "2025-03-31",
	})

	where, args := buildTaskWhere(criteria)

	want := " WHERE area_id = $1 AND status = $2 AND due_at >= $3 AND due_at <= $4"
	if where != want {
		t.Fatalf("unexpected where clause:\n got: %q\nwant: %q", where, want)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	if args[0] != 2 || args[1] != "pendiente" {
		t.Fatalf("unexpected args: %v", args)
	}
	if !args[3].(time.Time).Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected upper bound: %v", args[3])
	}
}

func TestTaskRepository_List(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)FROM tasks WHERE due_at >= \$1 AND due_at <= \$2\s+ORDER BY created_at, id`).
		WithArgs(from, to).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow(taskID, "Ruta norte", "", 1, nil, "alta", "asignar_transportista",
				[]byte(`{"transportista":"TransSur","vehiculo":"AB123CD"}`), "pendiente", created, nil, due, nil))

	repo := NewTaskRepository(mock)
	tasks, err := repo.List(context.Background(), task.Criteria{Due: task.DateRange{From: &from, To: &to}})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.EmployeeID != nil {
		t.Fatalf("expected no employee, got %v", *got.EmployeeID)
	}
	if got.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected priority %q", got.Priority)
	}
	if got.Attributes["vehiculo"] != "AB123CD" {
		t.Fatalf("unexpected attributes %v", got.Attributes)
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("unexpected due date %v", got.DueAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTaskRepository(mock)
	repo.newID = func() string { return taskID }

	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	attrs := []byte(`{"cliente":"ACME","items":2,"numeroPedido":"P-1"}`)

	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(taskID, "Preparar pedido", "", 1, (*string)(nil), "media", "preparar_pedido", attrs, "pendiente",
			created, (*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil)).
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow(taskID, "Preparar pedido", "", 1, nil, "media", "preparar_pedido", attrs, "pendiente", created, nil, nil, nil))

	result, err := repo.Create(context.Background(), &domain.Task{
		Title:      "Preparar pedido",
		AreaID:     1,
		Priority:   domain.PriorityMedium,
		Category:   "preparar_pedido",
		Attributes: map[string]any{"numeroPedido": "P-1", "cliente": "ACME", "items": 2},
		Status:     domain.StatusPending,
		CreatedAt:  created,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if result.ID != taskID {
		t.Fatalf("expected id %s, got %s", taskID, result.ID)
	}
	if result.Attributes["items"] != float64(2) {
		t.Fatalf("expected decoded attributes, got %v", result.Attributes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
