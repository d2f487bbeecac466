package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/employee"
	"github.com/ogurasousui/logiflow/internal/core/task"
)

const legacyTasks = `[
  {
    "id": 1,
    "descripcion": "Ruta norte",
    "areaId": 1,
    "tipoTarea": "asignar_transportista",
    "empleadoId": 2,
    "atributos": {"transportista": "TransSur", "vehiculo": "AB123CD"},
    "prioridad": "alta",
    "estado": "pendiente",
    "fechaCreacion": "2025-03-01",
    "fechaVencimiento": "2025-03-10"
  },
  {
    "id": 4,
    "descripcion": "Conteo",
    "areaId": 2,
    "tipoTarea": "conteo_ciclico_inventario",
    "empleadoId": null,
    "atributos": {"ubicacion": "P3", "sku": "SKU-1", "cantidadContada": 40},
    "prioridad": "baja",
    "estado": "completada",
    "fechaCreacion": "2025-02-01T10:30:00.000Z"
  }
]`

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	return store
}

func writeRaw(t *testing.T, store *Store, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, name), []byte(content), 0o644))
}

func TestStore_MissingFilesReadAsEmpty(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	areas, err := store.References().ListAreas(ctx)
	require.NoError(t, err)
	assert.Empty(t, areas)

	tasks, err := store.Tasks().List(ctx, task.Criteria{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestEmployeeRepository_AssignsMaxPlusOne(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	repo := store.Employees()
	ctx := context.Background()

	hired := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	first, err := repo.Create(ctx, &domain.Employee{Name: "Ana", DNI: "12345678", AreaID: 1, RoleID: 1, HiredAt: hired, Active: true})
	require.NoError(t, err)
	second, err := repo.Create(ctx, &domain.Employee{Name: "Beto", DNI: "87654321", AreaID: 1, RoleID: 1, HiredAt: hired, Active: true})
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "2", second.ID)

	require.NoError(t, repo.Delete(ctx, first.ID))
	third, err := repo.Create(ctx, &domain.Employee{Name: "Caro", DNI: "11111111", AreaID: 1, RoleID: 1, HiredAt: hired})
	require.NoError(t, err)
	assert.Equal(t, "3", third.ID)

	raw, err := os.ReadFile(filepath.Join(store.dir, employeesFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"fechaIngreso": "2024-06-01"`)
	assert.Contains(t, string(raw), `"nombre": "Beto"`)

	matches, err := repo.ListByDNI(ctx, "87654321")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "2", matches[0].ID)

	active := true
	list, err := repo.List(ctx, employee.ListFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Beto", list[0].Name)
}

func TestEmployeeRepository_NotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	repo := store.Employees()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "42")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	_, err = repo.FindByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "42"), employee.ErrEmployeeNotFound)
	_, err = repo.Update(ctx, &domain.Employee{ID: "42"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestTaskRepository_ReadsLegacyLayout(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	writeRaw(t, store, tasksFile, legacyTasks)
	ctx := context.Background()

	found, err := store.Tasks().FindByID(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, found.EmployeeID)
	assert.Equal(t, "2", *found.EmployeeID)
	assert.Equal(t, domain.PriorityHigh, found.Priority)
	require.NotNil(t, found.DueAt)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *found.DueAt)

	other, err := store.Tasks().FindByID(ctx, "4")
	require.NoError(t, err)
	assert.Nil(t, other.EmployeeID)
	assert.Nil(t, other.DueAt)
	assert.Equal(t, 2025, other.CreatedAt.Year())

	due := task.NewCriteria(task.RawCriteria{DueFrom: "2025-03-01", DueTo: "2025-03-31"})
	matched, err := store.Tasks().List(ctx, due)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "1", matched[0].ID)

	early := task.NewCriteria(task.RawCriteria{DueFrom: "2025-03-01", DueTo: "2025-03-05"})
	matched, err = store.Tasks().List(ctx, early)
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestTaskRepository_CreateUpdateDelete(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	writeRaw(t, store, tasksFile, legacyTasks)
	repo := store.Tasks()
	ctx := context.Background()

	employeeID := "2"
	created, err := repo.Create(ctx, &domain.Task{
		Title:      "Preparar pedido",
		AreaID:     1,
		EmployeeID: &employeeID,
		Priority:   domain.PriorityMedium,
		Category:   "preparar_pedido",
		Attributes: map[string]any{"numeroPedido": "P-1", "cliente": "ACME", "items": []any{"a"}},
		Status:     domain.StatusPending,
		CreatedAt:  time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "5", created.ID)

	created.Status = domain.StatusInProgress
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestStore_LegacySource(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	require.NoError(t, store.WriteAreas([]domain.Area{{ID: 1, Name: "Logística"}, {ID: 2, Name: "Depósito"}}))
	require.NoError(t, store.WriteRoles([]domain.Role{{ID: 3, Name: "Chofer"}}))
	writeRaw(t, store, employeesFile, `[{"id": 2, "nombre": "Ana", "dni": "12345678", "email": null, "telefono": null, "areaId": 1, "rolId": 3, "fechaIngreso": "2023-01-15", "activo": true}]`)
	writeRaw(t, store, tasksFile, legacyTasks)
	ctx := context.Background()

	areas, err := store.ReadAreas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Area{{ID: 1, Name: "Logística"}, {ID: 2, Name: "Depósito"}}, areas)

	roles, err := store.ReadRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{{ID: 3, Name: "Chofer"}}, roles)

	employees, err := store.ReadEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, 2, employees[0].LegacyID)
	assert.Equal(t, "12345678", employees[0].Employee.DNI)

	tasks, err := store.ReadTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[0].LegacyEmployeeID)
	assert.Equal(t, 2, *tasks[0].LegacyEmployeeID)
	assert.Nil(t, tasks[0].Task.EmployeeID)
	assert.Nil(t, tasks[1].LegacyEmployeeID)
}

func TestEmployeeRepository_MissingActiveDefaultsToTrue(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	writeRaw(t, store, employeesFile, `[
  {"id": 1, "nombre": "Ana", "dni": "12345678", "areaId": 1, "rolId": 1, "fechaIngreso": "2024-01-01"},
  {"id": 2, "nombre": "Beto", "dni": "87654321", "areaId": 1, "rolId": 1, "fechaIngreso": "2024-01-01", "activo": false}
]`)
	ctx := context.Background()

	legacy, err := store.ReadEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, legacy, 2)
	assert.True(t, legacy[0].Employee.Active)
	assert.False(t, legacy[1].Employee.Active)

	got, err := store.Employees().FindByID(ctx, "1")
	require.NoError(t, err)
	assert.True(t, got.Active)

	active := true
	list, err := store.Employees().List(ctx, employee.ListFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].Name)
}
