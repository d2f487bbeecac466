package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/migration"
	"github.com/ogurasousui/logiflow/internal/core/task"
)

// MigrationTarget は旧ストアからの移行先として MongoDB を扱います。
type MigrationTarget struct {
	store     *Store
	refs      *ReferenceRepository
	employees *EmployeeRepository
	tasks     *TaskRepository
}

var _ migration.Target = (*MigrationTarget)(nil)

// NewMigrationTarget は MigrationTarget を生成します。
func NewMigrationTarget(store *Store) *MigrationTarget {
	return &MigrationTarget{
		store:     store,
		refs:      store.References(),
		employees: store.Employees(),
		tasks:     store.Tasks(),
	}
}

// Clear は 4 コレクションの全ドキュメントを削除します。インデックスは残します。
func (t *MigrationTarget) Clear(ctx context.Context) error {
	for _, name := range []string{tasksCollection, employeesCollection, rolesCollection, areasCollection} {
		if _, err := t.store.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("mongodb: clear %s: %w", name, err)
		}
	}
	return nil
}

func (t *MigrationTarget) InsertAreas(ctx context.Context, areas []domain.Area) error {
	return t.refs.InsertAreas(ctx, areas)
}

func (t *MigrationTarget) InsertRoles(ctx context.Context, roles []domain.Role) error {
	return t.refs.InsertRoles(ctx, roles)
}

func (t *MigrationTarget) FindAreaByID(ctx context.Context, id int) (*domain.Area, error) {
	return t.refs.FindAreaByID(ctx, id)
}

func (t *MigrationTarget) ListAreas(ctx context.Context) ([]domain.Area, error) {
	return t.refs.ListAreas(ctx)
}

func (t *MigrationTarget) FindRoleByID(ctx context.Context, id int) (*domain.Role, error) {
	return t.refs.FindRoleByID(ctx, id)
}

func (t *MigrationTarget) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return t.refs.ListRoles(ctx)
}

func (t *MigrationTarget) ListByDNI(ctx context.Context, dni string) ([]*domain.Employee, error) {
	return t.employees.ListByDNI(ctx, dni)
}

func (t *MigrationTarget) CreateEmployee(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	return t.employees.Create(ctx, e)
}

func (t *MigrationTarget) FindEmployeeByID(ctx context.Context, id string) (*domain.Employee, error) {
	return t.employees.FindByID(ctx, id)
}

func (t *MigrationTarget) CountEmployees(ctx context.Context) (int, error) {
	return t.employees.Count(ctx)
}

// InsertTasks は InsertMany でタスクを一括登録します。
func (t *MigrationTarget) InsertTasks(ctx context.Context, tasks []*domain.Task) error {
	return t.tasks.InsertMany(ctx, tasks)
}

func (t *MigrationTarget) ListAllTasks(ctx context.Context) ([]*domain.Task, error) {
	return t.tasks.List(ctx, task.Criteria{})
}
