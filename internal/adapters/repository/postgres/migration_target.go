package postgres

import (
	"context"
	"fmt"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/migration"
	"github.com/ogurasousui/logiflow/internal/core/task"
	pgdb "github.com/ogurasousui/logiflow/internal/platform/db/postgres"
)

// MigrationTarget は旧ストアからの移行先として PostgreSQL を扱います。
type MigrationTarget struct {
	pool      pgdb.Queryer
	tx        *pgdb.TransactionManager
	refs      *ReferenceRepository
	employees *EmployeeRepository
	tasks     *TaskRepository
}

var _ migration.Target = (*MigrationTarget)(nil)

// NewMigrationTarget は MigrationTarget を生成します。tx が nil の場合はトランザクションを張りません。
func NewMigrationTarget(pool pgdb.Queryer, tx *pgdb.TransactionManager) *MigrationTarget {
	return &MigrationTarget{
		pool:      pool,
		tx:        tx,
		refs:      NewReferenceRepository(pool),
		employees: NewEmployeeRepository(pool),
		tasks:     NewTaskRepository(pool),
	}
}

// Clear は 4 テーブルを空にします。
func (t *MigrationTarget) Clear(ctx context.Context) error {
	exec := pgdb.QueryerFromContext(ctx, t.pool)
	if _, err := exec.Exec(ctx, `TRUNCATE TABLE tasks, employees, roles, areas`); err != nil {
		return fmt.Errorf("postgres: truncate: %w", err)
	}
	return nil
}

// InsertAreas はエリアを一括登録します。
func (t *MigrationTarget) InsertAreas(ctx context.Context, areas []domain.Area) error {
	return t.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return t.refs.InsertAreas(txCtx, areas)
	})
}

// InsertRoles はロールを一括登録します。
func (t *MigrationTarget) InsertRoles(ctx context.Context, roles []domain.Role) error {
	return t.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return t.refs.InsertRoles(txCtx, roles)
	})
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

// CreateEmployee は社員を 1 件登録し、採番された ID を含めて返します。
func (t *MigrationTarget) CreateEmployee(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	return t.employees.Create(ctx, e)
}

func (t *MigrationTarget) FindEmployeeByID(ctx context.Context, id string) (*domain.Employee, error) {
	return t.employees.FindByID(ctx, id)
}

func (t *MigrationTarget) CountEmployees(ctx context.Context) (int, error) {
	return t.employees.Count(ctx)
}

// InsertTasks はタスクを 1 トランザクション内のバッチで一括登録します。
func (t *MigrationTarget) InsertTasks(ctx context.Context, tasks []*domain.Task) error {
	return t.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return t.tasks.InsertMany(txCtx, tasks)
	})
}

func (t *MigrationTarget) ListAllTasks(ctx context.Context) ([]*domain.Task, error) {
	return t.tasks.List(ctx, task.Criteria{})
}
