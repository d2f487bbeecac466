package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/reference"
	"github.com/ogurasousui/logiflow/internal/core/validation"
)

// Stage は移行手順の段階名です。
type Stage string

const (
	StageClear             Stage = "clear"
	StageReferenceCopy     Stage = "reference-copy"
	StageEmployeeMigration Stage = "employee-migration"
	StageTaskMigration     Stage = "task-migration"
	StageVerification      Stage = "verification"
)

// ErrMigrationStageFailure はいずれかの段階で移行が中断したことを表します。
var ErrMigrationStageFailure = errors.New("migration stage failure")

// StageError は失敗した段階と、特定できる場合は処理中のレコードを保持します。
type StageError struct {
	Stage    Stage
	RecordID string
	Err      error
}

func (e *StageError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("migration failed at %s (record %s): %v", e.Stage, e.RecordID, e.Err)
	}
	return fmt.Sprintf("migration failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{ErrMigrationStageFailure, e.Err}
}

// LegacyEmployee は旧ストアの社員と、その整数 ID です。
type LegacyEmployee struct {
	LegacyID int
	Employee *domain.Employee
}

// LegacyTask は旧ストアのタスクです。担当者参照は旧ストアの整数 ID のまま保持します。
type LegacyTask struct {
	LegacyID         int
	LegacyEmployeeID *int
	Task             *domain.Task
}

// LegacySource は旧ストアの全件読み出しを提供します。
type LegacySource interface {
	ReadAreas(ctx context.Context) ([]domain.Area, error)
	ReadRoles(ctx context.Context) ([]domain.Role, error)
	ReadEmployees(ctx context.Context) ([]LegacyEmployee, error)
	ReadTasks(ctx context.Context) ([]LegacyTask, error)
}

// Target は移行先ストアです。
type Target interface {
	reference.AreaReader
	reference.RoleReader
	validation.DNILookup

	Clear(ctx context.Context) error
	InsertAreas(ctx context.Context, areas []domain.Area) error
	InsertRoles(ctx context.Context, roles []domain.Role) error
	CreateEmployee(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	FindEmployeeByID(ctx context.Context, id string) (*domain.Employee, error)
	CountEmployees(ctx context.Context) (int, error)
	InsertTasks(ctx context.Context, tasks []*domain.Task) error
	ListAllTasks(ctx context.Context) ([]*domain.Task, error)
}

// Report は移行結果の件数です。
type Report struct {
	AreasCopied            int
	RolesCopied            int
	EmployeesMigrated      int
	TasksMigrated          int
	OrphanedTaskReferences int
}

// IDMap は旧社員 ID から移行先 ID への対応表です。1 回の実行内でのみ有効です。
type IDMap map[int]string

// Migrator は旧ストアから移行先ストアへの一括移行を行います。
type Migrator struct {
	logger logrus.FieldLogger
}

// NewMigrator は Migrator を生成します。logger が nil の場合は標準ロガーを使います。
func NewMigrator(logger logrus.FieldLogger) *Migrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Migrator{logger: logger}
}

// Migrate は既定のロガーで移行を実行します。
func Migrate(ctx context.Context, src LegacySource, dst Target) (*Report, error) {
	return NewMigrator(nil).Migrate(ctx, src, dst)
}

// Migrate は移行先をクリアした上で、参照データ、社員、タスクの順に移行し、件数を検証します。
// 失敗時は途中までの状態が残ります。再実行は最初の段階からやり直します。
func (m *Migrator) Migrate(ctx context.Context, src LegacySource, dst Target) (*Report, error) {
	report := &Report{}
	engine := validation.NewEngine(reference.NewResolver(dst, dst, employeeReader{dst}), dst)

	m.logger.WithField("stage", StageClear).Info("clearing target collections")
	if err := dst.Clear(ctx); err != nil {
		return nil, &StageError{Stage: StageClear, Err: err}
	}

	if err := m.copyReferences(ctx, src, dst, report); err != nil {
		return nil, err
	}

	idMap := make(IDMap)
	if err := m.migrateEmployees(ctx, src, dst, engine, idMap, report); err != nil {
		return nil, err
	}

	if err := m.migrateTasks(ctx, src, dst, engine, idMap, report); err != nil {
		return nil, err
	}

	if err := m.verify(ctx, dst, engine, report); err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"areas":     report.AreasCopied,
		"roles":     report.RolesCopied,
		"employees": report.EmployeesMigrated,
		"tasks":     report.TasksMigrated,
		"orphaned":  report.OrphanedTaskReferences,
	}).Info("migration completed")

	return report, nil
}

func (m *Migrator) copyReferences(ctx context.Context, src LegacySource, dst Target, report *Report) error {
	areas, err := src.ReadAreas(ctx)
	if err != nil {
		return &StageError{Stage: StageReferenceCopy, Err: fmt.Errorf("read areas: %w", err)}
	}
	if err := dst.InsertAreas(ctx, areas); err != nil {
		return &StageError{Stage: StageReferenceCopy, Err: fmt.Errorf("insert areas: %w", err)}
	}

	roles, err := src.ReadRoles(ctx)
	if err != nil {
		return &StageError{Stage: StageReferenceCopy, Err: fmt.Errorf("read roles: %w", err)}
	}
	if err := dst.InsertRoles(ctx, roles); err != nil {
		return &StageError{Stage: StageReferenceCopy, Err: fmt.Errorf("insert roles: %w", err)}
	}

	report.AreasCopied = len(areas)
	report.RolesCopied = len(roles)
	m.logger.WithFields(logrus.Fields{
		"stage": StageReferenceCopy,
		"areas": len(areas),
		"roles": len(roles),
	}).Info("reference data copied")
	return nil
}

// migrateEmployees は社員を旧ストアの順序で 1 件ずつ作成し、idMap に新 ID を記録します。
func (m *Migrator) migrateEmployees(ctx context.Context, src LegacySource, dst Target, engine *validation.Engine, idMap IDMap, report *Report) error {
	employees, err := src.ReadEmployees(ctx)
	if err != nil {
		return &StageError{Stage: StageEmployeeMigration, Err: fmt.Errorf("read employees: %w", err)}
	}

	for _, legacy := range employees {
		recordID := fmt.Sprintf("empleado:%d", legacy.LegacyID)
		if legacy.Employee == nil {
			return &StageError{Stage: StageEmployeeMigration, RecordID: recordID, Err: errors.New("empty record")}
		}

		e := legacy.Employee
		v, err := engine.ValidateEmployee(ctx, e.DNI, e.AreaID, e.RoleID, nil)
		if err != nil {
			return &StageError{Stage: StageEmployeeMigration, RecordID: recordID, Err: err}
		}
		if v != nil {
			return &StageError{Stage: StageEmployeeMigration, RecordID: recordID, Err: v}
		}

		candidate := e.Clone()
		candidate.ID = ""
		created, err := dst.CreateEmployee(ctx, candidate)
		if err != nil {
			return &StageError{Stage: StageEmployeeMigration, RecordID: recordID, Err: err}
		}

		idMap[legacy.LegacyID] = created.ID
		report.EmployeesMigrated++
	}

	m.logger.WithFields(logrus.Fields{
		"stage":     StageEmployeeMigration,
		"employees": report.EmployeesMigrated,
	}).Info("employees migrated")
	return nil
}

// migrateTasks は担当者参照を idMap で置き換え、全タスクを一括で挿入します。
// 対応する社員がない参照は未割り当てとして扱い、件数を数えます。
func (m *Migrator) migrateTasks(ctx context.Context, src LegacySource, dst Target, engine *validation.Engine, idMap IDMap, report *Report) error {
	legacyTasks, err := src.ReadTasks(ctx)
	if err != nil {
		return &StageError{Stage: StageTaskMigration, Err: fmt.Errorf("read tasks: %w", err)}
	}

	tasks := make([]*domain.Task, 0, len(legacyTasks))
	orphaned := 0
	for _, legacy := range legacyTasks {
		recordID := fmt.Sprintf("tarea:%d", legacy.LegacyID)
		if legacy.Task == nil {
			return &StageError{Stage: StageTaskMigration, RecordID: recordID, Err: errors.New("empty record")}
		}

		t := legacy.Task.Clone()
		t.ID = ""
		t.EmployeeID = nil
		if legacy.LegacyEmployeeID != nil {
			if newID, ok := idMap[*legacy.LegacyEmployeeID]; ok {
				t.EmployeeID = &newID
			} else {
				orphaned++
				m.logger.WithFields(logrus.Fields{
					"stage":       StageTaskMigration,
					"record":      recordID,
					"empleado_id": *legacy.LegacyEmployeeID,
				}).Warn("orphaned employee reference dropped")
			}
		}

		if v := engine.ValidateTaskAttributes(t.Category, t.Attributes); v != nil {
			return &StageError{Stage: StageTaskMigration, RecordID: recordID, Err: v}
		}
		v, err := engine.ValidateTaskReferences(ctx, t.AreaID, nil)
		if err != nil {
			return &StageError{Stage: StageTaskMigration, RecordID: recordID, Err: err}
		}
		if v != nil {
			return &StageError{Stage: StageTaskMigration, RecordID: recordID, Err: v}
		}

		tasks = append(tasks, t)
	}

	if len(tasks) > 0 {
		if err := dst.InsertTasks(ctx, tasks); err != nil {
			return &StageError{Stage: StageTaskMigration, Err: err}
		}
	}

	report.TasksMigrated = len(tasks)
	report.OrphanedTaskReferences = orphaned
	m.logger.WithFields(logrus.Fields{
		"stage":    StageTaskMigration,
		"tasks":    len(tasks),
		"orphaned": orphaned,
	}).Info("tasks migrated")
	return nil
}

func (m *Migrator) verify(ctx context.Context, dst Target, engine *validation.Engine, report *Report) error {
	employees, err := dst.CountEmployees(ctx)
	if err != nil {
		return &StageError{Stage: StageVerification, Err: err}
	}
	if employees != report.EmployeesMigrated {
		return &StageError{Stage: StageVerification, Err: fmt.Errorf("employee count mismatch: stored %d, migrated %d", employees, report.EmployeesMigrated)}
	}

	tasks, err := dst.ListAllTasks(ctx)
	if err != nil {
		return &StageError{Stage: StageVerification, Err: err}
	}
	if len(tasks) != report.TasksMigrated {
		return &StageError{Stage: StageVerification, Err: fmt.Errorf("task count mismatch: stored %d, migrated %d", len(tasks), report.TasksMigrated)}
	}

	for _, t := range tasks {
		v, err := engine.ValidateTaskReferences(ctx, t.AreaID, t.EmployeeID)
		if err != nil {
			return &StageError{Stage: StageVerification, RecordID: t.ID, Err: err}
		}
		if v != nil {
			return &StageError{Stage: StageVerification, RecordID: t.ID, Err: v}
		}
	}

	m.logger.WithField("stage", StageVerification).Info("target verified")
	return nil
}

type employeeReader struct {
	target Target
}

func (r employeeReader) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	return r.target.FindEmployeeByID(ctx, id)
}
