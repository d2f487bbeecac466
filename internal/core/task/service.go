package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/logiflow/internal/core/category"
	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/validation"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Validator はタスクの属性と参照を検証します。validation.Engine が実装します。
type Validator interface {
	ValidateTaskAttributes(category string, attrs map[string]any) *validation.Violation
	ValidateTaskReferences(ctx context.Context, areaID int, employeeID *string) (*validation.Violation, error)
}

// Service はタスクに関するユースケースをまとめます。
type Service struct {
	repo      Repository
	validator Validator
	clock     Clock
	tx        TransactionManager
}

// UseCase はタスクユースケースの公開インターフェースです。
type UseCase interface {
	CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, in GetTaskInput) (*domain.Task, error)
	ListTasks(ctx context.Context, in RawCriteria) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, in UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, in DeleteTaskInput) error
	RequiredAttributes(categoryName string) ([]string, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, validator Validator, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, validator: validator, clock: clock, tx: tx}
}

// CreateTaskInput はタスク作成時の入力です。
type CreateTaskInput struct {
	Title       string
	Description string
	AreaID      int
	EmployeeID  *string
	Priority    domain.Priority
	Category    string
	Attributes  map[string]any
	Status      *domain.Status
	AssignedAt  *time.Time
	DueAt       *time.Time
	CompletedAt *time.Time
}

// UpdateTaskInput はタスク更新時の入力です。nil のフィールドは変更しません。
// ID と作成日時は更新できません。
type UpdateTaskInput struct {
	ID             string
	Title          *string
	Description    *string
	AreaID         *int
	EmployeeID     *string
	EmployeeIDSet  bool
	Priority       *domain.Priority
	Category       *string
	Attributes     map[string]any
	Status         *domain.Status
	AssignedAt     *time.Time
	AssignedAtSet  bool
	DueAt          *time.Time
	DueAtSet       bool
	CompletedAt    *time.Time
	CompletedAtSet bool
}

// GetTaskInput はタスク取得時の入力です。
type GetTaskInput struct {
	ID string
}

// DeleteTaskInput はタスク削除時の入力です。
type DeleteTaskInput struct {
	ID string
}

// RequiredAttributes はカテゴリに必要な属性キーを返します。
func (s *Service) RequiredAttributes(categoryName string) ([]string, error) {
	return category.RequiredAttributes(categoryName)
}

// CreateTask は新しいタスクを作成します。
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	if !in.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	status := domain.StatusPending
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	categoryName := strings.TrimSpace(in.Category)
	if v := s.validator.ValidateTaskAttributes(categoryName, in.Attributes); v != nil {
		return nil, v
	}

	employeeID := normalizeOptionalID(in.EmployeeID)

	var created *domain.Task
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		v, err := s.validator.ValidateTaskReferences(txCtx, in.AreaID, employeeID)
		if err != nil {
			return err
		}
		if v != nil {
			return v
		}

		now := s.clock.Now()
		t := &domain.Task{
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			AreaID:      in.AreaID,
			EmployeeID:  employeeID,
			Priority:    in.Priority,
			Category:    categoryName,
			Attributes:  copyAttributes(in.Attributes),
			Status:      status,
			CreatedAt:   now,
			AssignedAt:  cloneTime(in.AssignedAt),
			DueAt:       cloneTime(in.DueAt),
			CompletedAt: cloneTime(in.CompletedAt),
		}
		stampLifecycle(t, nil, now)

		result, err := s.repo.Create(txCtx, t)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateTask はタスクを部分更新します。
// 属性はカテゴリを変更しない場合も現在のカテゴリのスキーマで検証します。
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (*domain.Task, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *domain.Task
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		before := existing.Clone()

		if in.Title != nil {
			title, err := normalizeTitle(*in.Title)
			if err != nil {
				return err
			}
			existing.Title = title
		}

		if in.Description != nil {
			existing.Description = strings.TrimSpace(*in.Description)
		}

		if in.Priority != nil {
			if !in.Priority.Valid() {
				return ErrInvalidPriority
			}
			existing.Priority = *in.Priority
		}

		if in.Status != nil {
			if !in.Status.Valid() {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		if in.Category != nil || in.Attributes != nil {
			if in.Category != nil {
				existing.Category = strings.TrimSpace(*in.Category)
			}
			if in.Attributes != nil {
				existing.Attributes = copyAttributes(in.Attributes)
			}
			if v := s.validator.ValidateTaskAttributes(existing.Category, existing.Attributes); v != nil {
				return v
			}
		}

		if in.AreaID != nil || in.EmployeeIDSet {
			if in.AreaID != nil {
				existing.AreaID = *in.AreaID
			}
			if in.EmployeeIDSet {
				existing.EmployeeID = normalizeOptionalID(in.EmployeeID)
			}
			v, err := s.validator.ValidateTaskReferences(txCtx, existing.AreaID, existing.EmployeeID)
			if err != nil {
				return err
			}
			if v != nil {
				return v
			}
		}

		if in.AssignedAtSet {
			existing.AssignedAt = cloneTime(in.AssignedAt)
		}
		if in.DueAtSet {
			existing.DueAt = cloneTime(in.DueAt)
		}
		if in.CompletedAtSet {
			existing.CompletedAt = cloneTime(in.CompletedAt)
		}

		stampLifecycle(existing, before, s.clock.Now())

		existing.ID = before.ID
		existing.CreatedAt = before.CreatedAt

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTask はタスクを削除します。
func (s *Service) DeleteTask(ctx context.Context, in DeleteTaskInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetTask はタスクを取得します。
func (s *Service) GetTask(ctx context.Context, in GetTaskInput) (*domain.Task, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *domain.Task
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListTasks は条件に一致するタスクを取得します。不正な条件値は無視されます。
func (s *Service) ListTasks(ctx context.Context, in RawCriteria) ([]*domain.Task, error) {
	criteria := NewCriteria(in)

	var tasks []*domain.Task
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, criteria)
		if err != nil {
			return err
		}
		tasks = found
		return nil
	}); err != nil {
		return nil, err
	}

	return tasks, nil
}

// stampLifecycle は担当者の割り当てと完了に伴う日時を補完します。
func stampLifecycle(t, before *domain.Task, now time.Time) {
	assignedChanged := t.EmployeeID != nil && (before == nil || before.EmployeeID == nil || *before.EmployeeID != *t.EmployeeID)
	if assignedChanged && (t.AssignedAt == nil || (before != nil && sameTime(t.AssignedAt, before.AssignedAt))) {
		at := now
		t.AssignedAt = &at
	}
	if t.Status == domain.StatusCompleted && t.CompletedAt == nil {
		at := now
		t.CompletedAt = &at
	}
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func normalizeTitle(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidTitle
	}
	return trimmed, nil
}

func normalizeOptionalID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func copyAttributes(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
