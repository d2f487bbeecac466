package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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

// Validator は社員の DNI・ロール・エリアを検証します。validation.Engine が実装します。
type Validator interface {
	ValidateEmployee(ctx context.Context, dni string, areaID, roleID int, excludeID *string) (*validation.Violation, error)
}

var fieldValidator = validator.New()

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	validator Validator
	clock     Clock
	tx        TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*domain.Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*domain.Employee, error)
	ListEmployees(ctx context.Context, filter ListFilter) ([]*domain.Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, v Validator, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, validator: v, clock: clock, tx: tx}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	Name    string
	DNI     string
	Email   *string
	Phone   *string
	AreaID  int
	RoleID  int
	HiredAt *time.Time
	Active  *bool
}

// UpdateEmployeeInput は社員更新時の入力です。ID と入社日は更新できません。
type UpdateEmployeeInput struct {
	ID       string
	Name     *string
	DNI      *string
	Email    *string
	EmailSet bool
	Phone    *string
	PhoneSet bool
	AreaID   *int
	RoleID   *int
	Active   *bool
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*domain.Employee, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	dni := strings.TrimSpace(in.DNI)

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	var created *domain.Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		v, err := s.validator.ValidateEmployee(txCtx, dni, in.AreaID, in.RoleID, nil)
		if err != nil {
			return err
		}
		if v != nil {
			return v
		}

		hiredAt := s.clock.Now()
		if in.HiredAt != nil {
			hiredAt = *in.HiredAt
		}

		result, err := s.repo.Create(txCtx, &domain.Employee{
			Name:    name,
			DNI:     dni,
			Email:   email,
			Phone:   normalizeOptional(in.Phone),
			AreaID:  in.AreaID,
			RoleID:  in.RoleID,
			HiredAt: hiredAt,
			Active:  active,
		})
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

// UpdateEmployee は社員情報を部分更新します。
// DNI・エリア・ロールのいずれかが指定された場合のみ、既存値と合成した値で再検証します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*domain.Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *domain.Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			existing.Name = name
		}

		if in.EmailSet {
			email, err := normalizeEmail(in.Email)
			if err != nil {
				return err
			}
			existing.Email = email
		}

		if in.PhoneSet {
			existing.Phone = normalizeOptional(in.Phone)
		}

		if in.DNI != nil || in.AreaID != nil || in.RoleID != nil {
			if in.DNI != nil {
				existing.DNI = strings.TrimSpace(*in.DNI)
			}
			if in.AreaID != nil {
				existing.AreaID = *in.AreaID
			}
			if in.RoleID != nil {
				existing.RoleID = *in.RoleID
			}

			self := existing.ID
			v, err := s.validator.ValidateEmployee(txCtx, existing.DNI, existing.AreaID, existing.RoleID, &self)
			if err != nil {
				return err
			}
			if v != nil {
				return v
			}
		}

		// TODO: 未完了タスクを持つ社員の無効化を拒否すべきか業務側と確認する。
		if in.Active != nil {
			existing.Active = *in.Active
		}

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

// DeleteEmployee は社員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*domain.Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *domain.Employee
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

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, filter ListFilter) ([]*domain.Employee, error) {
	var employees []*domain.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, err
	}

	return employees, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeEmail(raw *string) (*string, error) {
	email := normalizeOptional(raw)
	if email == nil {
		return nil, nil
	}
	lower := strings.ToLower(*email)
	if err := fieldValidator.Var(lower, "email"); err != nil {
		return nil, ErrInvalidEmail
	}
	return &lower, nil
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
