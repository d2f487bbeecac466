package employee

import (
	"context"

	"github.com/ogurasousui/logiflow/internal/core/domain"
)

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
	ListByDNI(ctx context.Context, dni string) ([]*domain.Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Employee, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	AreaID *int
	RoleID *int
	Active *bool
}

// Matches は社員がフィルタ条件を満たすかを返します。
func (f ListFilter) Matches(e *domain.Employee) bool {
	if e == nil {
		return false
	}
	if f.AreaID != nil && e.AreaID != *f.AreaID {
		return false
	}
	if f.RoleID != nil && e.RoleID != *f.RoleID {
		return false
	}
	if f.Active != nil && e.Active != *f.Active {
		return false
	}
	return true
}
