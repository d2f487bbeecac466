package reference

import (
	"context"

	"github.com/ogurasousui/logiflow/internal/core/domain"
)

// AreaReader はエリア参照データの読み取り抽象です。
type AreaReader interface {
	FindAreaByID(ctx context.Context, id int) (*domain.Area, error)
	ListAreas(ctx context.Context) ([]domain.Area, error)
}

// RoleReader はロール参照データの読み取り抽象です。
type RoleReader interface {
	FindRoleByID(ctx context.Context, id int) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

// EmployeeReader は社員の読み取り抽象です。
type EmployeeReader interface {
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
}

// Resolver は参照 ID を現在のストア上のレコードへ解決します。
// キャッシュは持たず、毎回ストアへ問い合わせます。
type Resolver struct {
	areas     AreaReader
	roles     RoleReader
	employees EmployeeReader
}

// NewResolver は Resolver を生成します。
func NewResolver(areas AreaReader, roles RoleReader, employees EmployeeReader) *Resolver {
	return &Resolver{areas: areas, roles: roles, employees: employees}
}

// ResolveArea はエリアを取得します。存在しない場合は domain.ErrAreaNotFound を返します。
func (r *Resolver) ResolveArea(ctx context.Context, id int) (*domain.Area, error) {
	if id <= 0 {
		return nil, domain.ErrAreaNotFound
	}
	return r.areas.FindAreaByID(ctx, id)
}

// ResolveRole はロールを取得します。存在しない場合は domain.ErrRoleNotFound を返します。
func (r *Resolver) ResolveRole(ctx context.Context, id int) (*domain.Role, error) {
	if id <= 0 {
		return nil, domain.ErrRoleNotFound
	}
	return r.roles.FindRoleByID(ctx, id)
}

// ResolveEmployee は社員を取得します。存在しない場合は domain.ErrEmployeeNotFound を返します。
func (r *Resolver) ResolveEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	if id == "" {
		return nil, domain.ErrEmployeeNotFound
	}
	return r.employees.FindByID(ctx, id)
}

// Areas はエリア一覧を返します。
func (r *Resolver) Areas(ctx context.Context) ([]domain.Area, error) {
	return r.areas.ListAreas(ctx)
}

// Roles はロール一覧を返します。
func (r *Resolver) Roles(ctx context.Context) ([]domain.Role, error) {
	return r.roles.ListRoles(ctx)
}
