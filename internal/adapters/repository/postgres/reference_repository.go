package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	pgdb "github.com/ogurasousui/logiflow/internal/platform/db/postgres"
)

// ReferenceRepository はエリアとロールの参照データを読み取ります。
type ReferenceRepository struct {
	pool pgdb.Queryer
}

// NewReferenceRepository は ReferenceRepository を生成します。
func NewReferenceRepository(pool pgdb.Queryer) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

// FindAreaByID はエリアを取得します。
func (r *ReferenceRepository) FindAreaByID(ctx context.Context, id int) (*domain.Area, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var area domain.Area
	if err := exec.QueryRow(ctx, `SELECT id, name FROM areas WHERE id = $1`, id).Scan(&area.ID, &area.Name); err != nil {
		return nil, translatePgError(err, domain.ErrAreaNotFound)
	}
	return &area, nil
}

// ListAreas はエリアを ID 順に返します。
func (r *ReferenceRepository) ListAreas(ctx context.Context) ([]domain.Area, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id, name FROM areas ORDER BY id`)
	if err != nil {
		return nil, translatePgError(err, domain.ErrAreaNotFound)
	}
	areas, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Area, error) {
		var a domain.Area
		err := row.Scan(&a.ID, &a.Name)
		return a, err
	})
	if err != nil {
		return nil, translatePgError(err, domain.ErrAreaNotFound)
	}
	return areas, nil
}

// FindRoleByID はロールを取得します。
func (r *ReferenceRepository) FindRoleByID(ctx context.Context, id int) (*domain.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var role domain.Role
	if err := exec.QueryRow(ctx, `SELECT id, name FROM roles WHERE id = $1`, id).Scan(&role.ID, &role.Name); err != nil {
		return nil, translatePgError(err, domain.ErrRoleNotFound)
	}
	return &role, nil
}

// ListRoles はロールを ID 順に返します。
func (r *ReferenceRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, translatePgError(err, domain.ErrRoleNotFound)
	}
	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Role, error) {
		var r domain.Role
		err := row.Scan(&r.ID, &r.Name)
		return r, err
	})
	if err != nil {
		return nil, translatePgError(err, domain.ErrRoleNotFound)
	}
	return roles, nil
}

// InsertAreas はエリアを ID を保ったまま登録します。
func (r *ReferenceRepository) InsertAreas(ctx context.Context, areas []domain.Area) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, a := range areas {
		if _, err := exec.Exec(ctx, `INSERT INTO areas (id, name) VALUES ($1, $2)`, a.ID, a.Name); err != nil {
			return translatePgError(err, domain.ErrAreaNotFound)
		}
	}
	return nil
}

// InsertRoles はロールを ID を保ったまま登録します。
func (r *ReferenceRepository) InsertRoles(ctx context.Context, roles []domain.Role) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	for _, role := range roles {
		if _, err := exec.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2)`, role.ID, role.Name); err != nil {
			return translatePgError(err, domain.ErrRoleNotFound)
		}
	}
	return nil
}
