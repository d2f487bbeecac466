package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/employee"
	pgdb "github.com/ogurasousui/logiflow/internal/platform/db/postgres"
)

const employeeColumns = `id, name, dni, email, phone, area_id, role_id, hired_at, active`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool  pgdb.Queryer
	newID func() string
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool, newID: uuid.NewString}
}

// Create は UUID を採番して社員を登録します。
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, name, dni, email, phone, area_id, role_id, hired_at, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+employeeColumns,
		r.newID(),
		e.Name,
		e.DNI,
		e.Email,
		e.Phone,
		e.AreaID,
		e.RoleID,
		dateOnly(e.HiredAt),
		e.Active,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err, employee.ErrEmployeeNotFound)
	}
	return created, nil
}

// Update は社員情報を更新します。入社日は更新しません。
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	if !validUUID(e.ID) {
		return nil, employee.ErrEmployeeNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET name = $1,
               dni = $2,
               email = $3,
               phone = $4,
               area_id = $5,
               role_id = $6,
               active = $7
         WHERE id = $8
        RETURNING `+employeeColumns,
		e.Name,
		e.DNI,
		e.Email,
		e.Phone,
		e.AreaID,
		e.RoleID,
		e.Active,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err, employee.ErrEmployeeNotFound)
	}
	return updated, nil
}

// Delete は社員を削除します。担当タスクの参照は NULL になります。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return employee.ErrEmployeeNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, employee.ErrEmployeeNotFound)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。UUID でない ID は存在しないものとして扱います。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	if !validUUID(id) {
		return nil, employee.ErrEmployeeNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err, employee.ErrEmployeeNotFound)
	}
	return found, nil
}

// ListByDNI は DNI が一致する社員を返します。
func (r *EmployeeRepository) ListByDNI(ctx context.Context, dni string) ([]*domain.Employee, error) {
	return r.query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE dni = $1
         ORDER BY created_at, id
    `, dni)
}

// List はフィルタに一致する社員を登録順に返します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*domain.Employee, error) {
	where, args := buildEmployeeWhere(filter)
	return r.query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees`+where+`
         ORDER BY created_at, id
    `, args...)
}

// Count は社員数を返します。
func (r *EmployeeRepository) Count(ctx context.Context) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, translatePgError(err, employee.ErrEmployeeNotFound)
	}
	return count, nil
}

func (r *EmployeeRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err, employee.ErrEmployeeNotFound)
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translatePgError(err, employee.ErrEmployeeNotFound)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, employee.ErrEmployeeNotFound)
	}
	return employees, nil
}

func buildEmployeeWhere(filter employee.ListFilter) (string, []any) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 3)

	if filter.AreaID != nil {
		args = append(args, *filter.AreaID)
		conditions = append(conditions, "area_id = $"+strconv.Itoa(len(args)))
	}
	if filter.RoleID != nil {
		args = append(args, *filter.RoleID)
		conditions = append(conditions, "role_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, "active = $"+strconv.Itoa(len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		e       domain.Employee
		email   sql.NullString
		phone   sql.NullString
		hiredAt time.Time
	)

	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.DNI,
		&email,
		&phone,
		&e.AreaID,
		&e.RoleID,
		&hiredAt,
		&e.Active,
	); err != nil {
		return nil, err
	}

	if email.Valid {
		v := email.String
		e.Email = &v
	}
	if phone.Valid {
		v := phone.String
		e.Phone = &v
	}
	e.HiredAt = dateOnly(hiredAt)
	return &e, nil
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
