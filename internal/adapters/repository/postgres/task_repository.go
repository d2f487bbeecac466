package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/task"
	pgdb "github.com/ogurasousui/logiflow/internal/platform/db/postgres"
)

const taskColumns = `id, title, description, area_id, employee_id, priority, category, attributes, status, created_at, assigned_at, due_at, completed_at`

// TaskRepository は PostgreSQL を利用したタスク永続化の実装です。属性は JSONB で保持します。
type TaskRepository struct {
	pool  pgdb.Queryer
	newID func() string
}

var _ task.Repository = (*TaskRepository)(nil)

// NewTaskRepository は TaskRepository を生成します。
func NewTaskRepository(pool pgdb.Queryer) *TaskRepository {
	return &TaskRepository{pool: pool, newID: uuid.NewString}
}

const insertTaskSQL = `
        INSERT INTO tasks (id, title, description, area_id, employee_id, priority, category, attributes, status, created_at, assigned_at, due_at, completed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// batchSender は pgxpool.Pool と pgx.Tx が満たすバッチ送信のインターフェースです。
type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Create は UUID を採番してタスクを登録します。
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	args, err := r.insertArgs(t)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, insertTaskSQL+`
        RETURNING `+taskColumns, args...)

	created, err := scanTask(row)
	if err != nil {
		return nil, translatePgError(err, task.ErrTaskNotFound)
	}
	return created, nil
}

// InsertMany はタスクを 1 回のバッチで登録します。
// 途中で失敗した場合は最初のエラーを返すため、呼び出し側のトランザクションで巻き戻してください。
func (r *TaskRepository) InsertMany(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	sender, ok := pgdb.QueryerFromContext(ctx, r.pool).(batchSender)
	if !ok {
		return fmt.Errorf("postgres: queryer does not support batches")
	}

	batch := &pgx.Batch{}
	for _, t := range tasks {
		args, err := r.insertArgs(t)
		if err != nil {
			return err
		}
		batch.Queue(insertTaskSQL, args...)
	}

	results := sender.SendBatch(ctx, batch)
	for range tasks {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return translatePgError(err, task.ErrTaskNotFound)
		}
	}
	if err := results.Close(); err != nil {
		return translatePgError(err, task.ErrTaskNotFound)
	}
	return nil
}

func (r *TaskRepository) insertArgs(t *domain.Task) ([]any, error) {
	attrs, err := encodeAttributes(t.Attributes)
	if err != nil {
		return nil, err
	}
	return []any{
		r.newID(),
		t.Title,
		t.Description,
		t.AreaID,
		t.EmployeeID,
		string(t.Priority),
		t.Category,
		attrs,
		string(t.Status),
		t.CreatedAt,
		t.AssignedAt,
		t.DueAt,
		t.CompletedAt,
	}, nil
}

// Update はタスクを更新します。作成日時は更新しません。
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if !validUUID(t.ID) {
		return nil, task.ErrTaskNotFound
	}

	attrs, err := encodeAttributes(t.Attributes)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE tasks
           SET title = $1,
               description = $2,
               area_id = $3,
               employee_id = $4,
               priority = $5,
               category = $6,
               attributes = $7,
               status = $8,
               assigned_at = $9,
               due_at = $10,
               completed_at = $11
         WHERE id = $12
        RETURNING `+taskColumns,
		t.Title,
		t.Description,
		t.AreaID,
		t.EmployeeID,
		string(t.Priority),
		t.Category,
		attrs,
		string(t.Status),
		t.AssignedAt,
		t.DueAt,
		t.CompletedAt,
		t.ID,
	)

	updated, err := scanTask(row)
	if err != nil {
		return nil, translatePgError(err, task.ErrTaskNotFound)
	}
	return updated, nil
}

// Delete はタスクを削除します。
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return task.ErrTaskNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return translatePgError(err, task.ErrTaskNotFound)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// FindByID は ID でタスクを取得します。
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	if !validUUID(id) {
		return nil, task.ErrTaskNotFound
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+taskColumns+`
          FROM tasks
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanTask(row)
	if err != nil {
		return nil, translatePgError(err, task.ErrTaskNotFound)
	}
	return found, nil
}

// List は Criteria を WHERE 句に変換してタスクを取得します。
// NULL の日時列は範囲条件に一致しないため、日時を持たないタスクは除外されます。
func (r *TaskRepository) List(ctx context.Context, criteria task.Criteria) ([]*domain.Task, error) {
	where, args := buildTaskWhere(criteria)
	query := `
        SELECT ` + taskColumns + `
          FROM tasks` + where + `
         ORDER BY created_at, id
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err, task.ErrTaskNotFound)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, translatePgError(err, task.ErrTaskNotFound)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, translatePgError(err, task.ErrTaskNotFound)
	}
	return tasks, nil
}

func buildTaskWhere(c task.Criteria) (string, []any) {
	args := make([]any, 0, 9)
	conditions := make([]string, 0, 9)

	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, condition+" $"+strconv.Itoa(len(args)))
	}

	if c.AreaID != nil {
		add("area_id =", *c.AreaID)
	}
	if c.Status != nil {
		add("status =", string(*c.Status))
	}
	if c.Priority != nil {
		add("priority =", string(*c.Priority))
	}

	ranges := []struct {
		column string
		r      task.DateRange
	}{
		{"created_at", c.Created},
		{"due_at", c.Due},
		{"completed_at", c.Completed},
	}
	for _, dr := range ranges {
		if dr.r.From != nil {
			add(dr.column+" >=", *dr.r.From)
		}
		if dr.r.To != nil {
			add(dr.column+" <=", *dr.r.To)
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t           domain.Task
		employeeID  sql.NullString
		priority    string
		status      string
		attrs       []byte
		assignedAt  sql.NullTime
		dueAt       sql.NullTime
		completedAt sql.NullTime
	)

	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.AreaID,
		&employeeID,
		&priority,
		&t.Category,
		&attrs,
		&status,
		&t.CreatedAt,
		&assignedAt,
		&dueAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	if employeeID.Valid {
		id := employeeID.String
		t.EmployeeID = &id
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.AssignedAt = nullTimePtr(assignedAt)
	t.DueAt = nullTimePtr(dueAt)
	t.CompletedAt = nullTimePtr(completedAt)

	t.Attributes = map[string]any{}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &t.Attributes); err != nil {
			return nil, fmt.Errorf("postgres: decode attributes: %w", err)
		}
	}
	return &t, nil
}

func encodeAttributes(attrs map[string]any) ([]byte, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("postgres: encode attributes: %w", err)
	}
	return data, nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}
