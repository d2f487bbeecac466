package task

import (
	"context"

	"github.com/ogurasousui/logiflow/internal/core/domain"
)

// Repository はタスク永続化の抽象です。List は Criteria をストアのクエリに変換して評価します。
type Repository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, criteria Criteria) ([]*domain.Task, error)
}
