package task

import (
	"errors"

	"github.com/ogurasousui/logiflow/internal/core/domain"
)

var (
	ErrInvalidID       = errors.New("task: invalid id")
	ErrInvalidTitle    = errors.New("task: invalid title")
	ErrInvalidPriority = errors.New("task: invalid priority")
	ErrInvalidStatus   = errors.New("task: invalid status")
	ErrTaskNotFound    = domain.ErrTaskNotFound
)
