package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound は参照先レコードが存在しないことを表します。
var ErrNotFound = errors.New("not found")

var (
	ErrEmployeeNotFound = fmt.Errorf("employee: %w", ErrNotFound)
	ErrTaskNotFound     = fmt.Errorf("task: %w", ErrNotFound)
	ErrAreaNotFound     = fmt.Errorf("area: %w", ErrNotFound)
	ErrRoleNotFound     = fmt.Errorf("role: %w", ErrNotFound)
)
