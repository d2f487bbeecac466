package employee

import (
	"errors"

	"github.com/ogurasousui/logiflow/internal/core/domain"
)

var (
	ErrInvalidID        = errors.New("employee: invalid id")
	ErrInvalidName      = errors.New("employee: invalid name")
	ErrInvalidEmail     = errors.New("employee: invalid email")
	ErrEmployeeNotFound = domain.ErrEmployeeNotFound
)
