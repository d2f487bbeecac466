package handler

import (
	"errors"
	"fmt"

	"github.com/ogurasousui/logiflow/internal/core/category"
	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/employee"
	"github.com/ogurasousui/logiflow/internal/core/task"
	"github.com/ogurasousui/logiflow/internal/core/validation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}

	if v, ok := validation.AsViolation(err); ok {
		code := codes.InvalidArgument
		if v.Code == validation.CodeDuplicateDNI {
			code = codes.AlreadyExists
		}
		if v.Field != "" {
			return status.Error(code, fmt.Sprintf("%s (%s): %v", v.Code, v.Field, err))
		}
		return status.Error(code, fmt.Sprintf("%s: %v", v.Code, err))
	}

	switch {
	case errors.Is(err, validation.ErrDuplicateKey):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, task.ErrInvalidID),
		errors.Is(err, task.ErrInvalidTitle),
		errors.Is(err, task.ErrInvalidPriority),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, category.ErrUnknownCategory),
		errors.Is(err, validation.ErrValidationFailure):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
