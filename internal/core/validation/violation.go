package validation

import (
	"errors"
	"fmt"

	"github.com/ogurasousui/logiflow/internal/core/category"
)

// ErrValidationFailure はすべての業務バリデーション違反の親エラーです。
var ErrValidationFailure = errors.New("validation failure")

var (
	ErrUnknownCategory  = fmt.Errorf("%w: %w", ErrValidationFailure, category.ErrUnknownCategory)
	ErrMissingAttribute = fmt.Errorf("%w: missing attribute", ErrValidationFailure)
	ErrInvalidReference = fmt.Errorf("%w: invalid reference", ErrValidationFailure)
	ErrInvalidFormat    = fmt.Errorf("%w: invalid format", ErrValidationFailure)
	ErrDuplicateKey     = fmt.Errorf("%w: duplicate key", ErrValidationFailure)
)

// Code は違反の種類を表します。
type Code string

const (
	CodeUnknownCategory  Code = "unknown_category"
	CodeMissingAttribute Code = "missing_attribute"
	CodeInvalidArea      Code = "invalid_area"
	CodeInvalidEmployee  Code = "invalid_employee"
	CodeInvalidRole      Code = "invalid_role"
	CodeInvalidDNI       Code = "invalid_dni"
	CodeDuplicateDNI     Code = "duplicate_dni"
)

// Violation は型付きのバリデーション結果です。nil は合格を意味します。
type Violation struct {
	Code  Code
	Field string
	Value any
}

func (v *Violation) Error() string {
	switch v.Code {
	case CodeUnknownCategory:
		return fmt.Sprintf("validation: unknown category %v", v.Value)
	case CodeMissingAttribute:
		return fmt.Sprintf("validation: missing attribute %q", v.Field)
	case CodeInvalidArea:
		return fmt.Sprintf("validation: area %v does not exist", v.Value)
	case CodeInvalidEmployee:
		return fmt.Sprintf("validation: employee %v does not exist", v.Value)
	case CodeInvalidRole:
		return fmt.Sprintf("validation: role %v does not exist", v.Value)
	case CodeInvalidDNI:
		return "validation: dni must be exactly 8 digits"
	case CodeDuplicateDNI:
		return fmt.Sprintf("validation: dni %v is already registered", v.Value)
	default:
		return fmt.Sprintf("validation: %s", v.Code)
	}
}

// Unwrap は違反の分類を errors.Is で判定できるようにします。
func (v *Violation) Unwrap() error {
	return v.Kind()
}

// Kind は違反の分類 (MissingAttribute / InvalidReference / InvalidFormat / DuplicateKey) を返します。
func (v *Violation) Kind() error {
	switch v.Code {
	case CodeUnknownCategory:
		return ErrUnknownCategory
	case CodeMissingAttribute:
		return ErrMissingAttribute
	case CodeInvalidArea, CodeInvalidEmployee, CodeInvalidRole:
		return ErrInvalidReference
	case CodeInvalidDNI:
		return ErrInvalidFormat
	case CodeDuplicateDNI:
		return ErrDuplicateKey
	default:
		return ErrValidationFailure
	}
}

// AsViolation は err から Violation を取り出します。
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Err は Violation を error として返します。v が nil の場合は nil を返します。
func (v *Violation) Err() error {
	if v == nil {
		return nil
	}
	return v
}
