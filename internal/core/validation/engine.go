package validation

import (
	"context"
	"errors"
	"regexp"

	"github.com/ogurasousui/logiflow/internal/core/category"
	"github.com/ogurasousui/logiflow/internal/core/domain"
)

var dniPattern = regexp.MustCompile(`^[0-9]{8}$`)

// Resolver は参照解決の抽象です。reference.Resolver が実装します。
type Resolver interface {
	ResolveArea(ctx context.Context, id int) (*domain.Area, error)
	ResolveRole(ctx context.Context, id int) (*domain.Role, error)
	ResolveEmployee(ctx context.Context, id string) (*domain.Employee, error)
}

// DNILookup は DNI による社員検索の抽象です。
type DNILookup interface {
	ListByDNI(ctx context.Context, dni string) ([]*domain.Employee, error)
}

// Engine はタスクと社員のバリデーションを行います。
type Engine struct {
	refs Resolver
	dnis DNILookup
}

// NewEngine は Engine を生成します。
func NewEngine(refs Resolver, dnis DNILookup) *Engine {
	return &Engine{refs: refs, dnis: dnis}
}

// ValidateTaskAttributes はカテゴリの必須属性が揃っているかを検証します。
// 最初に見つかった欠落キーをレジストリ順で報告します。
func (e *Engine) ValidateTaskAttributes(categoryName string, attrs map[string]any) *Violation {
	return ValidateTaskAttributes(categoryName, attrs)
}

// ValidateTaskAttributes はストアに依存しないため Engine なしでも利用できます。
func ValidateTaskAttributes(categoryName string, attrs map[string]any) *Violation {
	required, err := category.RequiredAttributes(categoryName)
	if err != nil {
		return &Violation{Code: CodeUnknownCategory, Field: "tipoTarea", Value: categoryName}
	}
	for _, key := range required {
		if v, ok := attrs[key]; !ok || v == nil {
			return &Violation{Code: CodeMissingAttribute, Field: key}
		}
	}
	return nil
}

// ValidateTaskReferences はエリア、次に社員 (指定時のみ) の存在を検証します。
func (e *Engine) ValidateTaskReferences(ctx context.Context, areaID int, employeeID *string) (*Violation, error) {
	if v, err := e.checkArea(ctx, areaID); v != nil || err != nil {
		return v, err
	}

	if employeeID == nil {
		return nil, nil
	}
	if _, err := e.refs.ResolveEmployee(ctx, *employeeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Violation{Code: CodeInvalidEmployee, Field: "empleadoId", Value: *employeeID}, nil
		}
		return nil, err
	}
	return nil, nil
}

// ValidateEmployee は DNI 形式、DNI 一意性、ロール、エリアの順に検証します。
// excludeID が指定された場合、そのレコード自身との重複は無視します。
func (e *Engine) ValidateEmployee(ctx context.Context, dni string, areaID, roleID int, excludeID *string) (*Violation, error) {
	if !dniPattern.MatchString(dni) {
		return &Violation{Code: CodeInvalidDNI, Field: "dni", Value: dni}, nil
	}

	matches, err := e.dnis.ListByDNI(ctx, dni)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if excludeID != nil && m.ID == *excludeID {
			continue
		}
		return &Violation{Code: CodeDuplicateDNI, Field: "dni", Value: dni}, nil
	}

	if _, err := e.refs.ResolveRole(ctx, roleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Violation{Code: CodeInvalidRole, Field: "rolId", Value: roleID}, nil
		}
		return nil, err
	}

	return e.checkArea(ctx, areaID)
}

func (e *Engine) checkArea(ctx context.Context, areaID int) (*Violation, error) {
	if _, err := e.refs.ResolveArea(ctx, areaID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &Violation{Code: CodeInvalidArea, Field: "areaId", Value: areaID}, nil
		}
		return nil, err
	}
	return nil, nil
}
