package handler

import (
	"context"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/employee"
	"google.golang.org/protobuf/types/known/structpb"
)

// CreateEmployee は社員を作成します。
func (h *LogiflowHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}

	name, err := f.requiredString("nombre")
	if err != nil {
		return nil, err
	}
	dni, err := f.text("dni")
	if err != nil {
		return nil, err
	}
	email, _, err := f.optionalString("email")
	if err != nil {
		return nil, err
	}
	phone, _, err := f.optionalString("telefono")
	if err != nil {
		return nil, err
	}
	areaID, err := f.requiredInt("areaId")
	if err != nil {
		return nil, err
	}
	roleID, err := f.requiredInt("rolId")
	if err != nil {
		return nil, err
	}
	hiredAt, _, err := f.optionalDate("fechaIngreso")
	if err != nil {
		return nil, err
	}
	active, err := f.optionalBool("activo")
	if err != nil {
		return nil, err
	}

	created, err := h.employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		Name:    name,
		DNI:     dni,
		Email:   email,
		Phone:   phone,
		AreaID:  areaID,
		RoleID:  roleID,
		HiredAt: hiredAt,
		Active:  active,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"empleado": toEmployeeMap(created)})
}

// GetEmployee は社員を取得します。
func (h *LogiflowHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}
	id, err := f.id("id")
	if err != nil {
		return nil, err
	}

	found, err := h.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"empleado": toEmployeeMap(found)})
}

// UpdateEmployee は社員情報を部分更新します。fechaIngreso は無視されます。
func (h *LogiflowHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}

	in := employee.UpdateEmployeeInput{}
	if in.ID, err = f.id("id"); err != nil {
		return nil, err
	}
	if in.Name, _, err = f.optionalString("nombre"); err != nil {
		return nil, err
	}
	if in.DNI, _, err = f.optionalString("dni"); err != nil {
		return nil, err
	}
	if in.Email, in.EmailSet, err = f.optionalString("email"); err != nil {
		return nil, err
	}
	if in.Phone, in.PhoneSet, err = f.optionalString("telefono"); err != nil {
		return nil, err
	}
	if in.AreaID, _, err = f.optionalInt("areaId"); err != nil {
		return nil, err
	}
	if in.RoleID, _, err = f.optionalInt("rolId"); err != nil {
		return nil, err
	}
	if in.Active, err = f.optionalBool("activo"); err != nil {
		return nil, err
	}

	updated, err := h.employees.UpdateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"empleado": toEmployeeMap(updated)})
}

// DeleteEmployee は社員を削除します。
func (h *LogiflowHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}
	id, err := f.id("id")
	if err != nil {
		return nil, err
	}

	if err := h.employees.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{})
}

// ListEmployees は areaId・rolId・activo で絞り込んだ社員の一覧を返します。
func (h *LogiflowHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}

	var filter employee.ListFilter
	if filter.AreaID, _, err = f.optionalInt("areaId"); err != nil {
		return nil, err
	}
	if filter.RoleID, _, err = f.optionalInt("rolId"); err != nil {
		return nil, err
	}
	if filter.Active, err = f.optionalBool("activo"); err != nil {
		return nil, err
	}

	employees, err := h.employees.ListEmployees(ctx, filter)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(employees))
	for _, e := range employees {
		list = append(list, toEmployeeMap(e))
	}
	return newStruct(map[string]any{"empleados": list})
}

func toEmployeeMap(e *domain.Employee) map[string]any {
	if e == nil {
		return nil
	}

	return map[string]any{
		"id":           e.ID,
		"nombre":       e.Name,
		"dni":          e.DNI,
		"email":        optionalValue(e.Email),
		"telefono":     optionalValue(e.Phone),
		"areaId":       e.AreaID,
		"rolId":        e.RoleID,
		"fechaIngreso": e.HiredAt.UTC().Format(dateLayout),
		"activo":       e.Active,
	}
}
