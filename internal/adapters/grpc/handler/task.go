package handler

import (
	"context"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/task"
	"google.golang.org/protobuf/types/known/structpb"
)

// CreateTask はタスクを作成します。
func (h *LogiflowHandler) CreateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}

	title, err := f.requiredString("titulo")
	if err != nil {
		return nil, err
	}
	description, err := f.text("descripcion")
	if err != nil {
		return nil, err
	}
	areaID, err := f.requiredInt("areaId")
	if err != nil {
		return nil, err
	}
	employeeID, _, err := f.optionalID("empleadoId")
	if err != nil {
		return nil, err
	}
	priority, err := f.requiredString("prioridad")
	if err != nil {
		return nil, err
	}
	categoryName, err := f.requiredString("tipoTarea")
	if err != nil {
		return nil, err
	}
	attrs, _, err := f.optionalObject("atributos")
	if err != nil {
		return nil, err
	}
	statusText, _, err := f.optionalString("estado")
	if err != nil {
		return nil, err
	}
	assignedAt, _, err := f.optionalDate("fechaAsignacion")
	if err != nil {
		return nil, err
	}
	dueAt, _, err := f.optionalDate("fechaVencimiento")
	if err != nil {
		return nil, err
	}
	completedAt, _, err := f.optionalDate("fechaCompletada")
	if err != nil {
		return nil, err
	}

	var statusPtr *domain.Status
	if statusText != nil {
		s := domain.Status(*statusText)
		statusPtr = &s
	}

	created, err := h.tasks.CreateTask(ctx, task.CreateTaskInput{
		Title:       title,
		Description: description,
		AreaID:      areaID,
		EmployeeID:  employeeID,
		Priority:    domain.Priority(priority),
		Category:    categoryName,
		Attributes:  attrs,
		Status:      statusPtr,
		AssignedAt:  assignedAt,
		DueAt:       dueAt,
		CompletedAt: completedAt,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"tarea": toTaskMap(created)})
}

// GetTask はタスクを取得します。
func (h *LogiflowHandler) GetTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}
	id, err := f.id("id")
	if err != nil {
		return nil, err
	}

	found, err := h.tasks.GetTask(ctx, task.GetTaskInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"tarea": toTaskMap(found)})
}

// UpdateTask はタスクを部分更新します。指定されたキーのみ変更し、null は値のクリアを意味します。
func (h *LogiflowHandler) UpdateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}

	in := task.UpdateTaskInput{}
	if in.ID, err = f.id("id"); err != nil {
		return nil, err
	}
	if in.Title, _, err = f.optionalString("titulo"); err != nil {
		return nil, err
	}
	if in.Description, _, err = f.optionalString("descripcion"); err != nil {
		return nil, err
	}
	if in.AreaID, _, err = f.optionalInt("areaId"); err != nil {
		return nil, err
	}
	if in.EmployeeID, in.EmployeeIDSet, err = f.optionalID("empleadoId"); err != nil {
		return nil, err
	}
	if in.Category, _, err = f.optionalString("tipoTarea"); err != nil {
		return nil, err
	}
	if attrs, set, err := f.optionalObject("atributos"); err != nil {
		return nil, err
	} else if set {
		in.Attributes = attrs
	}
	if in.AssignedAt, in.AssignedAtSet, err = f.optionalDate("fechaAsignacion"); err != nil {
		return nil, err
	}
	if in.DueAt, in.DueAtSet, err = f.optionalDate("fechaVencimiento"); err != nil {
		return nil, err
	}
	if in.CompletedAt, in.CompletedAtSet, err = f.optionalDate("fechaCompletada"); err != nil {
		return nil, err
	}

	priority, _, err := f.optionalString("prioridad")
	if err != nil {
		return nil, err
	}
	if priority != nil {
		p := domain.Priority(*priority)
		in.Priority = &p
	}

	statusText, _, err := f.optionalString("estado")
	if err != nil {
		return nil, err
	}
	if statusText != nil {
		s := domain.Status(*statusText)
		in.Status = &s
	}

	updated, err := h.tasks.UpdateTask(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{"tarea": toTaskMap(updated)})
}

// DeleteTask はタスクを削除します。
func (h *LogiflowHandler) DeleteTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}
	id, err := f.id("id")
	if err != nil {
		return nil, err
	}

	if err := h.tasks.DeleteTask(ctx, task.DeleteTaskInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}

	return newStruct(map[string]any{})
}

// ListTasks は条件に一致するタスクを返します。不正な条件値は未指定として扱われます。
func (h *LogiflowHandler) ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}

	tasks, err := h.tasks.ListTasks(ctx, task.RawCriteria{
		AreaID:        f.filterText("areaId"),
		Status:        f.filterText("estado"),
		Priority:      f.filterText("prioridad"),
		CreatedFrom:   f.filterText("fechaCreacionDesde"),
		CreatedTo:     f.filterText("fechaCreacionHasta"),
		DueFrom:       f.filterText("fechaVencimientoDesde"),
		DueTo:         f.filterText("fechaVencimientoHasta"),
		CompletedFrom: f.filterText("fechaCompletadaDesde"),
		CompletedTo:   f.filterText("fechaCompletadaHasta"),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, toTaskMap(t))
	}
	return newStruct(map[string]any{"tareas": list})
}

func toTaskMap(t *domain.Task) map[string]any {
	if t == nil {
		return nil
	}

	attrs := make(map[string]any, len(t.Attributes))
	for k, v := range t.Attributes {
		attrs[k] = v
	}

	return map[string]any{
		"id":               t.ID,
		"titulo":           t.Title,
		"descripcion":      t.Description,
		"areaId":           t.AreaID,
		"empleadoId":       optionalValue(t.EmployeeID),
		"prioridad":        string(t.Priority),
		"tipoTarea":        t.Category,
		"atributos":        attrs,
		"estado":           string(t.Status),
		"fechaCreacion":    formatTime(&t.CreatedAt),
		"fechaAsignacion":  formatTime(t.AssignedAt),
		"fechaVencimiento": formatTime(t.DueAt),
		"fechaCompletada":  formatTime(t.CompletedAt),
	}
}
