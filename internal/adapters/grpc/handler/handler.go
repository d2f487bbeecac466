package handler

import (
	"context"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/employee"
	"github.com/ogurasousui/logiflow/internal/core/task"
	"google.golang.org/protobuf/types/known/structpb"
)

// ReferenceLister は参照データの一覧を提供します。reference.Resolver が実装します。
type ReferenceLister interface {
	Areas(ctx context.Context) ([]domain.Area, error)
	Roles(ctx context.Context) ([]domain.Role, error)
}

// LogiflowHandler は LogiflowService の gRPC 実装です。
type LogiflowHandler struct {
	tasks     task.UseCase
	employees employee.UseCase
	refs      ReferenceLister
}

var _ LogiflowServer = (*LogiflowHandler)(nil)

// NewLogiflowHandler は LogiflowHandler を生成します。
func NewLogiflowHandler(tasks task.UseCase, employees employee.UseCase, refs ReferenceLister) *LogiflowHandler {
	return &LogiflowHandler{tasks: tasks, employees: employees, refs: refs}
}

// RequiredAttributes はカテゴリ (tipoTarea) の必須属性キーを返します。
func (h *LogiflowHandler) RequiredAttributes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f, err := requestFields(req)
	if err != nil {
		return nil, err
	}
	name, err := f.requiredString("tipoTarea")
	if err != nil {
		return nil, err
	}

	keys, err := h.tasks.RequiredAttributes(name)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(keys))
	for _, k := range keys {
		list = append(list, k)
	}
	return newStruct(map[string]any{"tipoTarea": name, "atributos": list})
}

// ListAreas はエリアの一覧を返します。
func (h *LogiflowHandler) ListAreas(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	areas, err := h.refs.Areas(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(areas))
	for _, a := range areas {
		list = append(list, map[string]any{"id": a.ID, "nombre": a.Name})
	}
	return newStruct(map[string]any{"areas": list})
}

// ListRoles はロールの一覧を返します。
func (h *LogiflowHandler) ListRoles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	roles, err := h.refs.Roles(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(roles))
	for _, r := range roles {
		list = append(list, map[string]any{"id": r.ID, "nombre": r.Name})
	}
	return newStruct(map[string]any{"roles": list})
}
