package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/ogurasousui/logiflow/internal/core/employee"
	"github.com/ogurasousui/logiflow/internal/core/task"
)

// taskFilter は Criteria を tareas コレクションのフィルタへ変換します。
// $gte / $lte は欠落したフィールドに一致しないため、日時を持たないタスクは範囲条件で除外されます。
func taskFilter(c task.Criteria) bson.D {
	filter := bson.D{}
	if c.AreaID != nil {
		filter = append(filter, bson.E{Key: "areaId", Value: *c.AreaID})
	}
	if c.Status != nil {
		filter = append(filter, bson.E{Key: "estado", Value: string(*c.Status)})
	}
	if c.Priority != nil {
		filter = append(filter, bson.E{Key: "prioridad", Value: string(*c.Priority)})
	}
	filter = appendRange(filter, "fechaCreacion", c.Created)
	filter = appendRange(filter, "fechaVencimiento", c.Due)
	filter = appendRange(filter, "fechaCompletada", c.Completed)
	return filter
}

func appendRange(filter bson.D, key string, r task.DateRange) bson.D {
	if r.IsZero() {
		return filter
	}
	cond := bson.D{}
	if r.From != nil {
		cond = append(cond, bson.E{Key: "$gte", Value: r.From.UTC()})
	}
	if r.To != nil {
		cond = append(cond, bson.E{Key: "$lte", Value: r.To.UTC()})
	}
	return append(filter, bson.E{Key: key, Value: cond})
}

func employeeFilter(f employee.ListFilter) bson.D {
	filter := bson.D{}
	if f.AreaID != nil {
		filter = append(filter, bson.E{Key: "areaId", Value: *f.AreaID})
	}
	if f.RoleID != nil {
		filter = append(filter, bson.E{Key: "rolId", Value: *f.RoleID})
	}
	if f.Active != nil {
		filter = append(filter, bson.E{Key: "activo", Value: *f.Active})
	}
	return filter
}
