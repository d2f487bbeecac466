package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/employee"
	"github.com/ogurasousui/logiflow/internal/core/task"
)

func TestTaskFilter_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bson.D{}, taskFilter(task.Criteria{}))
}

func TestTaskFilter_AllCriteria(t *testing.T) {
	t.Parallel()

	criteria := task.NewCriteria(task.RawCriteria{
		AreaID:      "3",
		Status:      "en_proceso",
		Priority:    "alta",
		CreatedFrom: "2025-01-01",
		DueTo:       "2025-03-31",
	})

	want := bson.D{
		{Key: "areaId", Value: 3},
		{Key: "estado", Value: "en_proceso"},
		{Key: "prioridad", Value: "alta"},
		{Key: "fechaCreacion", Value: bson.D{{Key: "$gte", Value: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}},
		{Key: "fechaVencimiento", Value: bson.D{{Key: "$lte", Value: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)}}},
	}
	assert.Equal(t, want, taskFilter(criteria))
}

func TestEmployeeFilter(t *testing.T) {
	t.Parallel()

	role := 2
	active := false
	got := employeeFilter(employee.ListFilter{RoleID: &role, Active: &active})
	assert.Equal(t, bson.D{{Key: "rolId", Value: 2}, {Key: "activo", Value: false}}, got)
}

func TestTaskDoc_RoundTrip(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()
	employeeID := oid.Hex()
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	in := &domain.Task{
		Title:      "Ruta norte",
		AreaID:     1,
		EmployeeID: &employeeID,
		Priority:   domain.PriorityHigh,
		Category:   "asignar_transportista",
		Attributes: map[string]any{"transportista": "TransSur", "vehiculo": "AB123CD"},
		Status:     domain.StatusPending,
		CreatedAt:  time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		DueAt:      &due,
	}

	doc, err := newTaskDoc(in)
	assert.NoError(t, err)
	assert.Equal(t, oid, *doc.EmployeeID)

	out := doc.toDomain()
	assert.Equal(t, employeeID, *out.EmployeeID)
	assert.Equal(t, in.Attributes, out.Attributes)
	assert.Equal(t, due, *out.DueAt)

	bad := "7"
	_, err = newTaskDoc(&domain.Task{EmployeeID: &bad})
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}

func TestNormalizeValue(t *testing.T) {
	t.Parallel()

	received := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	raw := primitive.D{
		{Key: "items", Value: primitive.A{"a", primitive.D{{Key: "sku", Value: "S1"}}}},
		{Key: "recibido", Value: primitive.NewDateTimeFromTime(received)},
	}
	want := map[string]any{
		"items":    []any{"a", map[string]any{"sku": "S1"}},
		"recibido": "2025-03-01T14:30:00Z",
	}
	got := normalizeValue(raw)
	assert.Equal(t, want, got)

	_, err := structpb.NewStruct(got.(map[string]any))
	assert.NoError(t, err)
}
