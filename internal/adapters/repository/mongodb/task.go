package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/task"
)

type taskDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"titulo"`
	Description string              `bson:"descripcion"`
	AreaID      int                 `bson:"areaId"`
	EmployeeID  *primitive.ObjectID `bson:"empleadoId"`
	Priority    string              `bson:"prioridad"`
	Category    string              `bson:"tipoTarea"`
	Attributes  map[string]any      `bson:"atributos"`
	Status      string              `bson:"estado"`
	CreatedAt   time.Time           `bson:"fechaCreacion"`
	AssignedAt  *time.Time          `bson:"fechaAsignacion,omitempty"`
	DueAt       *time.Time          `bson:"fechaVencimiento,omitempty"`
	CompletedAt *time.Time          `bson:"fechaCompletada,omitempty"`
}

func newTaskDoc(t *domain.Task) (taskDoc, error) {
	var employeeID *primitive.ObjectID
	if t.EmployeeID != nil {
		oid, ok := parseObjectID(*t.EmployeeID)
		if !ok {
			return taskDoc{}, fmt.Errorf("mongodb: employee reference %q: %w", *t.EmployeeID, domain.ErrEmployeeNotFound)
		}
		employeeID = &oid
	}
	attrs := t.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return taskDoc{
		Title:       t.Title,
		Description: t.Description,
		AreaID:      t.AreaID,
		EmployeeID:  employeeID,
		Priority:    string(t.Priority),
		Category:    t.Category,
		Attributes:  attrs,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC(),
		AssignedAt:  utcPtr(t.AssignedAt),
		DueAt:       utcPtr(t.DueAt),
		CompletedAt: utcPtr(t.CompletedAt),
	}, nil
}

func (d taskDoc) toDomain() *domain.Task {
	var employeeID *string
	if d.EmployeeID != nil {
		hex := d.EmployeeID.Hex()
		employeeID = &hex
	}
	attrs := make(map[string]any, len(d.Attributes))
	for k, v := range d.Attributes {
		attrs[k] = normalizeValue(v)
	}
	return &domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		AreaID:      d.AreaID,
		EmployeeID:  employeeID,
		Priority:    domain.Priority(d.Priority),
		Category:    d.Category,
		Attributes:  attrs,
		Status:      domain.Status(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		AssignedAt:  utcPtr(d.AssignedAt),
		DueAt:       utcPtr(d.DueAt),
		CompletedAt: utcPtr(d.CompletedAt),
	}
}

// TaskRepository は tareas コレクション上のタスクリポジトリです。
type TaskRepository struct {
	coll *mongo.Collection
}

var _ task.Repository = (*TaskRepository)(nil)

// Create はタスクを登録します。
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	doc, err := newTaskDoc(t)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translateMongoError(err, task.ErrTaskNotFound)
	}
	return doc.toDomain(), nil
}

// InsertMany はタスクを一括登録します。
func (r *TaskRepository) InsertMany(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	docs := make([]any, 0, len(tasks))
	for _, t := range tasks {
		doc, err := newTaskDoc(t)
		if err != nil {
			return err
		}
		doc.ID = primitive.NewObjectID()
		docs = append(docs, doc)
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return translateMongoError(err, task.ErrTaskNotFound)
}

// Update はタスクを置き換えます。作成日時は保持します。
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	oid, ok := parseObjectID(t.ID)
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	doc, err := newTaskDoc(t)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"titulo":      doc.Title,
		"descripcion": doc.Description,
		"areaId":      doc.AreaID,
		"empleadoId":  doc.EmployeeID,
		"prioridad":   doc.Priority,
		"tipoTarea":   doc.Category,
		"atributos":   doc.Attributes,
		"estado":      doc.Status,
	}
	unset := bson.M{}
	setOptionalTime(set, unset, "fechaAsignacion", doc.AssignedAt)
	setOptionalTime(set, unset, "fechaVencimiento", doc.DueAt)
	setOptionalTime(set, unset, "fechaCompletada", doc.CompletedAt)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var updated taskDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		return nil, translateMongoError(err, task.ErrTaskNotFound)
	}
	return updated.toDomain(), nil
}

// Delete はタスクを削除します。
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return task.ErrTaskNotFound
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translateMongoError(err, task.ErrTaskNotFound)
	}
	if result.DeletedCount == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// FindByID はタスクを取得します。
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	var doc taskDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err, task.ErrTaskNotFound)
	}
	return doc.toDomain(), nil
}

// List は Criteria を bson のフィルタに変換してタスクを取得します。
func (r *TaskRepository) List(ctx context.Context, criteria task.Criteria) ([]*domain.Task, error) {
	cursor, err := r.coll.Find(ctx, taskFilter(criteria), options.Find().SetSort(bson.D{{Key: "fechaCreacion", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := make([]*domain.Task, 0)
	for cursor.Next(ctx) {
		var doc taskDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		tasks = append(tasks, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count はタスク数を返します。
func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func setOptionalTime(set, unset bson.M, key string, v *time.Time) {
	if v == nil {
		unset[key] = ""
		return
	}
	set[key] = *v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
