package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ogurasousui/logiflow/internal/core/validation"
)

const (
	areasCollection     = "areas"
	rolesCollection     = "roles"
	employeesCollection = "empleados"
	tasksCollection     = "tareas"
)

// Store は MongoDB 上の 4 コレクションを扱います。
type Store struct {
	db *mongo.Database
}

// NewStore は Store を生成します。
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes は DNI の一意インデックスなどを作成します。
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(employeesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "dni", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("empleados_dni_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongodb: create dni index: %w", err)
	}

	_, err = s.db.Collection(tasksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "areaId", Value: 1}}},
		{Keys: bson.D{{Key: "fechaVencimiento", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: create task indexes: %w", err)
	}
	return nil
}

// Employees は社員リポジトリを返します。
func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{coll: s.db.Collection(employeesCollection)}
}

// Tasks はタスクリポジトリを返します。
func (s *Store) Tasks() *TaskRepository {
	return &TaskRepository{coll: s.db.Collection(tasksCollection)}
}

// References は参照データリポジトリを返します。
func (s *Store) References() *ReferenceRepository {
	return &ReferenceRepository{
		areas: s.db.Collection(areasCollection),
		roles: s.db.Collection(rolesCollection),
	}
}

// translateMongoError はドライバのエラーをドメインのエラーへ変換します。
func translateMongoError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mongodb: %w", validation.ErrDuplicateKey)
	}
	return err
}

func parseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// normalizeValue は bson のデコード結果 (primitive.D / primitive.A) を map と slice に揃えます。
// 日時は structpb に載せられるよう RFC3339 文字列にします。
func normalizeValue(v any) any {
	switch val := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalizeValue(item)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalizeValue(item)
		}
		return m
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return val.Hex()
	default:
		return v
	}
}
