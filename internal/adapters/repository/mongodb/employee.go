package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/employee"
)

type employeeDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"nombre"`
	DNI     string             `bson:"dni"`
	Email   *string            `bson:"email"`
	Phone   *string            `bson:"telefono"`
	AreaID  int                `bson:"areaId"`
	RoleID  int                `bson:"rolId"`
	HiredAt time.Time          `bson:"fechaIngreso"`
	Active  bool               `bson:"activo"`
}

func newEmployeeDoc(e *domain.Employee) employeeDoc {
	return employeeDoc{
		Name:    e.Name,
		DNI:     e.DNI,
		Email:   e.Email,
		Phone:   e.Phone,
		AreaID:  e.AreaID,
		RoleID:  e.RoleID,
		HiredAt: e.HiredAt.UTC(),
		Active:  e.Active,
	}
}

func (d employeeDoc) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:      d.ID.Hex(),
		Name:    d.Name,
		DNI:     d.DNI,
		Email:   d.Email,
		Phone:   d.Phone,
		AreaID:  d.AreaID,
		RoleID:  d.RoleID,
		HiredAt: d.HiredAt.UTC(),
		Active:  d.Active,
	}
}

// EmployeeRepository は empleados コレクション上の社員リポジトリです。ID は ObjectID の 16 進表記です。
type EmployeeRepository struct {
	coll *mongo.Collection
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// Create は社員を登録します。
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	doc := newEmployeeDoc(e)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translateMongoError(err, employee.ErrEmployeeNotFound)
	}
	return doc.toDomain(), nil
}

// Update は社員を更新します。入社日は更新しません。
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	oid, ok := parseObjectID(e.ID)
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}

	update := bson.M{"$set": bson.M{
		"nombre":   e.Name,
		"dni":      e.DNI,
		"email":    e.Email,
		"telefono": e.Phone,
		"areaId":   e.AreaID,
		"rolId":    e.RoleID,
		"activo":   e.Active,
	}}

	var doc employeeDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, translateMongoError(err, employee.ErrEmployeeNotFound)
	}
	return doc.toDomain(), nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseObjectID(id)
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translateMongoError(err, employee.ErrEmployeeNotFound)
	}
	if result.DeletedCount == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は社員を取得します。ObjectID でない ID は存在しないものとして扱います。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	var doc employeeDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err, employee.ErrEmployeeNotFound)
	}
	return doc.toDomain(), nil
}

// ListByDNI は DNI が一致する社員を返します。
func (r *EmployeeRepository) ListByDNI(ctx context.Context, dni string) ([]*domain.Employee, error) {
	return r.find(ctx, bson.M{"dni": dni})
}

// List はフィルタに一致する社員を返します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*domain.Employee, error) {
	return r.find(ctx, employeeFilter(filter))
}

// Count は社員数を返します。
func (r *EmployeeRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *EmployeeRepository) find(ctx context.Context, filter any) ([]*domain.Employee, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	employees := make([]*domain.Employee, 0)
	for cursor.Next(ctx) {
		var doc employeeDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		employees = append(employees, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}
