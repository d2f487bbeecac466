package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ogurasousui/logiflow/internal/core/domain"
)

// 参照データは旧ストアの整数 ID をそのまま _id に使います。
type referenceDoc struct {
	ID   int    `bson:"_id"`
	Name string `bson:"nombre"`
}

// ReferenceRepository はエリアとロールを扱います。
type ReferenceRepository struct {
	areas *mongo.Collection
	roles *mongo.Collection
}

// FindAreaByID はエリアを取得します。
func (r *ReferenceRepository) FindAreaByID(ctx context.Context, id int) (*domain.Area, error) {
	var doc referenceDoc
	if err := r.areas.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateMongoError(err, domain.ErrAreaNotFound)
	}
	return &domain.Area{ID: doc.ID, Name: doc.Name}, nil
}

// ListAreas はエリアを ID 順に返します。
func (r *ReferenceRepository) ListAreas(ctx context.Context) ([]domain.Area, error) {
	docs, err := findReferences(ctx, r.areas)
	if err != nil {
		return nil, err
	}
	areas := make([]domain.Area, 0, len(docs))
	for _, d := range docs {
		areas = append(areas, domain.Area{ID: d.ID, Name: d.Name})
	}
	return areas, nil
}

// FindRoleByID はロールを取得します。
func (r *ReferenceRepository) FindRoleByID(ctx context.Context, id int) (*domain.Role, error) {
	var doc referenceDoc
	if err := r.roles.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateMongoError(err, domain.ErrRoleNotFound)
	}
	return &domain.Role{ID: doc.ID, Name: doc.Name}, nil
}

// ListRoles はロールを ID 順に返します。
func (r *ReferenceRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	docs, err := findReferences(ctx, r.roles)
	if err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(docs))
	for _, d := range docs {
		roles = append(roles, domain.Role{ID: d.ID, Name: d.Name})
	}
	return roles, nil
}

// InsertAreas はエリアを一括登録します。
func (r *ReferenceRepository) InsertAreas(ctx context.Context, areas []domain.Area) error {
	if len(areas) == 0 {
		return nil
	}
	docs := make([]any, 0, len(areas))
	for _, a := range areas {
		docs = append(docs, referenceDoc{ID: a.ID, Name: a.Name})
	}
	_, err := r.areas.InsertMany(ctx, docs)
	return translateMongoError(err, domain.ErrAreaNotFound)
}

// InsertRoles はロールを一括登録します。
func (r *ReferenceRepository) InsertRoles(ctx context.Context, roles []domain.Role) error {
	if len(roles) == 0 {
		return nil
	}
	docs := make([]any, 0, len(roles))
	for _, role := range roles {
		docs = append(docs, referenceDoc{ID: role.ID, Name: role.Name})
	}
	_, err := r.roles.InsertMany(ctx, docs)
	return translateMongoError(err, domain.ErrRoleNotFound)
}

func findReferences(ctx context.Context, coll *mongo.Collection) ([]referenceDoc, error) {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []referenceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
