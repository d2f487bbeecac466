package jsonfile

import (
	"context"

	"github.com/ogurasousui/logiflow/internal/core/domain"
)

type referenceRecord struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

// ReferenceRepository はエリアとロールの読み取りを提供します。
type ReferenceRepository struct {
	store *Store
}

// FindAreaByID はエリアを取得します。
func (r *ReferenceRepository) FindAreaByID(ctx context.Context, id int) (*domain.Area, error) {
	areas, err := r.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range areas {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrAreaNotFound
}

// ListAreas はエリアをファイル順に返します。
func (r *ReferenceRepository) ListAreas(_ context.Context) ([]domain.Area, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.readAreas()
}

// FindRoleByID はロールを取得します。
func (r *ReferenceRepository) FindRoleByID(ctx context.Context, id int) (*domain.Role, error) {
	roles, err := r.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if role.ID == id {
			found := role
			return &found, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

// ListRoles はロールをファイル順に返します。
func (r *ReferenceRepository) ListRoles(_ context.Context) ([]domain.Role, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.readRoles()
}

func (s *Store) readAreas() ([]domain.Area, error) {
	records, err := readCollection[referenceRecord](s, areasFile)
	if err != nil {
		return nil, err
	}
	areas := make([]domain.Area, 0, len(records))
	for _, rec := range records {
		areas = append(areas, domain.Area{ID: rec.ID, Name: rec.Name})
	}
	return areas, nil
}

func (s *Store) readRoles() ([]domain.Role, error) {
	records, err := readCollection[referenceRecord](s, rolesFile)
	if err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(records))
	for _, rec := range records {
		roles = append(roles, domain.Role{ID: rec.ID, Name: rec.Name})
	}
	return roles, nil
}

// WriteAreas はエリアファイルを置き換えます。シードと移行元の準備に使います。
func (s *Store) WriteAreas(areas []domain.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]referenceRecord, 0, len(areas))
	for _, a := range areas {
		records = append(records, referenceRecord{ID: a.ID, Name: a.Name})
	}
	return writeCollection(s, areasFile, records)
}

// WriteRoles はロールファイルを置き換えます。
func (s *Store) WriteRoles(roles []domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]referenceRecord, 0, len(roles))
	for _, r := range roles {
		records = append(records, referenceRecord{ID: r.ID, Name: r.Name})
	}
	return writeCollection(s, rolesFile, records)
}
