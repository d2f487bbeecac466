package jsonfile

import (
	"context"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/migration"
)

var _ migration.LegacySource = (*Store)(nil)

// ReadAreas は移行元としてエリアを返します。
func (s *Store) ReadAreas(_ context.Context) ([]domain.Area, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAreas()
}

// ReadRoles は移行元としてロールを返します。
func (s *Store) ReadRoles(_ context.Context) ([]domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readRoles()
}

// ReadEmployees は社員をファイル順に、旧 ID とともに返します。
func (s *Store) ReadEmployees(_ context.Context) ([]migration.LegacyEmployee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCollection[employeeRecord](s, employeesFile)
	if err != nil {
		return nil, err
	}
	out := make([]migration.LegacyEmployee, 0, len(records))
	for _, rec := range records {
		e, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, migration.LegacyEmployee{LegacyID: rec.ID, Employee: e})
	}
	return out, nil
}

// ReadTasks はタスクを返します。担当者参照は旧 ID のまま LegacyEmployeeID に入ります。
func (s *Store) ReadTasks(_ context.Context) ([]migration.LegacyTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readCollection[taskRecord](s, tasksFile)
	if err != nil {
		return nil, err
	}
	out := make([]migration.LegacyTask, 0, len(records))
	for _, rec := range records {
		t, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		t.EmployeeID = nil
		var legacyEmployeeID *int
		if rec.EmployeeID != nil {
			id := *rec.EmployeeID
			legacyEmployeeID = &id
		}
		out = append(out, migration.LegacyTask{LegacyID: rec.ID, LegacyEmployeeID: legacyEmployeeID, Task: t})
	}
	return out, nil
}
