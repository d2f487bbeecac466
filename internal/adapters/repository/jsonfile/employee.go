package jsonfile

import (
	"context"
	"strconv"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"github.com/ogurasousui/logiflow/internal/core/employee"
)

// employeeRecord の activo が欠けている旧データは有効な社員として扱います。
type employeeRecord struct {
	ID      int     `json:"id"`
	Name    string  `json:"nombre"`
	DNI     string  `json:"dni"`
	Email   *string `json:"email"`
	Phone   *string `json:"telefono"`
	AreaID  int     `json:"areaId"`
	RoleID  int     `json:"rolId"`
	HiredAt string  `json:"fechaIngreso"`
	Active  *bool   `json:"activo"`
}

func (rec employeeRecord) toDomain() (*domain.Employee, error) {
	hiredAt, err := parseTime(rec.HiredAt)
	if err != nil {
		return nil, err
	}
	return &domain.Employee{
		ID:      strconv.Itoa(rec.ID),
		Name:    rec.Name,
		DNI:     rec.DNI,
		Email:   rec.Email,
		Phone:   rec.Phone,
		AreaID:  rec.AreaID,
		RoleID:  rec.RoleID,
		HiredAt: hiredAt,
		Active:  rec.Active == nil || *rec.Active,
	}, nil
}

func newEmployeeRecord(id int, e *domain.Employee) employeeRecord {
	active := e.Active
	return employeeRecord{
		ID:      id,
		Name:    e.Name,
		DNI:     e.DNI,
		Email:   e.Email,
		Phone:   e.Phone,
		AreaID:  e.AreaID,
		RoleID:  e.RoleID,
		HiredAt: formatTime(e.HiredAt),
		Active:  &active,
	}
}

// EmployeeRepository は empleados.json 上の社員リポジトリです。ID は整数の 10 進表記です。
type EmployeeRepository struct {
	store *Store
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// Create は最大 ID + 1 を割り当てて社員を追加します。
func (r *EmployeeRepository) Create(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[employeeRecord](r.store, employeesFile)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}

	rec := newEmployeeRecord(nextID(ids), e)
	records = append(records, rec)
	if err := writeCollection(r.store, employeesFile, records); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// Update は社員を置き換えます。
func (r *EmployeeRepository) Update(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	id, ok := parseID(e.ID)
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[employeeRecord](r.store, employeesFile)
	if err != nil {
		return nil, err
	}
	for idx := range records {
		if records[idx].ID == id {
			records[idx] = newEmployeeRecord(id, e)
			if err := writeCollection(r.store, employeesFile, records); err != nil {
				return nil, err
			}
			return records[idx].toDomain()
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(_ context.Context, rawID string) error {
	id, ok := parseID(rawID)
	if !ok {
		return employee.ErrEmployeeNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[employeeRecord](r.store, employeesFile)
	if err != nil {
		return err
	}
	for idx := range records {
		if records[idx].ID == id {
			records = append(records[:idx], records[idx+1:]...)
			return writeCollection(r.store, employeesFile, records)
		}
	}
	return employee.ErrEmployeeNotFound
}

// FindByID は社員を取得します。
func (r *EmployeeRepository) FindByID(_ context.Context, rawID string) (*domain.Employee, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[employeeRecord](r.store, employeesFile)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.toDomain()
		}
	}
	return nil, employee.ErrEmployeeNotFound
}

// ListByDNI は DNI が一致する社員を返します。
func (r *EmployeeRepository) ListByDNI(ctx context.Context, dni string) ([]*domain.Employee, error) {
	all, err := r.List(ctx, employee.ListFilter{})
	if err != nil {
		return nil, err
	}
	var matches []*domain.Employee
	for _, e := range all {
		if e.DNI == dni {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

// List はフィルタに一致する社員をファイル順に返します。
func (r *EmployeeRepository) List(_ context.Context, filter employee.ListFilter) ([]*domain.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := readCollection[employeeRecord](r.store, employeesFile)
	if err != nil {
		return nil, err
	}
	employees := make([]*domain.Employee, 0, len(records))
	for _, rec := range records {
		e, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		if filter.Matches(e) {
			employees = append(employees, e)
		}
	}
	return employees, nil
}

func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
