package domain

import "time"

// Employee は社員エンティティです。
type Employee struct {
	ID      string
	Name    string
	DNI     string
	Email   *string
	Phone   *string
	AreaID  int
	RoleID  int
	HiredAt time.Time
	Active  bool
}

// Clone は Employee のディープコピーを返します。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	c.Email = cloneString(e.Email)
	c.Phone = cloneString(e.Phone)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
