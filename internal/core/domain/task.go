package domain

import "time"

// Priority はタスクの優先度です。
type Priority string

const (
	PriorityLow    Priority = "baja"
	PriorityMedium Priority = "media"
	PriorityHigh   Priority = "alta"
)

// Valid は登録済みの優先度かどうかを返します。
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank は優先度の順序 (low=1, medium=2, high=3) を返します。未知の値は 0 です。
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// Status はタスクの進捗状態です。
type Status string

const (
	StatusPending    Status = "pendiente"
	StatusInProgress Status = "en_proceso"
	StatusCompleted  Status = "completada"
)

// Valid は登録済みの状態かどうかを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Task はタスクエンティティです。Attributes の必須キーは Category に依存します。
type Task struct {
	ID          string
	Title       string
	Description string
	AreaID      int
	EmployeeID  *string
	Priority    Priority
	Category    string
	Attributes  map[string]any
	Status      Status
	CreatedAt   time.Time
	AssignedAt  *time.Time
	DueAt       *time.Time
	CompletedAt *time.Time
}

// Clone は Task のコピーを返します。Attributes はトップレベルのみ複製します。
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.EmployeeID = cloneString(t.EmployeeID)
	c.AssignedAt = cloneTime(t.AssignedAt)
	c.DueAt = cloneTime(t.DueAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	if t.Attributes != nil {
		c.Attributes = make(map[string]any, len(t.Attributes))
		for k, v := range t.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
