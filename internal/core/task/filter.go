package task

import (
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/logiflow/internal/core/domain"
)

const dateLayout = "2006-01-02"

// RawCriteria は受信したままの検索条件です。空文字列は未指定を意味します。
type RawCriteria struct {
	AreaID        string
	Status        string
	Priority      string
	CreatedFrom   string
	CreatedTo     string
	DueFrom       string
	DueTo         string
	CompletedFrom string
	CompletedTo   string
}

// DateRange は両端を含む日時範囲です。nil の端は制約なしです。
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsZero は範囲が一切指定されていないかを返します。
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Contains は t が範囲内にあるかを返します。t が nil の場合、範囲指定があれば一致しません。
func (r DateRange) Contains(t *time.Time) bool {
	if r.IsZero() {
		return true
	}
	if t == nil {
		return false
	}
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Criteria は正規化済みの検索条件です。
type Criteria struct {
	AreaID    *int
	Status    *domain.Status
	Priority  *domain.Priority
	Created   DateRange
	Due       DateRange
	Completed DateRange
}

// NewCriteria は RawCriteria を正規化します。
// 不正な状態・優先度・日付・エリアはエラーにせず未指定として扱います。
func NewCriteria(raw RawCriteria) Criteria {
	var c Criteria

	if id, err := strconv.Atoi(strings.TrimSpace(raw.AreaID)); err == nil {
		c.AreaID = &id
	}
	if s := domain.Status(strings.TrimSpace(raw.Status)); s.Valid() {
		c.Status = &s
	}
	if p := domain.Priority(strings.TrimSpace(raw.Priority)); p.Valid() {
		c.Priority = &p
	}

	c.Created = DateRange{From: parseDate(raw.CreatedFrom), To: parseDate(raw.CreatedTo)}
	c.Due = DateRange{From: parseDate(raw.DueFrom), To: parseDate(raw.DueTo)}
	c.Completed = DateRange{From: parseDate(raw.CompletedFrom), To: parseDate(raw.CompletedTo)}

	return c
}

// ParseDate は YYYY-MM-DD または RFC3339 形式の日時を解釈します。
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parseDate(raw string) *time.Time {
	t, ok := ParseDate(raw)
	if !ok {
		return nil
	}
	return &t
}

// Predicate はタスクが条件に一致するかを判定します。
type Predicate func(*domain.Task) bool

// BuildPredicate は指定された条件すべての論理積となる Predicate を構築します。
func BuildPredicate(c Criteria) Predicate {
	return func(t *domain.Task) bool {
		if t == nil {
			return false
		}
		if c.AreaID != nil && t.AreaID != *c.AreaID {
			return false
		}
		if c.Status != nil && t.Status != *c.Status {
			return false
		}
		if c.Priority != nil && t.Priority != *c.Priority {
			return false
		}
		var created *time.Time
		if !t.CreatedAt.IsZero() {
			created = &t.CreatedAt
		}
		if !c.Created.Contains(created) {
			return false
		}
		return c.Due.Contains(t.DueAt) && c.Completed.Contains(t.CompletedAt)
	}
}
