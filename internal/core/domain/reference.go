package domain

// Area は業務エリアの参照データです。
type Area struct {
	ID   int
	Name string
}

// Role は職務ロールの参照データです。
type Role struct {
	ID   int
	Name string
}
