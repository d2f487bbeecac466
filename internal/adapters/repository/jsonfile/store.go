package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ogurasousui/logiflow/internal/core/task"
)

const (
	areasFile     = "areas.json"
	rolesFile     = "roles.json"
	employeesFile = "empleados.json"
	tasksFile     = "tareas.json"
)

// Store は旧形式の JSON ファイル群 (コレクションごとに 1 ファイル) を扱います。
// すべての変更は「全件読み込み・変更・全件書き込み」を mu の内側で行います。
// 同一プロセス内の書き込みのみ直列化され、別プロセスからの同時書き込みは考慮しません。
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open は dir を旧ストアとして開きます。ディレクトリが存在しなければ作成します。
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("jsonfile: data dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Employees は社員リポジトリを返します。
func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{store: s}
}

// Tasks はタスクリポジトリを返します。
func (s *Store) Tasks() *TaskRepository {
	return &TaskRepository{store: s}
}

// References はエリアとロールの参照データリポジトリを返します。
func (s *Store) References() *ReferenceRepository {
	return &ReferenceRepository{store: s}
}

// readCollection はファイルが存在しない場合に空のスライスを返します。
func readCollection[T any](s *Store, name string) ([]T, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("jsonfile: read %s: %w", name, err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// writeCollection は一時ファイルへ書き出してから置き換えます。
func writeCollection[T any](s *Store, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: write %s: %w", name, err)
	}
	return nil
}

// nextID は既存 ID の最大値 + 1 を返します。空なら 1 です。
func nextID(ids []int) int {
	max := 0
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, ok := task.ParseDate(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("jsonfile: invalid date %q", raw)
	}
	return t, nil
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseTime(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// formatTime は時刻成分のない UTC 日時を旧形式どおり YYYY-MM-DD で書き出します。
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return u.Format(time.RFC3339Nano)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
