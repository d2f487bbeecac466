package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/logiflow/internal/core/task"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = "2006-01-02"

// fields は structpb.Struct を Go の値として読み出すためのラッパーです。
// キーが存在して値が null の場合は「クリア」を意味します。
type fields map[string]any

func requestFields(req *structpb.Struct) (fields, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	return fields(req.AsMap()), nil
}

func invalidField(name string, format string, args ...any) error {
	return status.Error(codes.InvalidArgument, fmt.Sprintf("%s: %s", name, fmt.Sprintf(format, args...)))
}

func (f fields) has(key string) bool {
	_, ok := f[key]
	return ok
}

func (f fields) requiredString(key string) (string, error) {
	v, set, err := f.optionalString(key)
	if err != nil {
		return "", err
	}
	if !set || v == nil || strings.TrimSpace(*v) == "" {
		return "", invalidField(key, "is required")
	}
	return *v, nil
}

func (f fields) optionalString(key string) (*string, bool, error) {
	raw, ok := f[key]
	if !ok {
		return nil, false, nil
	}
	switch v := raw.(type) {
	case nil:
		return nil, true, nil
	case string:
		return &v, true, nil
	default:
		return nil, true, invalidField(key, "must be a string")
	}
}

// optionalID は識別子を文字列として受け付けます。ファイルストアの整数 ID は数値のまま送られることがあるため、
// 整数値の number は 10 進表記の文字列に変換します。
func (f fields) optionalID(key string) (*string, bool, error) {
	raw, ok := f[key]
	if !ok {
		return nil, false, nil
	}
	switch v := raw.(type) {
	case nil:
		return nil, true, nil
	case string:
		return &v, true, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, true, invalidField(key, "must be a string or an integer")
		}
		id := strconv.FormatInt(int64(v), 10)
		return &id, true, nil
	default:
		return nil, true, invalidField(key, "must be a string or an integer")
	}
}

func (f fields) id(key string) (string, error) {
	v, _, err := f.optionalID(key)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func (f fields) text(key string) (string, error) {
	v, _, err := f.optionalString(key)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func (f fields) requiredInt(key string) (int, error) {
	v, set, err := f.optionalInt(key)
	if err != nil {
		return 0, err
	}
	if !set || v == nil {
		return 0, invalidField(key, "is required")
	}
	return *v, nil
}

// optionalInt は数値または数字文字列を整数として受け付けます。
func (f fields) optionalInt(key string) (*int, bool, error) {
	raw, ok := f[key]
	if !ok {
		return nil, false, nil
	}
	switch v := raw.(type) {
	case nil:
		return nil, true, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, true, invalidField(key, "must be an integer")
		}
		n := int(v)
		return &n, true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, true, invalidField(key, "must be an integer")
		}
		return &n, true, nil
	default:
		return nil, true, invalidField(key, "must be an integer")
	}
}

func (f fields) optionalBool(key string) (*bool, error) {
	raw, ok := f[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case bool:
		return &v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, invalidField(key, "must be a boolean")
		}
		return &b, nil
	default:
		return nil, invalidField(key, "must be a boolean")
	}
}

func (f fields) optionalDate(key string) (*time.Time, bool, error) {
	v, set, err := f.optionalString(key)
	if err != nil || v == nil {
		return nil, set, err
	}
	if strings.TrimSpace(*v) == "" {
		return nil, true, nil
	}
	t, ok := task.ParseDate(*v)
	if !ok {
		return nil, true, invalidField(key, "must be YYYY-MM-DD or RFC3339")
	}
	return &t, true, nil
}

func (f fields) optionalObject(key string) (map[string]any, bool, error) {
	raw, ok := f[key]
	if !ok {
		return nil, false, nil
	}
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, true, nil
	case map[string]any:
		return v, true, nil
	default:
		return nil, true, invalidField(key, "must be an object")
	}
}

// filterText はリスト条件用に値を文字列化します。数値も受け付けます。
func (f fields) filterText(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
