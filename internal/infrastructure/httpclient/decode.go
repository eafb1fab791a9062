package httpclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agrisure/portal/internal/core/ports"
)

// Do executes req on ex and decodes the JSON result into T. An empty
// successful response yields the zero value.
func Do[T any](ctx context.Context, ex ports.Executor, req ports.Request) (T, error) {
	var out T
	raw, err := ex.Execute(ctx, req)
	if err != nil {
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return out, nil
}

// DecodeList accepts either a bare JSON array or an object wrapping the
// array under "data". A nil input yields an empty slice.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	out := []T{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if raw[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return out, nil
		}
		raw = env.Data
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return out, nil
}

// List executes req and decodes the result with DecodeList.
func List[T any](ctx context.Context, ex ports.Executor, req ports.Request) ([]T, error) {
	raw, err := ex.Execute(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := DecodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	return items, nil
}
