package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Resource is the CRUD binding shared by every backend collection.
type Resource[T any] struct {
	c        *Client
	path     string
	singular string
	plural   string
}

func newResource[T any](c *Client, path, singular, plural string) *Resource[T] {
	return &Resource[T]{c: c, path: path, singular: singular, plural: plural}
}

// Path returns the collection path, e.g. "/subjects".
func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) itemPath(id int) string {
	return r.path + "/" + strconv.Itoa(id)
}

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	return listAt[T](ctx, r.c, r.path, query, "obtener "+r.plural)
}

func (r *Resource[T]) Get(ctx context.Context, id int) (*T, error) {
	var out T
	if _, err := r.c.do(ctx, request{method: http.MethodGet, path: r.itemPath(id), action: "obtener " + r.singular}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	var out T
	if _, err := r.c.do(ctx, request{method: http.MethodPost, path: r.path, body: body, action: "crear " + r.singular}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Update(ctx context.Context, id int, body any) (*T, error) {
	var out T
	if _, err := r.c.do(ctx, request{method: http.MethodPut, path: r.itemPath(id), body: body, action: "actualizar " + r.singular}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Patch(ctx context.Context, id int, body any) (*T, error) {
	var out T
	if _, err := r.c.do(ctx, request{method: http.MethodPatch, path: r.itemPath(id), body: body, action: "actualizar " + r.singular}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	_, err := r.c.do(ctx, request{method: http.MethodDelete, path: r.itemPath(id), action: "eliminar " + r.singular}, nil)
	return err
}

// listAt fetches a collection. The backend answers either with a bare JSON
// array or with an envelope holding the array under "data" or "items".
func listAt[T any](ctx context.Context, c *Client, path string, query url.Values, action string) ([]T, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query, action: action}, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw)
	if err != nil {
		return nil, &Error{Message: "Error al " + action, Status: http.StatusOK, Err: err}
	}
	return items, nil
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}

	var items []T
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode list envelope: %w", err)
	}
	inner := envelope.Data
	if len(inner) == 0 {
		inner = envelope.Items
	}
	if len(inner) == 0 || string(inner) == "null" {
		return []T{}, nil
	}
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}
