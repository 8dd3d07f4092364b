// Package docstore is a path-addressed JSON document store: collections of
// records keyed by string, read whole, listed, or filtered by equality on a
// single top-level field. There are no transactions; the last write wins.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("document not found")

// Document is one child of a collection.
type Document struct {
	Key  string
	Data json.RawMessage
}

type Store interface {
	Get(ctx context.Context, collection, key string) (json.RawMessage, error)
	// List returns every child of a collection in insertion order.
	List(ctx context.Context, collection string) ([]Document, error)
	// Query returns the children whose top-level field equals value.
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)
	Set(ctx context.Context, collection, key string, data json.RawMessage) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, key string, fields map[string]any) error
	Delete(ctx context.Context, collection, key string) error
}

// SplitPath turns "quizzes/<id>" into its collection and key.
func SplitPath(path string) (collection, key string, err error) {
	path = strings.Trim(path, "/")
	i := strings.LastIndex(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", fmt.Errorf("invalid document path %q", path)
	}
	return path[:i], path[i+1:], nil
}

func Path(collection, key string) string {
	return collection + "/" + key
}

// Put marshals v and writes it under collection/key.
func Put(ctx context.Context, s Store, collection, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", Path(collection, key), err)
	}
	return s.Set(ctx, collection, key, data)
}

// GetAs reads collection/key into a new T.
func GetAs[T any](ctx context.Context, s Store, collection, key string) (*T, error) {
	data, err := s.Get(ctx, collection, key)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Path(collection, key), err)
	}
	return &v, nil
}

// ListAs decodes every child of collection.
func ListAs[T any](ctx context.Context, s Store, collection string) ([]*T, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](collection, docs)
}

// QueryAs decodes the children of collection whose field equals value.
func QueryAs[T any](ctx context.Context, s Store, collection, field string, value any) ([]*T, error) {
	docs, err := s.Query(ctx, collection, field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](collection, docs)
}

func decodeAll[T any](collection string, docs []Document) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", Path(collection, d.Key), err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// fieldText renders a JSON value the way an equality filter compares it:
// strings unquoted, everything else as compact JSON. It matches the text
// produced by Postgres' ->> operator.
func fieldText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func valueText(value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshal filter value: %w", err)
	}
	return fieldText(raw), nil
}
