// Package kv provides the durable key/value stores that back reader
// preferences: an in-process map, a SQLite file and a remote pathstore.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("kv: store closed")

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend for Open.
type Options struct {
	Backend string // memory, sqlite or pathstore

	SQLitePath string

	PathstoreURL    string
	PathstoreAPIKey string
}

// Open creates the store named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "pathstore":
		return NewPathstore(opts.PathstoreURL, opts.PathstoreAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", opts.Backend)
	}
}

// scoped prefixes every key with a fixed namespace.
type scoped struct {
	Store
	prefix string
}

// Scoped returns a view of store in which every key is prefixed. Closing the
// view does not close the underlying store.
func Scoped(store Store, prefix string) Store {
	return &scoped{Store: store, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.Store.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.Store.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.Store.Delete(ctx, s.prefix+key)
}

func (s *scoped) Close() error { return nil }
