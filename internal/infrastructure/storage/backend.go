// Package storage holds the key-value backends behind the portfolio record
// and the Store that loads and saves it.
package storage

import (
	"context"

	"github.com/turtacn/casefolio/pkg/errors"
)

// Backend is an opaque byte store addressed by key.
type Backend interface {
	// Get returns the stored bytes. A missing key yields an error for which
	// IsNotFound reports true.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

// ErrNotFound is returned by the in-process backends for a missing key.
var ErrNotFound = errors.New(errors.ErrCodeStorageKeyNotFound, "key not found")

// IsNotFound reports whether err means the key does not exist, whichever
// backend produced it.
func IsNotFound(err error) bool {
	return errors.IsNotFound(err)
}

func notFound(key string) error {
	return errors.New(errors.ErrCodeStorageKeyNotFound, "key not found").WithDetail(key)
}

//Personal.AI order the ending
