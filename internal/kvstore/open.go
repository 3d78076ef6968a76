// Package kvstore implements kvstore.Store in memory and on SQLite.
package kvstore

import (
	"strings"

	"github.com/rmacdonaldsmith/planflow-go/pkg/kvstore"
)

// Open returns a SQLite store at path, or an in-memory store when path is
// empty.
func Open(path string) (kvstore.Store, error) {
	if strings.TrimSpace(path) == "" {
		return NewInMemoryStore(), nil
	}
	return OpenSQLite(path)
}
