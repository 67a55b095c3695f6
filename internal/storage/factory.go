package storage

import "fmt"

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// NewPersister creates the persister for backend at path.
func NewPersister(backend, path string) (Persister, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONFile(path), nil
	case BackendSQLite:
		return NewSQLiteStorage(path)
	}
	return nil, fmt.Errorf("unknown favorites backend %q", backend)
}
