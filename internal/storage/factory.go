package storage

import "errors"

// Backend type names accepted by storage.type.
const (
	TypeMemory    = "memory"
	TypeSQLite    = "sqlite"
	TypePostgres  = "postgres"
	TypeWebSocket = "websocket"
)

// ErrUnknownBackend is returned for a storage.type that names no backend.
var ErrUnknownBackend = errors.New("unknown storage type")

// ValidType reports whether name is a known backend type.
func ValidType(name string) bool {
	switch name {
	case TypeMemory, TypeSQLite, TypePostgres, TypeWebSocket:
		return true
	}
	return false
}
