package sysconfig

import (
	"context"
	"encoding/json"
)

// Store port for the backend config endpoints
type Store interface {
	GetConfig(ctx context.Context) ([]Entry, error)
	SetConfig(ctx context.Context, key, value string, isSecret bool) (json.RawMessage, error)
}
