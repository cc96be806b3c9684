package scans

import (
	"context"
	"encoding/json"
)

// Trigger port (interface untuk membuat scan baru di backend)
type Trigger interface {
	TriggerScan(ctx context.Context, req TriggerRequest) (json.RawMessage, error)
}

// Reader port (interface untuk membaca riwayat scan)
type Reader interface {
	GetScans(ctx context.Context) ([]ScanResult, error)
	GetScanLogs(ctx context.Context, id ScanID) ([]ScanLog, error)
}
