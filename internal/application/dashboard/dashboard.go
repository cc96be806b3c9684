// Package dashboard holds the scan history table and the per-scan token
// breakdown modal.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/scans"
)

// MsgFetchFailed is the only error the table ever shows.
const MsgFetchFailed = "Failed to fetch scans"

// ErrRefreshInFlight is returned when a refresh is requested while the
// previous one is still pending.
var ErrRefreshInFlight = errors.New("scan list refresh already in progress")

type Dashboard struct {
	api    scans.Reader
	loc    *time.Location
	logger hclog.Logger

	mu      sync.Mutex
	scans   []scans.ScanResult
	loading bool
	errMsg  string

	selected    *scans.ScanID
	logs        []scans.ScanLog
	logsLoading bool
	// modalGen increases on every open/close; a log response is applied
	// only if the generation it started with is still current.
	modalGen uint64
}

func New(api scans.Reader, loc *time.Location, logger hclog.Logger) *Dashboard {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Dashboard{api: api, loc: loc, logger: logger}
}

// Mount does the initial fetch.
func (d *Dashboard) Mount(ctx context.Context) {
	_ = d.Refresh(ctx)
}

// Refresh replaces the scan list. On failure the previous list stays and a
// generic error is shown.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.loading {
		d.mu.Unlock()
		return ErrRefreshInFlight
	}
	d.loading = true
	d.errMsg = ""
	d.mu.Unlock()

	list, err := d.api.GetScans(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.logger.Warn("fetch scans failed", "error", err)
		d.errMsg = MsgFetchFailed
		return err
	}
	d.scans = list
	return nil
}

// Loading reports whether a scan-list fetch is pending.
func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// OpenTokenModal selects a scan and loads its logs. A failed fetch shows an
// empty list. Responses for a modal that was closed or replaced meanwhile
// are dropped.
func (d *Dashboard) OpenTokenModal(ctx context.Context, id scans.ScanID) {
	d.mu.Lock()
	d.modalGen++
	gen := d.modalGen
	d.selected = &id
	d.logs = nil
	d.logsLoading = true
	d.mu.Unlock()

	logs, err := d.api.GetScanLogs(ctx, id)
	if err != nil {
		d.logger.Debug("fetch scan logs failed", "scan_id", id, "error", err)
		logs = nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.modalGen {
		d.logger.Trace("discarding stale scan logs", "scan_id", id)
		return
	}
	d.logs = logs
	d.logsLoading = false
}

// CloseModal dismisses the token breakdown.
func (d *Dashboard) CloseModal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modalGen++
	d.selected = nil
	d.logs = nil
	d.logsLoading = false
}
