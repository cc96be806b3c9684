package scans

import (
	"strings"
)

// ScanID tipe untuk ScanResult, assigned by the backend
type ScanID int

// Status is open-ended; the backend may add new values at any time.
type Status string

const (
	StatusPending    Status = "pending"
	StatusFinished   Status = "finished"
	StatusFailed     Status = "failed"
	StatusVulnerable Status = "vulnerable"
)

// Finished reports whether the scan completed, ignoring case.
func (s Status) Finished() bool {
	return strings.EqualFold(string(s), string(StatusFinished))
}

// ScanResult is one row of GET /scans.
type ScanResult struct {
	ID         ScanID `json:"id"`
	Repo       string `json:"repo"`
	Status     Status `json:"status"`
	CreatedAt  string `json:"created_at"`
	TokensUsed int    `json:"tokens_used"`
}

// ScanLog is one phase entry of GET /scans/{id}/logs.
type ScanLog struct {
	Step         string `json:"step"`
	TokensInput  int    `json:"tokens_input"`
	TokensOutput int    `json:"tokens_output"`
	TokensTotal  int    `json:"tokens_total"`
	Model        string `json:"model"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
}

// TriggerRequest carries the scan-creation parameters. Empty optional
// fields are not sent.
type TriggerRequest struct {
	RepoURL     string
	TargetURL   string
	GithubToken string
}
