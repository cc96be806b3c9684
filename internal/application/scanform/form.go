// Package scanform holds the state of the "Start New Scan" form: input
// validation, scan submission and the optional GitHub settings.
package scanform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/application"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/scans"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/sysconfig"
)

// SavedAckDuration is how long the webhook "saved" acknowledgment stays up.
const SavedAckDuration = 2 * time.Second

const (
	MsgInvalidRepoURL    = "Invalid GitHub URL. Please use format: https://github.com/username/repo"
	MsgInvalidAppURL     = "Application URL must start with http:// or https://"
	MsgTriggerFailed     = "Failed to trigger scan"
	MsgWebhookSaveFailed = "Failed to save webhook secret"
)

// ErrSubmitInFlight is returned while a previous submission has not settled.
var ErrSubmitInFlight = errors.New("scan submission already in progress")

// ValidationError is a local input error; no request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Phase of the submission state machine.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
)

// Backend is what the form needs from the Guardian API.
type Backend interface {
	scans.Trigger
	sysconfig.Store
}

type Form struct {
	api    Backend
	clock  application.Clock
	logger hclog.Logger

	mu            sync.Mutex
	repoURL       string
	targetURL     string
	githubToken   string
	webhookSecret string
	showSettings  bool
	webhookSaved  bool
	webhookError  string
	savedTimer    application.Timer
	// savedGen identifies the latest successful save; a timer only clears
	// the acknowledgment it was started for.
	savedGen uint64
	phase         Phase
	result        json.RawMessage
	errMsg        string
}

func New(api Backend, clock application.Clock, logger hclog.Logger) *Form {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Form{api: api, clock: clock, logger: logger, phase: PhaseIdle}
}

// Mount pre-fills the webhook secret from the backend config. Best effort:
// failures leave the field empty.
func (f *Form) Mount(ctx context.Context) {
	entries, err := f.api.GetConfig(ctx)
	if err != nil {
		f.logger.Debug("config hydration skipped", "error", err)
		return
	}
	entry, ok := sysconfig.Find(entries, sysconfig.KeyGithubWebhookSecret)
	if !ok {
		return
	}
	f.mu.Lock()
	f.webhookSecret = entry.Value
	f.mu.Unlock()
}

// SetInputs stores the submit fields. Values are expected trimmed; empty
// optional fields mean "not provided".
func (f *Form) SetInputs(repoURL, targetURL, githubToken string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repoURL = repoURL
	f.targetURL = targetURL
	f.githubToken = githubToken
}

func (f *Form) SetWebhookSecret(secret string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhookSecret = secret
}

// ToggleSettings expands or collapses the GitHub settings section.
func (f *Form) ToggleSettings() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showSettings = !f.showSettings
	return f.showSettings
}

// Validate applies the submit rules in order; the first failure wins.
func Validate(req scans.TriggerRequest) error {
	if !scans.IsValidGithubURL(req.RepoURL) {
		return &ValidationError{Field: "repo_url", Message: MsgInvalidRepoURL}
	}
	if req.TargetURL != "" && !scans.IsApplicationURL(req.TargetURL) {
		return &ValidationError{Field: "target_url", Message: MsgInvalidAppURL}
	}
	return nil
}

// Submit validates the current inputs and triggers a scan. The outcome is
// kept for View and also returned.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.phase == PhaseSubmitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.phase = PhaseValidating
	req := scans.TriggerRequest{
		RepoURL:     f.repoURL,
		TargetURL:   f.targetURL,
		GithubToken: f.githubToken,
	}
	if err := Validate(req); err != nil {
		f.errMsg = err.Error()
		f.phase = PhaseIdle
		f.mu.Unlock()
		return err
	}
	f.phase = PhaseSubmitting
	f.errMsg = ""
	f.result = nil
	f.mu.Unlock()

	out, err := f.api.TriggerScan(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = PhaseIdle
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgTriggerFailed
		}
		f.errMsg = msg
		return err
	}
	f.result = out
	f.logger.Info("scan queued", "repo_url", req.RepoURL, "dast", req.TargetURL != "")
	return nil
}

// SaveWebhookSecret stores the secret as a secret config entry. It touches
// only the webhook row state.
func (f *Form) SaveWebhookSecret(ctx context.Context) error {
	f.mu.Lock()
	secret := f.webhookSecret
	f.mu.Unlock()
	if secret == "" {
		return nil
	}

	_, err := f.api.SetConfig(ctx, sysconfig.KeyGithubWebhookSecret, secret, true)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.webhookSaved = false
		f.webhookError = MsgWebhookSaveFailed
		return err
	}
	f.webhookError = ""
	f.webhookSaved = true
	if f.savedTimer != nil {
		f.savedTimer.Stop()
	}
	f.savedGen++
	gen := f.savedGen
	f.savedTimer = f.clock.AfterFunc(SavedAckDuration, func() { f.clearSaved(gen) })
	return nil
}

// clearSaved drops the acknowledgment unless a newer save replaced it.
func (f *Form) clearSaved(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.savedGen {
		return
	}
	f.webhookSaved = false
	f.savedTimer = nil
}

// Phase returns the current submission phase.
func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// View is a render-ready snapshot of the form.
type View struct {
	RepoURL       string `json:"repo_url"`
	TargetURL     string `json:"target_url"`
	GithubToken   string `json:"-"`
	WebhookSecret string `json:"-"`

	ShowSettings  bool   `json:"show_settings"`
	SettingsIcon  string `json:"settings_icon"`
	WebhookSaved  bool   `json:"webhook_saved"`
	WebhookButton string `json:"webhook_button"`
	WebhookError  string `json:"webhook_error,omitempty"`

	Submitting  bool   `json:"submitting"`
	SubmitLabel string `json:"submit_label"`

	Error     string `json:"error,omitempty"`
	HasResult bool   `json:"has_result"`
	Result    string `json:"result,omitempty"`
}

func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		RepoURL:       f.repoURL,
		TargetURL:     f.targetURL,
		GithubToken:   f.githubToken,
		WebhookSecret: f.webhookSecret,
		ShowSettings:  f.showSettings,
		SettingsIcon:  "▸",
		WebhookSaved:  f.webhookSaved,
		WebhookButton: "Save",
		WebhookError:  f.webhookError,
		Submitting:    f.phase == PhaseSubmitting,
		SubmitLabel:   "Trigger Scan",
		Error:         f.errMsg,
	}
	if f.showSettings {
		v.SettingsIcon = "▾"
	}
	if f.webhookSaved {
		v.WebhookButton = "✓ Saved"
	}
	if v.Submitting {
		v.SubmitLabel = "Scanning..."
	}
	if len(f.result) > 0 {
		v.HasResult = true
		v.Result = prettyJSON(f.result)
	}
	return v
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
