// Package app composes the scan form and the dashboard into one page.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/application"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/dashboard"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/application/scanform"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/scans"
)

const (
	Title   = "Security Guardian Dashboard"
	Tagline = "Shift-Left Security Automation with Agentic AI"
)

// Backend is everything the page needs from the Guardian API.
type Backend interface {
	scanform.Backend
	scans.Reader
}

// App is the state of one page load.
type App struct {
	Form      *scanform.Form
	Dashboard *dashboard.Dashboard
}

func New(api Backend, clock application.Clock, loc *time.Location, logger hclog.Logger) *App {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &App{
		Form:      scanform.New(api, clock, logger.Named("form")),
		Dashboard: dashboard.New(api, loc, logger.Named("dashboard")),
	}
}

// Mount hydrates the form and loads the scan list concurrently.
func (a *App) Mount(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.Form.Mount(ctx)
	}()
	go func() {
		defer wg.Done()
		a.Dashboard.Mount(ctx)
	}()
	wg.Wait()
}

// View is the whole page snapshot.
type View struct {
	Title     string         `json:"title"`
	Tagline   string         `json:"tagline"`
	Form      scanform.View  `json:"form"`
	Dashboard dashboard.View `json:"dashboard"`
}

func (a *App) View() View {
	return View{
		Title:     Title,
		Tagline:   Tagline,
		Form:      a.Form.View(),
		Dashboard: a.Dashboard.View(),
	}
}
