package dashboard

import (
	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/scans"
)

// View is a render-ready snapshot of the dashboard.
type View struct {
	Rows         []ScanRow   `json:"rows"`
	Empty        bool        `json:"empty"`
	Loading      bool        `json:"loading"`
	RefreshLabel string      `json:"refresh_label"`
	Error        string      `json:"error,omitempty"`
	Modal        *TokenModal `json:"modal,omitempty"`
}

type ScanRow struct {
	ID          scans.ScanID `json:"id"`
	Repo        string       `json:"repo"`
	Status      string       `json:"status"`
	StatusClass string       `json:"status_class"`
	CreatedAt   string       `json:"created_at"`
	Tokens      string       `json:"tokens"`
}

type TokenModal struct {
	ScanID  scans.ScanID `json:"scan_id"`
	Loading bool         `json:"loading"`
	Empty   bool         `json:"empty"`
	Rows    []TokenRow   `json:"rows"`
	Footer  TokenFooter  `json:"footer"`
}

type TokenRow struct {
	Phase     string `json:"phase"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Total     string `json:"total"`
	Model     string `json:"model"`
	Message   string `json:"message"`
	HasTokens bool   `json:"has_tokens"`
}

// TokenFooter always carries the approximation marker, even for zero.
type TokenFooter struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Total  string `json:"total"`
}

func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{
		Rows:         make([]ScanRow, 0, len(d.scans)),
		Empty:        len(d.scans) == 0,
		Loading:      d.loading,
		RefreshLabel: "Refresh",
		Error:        d.errMsg,
	}
	if d.loading {
		v.RefreshLabel = "Refreshing..."
	}
	for _, s := range d.scans {
		v.Rows = append(v.Rows, ScanRow{
			ID:          s.ID,
			Repo:        s.Repo,
			Status:      string(s.Status),
			StatusClass: StatusClass(s.Status),
			CreatedAt:   FormatCreatedAt(s.CreatedAt, d.loc),
			Tokens:      FormatTokensUsed(s),
		})
	}
	if d.selected != nil {
		m := BuildTokenModal(*d.selected, d.logs)
		m.Loading = d.logsLoading
		v.Modal = &m
	}
	return v
}

// BuildTokenModal computes the breakdown table for one scan's logs.
func BuildTokenModal(id scans.ScanID, logs []scans.ScanLog) TokenModal {
	m := TokenModal{
		ScanID: id,
		Empty:  len(logs) == 0,
		Rows:   make([]TokenRow, 0, len(logs)),
	}
	for _, l := range logs {
		total := l.EffectiveTotal()
		m.Rows = append(m.Rows, TokenRow{
			Phase:     l.Step,
			Input:     FormatApprox(l.EffectiveInput()),
			Output:    FormatApprox(l.EffectiveOutput()),
			Total:     FormatApprox(total),
			Model:     l.Model,
			Message:   l.Message,
			HasTokens: total > 0,
		})
	}
	sum := scans.SumUsage(logs)
	m.Footer = TokenFooter{
		Input:  ApproxPrefix + FormatNumber(sum.Input),
		Output: ApproxPrefix + FormatNumber(sum.Output),
		Total:  ApproxPrefix + FormatNumber(sum.Total),
	}
	return m
}
