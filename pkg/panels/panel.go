package panels

import (
	"fmt"
	"strings"

	"github.com/matzehuels/popdyn/pkg/errors"
)

// PanelID identifies one of the dashboard panels.
type PanelID string

// Panels in declaration order. Ties in [Rank] go to the earlier panel.
const (
	Actions    PanelID = "actions"
	Monitoring PanelID = "monitoring"
	Claims     PanelID = "claims"
)

// All lists every panel in declaration order.
var All = []PanelID{Actions, Monitoring, Claims}

// ParsePanelID parses a panel name, case-insensitively.
func ParsePanelID(s string) (PanelID, error) {
	id := PanelID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", errors.New(errors.ErrCodeInvalidPanel,
			"invalid panel: %q (must be one of: actions, monitoring, claims)", s)
	}
	return id, nil
}

// Valid reports whether id names a known panel.
func (id PanelID) Valid() bool {
	switch id {
	case Actions, Monitoring, Claims:
		return true
	}
	return false
}

func (id PanelID) String() string { return string(id) }

// Metrics are the operational counters panel scores are computed from.
type Metrics struct {
	PendingApprovals int     `json:"pending_approvals" bson:"pending_approvals" toml:"pending_approvals" yaml:"pending_approvals"`
	OverdueApprovals int     `json:"overdue_approvals" bson:"overdue_approvals" toml:"overdue_approvals" yaml:"overdue_approvals"`
	CriticalAlerts   int     `json:"critical_alerts" bson:"critical_alerts" toml:"critical_alerts" yaml:"critical_alerts"`
	Escalations      int     `json:"escalations" bson:"escalations" toml:"escalations" yaml:"escalations"`
	OpenClaims       int     `json:"open_claims" bson:"open_claims" toml:"open_claims" yaml:"open_claims"`
	DEIScore         float64 `json:"dei_score" bson:"dei_score" toml:"dei_score" yaml:"dei_score"`
}

// DEIThreshold is the score below which the monitoring panel gets a fixed
// bonus.
const DEIThreshold = 80

// Score weights.
const (
	overdueWeight    = 20
	pendingWeight    = 10
	criticalWeight   = 15
	deiPenalty       = 25
	escalationWeight = 12
	openClaimWeight  = 5
)

// Score returns the priority score of one panel.
func Score(id PanelID, m Metrics) float64 {
	switch id {
	case Actions:
		return float64(m.OverdueApprovals*overdueWeight + m.PendingApprovals*pendingWeight)
	case Monitoring:
		s := float64(m.CriticalAlerts * criticalWeight)
		if m.DEIScore < DEIThreshold {
			s += deiPenalty
		}
		return s
	case Claims:
		return float64(m.Escalations*escalationWeight + m.OpenClaims*openClaimWeight)
	}
	return 0
}

// Ranking is the outcome of scoring all panels.
type Ranking struct {
	Scores map[PanelID]float64 `json:"scores"`
	Hero   PanelID             `json:"hero"`
}

// Rank scores every panel and picks the hero. On equal scores the panel
// declared first in [All] wins.
func Rank(m Metrics) Ranking {
	r := Ranking{Scores: make(map[PanelID]float64, len(All)), Hero: All[0]}
	best := Score(All[0], m)
	for _, id := range All {
		s := Score(id, m)
		r.Scores[id] = s
		if s > best {
			best, r.Hero = s, id
		}
	}
	return r
}

// Ordered returns the panels with the hero first, the rest in declaration
// order.
func (r Ranking) Ordered() []PanelID {
	out := make([]PanelID, 0, len(All))
	out = append(out, r.Hero)
	for _, id := range All {
		if id != r.Hero {
			out = append(out, id)
		}
	}
	return out
}

func (r Ranking) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "hero=%s", r.Hero)
	for _, id := range All {
		fmt.Fprintf(&b, " %s=%g", id, r.Scores[id])
	}
	return b.String()
}
