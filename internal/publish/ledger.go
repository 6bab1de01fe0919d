package publish

import (
	"fmt"
	"sort"
	"sync"

	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/target"
)

// Outcome is the terminal result of one (asset, provider) cell.
type Outcome struct {
	AssetName  string             `json:"assetName"`
	AssetIndex int                `json:"assetIndex"`
	Provider   target.Provider    `json:"provider"`
	Success    bool               `json:"success"`
	Payload    *provider.Body     `json:"payload,omitempty"`
	Error      string             `json:"error,omitempty"`
	ErrorKind  provider.ErrorKind `json:"errorKind,omitempty"`
	PublicURL  string             `json:"publicUrl,omitempty"`
	DurationMS int64              `json:"durationMs"`
}

type cellKey struct {
	asset    int
	provider target.Provider
}

func (k cellKey) rank() int {
	for i, p := range target.Providers {
		if p == k.provider {
			return k.asset*len(target.Providers) + i
		}
	}
	return k.asset*len(target.Providers) + len(target.Providers)
}

// Ledger collects outcomes for one request. It is safe for concurrent use and
// accepts at most one outcome per cell.
type Ledger struct {
	mu      sync.Mutex
	entries map[cellKey]Outcome
	notes   []string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: map[cellKey]Outcome{}}
}

// Record stores o. A second outcome for the same cell is rejected.
func (l *Ledger) Record(o Outcome) error {
	key := cellKey{asset: o.AssetIndex, provider: o.Provider}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[key]; exists {
		return fmt.Errorf("outcome for asset %d via %s already recorded", o.AssetIndex, o.Provider)
	}
	l.entries[key] = o
	return nil
}

// Note appends an informational message that does not affect status.
func (l *Ledger) Note(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes = append(l.notes, msg)
}

// Entries returns outcomes in cell order: asset order, then provider order.
func (l *Ledger) Entries() []Outcome {
	l.mu.Lock()
	keys := make([]cellKey, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].rank() < keys[j].rank() })
	out := make([]Outcome, 0, len(keys))
	for _, k := range keys {
		out = append(out, l.entries[k])
	}
	l.mu.Unlock()
	return out
}

// Notes returns a copy of the recorded notes.
func (l *Ledger) Notes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.notes...)
}

// Len reports how many outcomes are recorded.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Status summarizes a ledger.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailure Status = "failure"
	StatusEmpty   Status = "empty"
)

// DeriveStatus computes the overall status from outcomes.
func DeriveStatus(outcomes []Outcome) Status {
	if len(outcomes) == 0 {
		return StatusEmpty
	}
	succeeded := 0
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		}
	}
	switch succeeded {
	case len(outcomes):
		return StatusSuccess
	case 0:
		return StatusFailure
	default:
		return StatusPartial
	}
}
