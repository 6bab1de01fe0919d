package target

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Origin is a raw listing record from one provider. Exactly one implementation
// exists per provider; Normalize resolves it to the common Target shape.
type Origin interface {
	Normalize(index int) (Target, bool)
}

// PostizIntegration is one entry of the Postiz integrations listing.
type PostizIntegration struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Identifier string          `json:"identifier"`
	Picture    string          `json:"picture"`
	Disabled   bool            `json:"disabled"`
	Profile    string          `json:"profile"`
	Customer   *PostizCustomer `json:"customer,omitempty"`
}

type PostizCustomer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Normalize maps a Postiz integration. Records without id or identifier are dropped.
func (p PostizIntegration) Normalize(int) (Target, bool) {
	id := strings.TrimSpace(p.ID)
	identifier := strings.TrimSpace(p.Identifier)
	if id == "" || identifier == "" {
		return Target{}, false
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = identifier
	}
	t := Target{
		ID:          string(ProviderPostiz) + "-" + id,
		DisplayName: name,
		Platform:    ParsePlatform(identifier),
		Provider:    ProviderPostiz,
		NativeID:    id,
		Profile:     p.Profile,
		Picture:     p.Picture,
		Enabled:     !p.Disabled,
	}
	if p.Customer != nil {
		t.Group = strings.TrimSpace(p.Customer.Name)
	}
	return t, true
}

// Column names accepted for Blotato profile rows. The sheet feeding the listing has
// used both English headers and the original Ukrainian ones.
var (
	blotatoPlatformColumns = []string{"platform", "Соцмережа"}
	blotatoProfileColumns  = []string{"profile", "Профіль"}
	blotatoGroupColumns    = []string{"group", "Напрямок"}
)

// BlotatoRow is one loosely-typed row of the Blotato profiles feed.
type BlotatoRow map[string]any

// Normalize maps a Blotato row. Rows without a platform are dropped. index is the
// row position in the feed and backs the id as "idx-<index>" when row_number is
// absent, so it never collides with a numbered row.
func (r BlotatoRow) Normalize(index int) (Target, bool) {
	platform := r.firstString(blotatoPlatformColumns)
	if platform == "" {
		return Target{}, false
	}
	profile := r.firstString(blotatoProfileColumns)

	rowKey := r.stringValue("row_number")
	if rowKey == "" {
		rowKey = "idx-" + strconv.Itoa(index)
	}
	nativeID := r.stringValue("blotato_id")
	if nativeID == "" {
		nativeID = "row_" + rowKey
	}

	name := platform
	if profile != "" {
		name = profile
	}

	return Target{
		ID:          string(ProviderBlotato) + "-" + rowKey,
		DisplayName: name,
		Platform:    ParsePlatform(platform),
		Provider:    ProviderBlotato,
		NativeID:    nativeID,
		Profile:     profile,
		Group:       r.firstString(blotatoGroupColumns),
		Enabled:     true,
	}, true
}

func (r BlotatoRow) firstString(columns []string) string {
	for _, c := range columns {
		if v := r.stringValue(c); v != "" {
			return v
		}
	}
	return ""
}

func (r BlotatoRow) stringValue(column string) string {
	raw, ok := r[column]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// FromPostiz normalizes a Postiz listing. A repeated id keeps its first record.
func FromPostiz(records []PostizIntegration) []Target {
	out := make([]Target, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if t, ok := rec.Normalize(i); ok && firstSeen(seen, t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// FromBlotato normalizes a Blotato profiles listing. A repeated row_number keeps
// its first row.
func FromBlotato(rows []BlotatoRow) []Target {
	out := make([]Target, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		if t, ok := row.Normalize(i); ok && firstSeen(seen, t.ID) {
			out = append(out, t)
		}
	}
	return out
}

func firstSeen(seen map[string]struct{}, id string) bool {
	if _, dup := seen[id]; dup {
		return false
	}
	seen[id] = struct{}{}
	return true
}

// Normalize merges both raw listings into one sorted sequence.
func Normalize(postiz []PostizIntegration, blotato []BlotatoRow) []Target {
	return Merge(FromPostiz(postiz), FromBlotato(blotato))
}
