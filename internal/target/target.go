// Package target normalizes publishing targets from the Postiz and Blotato listings
// into one shape.
package target

import (
	"sort"
	"strings"
)

// Provider identifies the backend a target is published through.
type Provider string

const (
	ProviderPostiz  Provider = "postiz"
	ProviderBlotato Provider = "blotato"
)

// Providers lists every provider in dispatch order.
var Providers = []Provider{ProviderPostiz, ProviderBlotato}

// Platform is the social network behind a target.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformUnknown   Platform = "unknown"
)

var platformAliases = map[string]Platform{
	"facebook":  PlatformFacebook,
	"instagram": PlatformInstagram,
	"twitter":   PlatformTwitter,
	"x":         PlatformTwitter,
	"youtube":   PlatformYouTube,
	"tiktok":    PlatformTikTok,
	"linkedin":  PlatformLinkedIn,
}

// ParsePlatform lower-cases raw and maps it onto a known platform. Variant suffixes
// such as "linkedin-page" or "instagram-standalone" resolve to their base network.
func ParsePlatform(raw string) Platform {
	key := strings.ToLower(strings.TrimSpace(raw))
	if p, ok := platformAliases[key]; ok {
		return p
	}
	if base, _, ok := strings.Cut(key, "-"); ok {
		if p, ok := platformAliases[base]; ok {
			return p
		}
	}
	return PlatformUnknown
}

// UngroupedLabel is shown for targets without a group. It sorts alongside a literal
// group of the same name but never merges with it.
const UngroupedLabel = "ungrouped"

// Target is a normalized publishing destination. ID is unique across providers;
// NativeID is only unique within its provider.
type Target struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"name"`
	Platform    Platform `json:"platform"`
	Provider    Provider `json:"provider"`
	NativeID    string   `json:"providerNativeId"`
	Profile     string   `json:"profile"`
	Picture     string   `json:"picture,omitempty"`
	Group       string   `json:"group,omitempty"`
	Enabled     bool     `json:"enabled"`
}

// Grouped reports whether the target carries an explicit group.
func (t Target) Grouped() bool {
	return t.Group != ""
}

// GroupLabel is the label used for display and ordering.
func (t Target) GroupLabel() string {
	if t.Group == "" {
		return UngroupedLabel
	}
	return t.Group
}

// Merge concatenates independently normalized listings and orders the result by
// group then display name, case-insensitively.
func Merge(listings ...[]Target) []Target {
	out := []Target{}
	for _, l := range listings {
		out = append(out, l...)
	}
	Sort(out)
	return out
}

// Sort orders targets in place by group label then display name. A literal group
// named like UngroupedLabel sorts before the ungrouped bucket.
func Sort(targets []Target) {
	sort.SliceStable(targets, func(i, j int) bool {
		a, b := targets[i], targets[j]
		ga, gb := strings.ToLower(a.GroupLabel()), strings.ToLower(b.GroupLabel())
		if ga != gb {
			return ga < gb
		}
		if a.Grouped() != b.Grouped() {
			return a.Grouped()
		}
		na, nb := strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)
		if na != nb {
			return na < nb
		}
		return a.ID < b.ID
	})
}

// Partition splits targets by provider, preserving order within each provider.
func Partition(targets []Target) map[Provider][]Target {
	out := make(map[Provider][]Target, len(Providers))
	for _, t := range targets {
		out[t.Provider] = append(out[t.Provider], t)
	}
	return out
}
