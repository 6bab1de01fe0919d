package publish

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/target"
)

// Request is one publish submission. Targets are immutable for its lifetime.
type Request struct {
	ID            string
	Targets       []target.Target
	Category      media.Category
	ScheduleMode  provider.ScheduleMode
	ScheduledAt   *time.Time
	BodyText      string
	SecondaryText string
	Assets        []media.Asset
}

// ValidationError rejects a request before anything is dispatched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid publish request: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Plan is the outcome of validation: what will actually be dispatched.
type Plan struct {
	Category     media.Category
	ScheduleMode provider.ScheduleMode
	// Targets is the effective target set after platform filtering.
	Targets []target.Target
	// Dropped lists targets removed by platform filtering.
	Dropped []target.Target
}

// Validate checks req against limits and computes the effective target set.
// It performs no I/O.
func Validate(req Request, limits media.Limits) (Plan, error) {
	if len(req.Targets) == 0 {
		return Plan{}, invalid("no targets selected")
	}
	seen := make(map[string]struct{}, len(req.Targets))
	for _, t := range req.Targets {
		if _, dup := seen[t.ID]; dup {
			return Plan{}, invalid("target %s selected more than once", t.ID)
		}
		seen[t.ID] = struct{}{}
		if !t.Enabled {
			return Plan{}, invalid("target %s is disabled", t.ID)
		}
		if t.Provider != target.ProviderPostiz && t.Provider != target.ProviderBlotato {
			return Plan{}, invalid("target %s has unknown provider %q", t.ID, t.Provider)
		}
	}

	if strings.TrimSpace(req.BodyText) == "" && len(req.Assets) == 0 {
		return Plan{}, invalid("either text or media is required")
	}

	mode := req.ScheduleMode
	switch mode {
	case "":
		mode = provider.ScheduleImmediate
	case provider.ScheduleImmediate, provider.ScheduleScheduled:
	default:
		return Plan{}, invalid("unknown schedule mode %q", mode)
	}
	if mode == provider.ScheduleScheduled && (req.ScheduledAt == nil || req.ScheduledAt.IsZero()) {
		return Plan{}, invalid("scheduled publishing requires a scheduled time")
	}

	category, err := assetCategory(req)
	if err != nil {
		return Plan{}, err
	}

	if len(req.Assets) > 0 {
		if limit := limits.MaxCount(category); len(req.Assets) > limit {
			return Plan{}, invalid("%d %s files exceed the limit of %d", len(req.Assets), category, limit)
		}
		ceiling := limits.MaxBytes(category)
		for _, a := range req.Assets {
			if a.Size() > ceiling {
				return Plan{}, invalid("%s is %s, %s files are limited to %s",
					a.Name, humanize.IBytes(uint64(a.Size())), category, humanize.IBytes(uint64(ceiling)))
			}
		}
	}

	plan := Plan{Category: category, ScheduleMode: mode, Targets: make([]target.Target, 0, len(req.Targets))}
	for _, t := range req.Targets {
		if category == media.CategoryImage && t.Platform == target.PlatformYouTube {
			plan.Dropped = append(plan.Dropped, t)
			continue
		}
		plan.Targets = append(plan.Targets, t)
	}
	if len(plan.Targets) == 0 {
		return Plan{}, invalid("no targets left to publish to after removing targets that cannot receive %s posts", category)
	}
	return plan, nil
}

func assetCategory(req Request) (media.Category, error) {
	category := req.Category
	for _, a := range req.Assets {
		if a.Category != media.CategoryImage && a.Category != media.CategoryVideo {
			return "", invalid("%s is not an image or video", a.Name)
		}
		if category == "" {
			category = a.Category
			continue
		}
		if a.Category != category {
			return "", invalid("images and videos cannot be mixed in one post")
		}
	}
	return category, nil
}
