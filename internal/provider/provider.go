// Package provider holds what the Postiz and Blotato adapters share: the submission
// contract, the response body type and the error taxonomy.
package provider

import (
	"context"
	"time"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/internal/target"
)

// ScheduleMode selects immediate or deferred publishing.
type ScheduleMode string

const (
	ScheduleImmediate ScheduleMode = "immediate"
	ScheduleScheduled ScheduleMode = "scheduled"
)

// Submission is everything an adapter needs besides the asset itself. Targets is
// already restricted to the adapter's provider.
type Submission struct {
	RequestID     string
	Targets       []target.Target
	Category      media.Category
	ScheduleMode  ScheduleMode
	ScheduledAt   *time.Time
	BodyText      string
	SecondaryText string
}

// Result is what an adapter call produced. PublicURL is set by adapters that publish
// by reference, even when the upstream call failed.
type Result struct {
	Body      Body
	PublicURL string
}

// Submitter publishes one asset through one provider.
type Submitter interface {
	Provider() target.Provider
	// Configured returns a *ConfigError when required settings are missing.
	Configured() error
	Submit(ctx context.Context, asset media.Asset, sub Submission) (Result, error)
}
