package publish

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/crosspost/internal/media"
	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/target"
)

// Report is the payload forwarded to downstream aggregation.
type Report struct {
	RequestID   string    `json:"requestId"`
	Status      Status    `json:"status"`
	Metadata    Metadata  `json:"metadata"`
	Ledger      []Outcome `json:"ledger"`
	Notes       []string  `json:"notes,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Metadata describes the request without its media bytes.
type Metadata struct {
	Targets       []target.Target       `json:"targets"`
	Dropped       []target.Target       `json:"droppedTargets,omitempty"`
	Category      media.Category        `json:"mediaType,omitempty"`
	ScheduleMode  provider.ScheduleMode `json:"scheduleMode"`
	ScheduledAt   *time.Time            `json:"scheduledAt,omitempty"`
	BodyText      string                `json:"text"`
	SecondaryText string                `json:"secondaryText,omitempty"`
	Assets        []AssetInfo           `json:"assets"`
}

type AssetInfo struct {
	Name        string         `json:"name"`
	ContentType string         `json:"contentType"`
	Category    media.Category `json:"category"`
	SizeBytes   int64          `json:"sizeBytes"`
}

// ReportingFailedNote prefixes the ledger note left when forwarding fails.
const ReportingFailedNote = "downstream reporting failed"

func buildMetadata(req Request, plan Plan) Metadata {
	assets := make([]AssetInfo, 0, len(req.Assets))
	for _, a := range req.Assets {
		assets = append(assets, AssetInfo{
			Name:        a.Name,
			ContentType: a.ContentType,
			Category:    a.Category,
			SizeBytes:   a.Size(),
		})
	}
	return Metadata{
		Targets:       plan.Targets,
		Dropped:       plan.Dropped,
		Category:      plan.Category,
		ScheduleMode:  plan.ScheduleMode,
		ScheduledAt:   req.ScheduledAt,
		BodyText:      req.BodyText,
		SecondaryText: req.SecondaryText,
		Assets:        assets,
	}
}

// report forwards the ledger. Failure only adds a note; status is already final.
func (o *Orchestrator) report(ctx context.Context, logr *zap.Logger, req Request, plan Plan, status Status, ledger *Ledger) {
	if o.reporter == nil {
		return
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.reportTimeout)
	defer cancel()

	err := o.reporter.Report(rctx, Report{
		RequestID:   req.ID,
		Status:      status,
		Metadata:    buildMetadata(req, plan),
		Ledger:      ledger.Entries(),
		Notes:       ledger.Notes(),
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		logr.Warn("downstream report failed", zap.Error(err))
		ledger.Note(ReportingFailedNote + ": " + err.Error())
	}
}
