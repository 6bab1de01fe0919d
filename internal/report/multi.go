package report

import (
	"context"
	"errors"

	"github.com/your-org/crosspost/internal/publish"
)

// Multi delivers to every sink in order and joins their errors. A failing sink
// does not stop the ones after it.
type Multi []publish.Reporter

func (m Multi) Report(ctx context.Context, r publish.Report) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Report(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
