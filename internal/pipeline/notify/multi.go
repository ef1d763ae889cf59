package notify

import (
	"context"
	"errors"

	dataset "analyzer-training/internal/dataset/domain"
)

// MultiNotifier forwards a summary to several notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier constructs a MultiNotifier.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Notify forwards the summary to every notifier and joins their errors.
func (m *MultiNotifier) Notify(ctx context.Context, summary dataset.BuildSummary) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, notifier := range m.notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
