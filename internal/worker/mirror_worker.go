package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contribot/internal/amqp"
	"contribot/internal/core"
	"contribot/internal/sheets"
)

// RecordReader loads a stored contribution by id.
type RecordReader interface {
	Get(ctx context.Context, id int64) (core.Contribution, error)
}

// MirrorWorker copies stored contributions to Google Sheets
type MirrorWorker struct {
	store  RecordReader
	sheets sheets.ContributionAppender
}

func NewMirrorWorker(store RecordReader, sheets sheets.ContributionAppender) *MirrorWorker {
	return &MirrorWorker{
		store:  store,
		sheets: sheets,
	}
}

// HandleContributionRecorded processes a single message from AMQP. A
// returned error requeues the message. Records missing from the store are
// dropped since they can never be mirrored.
func (w *MirrorWorker) HandleContributionRecorded(ctx context.Context, msg *amqp.ContributionRecordedMessage) error {
	slog.InfoContext(ctx, "Processing contribution message",
		"id", msg.ID,
		"published_at", msg.Timestamp)

	contribution, err := w.store.Get(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Contribution not found, dropping message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get contribution from storage: %w", err)
	}

	ref, err := w.sheets.Append(ctx, contribution)
	if err != nil {
		return fmt.Errorf("append contribution to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully mirrored contribution",
		"id", contribution.ID,
		"sheets_ref", ref,
		"category", contribution.Category,
		"amount", contribution.Amount.String())
	return nil
}

// Prepare writes the sheet header when the adapter supports it.
func (w *MirrorWorker) Prepare(ctx context.Context) error {
	hw, ok := w.sheets.(sheets.HeaderWriter)
	if !ok {
		return nil
	}
	if err := hw.EnsureHeader(ctx); err != nil {
		return fmt.Errorf("prepare sheet: %w", err)
	}
	return nil
}
