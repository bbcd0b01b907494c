// Package export renders the contributions table into a spreadsheet for
// authorized operators.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"contribot/internal/core"
)

// Source reads every stored record, newest first.
type Source interface {
	All(ctx context.Context) ([]core.Contribution, error)
}

// Renderer writes a header row plus data rows to path.
type Renderer interface {
	Render(path string, header []string, rows [][]any) error
}

type Exporter struct {
	source   Source
	renderer Renderer
	admins   map[int64]struct{}
	dir      string
	now      func() time.Time
}

type Option func(*Exporter)

func WithRenderer(r Renderer) Option {
	return func(e *Exporter) { e.renderer = r }
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

func New(source Source, admins []int64, dir string, opts ...Option) *Exporter {
	e := &Exporter{
		source:   source,
		renderer: XLSXRenderer{},
		admins:   make(map[int64]struct{}, len(admins)),
		dir:      dir,
		now:      time.Now,
	}
	for _, id := range admins {
		e.admins[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Authorized reports whether userID may export.
func (e *Exporter) Authorized(userID int64) bool {
	_, ok := e.admins[userID]
	return ok
}

// Export writes every record to a timestamped .xlsx and returns its path.
func (e *Exporter) Export(ctx context.Context, requester int64) (string, error) {
	if !e.Authorized(requester) {
		slog.WarnContext(ctx, "Export denied", "user_id", requester)
		return "", core.ErrNotAuthorized
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", core.ExportFault("create export directory", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("contributions_export_%s.xlsx", e.now().Format("20060102_150405")))

	n, err := e.WriteFile(ctx, path)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Contributions exported",
		"user_id", requester,
		"rows", n,
		"path", path)
	return path, nil
}

// WriteFile renders every record to path without an authorization check.
// It is the operator path used by the report CLI.
func (e *Exporter) WriteFile(ctx context.Context, path string) (int, error) {
	records, err := e.source.All(ctx)
	if err != nil {
		return 0, core.ExportFault("read records", err)
	}
	if len(records) == 0 {
		return 0, core.ErrNothingToExport
	}

	rows := make([][]any, 0, len(records))
	for _, c := range records {
		rows = append(rows, c.Values())
	}

	if err := e.renderer.Render(path, core.RecordColumns, rows); err != nil {
		return 0, core.ExportFault("render spreadsheet", err)
	}
	return len(rows), nil
}
