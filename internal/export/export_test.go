package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"contribot/internal/core"
)

type staticSource struct {
	records []core.Contribution
	err     error
	calls   int
}

func (s *staticSource) All(context.Context) ([]core.Contribution, error) {
	s.calls++
	return s.records, s.err
}

type failingRenderer struct{}

func (failingRenderer) Render(string, []string, [][]any) error { return errors.New("disk full") }

func sample(n int) []core.Contribution {
	out := make([]core.Contribution, 0, n)
	for i := 0; i < n; i++ {
		c := core.Contribution{
			ID:         int64(n - i),
			UserID:     42,
			Username:   "Ana",
			Year:       2025,
			Month:      "March",
			Category:   core.CategorySelf,
			Amount:     core.AmountFromFloat(12.5),
			ProofPath:  "screenshots/March/p.jpg",
			RecordedAt: time.Date(2025, 3, 1, 10, 0, i, 0, time.UTC),
		}
		if i%2 == 1 {
			name := "Ben"
			c.Category = core.CategoryFamily
			c.MemberName = &name
		}
		out = append(out, c)
	}
	return out
}

var fixedNow = func() time.Time { return time.Date(2025, 4, 2, 8, 15, 30, 0, time.UTC) }

func TestExportWritesHeaderAndRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	src := &staticSource{records: sample(3)}
	exp := New(src, []int64{42}, dir, WithClock(fixedNow))

	path, err := exp.Export(context.Background(), 42)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if want := filepath.Join(dir, "contributions_export_20250402_081530.xlsx"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 1 header + 3 data rows, got %d", len(rows))
	}
	for i, col := range core.RecordColumns {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "3" || rows[1][2] != "Ana" || rows[1][7] != "12.5" {
		t.Errorf("unexpected first data row %v", rows[1])
	}
	if rows[2][6] != "Ben" {
		t.Errorf("member_name = %q, want Ben", rows[2][6])
	}
}

func TestExportNotAuthorized(t *testing.T) {
	dir := t.TempDir()
	src := &staticSource{records: sample(2)}
	exp := New(src, []int64{1}, dir)

	_, err := exp.Export(context.Background(), 42)
	if !errors.Is(err, core.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if src.calls != 0 {
		t.Errorf("records should not be read, got %d calls", src.calls)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("no document should be produced, found %d files", len(entries))
	}
}

func TestExportNothingToExport(t *testing.T) {
	exp := New(&staticSource{}, []int64{42}, t.TempDir())

	_, err := exp.Export(context.Background(), 42)
	if !errors.Is(err, core.ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if !errors.Is(err, core.ErrExportFault) {
		t.Errorf("nothing to export should be an export fault, got %v", err)
	}
}

func TestExportFaults(t *testing.T) {
	tests := []struct {
		name string
		exp  *Exporter
	}{
		{
			name: "source error",
			exp:  New(&staticSource{err: errors.New("db down")}, []int64{42}, t.TempDir()),
		},
		{
			name: "render error",
			exp:  New(&staticSource{records: sample(1)}, []int64{42}, t.TempDir(), WithRenderer(failingRenderer{})),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.exp.Export(context.Background(), 42)
			if !errors.Is(err, core.ErrExportFault) {
				t.Fatalf("expected ErrExportFault, got %v", err)
			}
			if errors.Is(err, core.ErrNothingToExport) {
				t.Errorf("should not be reported as nothing to export: %v", err)
			}
		})
	}
}

func TestWriteFileSkipsAuthorization(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	exp := New(&staticSource{records: sample(2)}, nil, t.TempDir())

	n, err := exp.WriteFile(context.Background(), path)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}
