package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"contribot/internal/core"

	_ "modernc.org/sqlite"
)

// recordedAtLayout is the display form of recorded_at. Ordering uses
// recorded_at_unix, which is zone independent.
const recordedAtLayout = "2006-01-02 15:04:05.000000-07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	loc     *time.Location
	now     func() time.Time
}

type Option func(*SQLiteRepository)

// WithLocation sets the zone recorded_at timestamps are stamped in.
func WithLocation(loc *time.Location) Option {
	return func(r *SQLiteRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("sqlite database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; each insert is its own transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		loc:     time.UTC,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert appends one record and returns it with ID and RecordedAt set.
func (r *SQLiteRepository) Insert(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	stored, err := r.InsertAll(ctx, []core.Contribution{c})
	if err != nil {
		return core.Contribution{}, err
	}
	return stored[0], nil
}

// InsertAll appends every record in a single transaction. Either all
// records are stored or none.
func (r *SQLiteRepository) InsertAll(ctx context.Context, cs []core.Contribution) ([]core.Contribution, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return nil, core.StorageFault(fmt.Sprintf("validate record %d", i), err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, core.StorageFault("begin transaction", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	stored := make([]core.Contribution, 0, len(cs))
	for _, c := range cs {
		now := r.now()
		row, err := q.CreateContribution(ctx, CreateContributionParams{
			UserID:         c.UserID,
			Username:       sql.NullString{String: c.Username, Valid: c.Username != ""},
			Year:           int64(c.Year),
			Month:          string(c.Month),
			Category:       string(c.Category),
			MemberName:     nullString(c.MemberName),
			Amount:         c.Amount.String(),
			ProofPath:      c.ProofPath,
			RecordedAt:     now.In(r.loc).Format(recordedAtLayout),
			RecordedAtUnix: now.UnixMicro(),
		})
		if err != nil {
			return nil, core.StorageFault("create contribution", err)
		}
		out, err := r.fromRow(row)
		if err != nil {
			return nil, core.StorageFault("decode contribution", err)
		}
		stored = append(stored, out)
	}

	if err := tx.Commit(); err != nil {
		return nil, core.StorageFault("commit transaction", err)
	}

	for _, c := range stored {
		slog.InfoContext(ctx, "Contribution saved to SQLite",
			"id", c.ID,
			"user_id", c.UserID,
			"year", c.Year,
			"month", c.Month,
			"category", c.Category,
			"amount", c.Amount.String())
	}

	return stored, nil
}

// All returns every record, newest first.
func (r *SQLiteRepository) All(ctx context.Context) ([]core.Contribution, error) {
	rows, err := r.queries.ListContributions(ctx)
	if err != nil {
		return nil, core.StorageFault("list contributions", err)
	}
	return r.fromRows(rows)
}

// ByUser returns the records submitted by userID, newest first.
func (r *SQLiteRepository) ByUser(ctx context.Context, userID int64) ([]core.Contribution, error) {
	rows, err := r.queries.ListContributionsByUser(ctx, userID)
	if err != nil {
		return nil, core.StorageFault("list contributions by user", err)
	}
	return r.fromRows(rows)
}

// Get returns a single record by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Contribution, error) {
	row, err := r.queries.GetContribution(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Contribution{}, fmt.Errorf("contribution %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Contribution{}, core.StorageFault("get contribution", err)
	}
	c, err := r.fromRow(row)
	if err != nil {
		return core.Contribution{}, core.StorageFault("decode contribution", err)
	}
	return c, nil
}

// MonthlySummary returns count and total per category for year+month.
func (r *SQLiteRepository) MonthlySummary(ctx context.Context, year int, month core.Month) (core.MonthlySummary, error) {
	summary := core.MonthlySummary{Year: year, Month: month}

	rows, err := r.queries.ListPeriodAmounts(ctx, int64(year), string(month))
	if err != nil {
		return summary, core.StorageFault("get monthly summary", err)
	}
	// Rows arrive grouped by category.
	for _, row := range rows {
		amount, err := core.AmountFromString(row.Amount)
		if err != nil {
			return summary, core.StorageFault("decode amount", err)
		}
		n := len(summary.ByCategory)
		if n == 0 || summary.ByCategory[n-1].Category != core.Category(row.Category) {
			summary.ByCategory = append(summary.ByCategory, core.CategoryTotal{Category: core.Category(row.Category)})
			n++
		}
		ct := &summary.ByCategory[n-1]
		ct.Count++
		ct.Total = core.NewAmount(ct.Total.Add(amount.Decimal))
	}
	return summary, nil
}

func (r *SQLiteRepository) fromRows(rows []Contribution) ([]core.Contribution, error) {
	out := make([]core.Contribution, 0, len(rows))
	for _, row := range rows {
		c, err := r.fromRow(row)
		if err != nil {
			return nil, core.StorageFault("decode contribution", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *SQLiteRepository) fromRow(row Contribution) (core.Contribution, error) {
	amount, err := core.AmountFromString(row.Amount)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("parse amount %q: %w", row.Amount, err)
	}
	c := core.Contribution{
		ID:         row.ID,
		UserID:     row.UserID,
		Username:   row.Username.String,
		Year:       int(row.Year),
		Month:      core.Month(row.Month),
		Category:   core.Category(row.Category),
		Amount:     amount,
		ProofPath:  row.ProofPath,
		RecordedAt: time.UnixMicro(row.RecordedAtUnix).In(r.loc),
	}
	if row.MemberName.Valid {
		name := row.MemberName.String
		c.MemberName = &name
	}
	return c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
