package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"contribot/internal/core"
)

// Store keeps contributions in process memory. It honours the same
// ordering and validation rules as the SQLite store.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Contribution
	loc    *time.Location
	now    func() time.Time
}

func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{nextID: 1, loc: loc, now: time.Now}
}

// WithClock replaces the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) Insert(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	stored, err := s.InsertAll(ctx, []core.Contribution{c})
	if err != nil {
		return core.Contribution{}, err
	}
	return stored[0], nil
}

func (s *Store) InsertAll(_ context.Context, cs []core.Contribution) ([]core.Contribution, error) {
	for i, c := range cs {
		if err := c.Validate(); err != nil {
			return nil, core.StorageFault(fmt.Sprintf("validate record %d", i), err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Contribution, 0, len(cs))
	for _, c := range cs {
		c.ID = s.nextID
		s.nextID++
		c.RecordedAt = s.now().In(s.loc)
		c.MemberName = copyName(c.MemberName)
		s.items = append(s.items, c)
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) All(_ context.Context) ([]core.Contribution, error) {
	return s.filter(func(core.Contribution) bool { return true }), nil
}

func (s *Store) ByUser(_ context.Context, userID int64) ([]core.Contribution, error) {
	return s.filter(func(c core.Contribution) bool { return c.UserID == userID }), nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.items {
		if c.ID == id {
			c.MemberName = copyName(c.MemberName)
			return c, nil
		}
	}
	return core.Contribution{}, fmt.Errorf("contribution %d: %w", id, core.ErrNotFound)
}

func (s *Store) MonthlySummary(_ context.Context, year int, month core.Month) (core.MonthlySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := core.MonthlySummary{Year: year, Month: month}
	for _, cat := range []core.Category{core.CategoryFamily, core.CategorySelf} {
		var total core.CategoryTotal
		for _, c := range s.items {
			if c.Year != year || c.Month != month || c.Category != cat {
				continue
			}
			if total.Count == 0 {
				total = core.CategoryTotal{Category: cat, Total: c.Amount}
			} else {
				total.Total = core.NewAmount(total.Total.Add(c.Amount.Decimal))
			}
			total.Count++
		}
		if total.Count > 0 {
			summary.ByCategory = append(summary.ByCategory, total)
		}
	}
	return summary, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) filter(keep func(core.Contribution) bool) []core.Contribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Contribution, 0, len(s.items))
	for _, c := range s.items {
		if keep(c) {
			c.MemberName = copyName(c.MemberName)
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func copyName(name *string) *string {
	if name == nil {
		return nil
	}
	v := *name
	return &v
}
