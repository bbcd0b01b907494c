package core

import (
	"strings"
	"time"
)

const (
	CategorySelf   Category = "self"
	CategoryFamily Category = "family"
)

type (
	Category string

	// Month is an English calendar month name, e.g. "March".
	Month string

	// Identity identifies the submitting session.
	Identity struct {
		UserID      int64
		DisplayName string
	}

	Contribution struct {
		ID         int64 // assigned by the store
		UserID     int64
		Username   string
		Year       int
		Month      Month
		Category   Category
		MemberName *string // set only for family contributions
		Amount     Amount
		ProofPath  string
		RecordedAt time.Time // assigned by the store
	}
)

// Months lists the selectable months in calendar order.
var Months = []Month{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// DefaultYears are offered when no years are configured.
var DefaultYears = []int{2025, 2026, 2027, 2028, 2029, 2030}

func (c Category) Valid() bool {
	return c == CategorySelf || c == CategoryFamily
}

func (c Category) String() string {
	return string(c)
}

// ParseMonth matches a month name case-insensitively.
func ParseMonth(s string) (Month, bool) {
	s = strings.TrimSpace(s)
	for _, m := range Months {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

func (m Month) Valid() bool {
	for _, known := range Months {
		if m == known {
			return true
		}
	}
	return false
}

func (m Month) String() string {
	return string(m)
}

// Member returns the family member name or "" for self contributions.
func (c Contribution) Member() string {
	if c.MemberName == nil {
		return ""
	}
	return *c.MemberName
}

// Validate checks the fields a caller must supply before insert.
// ID and RecordedAt are owned by the store and not checked here.
func (c Contribution) Validate() error {
	if c.UserID == 0 {
		return &ValidationError{Field: "user_id", Reason: "must be set"}
	}
	if c.Year <= 0 {
		return &ValidationError{Field: "year", Reason: "must be set"}
	}
	if !c.Month.Valid() {
		return &ValidationError{Field: "month", Reason: "unknown month " + strings.TrimSpace(string(c.Month))}
	}
	if !c.Category.Valid() {
		return &ValidationError{Field: "category", Reason: "must be self or family"}
	}
	switch c.Category {
	case CategorySelf:
		if c.MemberName != nil {
			return &ValidationError{Field: "member_name", Reason: "must be empty for self contributions"}
		}
	case CategoryFamily:
		if c.MemberName == nil || strings.TrimSpace(*c.MemberName) == "" {
			return &ValidationError{Field: "member_name", Reason: "required for family contributions"}
		}
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ProofPath) == "" {
		return &ValidationError{Field: "proof_path", Reason: "must be set"}
	}
	return nil
}
