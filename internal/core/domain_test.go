package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func validSelf() Contribution {
	return Contribution{
		UserID:    42,
		Username:  "Ana",
		Year:      2026,
		Month:     "March",
		Category:  CategorySelf,
		Amount:    NewAmount(decimal.NewFromInt(500)),
		ProofPath: "screenshots/March/screenshot_42.jpg",
	}
}

func TestContributionValidate(t *testing.T) {
	if err := validSelf().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	family := validSelf()
	family.Category = CategoryFamily
	family.MemberName = strPtr("Mum")
	if err := family.Validate(); err != nil {
		t.Fatalf("expected family ok, got %v", err)
	}

	bads := []func(c *Contribution){
		func(c *Contribution) { c.UserID = 0 },
		func(c *Contribution) { c.Year = 0 },
		func(c *Contribution) { c.Month = "Marzo" },
		func(c *Contribution) { c.Category = "friends" },
		func(c *Contribution) { c.MemberName = strPtr("Mum") },
		func(c *Contribution) { c.Category = CategoryFamily },
		func(c *Contribution) { c.Category = CategoryFamily; c.MemberName = strPtr("  ") },
		func(c *Contribution) { c.Amount = Amount{} },
		func(c *Contribution) { c.ProofPath = "" },
	}
	for i, mutate := range bads {
		c := validSelf()
		mutate(&c)
		err := c.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !IsValidation(err) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in string
		ok bool
		m  Month
	}{
		{"March", true, "March"},
		{"march", true, "March"},
		{" DECEMBER ", true, "December"},
		{"Marzo", false, ""},
		{"", false, ""},
	}
	for _, tc := range cases {
		m, ok := ParseMonth(tc.in)
		if ok != tc.ok || m != tc.m {
			t.Fatalf("ParseMonth(%q) = %q, %v; want %q, %v", tc.in, m, ok, tc.m, tc.ok)
		}
	}
	if Month("march").Valid() {
		t.Fatalf("lowercase month should not be a canonical value")
	}
}

func TestErrorClassification(t *testing.T) {
	if !errors.Is(ErrNothingToExport, ErrExportFault) {
		t.Fatalf("nothing-to-export must be an export fault")
	}
	err := StorageFault("insert", errors.New("disk full"))
	if !errors.Is(err, ErrStorageFault) {
		t.Fatalf("expected storage fault, got %v", err)
	}
	if IsValidation(err) {
		t.Fatalf("storage fault must not classify as validation")
	}
}

func TestContributionValues(t *testing.T) {
	name := "Ben"
	c := Contribution{
		ID:         3,
		UserID:     42,
		Username:   "Ana",
		Year:       2025,
		Month:      "March",
		Category:   CategoryFamily,
		MemberName: &name,
		Amount:     AmountFromFloat(12.5),
		ProofPath:  "March/p.jpg",
		RecordedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	values := c.Values()
	if len(values) != len(RecordColumns) {
		t.Fatalf("got %d values for %d columns", len(values), len(RecordColumns))
	}
	if values[6] != "Ben" || values[7] != 12.5 || values[9] != "2025-03-01 10:00:00" {
		t.Errorf("unexpected values %v", values)
	}

	c.Category = CategorySelf
	c.MemberName = nil
	if got := c.Values()[6]; got != "" {
		t.Errorf("self member_name = %v, want empty", got)
	}
}
