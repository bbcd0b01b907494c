package conversation

import (
	"strings"

	"contribot/internal/core"
)

// Entry is one completed family member triple.
type Entry struct {
	Member    string
	Amount    core.Amount
	ProofPath string
}

// Draft accumulates the answers of one unfinished submission.
type Draft struct {
	Year     int
	Month    core.Month
	Category core.Category

	// scratch for the member or self entry being collected
	MemberName string
	Amount     core.Amount
	// ProofPath is set once the current entry's proof is stored, so a
	// retried commit reuses the stored file.
	ProofPath string

	Entries []Entry
}

func (d *Draft) hasMember(name string) bool {
	for _, e := range d.Entries {
		if strings.EqualFold(e.Member, name) {
			return true
		}
	}
	return false
}

func (d *Draft) clearScratch() {
	d.MemberName = ""
	d.Amount = core.Amount{}
	d.ProofPath = ""
}

func (d Draft) clone() Draft {
	d.Entries = append([]Entry(nil), d.Entries...)
	return d
}

func (d *Draft) record(identity sessionIdentity, e Entry) core.Contribution {
	c := core.Contribution{
		UserID:    identity.userID,
		Username:  identity.displayName,
		Year:      d.Year,
		Month:     d.Month,
		Category:  d.Category,
		Amount:    e.Amount,
		ProofPath: e.ProofPath,
	}
	if d.Category == core.CategoryFamily {
		name := e.Member
		c.MemberName = &name
	}
	return c
}
