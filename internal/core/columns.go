package core

// RecordColumns is the column order used by every tabular rendering of
// the contributions table.
var RecordColumns = []string{
	"id", "user_id", "username", "year", "month", "category",
	"member_name", "amount", "proof_path", "recorded_at",
}

// RecordedAtLayout is how recorded_at is written into spreadsheets.
const RecordedAtLayout = "2006-01-02 15:04:05"

// Values returns the record's cells in RecordColumns order.
func (c Contribution) Values() []any {
	return []any{
		c.ID,
		c.UserID,
		c.Username,
		c.Year,
		string(c.Month),
		string(c.Category),
		c.Member(),
		c.Amount.Float(),
		c.ProofPath,
		c.RecordedAt.Format(RecordedAtLayout),
	}
}
