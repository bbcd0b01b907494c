package core

// CategoryTotal is the count and sum of amounts for one category.
type CategoryTotal struct {
	Category Category
	Count    int64
	Total    Amount
}

// MonthlySummary aggregates the records of one year+month. Categories
// without records are absent from ByCategory.
type MonthlySummary struct {
	Year       int
	Month      Month
	ByCategory []CategoryTotal
}

// Get returns the totals for c, if present.
func (s MonthlySummary) Get(c Category) (CategoryTotal, bool) {
	for _, ct := range s.ByCategory {
		if ct.Category == c {
			return ct, true
		}
	}
	return CategoryTotal{}, false
}
