package sheets

import (
	"context"

	"contribot/internal/core"
)

// Ports for outbound adapters.
type (
	// ContributionAppender mirrors a stored contribution as one sheet row.
	ContributionAppender interface {
		Append(ctx context.Context, c core.Contribution) (rowRef string, err error)
	}

	// HeaderWriter writes the column header when the sheet is empty.
	HeaderWriter interface {
		EnsureHeader(ctx context.Context) error
	}
)
