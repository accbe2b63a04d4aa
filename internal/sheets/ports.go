// Package sheets defines the outbound ports for the spreadsheet export
// backend.
package sheets

import (
	"context"

	"finflow/internal/core"
)

type (
	// RowWriter appends one transaction as a spreadsheet row.
	RowWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// RowDeleter clears the row holding the given transaction id.
	RowDeleter interface {
		DeleteTransaction(ctx context.Context, id string) error
	}
)
