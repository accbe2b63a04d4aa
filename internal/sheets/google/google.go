// Package google exports transactions to a Google Sheet, one row per
// transaction, so the owner keeps a spreadsheet copy of their history.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finflow/internal/core"
	"finflow/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var (
	_ sheets.RowWriter  = (*Client)(nil)
	_ sheets.RowDeleter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. The target sheet defaults to
// "Transactions <year>".
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = fmt.Sprintf("Transactions %d", time.Now().Year())
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		var err error
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendTransaction writes one row: date, kind, category, amount,
// description, id. The id column lets DeleteTransaction find the row
// again later.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	vr := &gsheet.ValueRange{Values: [][]any{{
		t.OccurredAt.Format("2006-01-02"),
		string(t.Kind),
		t.Category,
		t.Amount.String(),
		t.Description,
		t.ID,
	}}}

	rng := fmt.Sprintf("%s!A:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append row to sheet %s: %w", c.sheetName, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Transaction exported to sheet",
		"transaction_id", t.ID,
		"range", ref)
	return ref, nil
}

// DeleteTransaction blanks the row whose id column matches. The row
// itself stays so later references in the sheet keep their positions.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!F:F", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read id column from sheet %s: %w", c.sheetName, err)
	}

	row := -1
	for i, cells := range resp.Values {
		if len(cells) > 0 && fmt.Sprint(cells[0]) == id {
			row = i + 1 // sheet rows are 1-based
			break
		}
	}
	if row < 0 {
		// Row was never exported or already cleared; nothing to do.
		slog.WarnContext(ctx, "Transaction row not found in sheet", "transaction_id", id)
		return nil
	}

	clearRange := fmt.Sprintf("%s!A%d:F%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in sheet %s: %w", row, c.sheetName, err)
	}

	slog.InfoContext(ctx, "Transaction row cleared in sheet", "transaction_id", id, "row", row)
	return nil
}
