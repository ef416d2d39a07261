// Package google appends generated statements to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"releve/internal/core"
	"releve/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const Name = "sheets"

// Options configures a Client built from credentials.
type Options struct {
	SpreadsheetID string
	// SheetName is the base tab name; the statement year is prefixed ("2024 Statements").
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
}

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Statements"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     strings.TrimSpace(sheetName),
		logger:        log.Nop().WithComponent(log.ComponentSheets),
	}
}

// NewFromOptions creates a Sheets client authenticated with a service account.
func NewFromOptions(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, strings.TrimSpace(opts.SpreadsheetID), opts.SheetName), nil
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Statements").
func NewFromEnv(ctx context.Context) (*Client, error) {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return NewFromOptions(ctx, Options{
		SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile: file,
	})
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	var creds []byte
	switch {
	case credentialsJSON != "":
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SetLogger replaces the discard logger.
func (c *Client) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l.WithComponent(log.ComponentSheets)
	}
}

func (c *Client) Name() string { return Name }

// SheetFor returns the tab a period is written to.
func (c *Client) SheetFor(p core.Period) string {
	return yearPrefixedName(c.sheetBase, p.Year)
}

// Render appends one row per transaction and returns the updated range.
func (c *Client) Render(ctx context.Context, st core.Statement) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := st.Batch.Period.Validate(); err != nil {
		return "", err
	}
	values := rows(st)
	sheet := c.SheetFor(st.Batch.Period)
	if len(values) == 0 {
		return "", nil
	}

	rng := fmt.Sprintf("%s!A:G", sheet)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "statement appended",
		log.FieldPeriod, st.Batch.Period.String(),
		log.FieldRef, ref,
		log.FieldCount, len(values))
	return ref, nil
}

// ReadMonthOverview scans the year's tab and aggregates the newest run stored for the
// account and month.
func (c *Client) ReadMonthOverview(ctx context.Context, account string, year, month int) (core.Overview, error) {
	if c.svc == nil {
		return core.Overview{}, errors.New("sheets service not initialized")
	}
	p := core.NewPeriod(year, month)
	if err := p.Validate(); err != nil {
		return core.Overview{}, err
	}
	rng := fmt.Sprintf("%s!A:G", c.SheetFor(p))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return core.Overview{}, fmt.Errorf("read %s: %w", rng, err)
	}
	return overviewFromRows(resp.Values, account, p), nil
}
