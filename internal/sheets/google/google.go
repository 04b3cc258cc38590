package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cleverspend/internal/core"
	ports "cleverspend/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Exporter appends expense rows to a Google spreadsheet.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	loc           *time.Location
}

var _ ports.ExpenseExporter = (*Exporter)(nil)

// New builds an exporter on top of an explicitly configured Sheets service.
// sheetBase is prefixed with the current year unless it already carries one.
func New(ctx context.Context, spreadsheetID, sheetBase string, loc *time.Location, opts ...goption.ClientOption) (*Exporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Expenses"
	}
	if loc == nil {
		loc = time.Local
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheet:         yearPrefixedName(sheetBase, time.Now().In(loc).Year()),
		loc:           loc,
	}, nil
}

// NewFromEnv builds an exporter authenticated with service account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, sheetBase string, loc *time.Location) (*Exporter, error) {
	creds, err := serviceAccountCredentials(ctx)
	if err != nil {
		return nil, err
	}
	return New(ctx, spreadsheetID, sheetBase, loc,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func serviceAccountCredentials(ctx context.Context) ([]byte, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// SheetName is the year-prefixed tab the exporter writes to.
func (x *Exporter) SheetName() string { return x.sheet }

// AppendExpenses appends one row per expense after the last used row.
func (x *Exporter) AppendExpenses(ctx context.Context, expenses []core.Expense) (string, error) {
	if x.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(expenses) == 0 {
		return "", nil
	}

	rng := fmt.Sprintf("%s!A:D", x.sheet)
	vr := &gsheet.ValueRange{Values: ports.Rows(expenses, x.loc)}

	resp, err := x.svc.Spreadsheets.Values.Append(x.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", x.sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Exported expenses to sheet",
		"sheet", x.sheet,
		"rows", len(expenses),
		"range", ref)

	return ref, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// four-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
