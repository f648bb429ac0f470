// Package google implements the order ledger on a Google Sheet.
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

	"mataam/internal/core"
	ports "mataam/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ordersSheet   string
}

var _ ports.OrderLedger = (*Client)(nil)

// NewFromEnv creates a ledger client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. GOOGLE_ORDERS_SHEET_NAME overrides
// the target sheet, defaulting to "Orders".
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ordersSheet := strings.TrimSpace(os.Getenv("GOOGLE_ORDERS_SHEET_NAME"))
	if ordersSheet == "" {
		ordersSheet = "Orders"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ordersSheet:   ordersSheet,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
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

// AppendOrder writes one ledger row per order. Line items are collapsed
// into a single "name x qty" column so a row stays human-readable.
func (c *Client) AppendOrder(ctx context.Context, o core.Order) (string, error) {
	items := make([]string, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = fmt.Sprintf("%s x%d", l.MenuItemName, l.Quantity)
	}

	row := []any{
		o.OrderNumber,
		o.OrderDate.Format("2006-01-02 15:04"),
		strings.Join(items, ", "),
		o.TotalAmount.SAR(),
		o.DiscountAmount.SAR(),
		o.Tips.SAR(),
		o.NetRevenue().SAR(),
		o.CustomerInfo.Name,
		o.CustomerInfo.Phone,
		o.Status,
		o.Source,
	}

	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.ordersSheet+"!A:K", &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append order row: %w", err)
	}

	rowRef := ""
	if resp.Updates != nil {
		rowRef = resp.Updates.UpdatedRange
	}
	if rowRef == "" {
		rowRef = strconv.FormatInt(time.Now().Unix(), 10)
	}

	slog.InfoContext(ctx, "Order appended to ledger",
		"order_number", o.OrderNumber,
		"range", rowRef)
	return rowRef, nil
}
