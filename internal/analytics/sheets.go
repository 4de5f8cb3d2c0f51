package analytics

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsConfig configures a SheetsBeacon.
type SheetsConfig struct {
	SpreadsheetID   string
	Range           string // e.g. "clicks!A:G"
	CredentialsPath string
	CredentialsJSON []byte
	Options         []option.ClientOption
}

// SheetsBeacon appends one row per click to a Google Sheet.
type SheetsBeacon struct {
	service       *sheets.Service
	spreadsheetID string
	rng           string
}

func NewSheetsBeacon(ctx context.Context, cfg SheetsConfig) (*SheetsBeacon, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	} else if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	}
	opts = append(opts, cfg.Options...)

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	rng := cfg.Range
	if rng == "" {
		rng = "clicks!A:G"
	}
	return &SheetsBeacon{service: service, spreadsheetID: cfg.SpreadsheetID, rng: rng}, nil
}

// Row is the sheet layout: timestamp, event, job id, company, title, destination, source.
func (e ClickEvent) Row() []interface{} {
	return []interface{}{
		e.At.Format(time.RFC3339),
		EventJobClick,
		e.JobID,
		e.Company,
		e.JobTitle,
		e.DestinationURL,
		e.Source,
	}
}

func (b *SheetsBeacon) Track(ctx context.Context, e ClickEvent) error {
	_, err := b.service.Spreadsheets.Values.Append(b.spreadsheetID, b.rng, &sheets.ValueRange{
		Values: [][]interface{}{e.Row()},
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: failed to append click: %w", err)
	}
	return nil
}
