package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"employee-management-system/internal/config"
	"employee-management-system/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// EmployeeMirror receives copies of roster changes. Implementations must not
// be treated as a source of truth.
type EmployeeMirror interface {
	UpsertEmployees(ctx context.Context, employees []model.Employee) error
	RemoveEmployees(ctx context.Context, ids []string) error
}

// SheetSyncService mirrors employees into a Google spreadsheet, one row per
// employee keyed by ID in column A.
type SheetSyncService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

var sheetHeader = []interface{}{"ID", "Name", "Email", "Phone", "Job Title", "Department", "Status", "Owner", "Created At", "Updated At"}

// NewSheetSyncService returns nil when the mirror is disabled. A nil
// *SheetSyncService is a valid no-op mirror.
func NewSheetSyncService(ctx context.Context, cfg config.SheetsConfig) (*SheetSyncService, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	b, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("reading sheets credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("loading sheets credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return newSheetSync(srv, cfg.SpreadsheetID, cfg.SheetName), nil
}

func newSheetSync(srv *sheets.Service, spreadsheetID, sheetName string) *SheetSyncService {
	return &SheetSyncService{service: srv, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// EnsureHeader writes the header row when the sheet is empty.
func (s *SheetSyncService) EnsureHeader(ctx context.Context) error {
	if s == nil {
		return nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1:J1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading sheet header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	_, err = s.service.Spreadsheets.Values.Update(
		s.spreadsheetID,
		s.sheetName+"!A1:J1",
		&sheets.ValueRange{Values: [][]interface{}{sheetHeader}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheet header: %w", err)
	}
	return nil
}

// UpsertEmployees rewrites the rows of known employees in place and appends
// the rest.
func (s *SheetSyncService) UpsertEmployees(ctx context.Context, employees []model.Employee) error {
	if s == nil || len(employees) == 0 {
		return nil
	}

	rows, err := s.rowIndex(ctx)
	if err != nil {
		return err
	}

	var updates []*sheets.ValueRange
	var appends [][]interface{}
	for i := range employees {
		values := employeeRow(&employees[i])
		if row, ok := rows[employees[i].ID]; ok {
			updates = append(updates, &sheets.ValueRange{
				Range:  fmt.Sprintf("%s!A%d:J%d", s.sheetName, row, row),
				Values: [][]interface{}{values},
			})
			continue
		}
		appends = append(appends, values)
	}

	if len(updates) > 0 {
		_, err := s.service.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: "RAW",
			Data:             updates,
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("updating sheet rows: %w", err)
		}
	}

	if len(appends) > 0 {
		_, err := s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			s.sheetName+"!A2:J",
			&sheets.ValueRange{Values: appends},
		).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("appending sheet rows: %w", err)
		}
	}

	return nil
}

// RemoveEmployees blanks the rows of the given employees.
func (s *SheetSyncService) RemoveEmployees(ctx context.Context, ids []string) error {
	if s == nil || len(ids) == 0 {
		return nil
	}

	rows, err := s.rowIndex(ctx)
	if err != nil {
		return err
	}

	var ranges []string
	for _, id := range ids {
		if row, ok := rows[id]; ok {
			ranges = append(ranges, fmt.Sprintf("%s!A%d:J%d", s.sheetName, row, row))
		}
	}
	if len(ranges) == 0 {
		return nil
	}

	_, err = s.service.Spreadsheets.Values.BatchClear(s.spreadsheetID, &sheets.BatchClearValuesRequest{
		Ranges: ranges,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheet rows: %w", err)
	}
	return nil
}

// rowIndex maps employee ID to its 1-based sheet row.
func (s *SheetSyncService) rowIndex(ctx context.Context) (map[string]int, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A2:A").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet ids: %w", err)
	}

	rows := make(map[string]int, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := row[0].(string); ok && id != "" {
			rows[id] = i + 2 // data starts at A2
		}
	}
	return rows, nil
}

func employeeRow(e *model.Employee) []interface{} {
	return []interface{}{
		e.ID,
		e.Name,
		e.Email,
		e.Phone,
		e.JobTitle,
		e.Department,
		string(e.Status),
		e.OwnerUserID,
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	}
}
