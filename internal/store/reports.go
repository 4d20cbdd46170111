package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/hygieneops/internal/core"
)

const reportsSelect = `SELECT r.report_date,
       COALESCE(r.service_id, ''),
       COALESCE(r.technician_name, ''),
       COALESCE(r.site_officer_name, ''),
       COALESCE(r.client_email, ''),
       COALESCE(r.comments, ''),
       COALESCE(ru.clients, ''),
       COALESCE(ru.suburb, '')
FROM customer_service_reports r
LEFT JOIN runs ru ON ru.id = r.run_id`

// buildReportsQuery applies filter to the report listing.
func buildReportsQuery(filter core.ReportFilter) (string, []any) {
	wb := NewWhereBuilder()
	wb.AddSearch(filter.Search,
		"r.service_id",
		"r.technician_name",
		"r.site_officer_name",
		"r.client_email",
	)
	wb.Add("r.technician_name", filter.Technician)

	where, args := wb.Build()
	return reportsSelect + where + "\nORDER BY r.report_date DESC", args
}

// ListReports returns service reports with their run's client and suburb,
// newest first.
func (s *Store) ListReports(ctx context.Context, filter core.ReportFilter) ([]core.ReportRow, error) {
	query, args := buildReportsQuery(filter)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	reports, err := pgx.CollectRows(rows, scanReport)
	if err != nil {
		return nil, fmt.Errorf("scan reports: %w", err)
	}
	return reports, nil
}

func scanReport(row pgx.CollectableRow) (core.ReportRow, error) {
	var (
		r    core.ReportRow
		date pgtype.Timestamptz
	)
	err := row.Scan(
		&date,
		&r.ServiceID,
		&r.Technician,
		&r.SiteOfficer,
		&r.ClientEmail,
		&r.Comments,
		&r.Client,
		&r.Suburb,
	)
	if date.Valid {
		r.ReportDate = date.Time
	}
	return r, err
}
