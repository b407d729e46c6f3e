package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

type ReportRepository struct {
	s *Store
}

func NewReportRepository(s *Store) *ReportRepository {
	return &ReportRepository{s: s}
}

const reportCols = `id, user_id, city, status, file_path, created_at`

func scanReport(row scanner) (*domain.Report, error) {
	var (
		rep      domain.Report
		status   string
		filePath sql.NullString
		created  int64
	)
	if err := row.Scan(&rep.ID, &rep.UserID, &rep.City, &status, &filePath, &created); err != nil {
		return nil, err
	}
	rep.Status = domain.ReportStatus(status)
	if filePath.Valid {
		rep.FilePath = &filePath.String
	}
	rep.CreatedAt = unixToTime(created)
	return &rep, nil
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	row := r.s.queryRow(ctx,
		`INSERT INTO reports (user_id, city, status, created_at) VALUES (?, ?, ?, ?) RETURNING `+reportCols,
		report.UserID, report.City, string(report.Status), report.CreatedAt.Unix(),
	)
	created, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	return created, nil
}

func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*domain.Report, error) {
	row := r.s.queryRow(ctx, `SELECT `+reportCols+` FROM reports WHERE id = ?`, id)
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find report: %w", err)
	}
	return rep, nil
}

func (r *ReportRepository) List(ctx context.Context, filter ports.ReportFilter) ([]*domain.Report, int64, error) {
	where, args := "", []any{}
	if filter.UserID != 0 {
		where, args = ` WHERE user_id = ?`, append(args, filter.UserID)
	}

	var total int64
	if err := r.s.queryRow(ctx, `SELECT COUNT(*) FROM reports`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	rows, err := r.s.query(ctx,
		`SELECT `+reportCols+` FROM reports`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, filter.Limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	reports, err := collectReports(rows)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func collectReports(rows *sql.Rows) ([]*domain.Report, error) {
	defer rows.Close()
	reports := make([]*domain.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func (r *ReportRepository) Complete(ctx context.Context, id int64, filePath string) error {
	return r.transition(ctx,
		`UPDATE reports SET status = ?, file_path = ? WHERE id = ? AND status = ?`,
		string(domain.ReportCompleted), filePath, id, string(domain.ReportPending),
	)
}

func (r *ReportRepository) Fail(ctx context.Context, id int64) error {
	return r.transition(ctx,
		`UPDATE reports SET status = ? WHERE id = ? AND status = ?`,
		string(domain.ReportFailed), id, string(domain.ReportPending),
	)
}

func (r *ReportRepository) transition(ctx context.Context, query string, args ...any) error {
	res, err := r.s.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) Delete(ctx context.Context, id int64) (*domain.Report, error) {
	row := r.s.queryRow(ctx, `DELETE FROM reports WHERE id = ? RETURNING `+reportCols, id)
	rep, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete report: %w", err)
	}
	return rep, nil
}

func (r *ReportRepository) DeleteByUser(ctx context.Context, userID int64) ([]*domain.Report, error) {
	rows, err := r.s.query(ctx, `DELETE FROM reports WHERE user_id = ? RETURNING `+reportCols, userID)
	if err != nil {
		return nil, fmt.Errorf("delete user reports: %w", err)
	}
	return collectReports(rows)
}
