package rest

import (
	"context"
	"net"

	"github.com/bwise1/reportnow/internal/db"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrDuplicateReport  = errors.New("report already exists")
	ErrStoreUnavailable = errors.New("report store unavailable")
)

const (
	uniqueViolationCode = "23505"
	reportColumns       = `id, report_id, report_type, incident_type, title, description, location,
        latitude, longitude, image, status, wants_notifications, email, created_at, updated_at`
)

// Querier runs statements against a pool or an open transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DBTX is the subset of pgxpool.Pool used by ReportRepo.
type DBTX interface {
	Querier
	db.TxBeginner
}

var listTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

type ReportRepo struct {
	DB DBTX
}

func scanReport(row pgx.Row) (model.Report, error) {
	var report model.Report
	err := row.Scan(
		&report.ID, &report.ReportID, &report.ReportType, &report.IncidentType, &report.Title,
		&report.Description, &report.Location, &report.Latitude, &report.Longitude, &report.Image,
		&report.Status, &report.WantsNotifications, &report.Email, &report.CreatedAt, &report.UpdatedAt,
	)
	return report, err
}

// Create inserts a new report. A reportId that already exists yields
// ErrDuplicateReport.
func (repo *ReportRepo) Create(ctx context.Context, report model.Report) (model.Report, error) {
	query := `
        INSERT INTO reports (
            report_id, report_type, incident_type, title, description, location,
            latitude, longitude, image, status, wants_notifications, email
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING ` + reportColumns

	created, err := scanReport(repo.DB.QueryRow(ctx, query,
		report.ReportID, report.ReportType, report.IncidentType, report.Title, report.Description,
		report.Location, report.Latitude, report.Longitude, report.Image, report.Status,
		report.WantsNotifications, report.Email,
	))
	if err != nil {
		return model.Report{}, classify(err, "insert report")
	}
	return created, nil
}

func (repo *ReportRepo) GetByReportID(ctx context.Context, reportID string) (model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE report_id = $1`

	report, err := scanReport(repo.DB.QueryRow(ctx, query, reportID))
	if err != nil {
		return model.Report{}, classify(err, "get report")
	}
	return report, nil
}

// UpdateStatus replaces the status of a report and returns the stored row.
func (repo *ReportRepo) UpdateStatus(ctx context.Context, reportID, status string) (model.Report, error) {
	query := `
        UPDATE reports SET status = $2, updated_at = NOW()
        WHERE report_id = $1
        RETURNING ` + reportColumns

	report, err := scanReport(repo.DB.QueryRow(ctx, query, reportID, status))
	if err != nil {
		return model.Report{}, classify(err, "update report status")
	}
	return report, nil
}

// List returns one page of reports, newest first, with the total number of
// matching rows. Both are read from the same snapshot.
func (repo *ReportRepo) List(ctx context.Context, params model.ListReportsParams) ([]model.Report, int, error) {
	var (
		reports []model.Report
		total   int
		pageErr error
	)
	err := db.RunInTx(ctx, repo.DB, listTxOptions, func(tx pgx.Tx) error {
		reports, total, pageErr = listPage(ctx, tx, params)
		return pageErr
	})
	if pageErr != nil {
		return nil, 0, pageErr
	}
	if err != nil {
		return nil, 0, classify(err, "list reports transaction")
	}
	return reports, total, nil
}

func listPage(ctx context.Context, q Querier, params model.ListReportsParams) ([]model.Report, int, error) {
	filter := `
        WHERE ($1 = '' OR status = $1)
        AND ($2 = '' OR report_type = $2)`

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM reports`+filter, params.Status, params.ReportType).Scan(&total); err != nil {
		return nil, 0, classify(err, "count reports")
	}

	query := `SELECT ` + reportColumns + ` FROM reports` + filter + `
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4`

	rows, err := q.Query(ctx, query, params.Status, params.ReportType, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, classify(err, "list reports")
	}
	defer rows.Close()

	reports := make([]model.Report, 0, params.PageSize)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scan report")
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err, "iterate reports")
	}
	return reports, total, nil
}

// classify maps driver errors onto the repository's sentinel errors.
func classify(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrReportNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicateReport
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(ErrStoreUnavailable, "%s: %v", op, err)
	}

	return errors.Wrap(err, op)
}
