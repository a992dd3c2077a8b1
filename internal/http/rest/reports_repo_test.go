package rest

import (
	"context"
	"testing"
	"time"

	"github.com/bwise1/reportnow/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoColumns = []string{
	"id", "report_id", "report_type", "incident_type", "title", "description", "location",
	"latitude", "longitude", "image", "status", "wants_notifications", "email", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*ReportRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &ReportRepo{DB: mock}, mock
}

func sampleReport() model.Report {
	return model.Report{
		ReportID:           "a1b2c3d4e5f60718",
		ReportType:         model.ReportTypeEmergency,
		IncidentType:       "Fire Outbreak",
		Title:              "Fire",
		Description:        "Smoke",
		Location:           "Lagos",
		Latitude:           6.5,
		Longitude:          3.3,
		Image:              "",
		Status:             model.StatusPending,
		WantsNotifications: true,
		Email:              "a@b.com",
	}
}

func reportRow(r model.Report, id uuid.UUID, ts time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(repoColumns).AddRow(
		id.String(), r.ReportID, r.ReportType, r.IncidentType, r.Title, r.Description, r.Location,
		r.Latitude, r.Longitude, r.Image, r.Status, r.WantsNotifications, r.Email, ts, ts,
	)
}

func TestReportRepo_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	report := sampleReport()
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO reports").
		WithArgs(report.ReportID, report.ReportType, report.IncidentType, report.Title, report.Description,
			report.Location, report.Latitude, report.Longitude, report.Image, report.Status,
			report.WantsNotifications, report.Email).
		WillReturnRows(reportRow(report, id, now))

	created, err := repo.Create(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, report.ReportID, created.ReportID)
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepo_CreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO reports").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), sampleReport())
	assert.ErrorIs(t, err, ErrDuplicateReport)
}

func TestReportRepo_CreateUnavailable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO reports").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(context.DeadlineExceeded)

	_, err := repo.Create(context.Background(), sampleReport())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestReportRepo_GetByReportID(t *testing.T) {
	repo, mock := newMockRepo(t)
	report := sampleReport()

	mock.ExpectQuery("FROM reports WHERE report_id").
		WithArgs(report.ReportID).
		WillReturnRows(reportRow(report, uuid.New(), time.Now()))

	got, err := repo.GetByReportID(context.Background(), report.ReportID)
	require.NoError(t, err)
	assert.Equal(t, report.Title, got.Title)
	assert.Equal(t, report.Email, got.Email)

	mock.ExpectQuery("FROM reports WHERE report_id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(repoColumns))

	_, err = repo.GetByReportID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepo_UpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	report := sampleReport()
	report.Status = model.StatusResolved

	mock.ExpectQuery("UPDATE reports SET status").
		WithArgs(report.ReportID, model.StatusResolved).
		WillReturnRows(reportRow(report, uuid.New(), time.Now()))

	got, err := repo.UpdateStatus(context.Background(), report.ReportID, model.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, got.Status)

	mock.ExpectQuery("UPDATE reports SET status").
		WithArgs("missing", model.StatusResolved).
		WillReturnRows(pgxmock.NewRows(repoColumns))

	_, err = repo.UpdateStatus(context.Background(), "missing", model.StatusResolved)
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepo_List(t *testing.T) {
	repo, mock := newMockRepo(t)
	report := sampleReport()
	params := model.ListReportsParams{Status: model.StatusPending, Page: 2, PageSize: 10}

	mock.ExpectBeginTx(listTxOptions)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reports`).
		WithArgs(params.Status, params.ReportType).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(params.Status, params.ReportType, 10, 10).
		WillReturnRows(reportRow(report, uuid.New(), time.Now()))
	mock.ExpectCommit()

	reports, total, err := repo.List(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, reports, 1)
	assert.Equal(t, report.ReportID, reports[0].ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepo_ListRollsBackOnQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	params := model.ListReportsParams{Page: 1, PageSize: 20}

	mock.ExpectBeginTx(listTxOptions)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reports`).
		WithArgs("", "").
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	_, _, err := repo.List(context.Background(), params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count reports")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepo_ListBeginUnavailable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBeginTx(listTxOptions).WillReturnError(context.DeadlineExceeded)

	_, _, err := repo.List(context.Background(), model.ListReportsParams{Page: 1, PageSize: 20})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
