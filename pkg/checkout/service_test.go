package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, pricing.DefaultTable(), submission.NewStore(db), "https://pay.example.com", logrus.New())
	return svc, mock
}

func TestCreateSessionNewCustomer(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id FROM customers").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO customers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE submissions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	session, err := svc.CreateSession(context.Background(), &CreateSessionRequest{
		SubmissionID: "sub-1",
		Plan:         pricing.PlanStarter,
		AddOns:       pricing.Selection{pricing.AddOnLogo: true},
		PageCount:    2,
		BillingCycle: submission.CycleMonthly,
		Email:        "ana@example.com",
		CompanyName:  "River Cafe",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(session.SessionID, "cs_"))
	assert.Equal(t, "https://pay.example.com/pay/"+session.SessionID, session.URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionReusesCustomer(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id FROM customers").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cus_existing"))
	mock.ExpectExec("UPDATE submissions").
		WithArgs(sqlmock.AnyArg(), "cus_existing", submission.StatusPending, sqlmock.AnyArg(), "sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.CreateSession(context.Background(), &CreateSessionRequest{
		SubmissionID: "sub-1",
		Plan:         pricing.PlanBusiness,
		PageCount:    5,
		Email:        "ana@example.com",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionWithoutSubmission(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id FROM customers").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cus_existing"))

	// no submission id: nothing is written back to submissions
	session, err := svc.CreateSession(context.Background(), &CreateSessionRequest{
		Plan:      pricing.PlanStarter,
		PageCount: 1,
		Email:     "ana@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionValidation(t *testing.T) {
	svc, _ := newTestService(t)

	t.Run("missing email", func(t *testing.T) {
		_, err := svc.CreateSession(context.Background(), &CreateSessionRequest{
			Plan: pricing.PlanStarter,
		})
		assert.ErrorContains(t, err, "email is required")
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := svc.CreateSession(context.Background(), &CreateSessionRequest{
			Plan:  "enterprise",
			Email: "ana@example.com",
		})
		assert.ErrorContains(t, err, "unknown plan")
	})
}

func TestCreateSessionSubmissionMissing(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT id FROM customers").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cus_existing"))
	mock.ExpectExec("UPDATE submissions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.CreateSession(context.Background(), &CreateSessionRequest{
		SubmissionID: "gone",
		Plan:         pricing.PlanStarter,
		PageCount:    1,
		Email:        "ana@example.com",
	})
	assert.ErrorContains(t, err, "submission not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhook(t *testing.T) {
	t.Run("session completed", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectExec("UPDATE submissions").
			WithArgs(submission.StatusCompleted, sqlmock.AnyArg(), "cs_abc123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.HandleWebhook(context.Background(),
			[]byte(`{"type":"checkout.session.completed","data":{"session_id":"cs_abc123"}}`))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event type ignored", func(t *testing.T) {
		svc, mock := newTestService(t)

		err := svc.HandleWebhook(context.Background(),
			[]byte(`{"type":"invoice.paid","data":{"session_id":"cs_abc123"}}`))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing session id", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.HandleWebhook(context.Background(),
			[]byte(`{"type":"checkout.session.completed","data":{}}`))
		assert.ErrorContains(t, err, "missing session id")
	})

	t.Run("malformed payload", func(t *testing.T) {
		svc, _ := newTestService(t)

		err := svc.HandleWebhook(context.Background(), []byte(`{nope`))
		assert.ErrorContains(t, err, "failed to parse webhook")
	})
}
