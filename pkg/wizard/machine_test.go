package wizard

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelforge/studio/pkg/checkout"
	"github.com/pixelforge/studio/pkg/mailer"
	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

type fakeCheckout struct {
	calls int
	err   error
}

func (f *fakeCheckout) CreateSession(ctx context.Context, req *checkout.CreateSessionRequest) (*checkout.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &checkout.Session{URL: "https://pay.example.com/pay/cs_test", SessionID: "cs_test"}, nil
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) SendSubmissionNotification(ctx context.Context, sub *submission.Submission, attachments []mailer.Attachment) error {
	f.calls++
	return f.err
}

func validForm() Form {
	return Form{
		Contact:  ContactFields{Name: "Ana", Email: "ana@example.com"},
		Business: BusinessFields{BusinessName: "River Cafe", BusinessDesc: "A riverside cafe"},
		Project:  ProjectFields{PageCount: 2, ProjectTypes: []string{"brochure"}},
		Plan: PlanFields{
			Plan:         pricing.PlanStarter,
			AddOns:       pricing.Selection{pricing.AddOnLogo: true, pricing.AddOnMaintenance: true},
			BillingCycle: submission.CycleMonthly,
		},
	}
}

func newTestMachine(t *testing.T, co checkout.Client, notifier Notifier) (*Machine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := NewMachine(pricing.DefaultTable(), submission.NewStore(db), co, notifier, nil, nil, logrus.New())
	return m, mock
}

func TestNextAdvancesOnValidStep(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCheckout{}, &fakeNotifier{})

	state := m.NewState()
	state.Form = validForm()

	require.NoError(t, m.Next(state))
	assert.Equal(t, StepBusiness, state.Step)
	assert.Empty(t, state.Errors)
}

func TestNextBlocksOnInvalidStep(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCheckout{}, &fakeNotifier{})

	state := m.NewState()
	// empty contact fields

	err := m.Next(state)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, StepContact, state.Step)
	assert.Contains(t, state.Errors, "name is required")
	assert.Contains(t, state.Errors, "email is required")
}

func TestNextSurfacesAllMessages(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCheckout{}, &fakeNotifier{})

	state := m.NewState()
	state.Step = StepProject
	// page count 0 and no project types: both violations must surface

	err := m.Next(state)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Len(t, state.Errors, 2)
}

func TestNextClampsAtLastStep(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCheckout{}, &fakeNotifier{})

	state := m.NewState()
	state.Form = validForm()
	state.Step = StepReview

	require.NoError(t, m.Next(state))
	assert.Equal(t, StepReview, state.Step)
}

func TestNextPlanStepUpsell(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCheckout{}, &fakeNotifier{})

	state := m.NewState()
	state.Form = validForm()
	state.Form.Project.PageCount = 5 // over the starter ceiling of 3
	state.Step = StepPlan

	err := m.Next(state)
	assert.ErrorIs(t, err, ErrInvalid)
	require.Len(t, state.Errors, 1)
	assert.Contains(t, state.Errors[0], "Starter plan supports up to 3 pages")
	assert.Contains(t, state.Errors[0], "upgrade to Business")
}

func TestBack(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCheckout{}, &fakeNotifier{})

	state := m.NewState()
	state.Step = StepProject
	state.Errors = []string{"stale error"}

	m.Back(state)
	assert.Equal(t, StepBusiness, state.Step)
	assert.Empty(t, state.Errors)

	// clamped at step 1
	m.Back(state)
	m.Back(state)
	assert.Equal(t, StepContact, state.Step)
}

func TestSubmitSuccess(t *testing.T) {
	co := &fakeCheckout{}
	notifier := &fakeNotifier{}
	m, mock := newTestMachine(t, co, notifier)

	mock.ExpectExec("INSERT INTO submissions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	state := m.NewState()
	state.Form = validForm()
	state.Step = StepReview

	result, err := m.Submit(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.com/pay/cs_test", result.RedirectURL)
	assert.NotEmpty(t, result.SubmissionID)
	assert.Equal(t, 1, co.calls)
	assert.Equal(t, 1, notifier.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitCheckoutFailureIsFatal(t *testing.T) {
	co := &fakeCheckout{err: fmt.Errorf("provider unavailable")}
	notifier := &fakeNotifier{}
	m, mock := newTestMachine(t, co, notifier)

	mock.ExpectExec("INSERT INTO submissions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	state := m.NewState()
	state.Form = validForm()
	state.Step = StepReview

	result, err := m.Submit(context.Background(), state)
	assert.ErrorContains(t, err, "checkout failed")
	assert.Nil(t, result)
	assert.Equal(t, StepReview, state.Step)
	assert.NotEmpty(t, state.Errors)
	// the email request was still issued alongside checkout
	assert.Equal(t, 1, notifier.calls)
}

func TestSubmitEmailFailureIsBestEffort(t *testing.T) {
	co := &fakeCheckout{}
	notifier := &fakeNotifier{err: fmt.Errorf("smtp down")}
	m, mock := newTestMachine(t, co, notifier)

	mock.ExpectExec("INSERT INTO submissions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	state := m.NewState()
	state.Form = validForm()
	state.Step = StepReview

	result, err := m.Submit(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/pay/cs_test", result.RedirectURL)
}

func TestSubmitRetryIssuesFreshRequests(t *testing.T) {
	co := &fakeCheckout{err: fmt.Errorf("provider unavailable")}
	notifier := &fakeNotifier{}
	m, mock := newTestMachine(t, co, notifier)

	mock.ExpectExec("INSERT INTO submissions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO submissions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	state := m.NewState()
	state.Form = validForm()
	state.Step = StepReview

	_, err := m.Submit(context.Background(), state)
	require.Error(t, err)

	co.err = nil
	result, err := m.Submit(context.Background(), state)
	require.NoError(t, err)
	assert.NotNil(t, result)

	assert.Equal(t, 2, co.calls)
	assert.Equal(t, 2, notifier.calls)
}

func TestSubmitRequiresReviewStep(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCheckout{}, &fakeNotifier{})

	state := m.NewState()
	state.Form = validForm()
	state.Step = StepPlan

	_, err := m.Submit(context.Background(), state)
	assert.ErrorContains(t, err, "final step")
}

func TestSubmitRevalidates(t *testing.T) {
	co := &fakeCheckout{}
	m, _ := newTestMachine(t, co, &fakeNotifier{})

	state := m.NewState()
	state.Form = validForm()
	state.Form.Contact.Email = "not-an-email"
	state.Step = StepReview

	_, err := m.Submit(context.Background(), state)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 0, co.calls)
}

func TestQuoteMatchesCalculator(t *testing.T) {
	m, _ := newTestMachine(t, &fakeCheckout{}, &fakeNotifier{})

	state := m.NewState()
	state.Form = validForm()

	q := m.Quote(state)
	assert.Equal(t, 149, q.SetupFee)
	assert.Equal(t, 20, q.OneTimeTotal)
	assert.Equal(t, 60, q.FirstMonth)
	assert.Equal(t, 229, q.GrandTotal)
}
