package wizard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pixelforge/studio/pkg/checkout"
	"github.com/pixelforge/studio/pkg/identity"
	"github.com/pixelforge/studio/pkg/mailer"
	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
	"github.com/pixelforge/studio/pkg/uploads"
)

// ErrInvalid is returned when a transition is blocked by validation. The
// messages live on State.Errors.
var ErrInvalid = errors.New("form has validation errors")

// State is one wizard session. It is owned by a single client session and
// discarded after a successful submit.
type State struct {
	ID        string    `json:"id"`
	Step      Step      `json:"step"`
	Form      Form      `json:"form"`
	Errors    []string  `json:"errors,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result is the outcome of a successful submit. The browser redirects to
// RedirectURL to pay.
type Result struct {
	SubmissionID string `json:"submission_id"`
	RedirectURL  string `json:"redirect_url"`
}

// Notifier sends the operator email. Failures are treated as best-effort
// by the machine.
type Notifier interface {
	SendSubmissionNotification(ctx context.Context, sub *submission.Submission, attachments []mailer.Attachment) error
}

// Accounts creates login accounts for clients who opt in on the account
// step. Optional; a nil Accounts keeps every submission anonymous.
type Accounts interface {
	SignUp(ctx context.Context, email, name, password string) (*identity.User, error)
}

// Machine runs wizard transitions. It is stateless; all per-session state
// travels in State.
type Machine struct {
	table       *pricing.Table
	submissions *submission.Store
	checkout    checkout.Client
	notifier    Notifier
	accounts    Accounts
	uploads     uploads.Store
	logger      *logrus.Logger
}

// NewMachine creates a wizard machine. accounts and uploadStore may be nil.
func NewMachine(table *pricing.Table, submissions *submission.Store, co checkout.Client, notifier Notifier, accounts Accounts, uploadStore uploads.Store, logger *logrus.Logger) *Machine {
	return &Machine{
		table:       table,
		submissions: submissions,
		checkout:    co,
		notifier:    notifier,
		accounts:    accounts,
		uploads:     uploadStore,
		logger:      logger,
	}
}

// NewState starts a fresh wizard session at step 1 with empty fields.
func (m *Machine) NewState() *State {
	now := time.Now().UTC()
	return &State{
		ID:        uuid.New().String(),
		Step:      StepContact,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Next validates the current step and advances on success, clamped to the
// last step. On failure the step does not move and all violation messages
// are recorded.
func (m *Machine) Next(state *State) error {
	state.UpdatedAt = time.Now().UTC()
	errs := state.Form.validateStep(m.table, state.Step)
	if len(errs) > 0 {
		state.Errors = errs
		return ErrInvalid
	}
	state.Errors = nil
	if int(state.Step) < TotalSteps {
		state.Step++
	}
	return nil
}

// Back moves one step toward the start, clamped to step 1. It never
// validates and always clears errors.
func (m *Machine) Back(state *State) {
	state.UpdatedAt = time.Now().UTC()
	state.Errors = nil
	if state.Step > StepContact {
		state.Step--
	}
}

// Quote computes the price breakdown for the current form state.
func (m *Machine) Quote(state *State) pricing.Quote {
	return m.table.Calculate(state.Form.Plan.Plan, state.Form.Project.PageCount, state.Form.Plan.AddOns)
}

// Submit finalizes the wizard: re-validates everything, persists the
// submission, then issues the checkout and notification requests together.
// A checkout failure fails the submit; a notification failure is logged and
// swallowed. Each call issues a fresh pair of requests, so a manual retry
// after failure starts clean.
func (m *Machine) Submit(ctx context.Context, state *State) (*Result, error) {
	if state.Step != StepReview {
		return nil, fmt.Errorf("submit is only available on the final step")
	}

	state.UpdatedAt = time.Now().UTC()
	if errs := state.Form.validateStep(m.table, StepReview); len(errs) > 0 {
		state.Errors = errs
		return nil, ErrInvalid
	}
	state.Errors = nil

	form := &state.Form
	quote := m.table.Calculate(form.Plan.Plan, form.Project.PageCount, form.Plan.AddOns)

	sub := &submission.Submission{
		Name:         form.Contact.Name,
		Email:        form.Contact.Email,
		BusinessName: form.Business.BusinessName,
		BusinessDesc: form.Business.BusinessDesc,
		PageCount:    form.Project.PageCount,
		ProjectTypes: form.Project.ProjectTypes,
		ReferenceURL: form.Project.ReferenceURL,
		UploadRefs:   form.Project.UploadRefs,
		Plan:         form.Plan.Plan,
		AddOns:       form.Plan.AddOns,
		BillingCycle: form.Plan.BillingCycle,
		Totals: submission.Totals{
			SetupFee:         quote.SetupFee,
			OneTimeTotal:     quote.OneTimeTotal,
			FirstMonth:       quote.FirstMonth,
			MonthlyRecurring: quote.MonthlyRecurring,
			GrandTotal:       quote.GrandTotal,
		},
	}

	if m.accounts != nil && form.Account.CreateAccount {
		user, err := m.accounts.SignUp(ctx, form.Contact.Email, form.Contact.Name, form.Account.Password)
		if err != nil {
			// the submission proceeds anonymously; the client can sign up later
			m.logger.WithError(err).WithField("email", form.Contact.Email).
				Warn("Account creation failed, continuing anonymous")
		} else {
			sub.UserID = &user.ID
		}
	}

	if err := m.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}

	attachments := m.loadAttachments(ctx, form.Project.UploadRefs)

	var (
		g       errgroup.Group
		session *checkout.Session
	)
	g.Go(func() error {
		s, err := m.checkout.CreateSession(ctx, &checkout.CreateSessionRequest{
			SubmissionID: sub.ID,
			Plan:         form.Plan.Plan,
			AddOns:       form.Plan.AddOns,
			PageCount:    form.Project.PageCount,
			BillingCycle: form.Plan.BillingCycle,
			Email:        form.Contact.Email,
			CompanyName:  form.Business.BusinessName,
		})
		if err != nil {
			return fmt.Errorf("checkout failed: %w", err)
		}
		session = s
		return nil
	})
	g.Go(func() error {
		if err := m.notifier.SendSubmissionNotification(ctx, sub, attachments); err != nil {
			m.logger.WithError(err).WithField("submission_id", sub.ID).
				Warn("Notification email failed")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		state.Errors = []string{"We could not start checkout. Please try again."}
		return nil, err
	}

	return &Result{SubmissionID: sub.ID, RedirectURL: session.URL}, nil
}

// loadAttachments reads uploaded files and base64-encodes them for the
// email transport. A ref that fails to load is skipped; attachments are
// best-effort like the email itself.
func (m *Machine) loadAttachments(ctx context.Context, refs []string) []mailer.Attachment {
	if m.uploads == nil || len(refs) == 0 {
		return nil
	}

	var out []mailer.Attachment
	for _, ref := range refs {
		r, err := m.uploads.Open(ctx, ref)
		if err != nil {
			m.logger.WithError(err).WithField("upload", ref).Warn("Skipping unreadable upload")
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			m.logger.WithError(err).WithField("upload", ref).Warn("Skipping unreadable upload")
			continue
		}

		filename := ref
		mimeType := "application/octet-stream"
		if fs, ok := m.uploads.(*uploads.FileSystemStore); ok {
			if meta, err := fs.Get(ref); err == nil {
				filename = meta.Filename
				mimeType = meta.ContentType
			}
		}
		if mimeType == "application/octet-stream" {
			if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
				mimeType = byExt
			}
		}

		out = append(out, mailer.Attachment{
			Filename:      filename,
			ContentBase64: base64.StdEncoding.EncodeToString(data),
			MimeType:      mimeType,
		})
	}
	return out
}
