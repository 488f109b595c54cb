package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists submissions over database/sql. It works against postgres
// and sqlite; placeholders use the $N form.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const submissionColumns = `id, user_id, name, email, business_name, business_desc,
	page_count, project_types, reference_url, upload_refs, plan, add_ons,
	billing_cycle, setup_fee, one_time_total, first_month, monthly_recurring,
	grand_total, checkout_session_id, customer_id, status, created_at, updated_at`

// Create inserts a new submission. A missing ID is assigned; CreatedAt and
// UpdatedAt are stamped.
func (s *Store) Create(ctx context.Context, sub *Submission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	projectTypes, err := json.Marshal(sub.ProjectTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal project types: %w", err)
	}
	uploadRefs, err := json.Marshal(sub.UploadRefs)
	if err != nil {
		return fmt.Errorf("failed to marshal upload refs: %w", err)
	}
	addOns, err := json.Marshal(sub.AddOns)
	if err != nil {
		return fmt.Errorf("failed to marshal add-ons: %w", err)
	}

	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`
	_, err = s.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.Name, sub.Email, sub.BusinessName, sub.BusinessDesc,
		sub.PageCount, string(projectTypes), sub.ReferenceURL, string(uploadRefs),
		sub.Plan, string(addOns), sub.BillingCycle,
		sub.Totals.SetupFee, sub.Totals.OneTimeTotal, sub.Totals.FirstMonth,
		sub.Totals.MonthlyRecurring, sub.Totals.GrandTotal,
		nullString(sub.CheckoutSessionID), nullString(sub.CustomerID),
		nullString(string(sub.Status)), sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// Get retrieves a submission by id.
func (s *Store) Get(ctx context.Context, id string) (*Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("submission not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// AttachCheckoutSession records the checkout session and customer on a
// submission and moves it to pending. The checkout service calls this after
// the provider session is created.
func (s *Store) AttachCheckoutSession(ctx context.Context, id, sessionID, customerID string) error {
	query := `
		UPDATE submissions
		SET checkout_session_id = $1, customer_id = $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	res, err := s.db.ExecContext(ctx, query, sessionID, customerID, StatusPending, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to attach checkout session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("submission not found")
	}
	return nil
}

// MarkCompletedBySession flips the submission holding the given checkout
// session id to completed. Invoked from the provider webhook.
func (s *Store) MarkCompletedBySession(ctx context.Context, sessionID string) error {
	query := `
		UPDATE submissions SET status = $1, updated_at = $2
		WHERE checkout_session_id = $3
	`
	res, err := s.db.ExecContext(ctx, query, StatusCompleted, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to mark submission completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no submission for checkout session %s", sessionID)
	}
	return nil
}

// GetBySession looks up the submission holding the given checkout
// session id, or nil when none carries it.
func (s *Store) GetBySession(ctx context.Context, sessionID string) (*Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE checkout_session_id = $1`
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submission by session: %w", err)
	}
	return sub, nil
}

// Identity selects submissions either by user id or, for anonymous
// submissions, by email.
type Identity struct {
	UserID *int64
	Email  string
}

// LatestCompleted returns the most recent completed submission for the
// identity, or nil when there is none. Absence is not an error; the
// dashboard renders it as "no active plan".
func (s *Store) LatestCompleted(ctx context.Context, ident Identity) (*Submission, error) {
	var (
		row *sql.Row
	)
	if ident.UserID != nil {
		query := `
			SELECT ` + submissionColumns + ` FROM submissions
			WHERE user_id = $1 AND status = $2
			ORDER BY created_at DESC LIMIT 1
		`
		row = s.db.QueryRowContext(ctx, query, *ident.UserID, StatusCompleted)
	} else {
		query := `
			SELECT ` + submissionColumns + ` FROM submissions
			WHERE email = $1 AND status = $2
			ORDER BY created_at DESC LIMIT 1
		`
		row = s.db.QueryRowContext(ctx, query, ident.Email, StatusCompleted)
	}

	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest submission: %w", err)
	}
	return sub, nil
}

// CountPendingOlderThan reports pending submissions created before the
// cutoff. The maintenance janitor uses it to flag aged checkouts.
func (s *Store) CountPendingOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM submissions WHERE status = $1 AND created_at < $2`
	var n int
	if err := s.db.QueryRowContext(ctx, query, StatusPending, cutoff).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending submissions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*Submission, error) {
	var (
		sub          Submission
		userID       sql.NullInt64
		projectTypes string
		uploadRefs   string
		addOns       string
		sessionID    sql.NullString
		customerID   sql.NullString
		status       sql.NullString
	)
	err := row.Scan(
		&sub.ID, &userID, &sub.Name, &sub.Email, &sub.BusinessName, &sub.BusinessDesc,
		&sub.PageCount, &projectTypes, &sub.ReferenceURL, &uploadRefs, &sub.Plan, &addOns,
		&sub.BillingCycle, &sub.Totals.SetupFee, &sub.Totals.OneTimeTotal,
		&sub.Totals.FirstMonth, &sub.Totals.MonthlyRecurring, &sub.Totals.GrandTotal,
		&sessionID, &customerID, &status, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		sub.UserID = &userID.Int64
	}
	if err := json.Unmarshal([]byte(projectTypes), &sub.ProjectTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project types: %w", err)
	}
	if err := json.Unmarshal([]byte(uploadRefs), &sub.UploadRefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload refs: %w", err)
	}
	if err := json.Unmarshal([]byte(addOns), &sub.AddOns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal add-ons: %w", err)
	}
	if sessionID.Valid {
		sub.CheckoutSessionID = sessionID.String
	}
	if customerID.Valid {
		sub.CustomerID = customerID.String
	}
	if status.Valid {
		sub.Status = Status(status.String)
	}
	return &sub, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
