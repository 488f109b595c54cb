package submission

import (
	"time"

	"github.com/pixelforge/studio/pkg/pricing"
)

// Status is the lifecycle status of a submission.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// BillingCycle is how the recurring fee is charged.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleAnnual  BillingCycle = "annual"
)

// Totals is the computed price breakdown captured at submission time.
type Totals struct {
	SetupFee         int `json:"setup_fee"`
	OneTimeTotal     int `json:"one_time_total"`
	FirstMonth       int `json:"first_month"`
	MonthlyRecurring int `json:"monthly_recurring"`
	GrandTotal       int `json:"grand_total"`
}

// Submission is a persisted record of one completed intake wizard run.
// UserID is nullable: anonymous submissions are keyed by email only.
type Submission struct {
	ID           string            `json:"id"`
	UserID       *int64            `json:"user_id,omitempty"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	BusinessName string            `json:"business_name"`
	BusinessDesc string            `json:"business_description"`
	PageCount    int               `json:"page_count"`
	ProjectTypes []string          `json:"project_types"`
	ReferenceURL string            `json:"reference_url,omitempty"`
	UploadRefs   []string          `json:"upload_refs,omitempty"`
	Plan         pricing.PlanID    `json:"plan"`
	AddOns       pricing.Selection `json:"add_ons"`
	BillingCycle BillingCycle      `json:"billing_cycle"`
	Totals       Totals            `json:"totals"`

	CheckoutSessionID string `json:"checkout_session_id,omitempty"`
	CustomerID        string `json:"customer_id,omitempty"`
	Status            Status `json:"status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
