package wizard

import (
	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
	"github.com/pixelforge/studio/pkg/validation"
)

// Step indexes the wizard's fixed step sequence, 1-based.
type Step int

const (
	StepContact Step = iota + 1
	StepBusiness
	StepProject
	StepPlan
	StepAccount
	StepReview

	TotalSteps = int(StepReview)
)

// String returns the step's display name.
func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepBusiness:
		return "business"
	case StepProject:
		return "project"
	case StepPlan:
		return "plan"
	case StepAccount:
		return "account"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// ContactFields is step 1: who is asking.
type ContactFields struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (f ContactFields) validate(c *validation.Checker) {
	c.Required("name", f.Name)
	c.Email("email", f.Email)
}

// BusinessFields is step 2: what the business is.
type BusinessFields struct {
	BusinessName string `json:"business_name"`
	BusinessDesc string `json:"business_description"`
}

func (f BusinessFields) validate(c *validation.Checker) {
	c.Required("business name", f.BusinessName)
	c.Required("business description", f.BusinessDesc)
}

// ProjectFields is step 3: what they want built.
type ProjectFields struct {
	PageCount    int      `json:"page_count"`
	ProjectTypes []string `json:"project_types"`
	ReferenceURL string   `json:"reference_url,omitempty"`
	UploadRefs   []string `json:"upload_refs,omitempty"`
}

func (f ProjectFields) validate(c *validation.Checker) {
	c.AtLeast("page count", f.PageCount, 1)
	c.RequiredSlice("project type", f.ProjectTypes)
}

// PlanFields is step 4: pricing tier, cycle, and add-ons.
type PlanFields struct {
	Plan         pricing.PlanID          `json:"plan"`
	AddOns       pricing.Selection       `json:"add_ons"`
	BillingCycle submission.BillingCycle `json:"billing_cycle"`
}

func (f PlanFields) validate(c *validation.Checker, table *pricing.Table, pageCount int) {
	c.PageLimit(table, f.Plan, pageCount)
}

// AccountFields is step 5: optional login creation. Leaving the password
// empty keeps the submission anonymous (email-keyed).
type AccountFields struct {
	CreateAccount   bool   `json:"create_account"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

func (f AccountFields) validate(c *validation.Checker) {
	if !f.CreateAccount {
		return
	}
	c.Password(f.Password, f.ConfirmPassword)
}

// Form is the accumulated field state across all steps.
type Form struct {
	Contact  ContactFields  `json:"contact"`
	Business BusinessFields `json:"business"`
	Project  ProjectFields  `json:"project"`
	Plan     PlanFields     `json:"plan"`
	Account  AccountFields  `json:"account"`
}

// validateStep runs one step's checks against the accumulated form. The
// review step re-runs everything.
func (f *Form) validateStep(table *pricing.Table, step Step) []string {
	var c validation.Checker
	switch step {
	case StepContact:
		f.Contact.validate(&c)
	case StepBusiness:
		f.Business.validate(&c)
	case StepProject:
		f.Project.validate(&c)
	case StepPlan:
		f.Plan.validate(&c, table, f.Project.PageCount)
	case StepAccount:
		f.Account.validate(&c)
	case StepReview:
		f.Contact.validate(&c)
		f.Business.validate(&c)
		f.Project.validate(&c)
		f.Plan.validate(&c, table, f.Project.PageCount)
		f.Account.validate(&c)
	}
	return c.Messages()
}
