package dashboard

import (
	"time"

	"github.com/pixelforge/studio/pkg/pricing"
	"github.com/pixelforge/studio/pkg/submission"
)

// Projection is the display-only billing view shown on the dashboard.
type Projection struct {
	HasPlan         bool      `json:"has_plan"`
	PlanName        string    `json:"plan_name,omitempty"`
	BillingCycle    string    `json:"billing_cycle,omitempty"`
	AddOnNames      []string  `json:"add_on_names,omitempty"`
	AmountPaid      int       `json:"amount_paid,omitempty"`
	MonthlyAmount   int       `json:"monthly_amount,omitempty"`
	NextBillingDate time.Time `json:"next_billing_date,omitempty"`
	StatusLabel     string    `json:"status_label,omitempty"`
}

// NoActivePlan is the projection rendered when the identity has no
// completed submission. It is a normal result, not an error.
func NoActivePlan() *Projection {
	return &Projection{HasPlan: false, StatusLabel: "No active plan"}
}

// Project derives the billing view from one completed submission. The next
// billing date is the purchase date plus one month or one year depending on
// the cycle.
func Project(table *pricing.Table, sub *submission.Submission) *Projection {
	p := &Projection{
		HasPlan:       true,
		PlanName:      string(sub.Plan),
		BillingCycle:  cycleLabel(sub.BillingCycle),
		AmountPaid:    sub.Totals.GrandTotal,
		MonthlyAmount: sub.Totals.MonthlyRecurring,
		StatusLabel:   statusLabel(sub.Status),
	}
	if plan, ok := table.Plan(sub.Plan); ok {
		p.PlanName = plan.DisplayName
	}
	for _, a := range table.AddOns() {
		if sub.AddOns[a.ID] {
			p.AddOnNames = append(p.AddOnNames, a.DisplayName)
		}
	}

	switch sub.BillingCycle {
	case submission.CycleAnnual:
		p.NextBillingDate = sub.CreatedAt.AddDate(1, 0, 0)
	default:
		p.NextBillingDate = sub.CreatedAt.AddDate(0, 1, 0)
	}
	return p
}

func cycleLabel(c submission.BillingCycle) string {
	switch c {
	case submission.CycleAnnual:
		return "Billed annually"
	default:
		return "Billed monthly"
	}
}

func statusLabel(s submission.Status) string {
	switch s {
	case submission.StatusCompleted:
		return "Active"
	case submission.StatusPending:
		return "Payment pending"
	default:
		return string(s)
	}
}
