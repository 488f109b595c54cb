package validation

import (
	"fmt"
	"strings"

	"github.com/pixelforge/studio/pkg/pricing"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// Checker accumulates validation messages in the order checks run.
// The zero value is ready to use.
type Checker struct {
	messages []string
}

// Messages returns the accumulated violations. Empty means valid.
func (c *Checker) Messages() []string {
	return c.messages
}

// Valid reports whether no check has failed so far.
func (c *Checker) Valid() bool {
	return len(c.messages) == 0
}

// Addf records a violation.
func (c *Checker) Addf(format string, args ...interface{}) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

// Required checks that a string field is non-empty after trimming.
func (c *Checker) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.Addf("%s is required", field)
	}
}

// RequiredSlice checks that a list field has at least one entry.
func (c *Checker) RequiredSlice(field string, values []string) {
	if len(values) == 0 {
		c.Addf("select at least one %s", field)
	}
}

// AtLeast checks that a numeric field meets a minimum.
func (c *Checker) AtLeast(field string, value, min int) {
	if value < min {
		c.Addf("%s must be at least %d", field, min)
	}
}

// Email checks the loose shape of an email address. Deliverability is the
// email collaborator's problem; this only catches obvious typos.
func (c *Checker) Email(field, value string) {
	v := strings.TrimSpace(value)
	if v == "" {
		c.Addf("%s is required", field)
		return
	}
	at := strings.Index(v, "@")
	if at <= 0 || at == len(v)-1 || !strings.Contains(v[at+1:], ".") {
		c.Addf("%s must be a valid email address", field)
	}
}

// Password checks length and confirmation equality.
func (c *Checker) Password(password, confirm string) {
	if len(password) < MinPasswordLength {
		c.Addf("password must be at least %d characters", MinPasswordLength)
	}
	if password != confirm {
		c.Addf("passwords do not match")
	}
}

// PageLimit checks the selected page count against the plan ceiling. On
// violation the message names the next tier up, the upsell the original
// marketing flow shows.
func (c *Checker) PageLimit(table *pricing.Table, planID pricing.PlanID, pageCount int) {
	plan, ok := table.Plan(planID)
	if !ok {
		c.Addf("select a plan")
		return
	}
	if pageCount <= plan.MaxPages {
		return
	}
	if next, ok := table.NextTier(planID); ok {
		c.Addf("the %s plan supports up to %d pages; upgrade to %s for up to %d pages",
			plan.DisplayName, plan.MaxPages, next.DisplayName, next.MaxPages)
		return
	}
	c.Addf("the %s plan supports up to %d pages", plan.DisplayName, plan.MaxPages)
}
