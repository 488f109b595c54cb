package pricing

import (
	"sort"
	"sync"
)

// PlanID identifies a pricing tier
type PlanID string

const (
	PlanStarter  PlanID = "starter"
	PlanBusiness PlanID = "business"
	PlanPremium  PlanID = "premium"
)

// AddOnID identifies an optional paid feature
type AddOnID string

const (
	AddOnLogo        AddOnID = "logo"
	AddOnChatbot     AddOnID = "chatbot"
	AddOnContent     AddOnID = "content"
	AddOnMaintenance AddOnID = "maintenance"
)

// BillingType describes how an add-on is billed
type BillingType string

const (
	BillingOneTime BillingType = "one-time"
	BillingMonthly BillingType = "monthly"
)

// Plan is a named pricing tier bundling a setup fee, monthly fee, and
// page-count ceiling. Amounts are whole currency units.
type Plan struct {
	ID          PlanID   `json:"id" yaml:"id"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	SetupFee    int      `json:"setup_fee" yaml:"setup_fee"`
	MonthlyFee  int      `json:"monthly_fee" yaml:"monthly_fee"`
	MaxPages    int      `json:"max_pages" yaml:"max_pages"`
	Features    []string `json:"features" yaml:"features"`
}

// AddOn is an optional paid feature, billed either once or monthly.
// PerPage add-ons multiply their price by the selected page count.
type AddOn struct {
	ID          AddOnID     `json:"id" yaml:"id"`
	DisplayName string      `json:"display_name" yaml:"display_name"`
	Price       int         `json:"price" yaml:"price"`
	Billing     BillingType `json:"billing" yaml:"billing"`
	PerPage     bool        `json:"per_page" yaml:"per_page"`
}

// Table is the canonical price table. It is safe for concurrent use;
// the loader may swap its contents on hot reload.
type Table struct {
	mu     sync.RWMutex
	plans  map[PlanID]Plan
	addons map[AddOnID]AddOn
	order  []PlanID // tier ordering, cheapest first
}

// NewTable builds a table from explicit plan and add-on sets. The plan
// ordering follows ascending setup fee.
func NewTable(plans []Plan, addons []AddOn) *Table {
	t := &Table{
		plans:  make(map[PlanID]Plan, len(plans)),
		addons: make(map[AddOnID]AddOn, len(addons)),
	}
	for _, p := range plans {
		t.plans[p.ID] = p
		t.order = append(t.order, p.ID)
	}
	sort.Slice(t.order, func(i, j int) bool {
		return t.plans[t.order[i]].SetupFee < t.plans[t.order[j]].SetupFee
	})
	for _, a := range addons {
		t.addons[a.ID] = a
	}
	return t
}

// DefaultTable returns the built-in canonical table.
func DefaultTable() *Table {
	return NewTable(
		[]Plan{
			{
				ID:          PlanStarter,
				DisplayName: "Starter",
				SetupFee:    149,
				MonthlyFee:  40,
				MaxPages:    3,
				Features:    []string{"Up to 3 pages", "Mobile responsive", "Contact form", "Basic SEO"},
			},
			{
				ID:          PlanBusiness,
				DisplayName: "Business",
				SetupFee:    249,
				MonthlyFee:  75,
				MaxPages:    7,
				Features:    []string{"Up to 7 pages", "Blog setup", "Analytics", "Priority support"},
			},
			{
				ID:          PlanPremium,
				DisplayName: "Premium",
				SetupFee:    399,
				MonthlyFee:  120,
				MaxPages:    15,
				Features:    []string{"Up to 15 pages", "E-commerce ready", "Custom integrations", "Dedicated support"},
			},
		},
		[]AddOn{
			{ID: AddOnLogo, DisplayName: "Logo design", Price: 20, Billing: BillingOneTime},
			{ID: AddOnContent, DisplayName: "Content writing", Price: 25, Billing: BillingOneTime, PerPage: true},
			{ID: AddOnChatbot, DisplayName: "Chatbot", Price: 15, Billing: BillingMonthly},
			{ID: AddOnMaintenance, DisplayName: "Maintenance", Price: 20, Billing: BillingMonthly},
		},
	)
}

// Plan looks up a plan by id.
func (t *Table) Plan(id PlanID) (Plan, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.plans[id]
	return p, ok
}

// AddOn looks up an add-on by id.
func (t *Table) AddOn(id AddOnID) (AddOn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.addons[id]
	return a, ok
}

// Plans returns all plans in tier order, cheapest first.
func (t *Table) Plans() []Plan {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Plan, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.plans[id])
	}
	return out
}

// AddOns returns all add-ons sorted by id.
func (t *Table) AddOns() []AddOn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]AddOn, 0, len(t.addons))
	for _, a := range t.addons {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextTier returns the tier above the given plan, if any. Used by plan-step
// validation to name the upgrade when a page count exceeds the plan ceiling.
func (t *Table) NextTier(id PlanID) (Plan, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i, pid := range t.order {
		if pid == id && i+1 < len(t.order) {
			return t.plans[t.order[i+1]], true
		}
	}
	return Plan{}, false
}

// replace swaps the table contents. Only the loader calls this.
func (t *Table) replace(plans []Plan, addons []AddOn) {
	fresh := NewTable(plans, addons)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plans = fresh.plans
	t.addons = fresh.addons
	t.order = fresh.order
}
