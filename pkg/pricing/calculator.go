package pricing

// Selection is the set of chosen add-ons.
type Selection map[AddOnID]bool

// Quote is the computed total breakdown for one plan/page-count/add-on
// combination. All amounts are non-negative whole currency units.
type Quote struct {
	SetupFee         int `json:"setup_fee"`
	OneTimeTotal     int `json:"one_time_total"`
	FirstMonth       int `json:"first_month"`
	MonthlyRecurring int `json:"monthly_recurring"`
	GrandTotal       int `json:"grand_total"`
}

// Calculate computes the quote for a plan, page count, and add-on selection.
// It is pure: identical input yields an identical quote at every call site.
//
// An unknown plan id yields a zero quote rather than an error, and unknown
// add-on ids are ignored. A negative page count is treated as zero.
func (t *Table) Calculate(plan PlanID, pageCount int, addons Selection) Quote {
	p, ok := t.Plan(plan)
	if !ok {
		return Quote{}
	}
	if pageCount < 0 {
		pageCount = 0
	}

	var oneTime, monthlyAddOns int
	for id, selected := range addons {
		if !selected {
			continue
		}
		a, ok := t.AddOn(id)
		if !ok {
			continue
		}
		price := a.Price
		if a.PerPage {
			price *= pageCount
		}
		switch a.Billing {
		case BillingOneTime:
			oneTime += price
		case BillingMonthly:
			monthlyAddOns += price
		}
	}

	firstMonth := p.MonthlyFee + monthlyAddOns
	return Quote{
		SetupFee:         p.SetupFee,
		OneTimeTotal:     oneTime,
		FirstMonth:       firstMonth,
		MonthlyRecurring: firstMonth,
		GrandTotal:       p.SetupFee + oneTime + firstMonth,
	}
}
