package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStarterScenario(t *testing.T) {
	table := DefaultTable()

	// starter, 2 pages, logo + maintenance
	q := table.Calculate(PlanStarter, 2, Selection{
		AddOnLogo:        true,
		AddOnChatbot:     false,
		AddOnContent:     false,
		AddOnMaintenance: true,
	})

	assert.Equal(t, 149, q.SetupFee)
	assert.Equal(t, 20, q.OneTimeTotal) // logo only
	assert.Equal(t, 60, q.FirstMonth)   // 40 plan + 20 maintenance
	assert.Equal(t, 60, q.MonthlyRecurring)
	assert.Equal(t, 229, q.GrandTotal)
}

func TestCalculateContentPricedPerPage(t *testing.T) {
	table := DefaultTable()

	q := table.Calculate(PlanStarter, 3, Selection{AddOnContent: true})
	assert.Equal(t, 75, q.OneTimeTotal) // 25 * 3 pages

	t.Run("zero pages contributes nothing", func(t *testing.T) {
		q := table.Calculate(PlanStarter, 0, Selection{AddOnContent: true})
		assert.Equal(t, 0, q.OneTimeTotal)
	})

	t.Run("negative page count treated as zero", func(t *testing.T) {
		q := table.Calculate(PlanStarter, -2, Selection{AddOnContent: true})
		assert.Equal(t, 0, q.OneTimeTotal)
	})
}

func TestCalculateGrandTotalInvariant(t *testing.T) {
	table := DefaultTable()

	selections := []Selection{
		nil,
		{AddOnLogo: true},
		{AddOnContent: true, AddOnChatbot: true},
		{AddOnLogo: true, AddOnContent: true, AddOnChatbot: true, AddOnMaintenance: true},
	}

	for _, plan := range table.Plans() {
		for pages := 0; pages <= plan.MaxPages; pages++ {
			for _, sel := range selections {
				q := table.Calculate(plan.ID, pages, sel)
				assert.Equal(t, q.SetupFee+q.OneTimeTotal+q.FirstMonth, q.GrandTotal)
				assert.GreaterOrEqual(t, q.SetupFee, 0)
				assert.GreaterOrEqual(t, q.OneTimeTotal, 0)
				assert.GreaterOrEqual(t, q.FirstMonth, 0)
				assert.GreaterOrEqual(t, q.GrandTotal, 0)
			}
		}
	}
}

func TestCalculateUnknownInputs(t *testing.T) {
	table := DefaultTable()

	t.Run("unknown plan yields zero quote", func(t *testing.T) {
		q := table.Calculate("platinum", 5, Selection{AddOnLogo: true})
		assert.Equal(t, Quote{}, q)
	})

	t.Run("unknown add-on ignored", func(t *testing.T) {
		withUnknown := table.Calculate(PlanBusiness, 4, Selection{AddOnLogo: true, "hologram": true})
		without := table.Calculate(PlanBusiness, 4, Selection{AddOnLogo: true})
		assert.Equal(t, without, withUnknown)
	})

	t.Run("deselected add-on ignored", func(t *testing.T) {
		q := table.Calculate(PlanBusiness, 4, Selection{AddOnLogo: false})
		assert.Equal(t, 0, q.OneTimeTotal)
	})
}

func TestCalculateIdenticalAcrossCallSites(t *testing.T) {
	// The same table instance must produce identical quotes no matter who
	// asks. Two independent computations of the same input agree.
	table := DefaultTable()

	sel := Selection{AddOnContent: true, AddOnMaintenance: true}
	first := table.Calculate(PlanPremium, 10, sel)
	second := table.Calculate(PlanPremium, 10, sel)
	require.Equal(t, first, second)
}
