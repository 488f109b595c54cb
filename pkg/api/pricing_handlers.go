package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pixelforge/studio/pkg/httputil"
	"github.com/pixelforge/studio/pkg/middleware"
	"github.com/pixelforge/studio/pkg/pricing"
)

// PricingHandlers serves the canonical price table and quote computation.
// The marketing page, the floating calculator widget, and the wizard all
// read from here so their numbers cannot diverge.
type PricingHandlers struct {
	table *pricing.Table
}

// NewPricingHandlers creates a new PricingHandlers
func NewPricingHandlers(table *pricing.Table) *PricingHandlers {
	return &PricingHandlers{table: table}
}

// RegisterRoutes registers pricing routes
func (h *PricingHandlers) RegisterRoutes(router *mux.Router, limiter *middleware.RateLimiter) {
	router.Handle("/pricing/plans", limiter.Handler(http.HandlerFunc(h.ListPlans))).Methods("GET")
	router.Handle("/pricing/quote", limiter.Handler(http.HandlerFunc(h.Quote))).Methods("POST")
}

// ListPlans returns all plans and add-ons in display order.
func (h *PricingHandlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]interface{}{
		"plans":   h.table.Plans(),
		"add_ons": h.table.AddOns(),
	})
}

// QuoteRequest is the calculator input.
type QuoteRequest struct {
	Plan      pricing.PlanID    `json:"plan"`
	PageCount int               `json:"page_count"`
	AddOns    pricing.Selection `json:"add_ons"`
}

// Quote computes a price breakdown. Unknown plans quote zero rather than
// erroring, matching the calculator widget's behavior.
func (h *PricingHandlers) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	httputil.WriteSuccess(w, h.table.Calculate(req.Plan, req.PageCount, req.AddOns))
}
