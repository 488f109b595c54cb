package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/dashboard"
	"github.com/pixelforge/studio/pkg/httputil"
	"github.com/pixelforge/studio/pkg/middleware"
	"github.com/pixelforge/studio/pkg/submission"
)

// DashboardHandlers serves the customer dashboard projection.
type DashboardHandlers struct {
	reader *dashboard.Reader
	logger *logrus.Logger
}

// NewDashboardHandlers creates a new DashboardHandlers
func NewDashboardHandlers(reader *dashboard.Reader, logger *logrus.Logger) *DashboardHandlers {
	return &DashboardHandlers{reader: reader, logger: logger}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard/plan", h.CurrentPlan).Methods("GET")
}

// CurrentPlan returns the billing projection for the caller. Signed-in
// callers are identified by their session; anonymous callers may pass the
// email they submitted with. No identity at all is a 401.
func (h *DashboardHandlers) CurrentPlan(w http.ResponseWriter, r *http.Request) {
	var ident submission.Identity
	if session := middleware.GetSession(r); session != nil {
		ident.UserID = &session.UserID
		ident.Email = session.Email
	} else if email := httputil.ParseQueryString(r, "email", ""); email != "" {
		ident.Email = email
	} else {
		httputil.WriteUnauthorized(w, "sign in or provide an email")
		return
	}

	projection, err := h.reader.CurrentPlan(r.Context(), ident)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dashboard plan")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "failed to load plan")
		return
	}

	httputil.WriteSuccess(w, projection)
}
