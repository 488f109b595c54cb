package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pixelforge/studio/pkg/httputil"
	"github.com/pixelforge/studio/pkg/observability"
	"github.com/pixelforge/studio/pkg/uploads"
	"github.com/pixelforge/studio/pkg/wizard"
)

const maxUploadBytes = 8 << 20

// IntakeHandlers drives the wizard over HTTP. Each wizard session is
// identified by the id returned from Start; the client sends its current
// form state with every transition.
type IntakeHandlers struct {
	machine  *wizard.Machine
	sessions wizard.SessionStore
	uploads  uploads.Store
	metrics  *observability.Metrics
	logger   *logrus.Logger
}

// NewIntakeHandlers creates a new IntakeHandlers
func NewIntakeHandlers(machine *wizard.Machine, sessions wizard.SessionStore, uploadStore uploads.Store, metrics *observability.Metrics, logger *logrus.Logger) *IntakeHandlers {
	return &IntakeHandlers{
		machine:  machine,
		sessions: sessions,
		uploads:  uploadStore,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterRoutes registers intake wizard routes
func (h *IntakeHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/intake", h.Start).Methods("POST")
	router.HandleFunc("/intake/{id}", h.Get).Methods("GET")
	router.HandleFunc("/intake/{id}/next", h.Next).Methods("POST")
	router.HandleFunc("/intake/{id}/back", h.Back).Methods("POST")
	router.HandleFunc("/intake/{id}/submit", h.Submit).Methods("POST")
	router.HandleFunc("/intake/{id}/uploads", h.Upload).Methods("POST")
}

type stateResponse struct {
	ID         string      `json:"id"`
	Step       int         `json:"step"`
	StepName   string      `json:"step_name"`
	TotalSteps int         `json:"total_steps"`
	Form       wizard.Form `json:"form"`
	Errors     []string    `json:"errors,omitempty"`
	Quote      interface{} `json:"quote,omitempty"`
}

func (h *IntakeHandlers) stateResponse(state *wizard.State) stateResponse {
	resp := stateResponse{
		ID:         state.ID,
		Step:       int(state.Step),
		StepName:   state.Step.String(),
		TotalSteps: wizard.TotalSteps,
		Form:       state.Form,
		Errors:     state.Errors,
	}
	if state.Step >= wizard.StepPlan {
		resp.Quote = h.machine.Quote(state)
	}
	return resp
}

// Start opens a new wizard session at step 1.
func (h *IntakeHandlers) Start(w http.ResponseWriter, r *http.Request) {
	state := h.machine.NewState()
	if err := h.sessions.Save(r.Context(), state); err != nil {
		h.logger.WithError(err).Error("Failed to save wizard session")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, h.stateResponse(state))
}

// Get returns the current session state.
func (h *IntakeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	state, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, h.stateResponse(state))
}

// Next applies the client's form state and advances one step.
func (h *IntakeHandlers) Next(w http.ResponseWriter, r *http.Request) {
	state, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !h.applyForm(w, r, state) {
		return
	}

	err := h.machine.Next(state)
	h.saveSession(r, state)

	if errors.Is(err, wizard.ErrInvalid) {
		h.metrics.WizardStepsTotal.WithLabelValues("next", "blocked").Inc()
		h.metrics.WizardValidationErrors.WithLabelValues(state.Step.String()).Inc()
		httputil.WriteValidationErrors(w, state.Errors)
		return
	}
	h.metrics.WizardStepsTotal.WithLabelValues("next", "advanced").Inc()
	httputil.WriteSuccess(w, h.stateResponse(state))
}

// Back moves one step toward the start.
func (h *IntakeHandlers) Back(w http.ResponseWriter, r *http.Request) {
	state, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !h.applyForm(w, r, state) {
		return
	}

	h.machine.Back(state)
	h.saveSession(r, state)
	h.metrics.WizardStepsTotal.WithLabelValues("back", "moved").Inc()
	httputil.WriteSuccess(w, h.stateResponse(state))
}

// Submit finalizes the wizard. On success it returns the checkout redirect
// URL and discards the session; on checkout failure the session survives
// for a manual retry.
func (h *IntakeHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	state, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if !h.applyForm(w, r, state) {
		return
	}

	result, err := h.machine.Submit(r.Context(), state)
	if err != nil {
		h.saveSession(r, state)
		if errors.Is(err, wizard.ErrInvalid) {
			h.metrics.WizardSubmissionsTotal.WithLabelValues("invalid").Inc()
			httputil.WriteValidationErrors(w, state.Errors)
			return
		}
		h.metrics.WizardSubmissionsTotal.WithLabelValues("checkout_failed").Inc()
		h.logger.WithError(err).Warn("Wizard submit failed")
		httputil.WriteBadGateway(w, "We could not start checkout. Please try again.")
		return
	}

	h.metrics.WizardSubmissionsTotal.WithLabelValues("success").Inc()
	if err := h.sessions.Delete(r.Context(), state.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to discard wizard session")
	}
	httputil.WriteSuccess(w, result)
}

// Upload stores a brand asset and returns its reference for the project
// step.
func (h *IntakeHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.loadSession(w, r); !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteBadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	up, err := h.uploads.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.WithError(err).Error("Failed to store upload")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, up)
}

func (h *IntakeHandlers) loadSession(w http.ResponseWriter, r *http.Request) (*wizard.State, bool) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return nil, false
	}

	state, err := h.sessions.Get(r.Context(), id)
	if errors.Is(err, wizard.ErrSessionNotFound) {
		httputil.WriteNotFound(w, "wizard session not found")
		return nil, false
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load wizard session")
		httputil.WriteInternalError(w, err)
		return nil, false
	}
	return state, true
}

// applyForm merges the client's form payload into the session. An empty
// body keeps the stored form (used by back and retry flows).
func (h *IntakeHandlers) applyForm(w http.ResponseWriter, r *http.Request, state *wizard.State) bool {
	if r.ContentLength == 0 {
		return true
	}
	var payload struct {
		Form *wizard.Form `json:"form"`
	}
	if !httputil.ParseJSONOrError(w, r, &payload) {
		return false
	}
	if payload.Form != nil {
		state.Form = *payload.Form
	}
	return true
}

func (h *IntakeHandlers) saveSession(r *http.Request, state *wizard.State) {
	if err := h.sessions.Save(r.Context(), state); err != nil {
		h.logger.WithError(err).Error("Failed to save wizard session")
	}
}
