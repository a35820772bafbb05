// Package api exposes the generation service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"example.com/gymgenius/internal/domain"
	"example.com/gymgenius/internal/generation"
)

// PlanGenerator produces a complete bundle for a profile.
type PlanGenerator interface {
	GeneratePlans(ctx context.Context, profile domain.UserProfile) (domain.PlanBundle, error)
}

// PlanStore owns the saved plan slot.
type PlanStore interface {
	Load(ctx context.Context) (*domain.StoredPlan, error)
	Save(ctx context.Context, profile domain.UserProfile, bundle domain.PlanBundle) error
	Clear(ctx context.Context) error
}

// TipsSource serves prefetched tips.
type TipsSource interface {
	Tips() []domain.Tip
}

// ImageSynthesizer renders an illustration for one subject.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, subject domain.Subject) (string, error)
}

// AudioSynthesizer narrates text.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Dependencies groups the collaborators of a Handler.
type Dependencies struct {
	Plans   PlanGenerator
	Store   PlanStore
	Tips    TipsSource
	Images  ImageSynthesizer
	Audio   AudioSynthesizer
	Tracker *generation.Tracker
	Logger  *zap.Logger
}

// Handler coordinates HTTP requests with the generation layer.
type Handler struct {
	plans   PlanGenerator
	store   PlanStore
	tips    TipsSource
	images  ImageSynthesizer
	audio   AudioSynthesizer
	tracker *generation.Tracker
	logger  *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(deps Dependencies) *Handler {
	h := &Handler{
		plans:   deps.Plans,
		store:   deps.Store,
		tips:    deps.Tips,
		images:  deps.Images,
		audio:   deps.Audio,
		tracker: deps.Tracker,
		logger:  deps.Logger,
	}
	if h.tracker == nil {
		h.tracker = generation.NewTracker()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/v1/plans", h.generatePlans).Methods(http.MethodPost)
	r.HandleFunc("/v1/plan", h.getPlan).Methods(http.MethodGet)
	r.HandleFunc("/v1/plan", h.putPlan).Methods(http.MethodPut)
	r.HandleFunc("/v1/plan", h.deletePlan).Methods(http.MethodDelete)
	r.HandleFunc("/v1/tips", h.listTips).Methods(http.MethodGet)
	r.HandleFunc("/v1/images", h.createImage).Methods(http.MethodPost)
	r.HandleFunc("/v1/audio", h.createAudio).Methods(http.MethodPost)
	r.HandleFunc("/v1/views/{view}", h.releaseView).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(notFound)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "no such route")
}

func (h *Handler) generatePlans(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	save := false
	if raw := r.URL.Query().Get("save"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "save must be a boolean")
			return
		}
		save = parsed
	}

	// A client that goes away does not abort the upstream calls; a requested save still happens.
	ctx := context.WithoutCancel(r.Context())
	bundle, err := h.plans.GeneratePlans(ctx, profile)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := GeneratePlansResponse{WorkoutPlan: bundle.WorkoutPlan, DietPlan: bundle.DietPlan}
	if save {
		if err := h.store.Save(ctx, profile, bundle); err != nil {
			// The plans are still returned; only the save is reported as failed.
			h.logger.Error("save generated plan failed", requestIDField(r), zap.Error(err))
			resp.SaveError = domain.MessageSaveFailed
		} else {
			resp.Saved = true
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getPlan(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if stored == nil {
		writeError(w, http.StatusNotFound, "not_found", "no saved plan")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (h *Handler) putPlan(w http.ResponseWriter, r *http.Request) {
	var stored domain.StoredPlan
	if err := json.NewDecoder(r.Body).Decode(&stored); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := stored.Validate(); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := h.store.Save(r.Context(), *stored.Profile, *stored.Bundle); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTips(w http.ResponseWriter, r *http.Request) {
	tips := []domain.Tip{}
	if h.tips != nil {
		tips = h.tips.Tips()
	}
	writeJSON(w, http.StatusOK, TipsResponse{Tips: tips})
}

func (h *Handler) createImage(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	subject, err := req.Subject()
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	ticket := h.tracker.Begin(req.View)
	defer ticket.Done()

	// The upstream call outlives a closed connection so a late result can still be
	// recognised as superseded rather than aborted.
	uri, err := h.images.Synthesize(context.WithoutCancel(r.Context()), subject)
	if !ticket.Current() {
		writeError(w, http.StatusConflict, "superseded", "a newer request replaced this one")
		return
	}
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ImageResponse{ImageURL: uri})
}

func (h *Handler) createAudio(w http.ResponseWriter, r *http.Request) {
	var req AudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	ticket := h.tracker.Begin(req.View)
	defer ticket.Done()

	uri, err := h.audio.Synthesize(context.WithoutCancel(r.Context()), req.Text)
	if !ticket.Current() {
		writeError(w, http.StatusConflict, "superseded", "a newer request replaced this one")
		return
	}
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AudioResponse{AudioURL: uri})
}

func (h *Handler) releaseView(w http.ResponseWriter, r *http.Request) {
	h.tracker.Release(mux.Vars(r)["view"])
	w.WriteHeader(http.StatusNoContent)
}
