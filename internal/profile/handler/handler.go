package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shareregistry/internal/profile/models"
	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/platform/httputil"
	"shareregistry/pkg/platform/middleware/auth"
	"shareregistry/pkg/platform/middleware/request"
	"shareregistry/pkg/requestcontext"
)

// Service is the profile use-case surface the handlers depend on.
type Service interface {
	Create(ctx context.Context, req *models.ProfileRequest) (*models.ClientProfile, error)
	Get(ctx context.Context, profileID id.ProfileID) (*models.ClientProfile, error)
	Update(ctx context.Context, profileID id.ProfileID, req *models.ProfileRequest) (*models.ClientProfile, error)
	Delete(ctx context.Context, profileID id.ProfileID) error
	List(ctx context.Context, q models.ListQuery) (*models.ProfileList, error)
	SetReview(ctx context.Context, profileID id.ProfileID, req *models.ReviewRequest) (*models.ClientProfile, error)
	ReviewStats(ctx context.Context, profileID id.ProfileID) (models.ReviewStats, error)
	Export(ctx context.Context, profileID id.ProfileID) (models.ExportRow, error)
	ExportAll(ctx context.Context, q models.ListQuery) ([]models.ExportRow, error)
	History(ctx context.Context, profileID id.ProfileID) ([]audit.Event, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the profile routes. Authentication must already be applied
// by the caller; role checks are applied here per route.
func (h *Handler) Register(r chi.Router) {
	staff := auth.RequireRole(h.logger, id.RoleAdmin, id.RoleEmployee)

	r.Route("/profiles", func(r chi.Router) {
		r.With(staff).Get("/", h.HandleList)
		r.With(staff).Post("/", h.HandleCreate)
		r.With(staff).Get("/export", h.HandleExportAll)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Get("/review-stats", h.HandleReviewStats)
			r.With(staff).Put("/", h.HandleUpdate)
			r.With(staff).Delete("/", h.HandleDelete)
			r.With(staff).Put("/review", h.HandleSetReview)
			r.With(staff).Get("/export", h.HandleExport)
			r.With(staff).Get("/audit", h.HandleHistory)
		})
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := models.ParseListQuery(r.URL.Query().Get)

	res, err := h.service.List(ctx, q)
	if err != nil {
		h.fail(ctx, w, "failed to list profiles", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.ProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.Create(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// HandleGet serves staff, and clients reading their own linked profile.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.readableProfileID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(ctx, profileID)
	if err != nil {
		h.fail(ctx, w, "failed to get profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ProfileRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.Update(ctx, profileID, req)
	if err != nil {
		h.fail(ctx, w, "failed to update profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, profileID); err != nil {
		h.fail(ctx, w, "failed to delete profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) HandleSetReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ReviewRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	p, err := h.service.SetReview(ctx, profileID, req)
	if err != nil {
		h.fail(ctx, w, "failed to save review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleReviewStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.readableProfileID(w, r)
	if !ok {
		return
	}
	stats, err := h.service.ReviewStats(ctx, profileID)
	if err != nil {
		h.fail(ctx, w, "failed to compute review stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

type historyEntry struct {
	Action    string `json:"action"`
	Actor     string `json:"actor"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}
	events, err := h.service.History(ctx, profileID)
	if err != nil {
		h.fail(ctx, w, "failed to load profile history", err)
		return
	}
	out := make([]historyEntry, 0, len(events))
	for _, e := range events {
		out = append(out, historyEntry{
			Action:    e.Action,
			Actor:     e.Actor,
			Reason:    e.Reason,
			Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			RequestID: e.RequestID,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) profileID(w http.ResponseWriter, r *http.Request) (id.ProfileID, bool) {
	profileID, err := id.ParseProfileID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProfileID{}, false
	}
	return profileID, true
}

// readableProfileID parses the path id and checks the caller may read it.
func (h *Handler) readableProfileID(w http.ResponseWriter, r *http.Request) (id.ProfileID, bool) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return profileID, false
	}
	ctx := r.Context()
	principal, _ := requestcontext.PrincipalFrom(ctx)
	if id.IsStaffRole(principal.Role) {
		return profileID, true
	}
	if principal.Role == id.RoleClient && principal.ProfileID != nil && *principal.ProfileID == profileID {
		return profileID, true
	}
	h.logger.WarnContext(ctx, "forbidden - profile not linked to caller",
		"profile_id", profileID.String(),
		"username", principal.Username,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Insufficient permissions"))
	return profileID, false
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}
