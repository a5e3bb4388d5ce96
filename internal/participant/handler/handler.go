// Package handler is the HTTP boundary for the participant API. It owns
// request decoding/validation and the translation of domain error codes into
// HTTP statuses; all business decisions live behind the Service interface.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"participant-service/internal/participant/models"
	"participant-service/internal/platform/metrics"
	"participant-service/internal/platform/middleware"
	derrors "participant-service/pkg/domain-errors"
)

// Service defines the interface for participant and enrollment operations.
type Service interface {
	Create(ctx context.Context, req models.ParticipantRequest) (*models.Participant, error)
	GetAll(ctx context.Context) ([]models.Participant, error)
	GetByID(ctx context.Context, id int64) (*models.Participant, error)
	UpdateByID(ctx context.Context, id int64, req models.ParticipantRequest) (*models.Participant, error)
	DeleteByID(ctx context.Context, id int64) error
	ProcessEnrollment(ctx context.Context, req models.EnrollmentRequest) (models.EnrollmentStatus, error)
	GetActiveEnrollments(ctx context.Context, participantID int64) ([]models.EnrollmentRecord, error)
	FindByStatus(ctx context.Context, status string) ([]models.Participant, error)
}

// Handler handles the /api/participants endpoints.
type Handler struct {
	logger       *slog.Logger
	participants Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new participant Handler. A nil jwtValidator disables the auth
// requirement, which keeps local boots and tests free of token plumbing.
func New(
	participants Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		participants: participants,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the participant routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.Recovery(h.logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.Logger(h.logger))
	api.Use(middleware.Timeout(30 * time.Second))
	api.Use(middleware.ContentTypeJSON)
	if h.metrics != nil {
		api.Use(middleware.Latency(h.metrics))
	}
	if h.jwtValidator != nil {
		api.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	}

	api.Post("/api/participants", h.handleCreate)
	api.Get("/api/participants", h.handleGetAll)
	api.Get("/api/participants/search", h.handleSearch)
	api.Post("/api/participants/enrollments", h.handleEnroll)
	api.Get("/api/participants/{participantID}", h.handleGetByID)
	api.Put("/api/participants/{participantID}", h.handleUpdate)
	api.Delete("/api/participants/{participantID}", h.handleDelete)
	api.Get("/api/participants/{participantID}/enrollments/active", h.handleActiveEnrollments)

	r.Mount("/", api)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateParticipantRequest(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.participants.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, p.ToResponse())
}

func (h *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	participants, err := h.participants.GetAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, participantResponses(participants))
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.participants.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, p.ToResponse())
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req models.ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateParticipantRequest(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.participants.UpdateByID(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, p.ToResponse())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.participants.DeleteByID(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req models.EnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := validateEnrollmentRequest(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	status, err := h.participants.ProcessEnrollment(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, string(status))
}

func (h *Handler) handleActiveEnrollments(w http.ResponseWriter, r *http.Request) {
	id, err := participantID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records, err := h.participants.GetActiveEnrollments(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	responses := make([]models.EnrollmentResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, rec.ToResponse())
	}
	h.writeJSON(w, r, http.StatusOK, responses)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		h.writeError(w, r, derrors.New(derrors.CodeBadRequest, "status query parameter is required"))
		return
	}
	participants, err := h.participants.FindByStatus(r.Context(), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, participantResponses(participants))
}

func participantID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "participantID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, derrors.New(derrors.CodeBadRequest, "participant id must be a positive integer")
	}
	return id, nil
}

func participantResponses(participants []models.Participant) []models.ParticipantResponse {
	out := make([]models.ParticipantResponse, 0, len(participants))
	for i := range participants {
		out = append(out, participants[i].ToResponse())
	}
	return out
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}
}

// writeError centralizes the keyword-to-HTTP-status mapping. Unknown codes
// fall through to 500, and internal detail is logged rather than leaked.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *derrors.Error
	if !errors.As(err, &de) {
		de = derrors.Wrap(err, derrors.CodeInternal, "An unexpected error occurred. Please contact support.")
	}

	status := codeToHTTPStatus(de.Code)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		// Opaque message for 500s; the wrapped cause stays server-side.
		de = derrors.New(derrors.CodeInternal, "An unexpected error occurred. Please contact support.")
	}

	h.writeJSON(w, r, status, models.ErrorResponse{
		Status:  string(de.Code),
		Message: de.Message,
		Time:    time.Now().UTC(),
	})
}

func codeToHTTPStatus(code derrors.Code) int {
	switch code {
	case derrors.CodeRecordNotFound:
		return http.StatusNotFound
	case derrors.CodeAlreadyEnrolled, derrors.CodeEmailExists:
		return http.StatusConflict
	case derrors.CodeIneligibleAge:
		return http.StatusForbidden
	case derrors.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
