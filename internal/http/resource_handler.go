package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/example/room-reservation/internal/application"
	"github.com/example/room-reservation/internal/booking"
)

type resourceService interface {
	CreateResource(ctx context.Context, input application.ResourceInput) (application.Resource, error)
	ListResources(ctx context.Context) ([]application.Resource, error)
	IsRestricted(ctx context.Context, id booking.ResourceID) (bool, error)
	Unlock(ctx context.Context, id booking.ResourceID, token string) error
	Categories(ctx context.Context, ids []booking.ResourceID) (map[booking.ResourceID]booking.Category, error)
}

// ResourceHandler serves the resource catalog.
type ResourceHandler struct {
	service   resourceService
	responder responder
	logger    *slog.Logger
}

// NewResourceHandler constructs a ResourceHandler.
func NewResourceHandler(service resourceService, logger *slog.Logger) *ResourceHandler {
	base := defaultLogger(logger)
	return &ResourceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ResourceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ResourceHandler", operation, attrs...)
}

// List handles GET /resources.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger := h.log(r.Context(), "List")

	resources, err := h.service.ListResources(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "resource list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResourcesResponse{Resources: toResourceDTOs(resources)})
}

// Create handles POST /resources.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req resourceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode resource request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create")

	resource, err := h.service.CreateResource(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "resource creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("resource_id", resource.ID).InfoContext(r.Context(), "resource created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, resourceResponse{Resource: toResourceDTO(resource)})
}

// Unlock handles POST /resources/:id/unlock.
func (h *ResourceHandler) Unlock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := booking.ResourceID(strings.TrimSpace(ps.ByName("id")))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingResourceID)
		return
	}

	var req unlockRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	if err := h.service.Unlock(r.Context(), id, req.Token); err != nil {
		h.log(r.Context(), "Unlock", "resource_id", id).WarnContext(r.Context(), "unlock failed", "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// unlockPolicy allows unrestricted resources and restricted ones whose
// unlock token verified.
type unlockPolicy map[booking.ResourceID]bool

func (p unlockPolicy) Allowed(resource booking.ResourceID) bool { return p[resource] }

// resolvePolicy checks every resource once. Unknown resources fail with
// application.ErrNotFound. Only a rejected token disallows a resource; any
// other unlock failure is returned.
func resolvePolicy(ctx context.Context, service resourceService, resources []booking.ResourceID, tokens map[string]string) (unlockPolicy, error) {
	policy := make(unlockPolicy, len(resources))
	for _, id := range resources {
		if _, seen := policy[id]; seen {
			continue
		}
		restricted, err := service.IsRestricted(ctx, id)
		if err != nil {
			return nil, err
		}
		if !restricted {
			policy[id] = true
			continue
		}
		token, ok := tokens[string(id)]
		if !ok {
			policy[id] = false
			continue
		}
		switch err := service.Unlock(ctx, id, token); {
		case err == nil:
			policy[id] = true
		case errors.Is(err, application.ErrInvalidUnlockToken):
			policy[id] = false
		default:
			return nil, err
		}
	}
	return policy, nil
}

type resourceRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Capacity    int    `json:"capacity"`
	Location    string `json:"location"`
	Restricted  bool   `json:"restricted"`
	UnlockToken string `json:"unlock_token"`
}

func (r resourceRequest) toInput() application.ResourceInput {
	return application.ResourceInput{
		Name:        r.Name,
		Category:    r.Category,
		Capacity:    r.Capacity,
		Location:    r.Location,
		Restricted:  r.Restricted,
		UnlockToken: r.UnlockToken,
	}
}

type unlockRequest struct {
	Token string `json:"token"`
}

type resourceResponse struct {
	Resource resourceDTO `json:"resource"`
}

type listResourcesResponse struct {
	Resources []resourceDTO `json:"resources"`
}
