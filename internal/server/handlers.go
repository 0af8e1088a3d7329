package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/samvad-hq/users-api-keywords/internal/domain"
	"github.com/samvad-hq/users-api-keywords/pkg/publishers"
)

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

var (
	errNotFound    = messageResponse{Message: "User not found"}
	errInvalidBody = messageResponse{Message: "invalid JSON body"}
	errInternal    = messageResponse{Message: "internal error"}
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.list(w, false)
}

func (h *Handler) ListAllUsers(w http.ResponseWriter, r *http.Request) {
	h.list(w, true)
}

func (h *Handler) list(w http.ResponseWriter, includeDeleted bool) {
	users, err := h.store.List(includeDeleted)
	if err != nil {
		h.internalError(w, "list users failed", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respondJSON(w, http.StatusNotFound, errNotFound)
		return
	}

	user, found, err := h.store.Get(id)
	if err != nil {
		h.internalError(w, "get user failed", err)
		return
	}
	if !found {
		respondJSON(w, http.StatusNotFound, errNotFound)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if !decodeBody(w, r, &in) {
		return
	}

	user, err := h.store.Create(in)
	if err != nil {
		h.internalError(w, "create user failed", err)
		return
	}
	h.publish(r, publishers.NewUserEvent(publishers.EventUserCreated, user))
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, publishers.EventUserUpdated)
}

func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, publishers.EventUserPatched)
}

// update merges the body into the stored user; PUT and PATCH share these semantics.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, eventType string) {
	id, ok := userID(r)
	if !ok {
		respondJSON(w, http.StatusNotFound, errNotFound)
		return
	}

	var patch domain.UserPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	user, found, err := h.store.Update(id, patch)
	if err != nil {
		h.internalError(w, "update user failed", err)
		return
	}
	if !found {
		respondJSON(w, http.StatusNotFound, errNotFound)
		return
	}
	h.publish(r, publishers.NewUserEvent(eventType, user))
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		respondJSON(w, http.StatusNotFound, errNotFound)
		return
	}

	deleted, err := h.store.SoftDelete(id)
	if err != nil {
		h.internalError(w, "delete user failed", err)
		return
	}
	if !deleted {
		respondJSON(w, http.StatusNotFound, errNotFound)
		return
	}
	h.publish(r, publishers.NewDeletedEvent(id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(); err != nil {
		h.internalError(w, "reset failed", err)
		return
	}
	h.publish(r, publishers.NewResetEvent())
	respondJSON(w, http.StatusOK, messageResponse{Message: "REST API state reset"})
}

// publish never fails the request; delivery errors are only logged.
func (h *Handler) publish(r *http.Request, evt publishers.Event) {
	if h.events == nil {
		return
	}
	delivered, err := h.events.Publish(r.Context(), evt)
	if err != nil {
		h.log.ErrorObj("event publish failed", "event_error", map[string]any{
			"event_type": evt.Type,
			"user_id":    evt.UserID,
			"delivered":  delivered,
			"error":      err.Error(),
		})
	}
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.log.ErrorObj(msg, "error", err.Error())
	respondJSON(w, http.StatusInternalServerError, errInternal)
}

// userID parses the {id} path parameter. Non-numeric ids never match a user.
func userID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	// An empty body decodes as {} the way express.json() treats it.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		respondJSON(w, http.StatusBadRequest, errInvalidBody)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
