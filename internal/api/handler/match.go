package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/codingworldcup/internal/api/apierr"
	"github.com/mcoot/codingworldcup/internal/api/response"
	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/storage"
	"github.com/mcoot/codingworldcup/internal/web/sse"
)

// MatchHandler serves live match status to observers
type MatchHandler struct {
	storage    storage.Storage
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(storage storage.Storage, hubManager *sse.HubManager, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		storage:    storage,
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "match-handler")),
	}
}

// List handles GET /api/v1/matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListMatchIDs(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list := response.MatchList{Matches: make([]response.MatchSummary, 0, len(ids))}
	for _, id := range ids {
		status, err := h.storage.GetMatchStatus(r.Context(), id)
		if err != nil {
			// Expired between listing and fetching
			continue
		}
		list.Matches = append(list.Matches, response.MatchSummaryFromModel(status))
	}
	response.JSON(w, http.StatusOK, list)
}

// Get handles GET /api/v1/matches/{id}. Pass ?snapshot=true for the full
// public snapshot of the last completed turn.
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.MatchID(mux.Vars(r)["id"])

	includeSnapshot := false
	if v := r.URL.Query().Get("snapshot"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			apierr.WriteError(w, apierr.NewInvalidRequestError("snapshot must be true or false"))
			return
		}
		includeSnapshot = b
	}

	status, err := h.storage.GetMatchStatus(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.MatchFromModel(status, includeSnapshot))
}

// Events handles GET /api/v1/matches/{id}/events, streaming the match's
// events until it finishes or the client disconnects
func (h *MatchHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := model.MatchID(mux.Vars(r)["id"])

	hub := h.hubManager.GetHub(id)
	if hub == nil {
		apierr.WriteError(w, model.ErrMatchNotFound)
		return
	}
	sse.ServeSSE(w, r, hub)
}

func (h *MatchHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) == http.StatusInternalServerError {
		h.logger.Error("match request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	apierr.WriteError(w, err)
}
