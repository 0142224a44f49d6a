package api

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/mindnest/config"
	"github.com/spacesedan/mindnest/internal/auth"
	"github.com/spacesedan/mindnest/internal/crisis"
	"github.com/spacesedan/mindnest/internal/heuristic"
	"github.com/spacesedan/mindnest/internal/journal"
)

type Handler struct {
	journal *journal.Service
	crisis  *crisis.Catalog
	google  config.GoogleSettings
	healthy *atomic.Bool
}

type submitRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Async    bool   `json:"async"`
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type healthResponse struct {
	Status           string `json:"status"`
	Reflector        string `json:"reflector"`
	ReflectorHealthy bool   `json:"reflectorHealthy"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:           "ok",
		Reflector:        h.journal.ReflectorName(),
		ReflectorHealthy: h.healthy == nil || h.healthy.Load(),
	})
}

func (h *Handler) SubmitJournal(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Async {
		requestID, err := h.journal.Enqueue(c.Request.Context(), userID(c), req.Text, req.Language)
		switch {
		case errors.Is(err, journal.ErrEmptyText):
			fail(c, http.StatusBadRequest, "text is required")
		case errors.Is(err, journal.ErrGuestAsync):
			fail(c, http.StatusUnauthorized, "sign in to submit asynchronously")
		case errors.Is(err, journal.ErrAsyncUnavailable):
			fail(c, http.StatusServiceUnavailable, "asynchronous submission is disabled")
		case err != nil:
			internalError(c, err)
		default:
			respond(c, http.StatusAccepted, gin.H{"requestId": requestID})
		}
		return
	}

	sub, err := h.journal.Submit(c.Request.Context(), userID(c), req.Text, req.Language)
	switch {
	case errors.Is(err, journal.ErrEmptyText):
		fail(c, http.StatusBadRequest, "text is required")
	case err != nil:
		internalError(c, err)
	default:
		respond(c, http.StatusCreated, sub)
	}
}

func (h *Handler) ListJournals(c *gin.Context) {
	entries, err := h.journal.Entries(c.Request.Context(), userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	respond(c, http.StatusOK, entries)
}

func (h *Handler) MoodData(c *gin.Context) {
	points, err := h.journal.MoodData(c.Request.Context(), userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	respond(c, http.StatusOK, points)
}

func (h *Handler) Dashboard(c *gin.Context) {
	dash, err := h.journal.Dashboard(c.Request.Context(), userID(c))
	if err != nil {
		internalError(c, err)
		return
	}
	respond(c, http.StatusOK, dash)
}

// Analyze runs only the local heuristic and stores nothing.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	respond(c, http.StatusOK, heuristic.Analyze(req.Text))
}

func (h *Handler) CrisisResources(c *gin.Context) {
	respond(c, http.StatusOK, h.crisis.For(c.Query("country")))
}

func (h *Handler) GoogleStatus(c *gin.Context) {
	respond(c, http.StatusOK, auth.Status(h.google))
}
