package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"ticketing/internal/events/service"
	httputil "ticketing/pkg/http"
	"ticketing/pkg/logger"
)

type EventHandler struct {
	service service.EventService
	log     *logger.Logger
}

func NewEventHandler(service service.EventService, log *logger.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log,
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	events, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, events); err != nil {
		h.log.Error("failed to write response", "handler", "List", "operation", "WriteJSON", "error", err)
	}
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, event); err != nil {
		h.log.Error("failed to write response", "handler", "Get", "operation", "WriteJSON", "error", err)
	}
}

// writeError answers with a bare {"message"} body.
func (h *EventHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteErrorMessage(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteErrorMessage", "error", writeErr)
	}
}

func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/events", h.List)
	router.GET("/api/events/:id", h.Get)
}
