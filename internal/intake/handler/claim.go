package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"ticketing/internal/intake/service"
	httputil "ticketing/pkg/http"
	"ticketing/pkg/logger"
	"ticketing/pkg/middleware"
	"ticketing/pkg/model"
)

const AcceptedMessage = "Booking request received and is being processed."

type ClaimHandler struct {
	service service.ClaimService
	log     *logger.Logger
}

func NewClaimHandler(service service.ClaimService, log *logger.Logger) *ClaimHandler {
	return &ClaimHandler{
		service: service,
		log:     log,
	}
}

// Book admits a claim and answers 202 once it is on the queue.
func (h *ClaimHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var claim model.ClaimRequest
	if err := httputil.DecodeJSON(r, &claim); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := h.service.Submit(r.Context(), &claim, middleware.RequestIDFromContext(r.Context())); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteAccepted(w, AcceptedMessage); err != nil {
		h.log.Error("failed to write accepted response", "handler", "Book", "operation", "WriteAccepted", "error", err)
	}
}

func (h *ClaimHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/book", h.Book)
}
