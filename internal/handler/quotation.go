package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/service"
)

type QuotationHandler struct {
	quotations *service.QuotationService
	logger     *logrus.Logger
}

func NewQuotationHandler(quotations *service.QuotationService, logger *logrus.Logger) *QuotationHandler {
	return &QuotationHandler{quotations: quotations, logger: logger}
}

func (h *QuotationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/quotations", h.Create).Methods("POST")
	router.HandleFunc("/quotations/{number}", h.Get).Methods("GET")
}

// Create 201 con la cotización numerada, 422 si ninguna entidad puede financiar al cliente
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateQuotationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	q, err := h.quotations.CreateQuotation(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if q.Status == model.RoutingStatusRejected {
		writeJSON(w, http.StatusUnprocessableEntity, q)
		return
	}
	w.Header().Set("Location", "/api/quotations/"+q.Number)
	writeJSON(w, http.StatusCreated, q)
}

func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.quotations.GetQuotation(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
