package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/service"
)

// AdminHandler rutas protegidas por JWT
type AdminHandler struct {
	sequencer *service.QuotationSequencer
	financing *service.FinancingService
	logger    *logrus.Logger
}

func NewAdminHandler(sequencer *service.QuotationSequencer, financing *service.FinancingService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{sequencer: sequencer, financing: financing, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/counters/{year:[0-9]{4}}", h.GetCounter).Methods("GET")
	router.HandleFunc("/catalog/reload", h.ReloadCatalog).Methods("POST")
}

// GetCounter último número emitido en el año, sin asignar uno nuevo
func (h *AdminHandler) GetCounter(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: invalid year", model.ErrInvalidInput))
		return
	}

	counter, err := h.sequencer.Peek(r.Context(), year)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, counter)
}

func (h *AdminHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.financing.ReloadCatalog(); err != nil {
		h.logger.WithError(err).WithField("admin", SubjectFromContext(r.Context())).Error("Recarga de catálogo fallida")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     err.Error(),
			RequestID: RequestIDFromContext(r.Context()),
		})
		return
	}

	cat := h.financing.Engine().Catalog
	h.logger.WithField("admin", SubjectFromContext(r.Context())).Info("Catálogo recargado")
	writeJSON(w, http.StatusOK, map[string]int{
		"labels":   len(cat.Taxonomy),
		"synonyms": len(cat.Synonyms),
		"lenders":  len(cat.Lenders),
	})
}
