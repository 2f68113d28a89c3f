package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/service"
)

// FinancingHandler expone los motores de clasificación, capacidad de pago y elegibilidad
type FinancingHandler struct {
	financing *service.FinancingService
	logger    *logrus.Logger
}

func NewFinancingHandler(financing *service.FinancingService, logger *logrus.Logger) *FinancingHandler {
	return &FinancingHandler{financing: financing, logger: logger}
}

func (h *FinancingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/categories/classify", h.Classify).Methods("GET")
	router.HandleFunc("/affordability", h.Affordability).Methods("POST")
	router.HandleFunc("/eligibility", h.Eligibility).Methods("POST")
}

// Classify responde 204 cuando la consulta no alcanza ninguna categoría
func (h *FinancingHandler) Classify(w http.ResponseWriter, r *http.Request) {
	result := h.financing.Engine().Classifier.Classify(r.URL.Query().Get("q"))
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type affordabilityRequest struct {
	DailyBudget float64 `json:"daily_budget"`
	DownPayment float64 `json:"down_payment"`
	TermMonths  *int    `json:"term_months,omitempty"`
}

type affordabilityResponse struct {
	model.AffordabilityResult
	TermMonths int `json:"term_months"`
}

func (h *FinancingHandler) Affordability(w http.ResponseWriter, r *http.Request) {
	var req affordabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	engine := h.financing.Engine()
	term := engine.Term(req.TermMonths)
	result, err := engine.Solver.MaxAffordable(model.AffordabilityInput{
		DailyBudget: req.DailyBudget,
		DownPayment: req.DownPayment,
		TermMonths:  term,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, affordabilityResponse{AffordabilityResult: result, TermMonths: term})
}

func (h *FinancingHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	var profile model.BorrowerProfile
	if err := decodeJSON(w, r, &profile); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.financing.Engine().Route(profile)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
