package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/service"
)

type RouterDeps struct {
	Auth        *service.AuthService
	Financing   *service.FinancingService
	Quotations  *service.QuotationService
	Sequencer   *service.QuotationSequencer
	RateLimiter *RateLimiter
	Logger      *logrus.Logger
}

func NewRouter(d RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware(d.Logger))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// 1. Inicio de sesión del administrador
	publicRouter := router.PathPrefix("/auth").Subrouter()
	NewAuthHandler(d.Auth, d.Logger).RegisterRoutes(publicRouter)

	// 2. API pública del formulario de financiación, con límite por IP
	apiRouter := router.PathPrefix("/api").Subrouter()
	if d.RateLimiter != nil {
		apiRouter.Use(d.RateLimiter.Middleware)
	}
	NewFinancingHandler(d.Financing, d.Logger).RegisterRoutes(apiRouter)
	NewQuotationHandler(d.Quotations, d.Logger).RegisterRoutes(apiRouter)

	// 3. Consola administrativa (requiere JWT)
	adminRouter := router.PathPrefix("/admin").Subrouter()
	adminRouter.Use(AuthMiddleware(d.Auth, d.Logger))
	NewAdminHandler(d.Sequencer, d.Financing, d.Logger).RegisterRoutes(adminRouter)

	return router
}
