package service

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/config"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

// FinancingEngine motores construidos sobre una misma versión del catálogo
type FinancingEngine struct {
	Catalog    *config.Catalog
	Classifier *CategoryClassifier
	Solver     *AffordabilitySolver
	Router     *EligibilityRouter
}

// Route enruta el perfil contra la lista de entidades del catálogo
func (e *FinancingEngine) Route(profile model.BorrowerProfile) (model.RoutingResult, error) {
	return e.Router.Route(profile, e.Catalog.Lenders)
}

// Term plazo solicitado o, si no viene, el de la política
func (e *FinancingEngine) Term(requested *int) int {
	if requested == nil {
		return e.Solver.DefaultTerm()
	}
	return *requested
}

// FinancingService entrega los motores del catálogo vigente y los reconstruye tras una recarga
type FinancingService struct {
	catalogs *config.CatalogStore
	router   *EligibilityRouter
	cached   atomic.Pointer[FinancingEngine]
	logger   *logrus.Logger
}

func NewFinancingService(catalogs *config.CatalogStore, logger *logrus.Logger) *FinancingService {
	return &FinancingService{
		catalogs: catalogs,
		router:   NewEligibilityRouter(logger),
		logger:   logger,
	}
}

func (s *FinancingService) Engine() *FinancingEngine {
	cat := s.catalogs.Current()
	if e := s.cached.Load(); e != nil && e.Catalog == cat {
		return e
	}

	e := &FinancingEngine{
		Catalog:    cat,
		Classifier: NewCategoryClassifierFromCatalog(cat, s.logger),
		Solver:     NewAffordabilitySolver(cat.Policy, s.logger),
		Router:     s.router,
	}
	s.cached.Store(e)
	s.logger.WithField("labels", len(cat.Taxonomy)).Debug("Motores financieros reconstruidos")
	return e
}

// ReloadCatalog relee el archivo del catálogo; el anterior sigue vigente si falla
func (s *FinancingService) ReloadCatalog() error {
	return s.catalogs.Reload()
}
