package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

// Catalog datos de referencia del motor financiero: taxonomía oficial,
// sinónimos, entidades aliadas y constantes de la política.
type Catalog struct {
	Taxonomy            []string              `yaml:"taxonomy"`
	Synonyms            map[string]string     `yaml:"synonyms"`
	Lenders             []model.LendingEntity `yaml:"lenders"` // tasas mensuales en porcentaje
	Policy              model.FinancialPolicy `yaml:"policy"`  // tasas como fracción
	ClassifierThreshold float64               `yaml:"classifier_threshold"`
	FoldAccents         *bool                 `yaml:"fold_accents,omitempty"`
}

func intPtr(v int) *int { return &v }

// DefaultCatalog catálogo con el que arranca el servicio si no hay archivo
func DefaultCatalog() *Catalog {
	return &Catalog{
		Taxonomy: []string{
			"DEPORTIVA", "NAKED", "SCOOTER", "TODOTERRENO", "TURISMO",
			"URBANA", "TRABAJO", "CUATRIMOTO", "MOTOCARRO", "ELECTRICA",
		},
		Synonyms: map[string]string{
			"pistera":         "DEPORTIVA",
			"pista":           "DEPORTIVA",
			"sport":           "DEPORTIVA",
			"carreras":        "DEPORTIVA",
			"street":          "NAKED",
			"streetfighter":   "NAKED",
			"automatica":      "SCOOTER",
			"pasola":          "SCOOTER",
			"vespa":           "SCOOTER",
			"enduro":          "TODOTERRENO",
			"trail":           "TODOTERRENO",
			"doble proposito": "TODOTERRENO",
			"motocross":       "TODOTERRENO",
			"cross":           "TODOTERRENO",
			"touring":         "TURISMO",
			"viajera":         "TURISMO",
			"calle":           "URBANA",
			"ciudad":          "URBANA",
			"mensajeria":      "TRABAJO",
			"domicilios":      "TRABAJO",
			"carguero":        "MOTOCARRO",
			"torito":          "MOTOCARRO",
			"cuatri":          "CUATRIMOTO",
			"atv":             "CUATRIMOTO",
			"bateria":         "ELECTRICA",
		},
		Lenders: []model.LendingEntity{
			{ID: "banco-bogota", Name: "Banco de Bogotá", MonthlyInterestRate: 1.87, MinDownPaymentPercent: 10, MinAge: intPtr(18), MaxAge: intPtr(70)},
			{ID: "crediorbe", Name: "Crediorbe", MonthlyInterestRate: 2.3, MinDownPaymentPercent: 0, MinAge: intPtr(18), MaxAge: intPtr(75), AcceptsBureauFlagged: true},
			{ID: "sufi", Name: "Sufi Bancolombia", MonthlyInterestRate: 1.79, MinDownPaymentPercent: 20, MinAge: intPtr(21), MaxAge: intPtr(69)},
			{ID: "addi", Name: "Addi", MonthlyInterestRate: 2.1, MinDownPaymentPercent: 5, MinAge: intPtr(18), AcceptsBureauFlagged: true},
		},
		Policy: model.FinancialPolicy{
			MonthlyInterestRate: 0.0187,
			GuaranteeFeeRate:    0.2066,
			LifeInsuranceRate:   0.001126,
			DefaultTermMonths:   48,
		},
		ClassifierThreshold: 0.6,
	}
}

// LoadCatalog lee el catálogo YAML; los campos ausentes toman el valor por defecto
func LoadCatalog(path string) (*Catalog, error) {
	cat := DefaultCatalog()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(data) > 0 {
		var fromFile Catalog
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		cat.merge(&fromFile)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func (c *Catalog) merge(other *Catalog) {
	if len(other.Taxonomy) > 0 {
		c.Taxonomy = other.Taxonomy
	}
	if other.Synonyms != nil {
		c.Synonyms = other.Synonyms
	}
	if other.Lenders != nil {
		c.Lenders = other.Lenders
	}
	if other.Policy.MonthlyInterestRate != 0 || other.Policy.GuaranteeFeeRate != 0 || other.Policy.LifeInsuranceRate != 0 {
		c.Policy.MonthlyInterestRate = other.Policy.MonthlyInterestRate
		c.Policy.GuaranteeFeeRate = other.Policy.GuaranteeFeeRate
		c.Policy.LifeInsuranceRate = other.Policy.LifeInsuranceRate
	}
	if other.Policy.DefaultTermMonths != 0 {
		c.Policy.DefaultTermMonths = other.Policy.DefaultTermMonths
	}
	if other.ClassifierThreshold != 0 {
		c.ClassifierThreshold = other.ClassifierThreshold
	}
	if other.FoldAccents != nil {
		c.FoldAccents = other.FoldAccents
	}
}

// Validate verifica los invariantes del catálogo
func (c *Catalog) Validate() error {
	if len(c.Taxonomy) == 0 {
		return fmt.Errorf("catalog.taxonomy is required")
	}
	fold := c.AccentFolding()
	labels := make(map[string]bool, len(c.Taxonomy))
	// etiquetas en la forma normalizada con la que compara el clasificador
	matchForms := make(map[string]string, len(c.Taxonomy))
	for _, label := range c.Taxonomy {
		if label == "" || label != strings.ToUpper(label) {
			return fmt.Errorf("catalog.taxonomy: label %q must be non-empty upper-case", label)
		}
		if labels[label] {
			return fmt.Errorf("catalog.taxonomy: duplicated label %q", label)
		}
		labels[label] = true

		form := NormalizeTerm(label, fold)
		if other, ok := matchForms[form]; ok {
			return fmt.Errorf("catalog.taxonomy: labels %q and %q normalize to the same term", other, label)
		}
		matchForms[form] = label
	}

	// orden fijo para que el error reportado no dependa del mapa
	terms := make([]string, 0, len(c.Synonyms))
	for term := range c.Synonyms {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	synonymForms := make(map[string]string, len(c.Synonyms))
	for _, term := range terms {
		label := c.Synonyms[term]
		if term != strings.ToLower(strings.TrimSpace(term)) || term == "" {
			return fmt.Errorf("catalog.synonyms: term %q must be trimmed lower-case", term)
		}
		if !labels[label] {
			return fmt.Errorf("catalog.synonyms: term %q points to unknown label %q", term, label)
		}

		form := NormalizeTerm(term, fold)
		// un sinónimo igual a una etiqueta ocultaría la coincidencia exacta
		if shadowed, ok := matchForms[form]; ok {
			return fmt.Errorf("catalog.synonyms: term %q shadows taxonomy label %q", term, shadowed)
		}
		if other, ok := synonymForms[form]; ok {
			return fmt.Errorf("catalog.synonyms: terms %q and %q normalize to the same term", other, term)
		}
		synonymForms[form] = term
	}

	ids := make(map[string]bool, len(c.Lenders))
	for _, l := range c.Lenders {
		if l.ID == "" {
			return fmt.Errorf("catalog.lenders: id is required")
		}
		if ids[l.ID] {
			return fmt.Errorf("catalog.lenders: duplicated id %q", l.ID)
		}
		ids[l.ID] = true
		if l.MonthlyInterestRate <= 0 {
			return fmt.Errorf("catalog.lenders: %s monthly_interest_rate must be positive", l.ID)
		}
		if l.MinDownPaymentPercent < 0 || l.MinDownPaymentPercent > 100 {
			return fmt.Errorf("catalog.lenders: %s min_down_payment_percent must be within 0..100", l.ID)
		}
		if l.MinAge != nil && l.MaxAge != nil && *l.MinAge > *l.MaxAge {
			return fmt.Errorf("catalog.lenders: %s min_age greater than max_age", l.ID)
		}
	}

	p := c.Policy
	if p.MonthlyInterestRate < 0 || p.GuaranteeFeeRate < 0 || p.LifeInsuranceRate < 0 {
		return fmt.Errorf("catalog.policy: rates must not be negative")
	}
	if p.DefaultTermMonths <= 0 {
		return fmt.Errorf("catalog.policy.default_term_months must be positive")
	}
	if c.ClassifierThreshold <= 0 || c.ClassifierThreshold >= 1 {
		return fmt.Errorf("catalog.classifier_threshold must be within (0, 1)")
	}
	return nil
}

// AccentFolding indica si la normalización elimina tildes; apagado salvo que el catálogo lo pida
func (c *Catalog) AccentFolding() bool {
	return c.FoldAccents != nil && *c.FoldAccents
}

// CatalogStore mantiene el catálogo vigente y permite recargarlo en caliente
type CatalogStore struct {
	path    string
	current atomic.Pointer[Catalog]
	logger  *logrus.Logger
}

func NewCatalogStore(path string, logger *logrus.Logger) (*CatalogStore, error) {
	s := &CatalogStore{path: path, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticCatalogStore envuelve un catálogo ya construido (pruebas, modo memoria)
func NewStaticCatalogStore(cat *Catalog, logger *logrus.Logger) *CatalogStore {
	s := &CatalogStore{logger: logger}
	s.current.Store(cat)
	return s
}

func (s *CatalogStore) Current() *Catalog {
	return s.current.Load()
}

// Reload vuelve a leer el archivo; si falla se conserva el catálogo anterior
func (s *CatalogStore) Reload() error {
	if s.path == "" {
		return nil
	}
	cat, err := LoadCatalog(s.path)
	if err != nil {
		s.logger.WithError(err).WithField("path", s.path).Error("Error cargando el catálogo")
		return err
	}
	s.current.Store(cat)
	s.logger.WithFields(logrus.Fields{
		"path":     s.path,
		"labels":   len(cat.Taxonomy),
		"synonyms": len(cat.Synonyms),
		"lenders":  len(cat.Lenders),
	}).Info("Catálogo cargado")
	return nil
}
