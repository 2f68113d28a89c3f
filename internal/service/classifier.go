package service

import (
	"sort"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/config"
	"github.com/tobiasgaitan/TiendaLasMotos-sub001/internal/model"
)

type synonymEntry struct {
	term     string
	category string
}

// CategoryClassifier mapea texto libre a una categoría oficial de vehículo
type CategoryClassifier struct {
	labels    []string
	synonyms  []synonymEntry
	lookup    map[string]string
	threshold float64
	fold      bool
	logger    *logrus.Logger
}

func NewCategoryClassifier(
	taxonomy []string,
	synonyms map[string]string,
	threshold float64,
	foldAccents bool,
	logger *logrus.Logger,
) *CategoryClassifier {
	c := &CategoryClassifier{
		labels:    taxonomy,
		lookup:    make(map[string]string, len(synonyms)),
		threshold: threshold,
		fold:      foldAccents,
		logger:    logger,
	}

	for term, category := range synonyms {
		key := c.normalize(term)
		c.lookup[key] = category
		c.synonyms = append(c.synonyms, synonymEntry{term: key, category: category})
	}
	// el orden del mapa no es estable; el recorrido difuso sí debe serlo
	sort.Slice(c.synonyms, func(i, j int) bool {
		return c.synonyms[i].term < c.synonyms[j].term
	})

	return c
}

func NewCategoryClassifierFromCatalog(cat *config.Catalog, logger *logrus.Logger) *CategoryClassifier {
	return NewCategoryClassifier(cat.Taxonomy, cat.Synonyms, cat.ClassifierThreshold, cat.AccentFolding(), logger)
}

// Classify devuelve nil cuando la consulta no alcanza el umbral de confianza
func (c *CategoryClassifier) Classify(query string) *model.ClassificationResult {
	q := c.normalize(query)
	if q == "" {
		return nil
	}

	if category, ok := c.lookup[q]; ok {
		return &model.ClassificationResult{Category: category, Score: 1, Method: model.MatchMethodSynonym}
	}

	var best *model.ClassificationResult

	for _, label := range c.labels {
		candidate := c.normalize(label)
		distance := LevenshteinDistance(q, candidate)
		if distance == 0 {
			return &model.ClassificationResult{Category: label, Score: 1, Method: model.MatchMethodExact}
		}
		score := similarity(q, candidate, distance)
		if best == nil || score > best.Score {
			best = &model.ClassificationResult{Category: label, Score: score, Method: model.MatchMethodFuzzy}
		}
	}

	// en empate gana la taxonomía: solo se reemplaza con puntaje estrictamente mayor
	for _, syn := range c.synonyms {
		score := similarity(q, syn.term, LevenshteinDistance(q, syn.term))
		if best == nil || score > best.Score {
			best = &model.ClassificationResult{Category: syn.category, Score: score, Method: model.MatchMethodFuzzy}
		}
	}

	if best == nil || best.Score <= c.threshold {
		c.logger.WithFields(logrus.Fields{"query": q}).Debug("Consulta sin categoría")
		return nil
	}

	c.logger.WithFields(logrus.Fields{
		"query":    q,
		"category": best.Category,
		"score":    best.Score,
	}).Debug("Categoría aproximada")
	return best
}

func (c *CategoryClassifier) normalize(s string) string {
	return config.NormalizeTerm(s, c.fold)
}

func similarity(a, b string, distance int) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(distance)/float64(longest)
}
