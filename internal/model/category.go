package model

// MatchMethod indica cómo se resolvió la categoría
type MatchMethod string

const (
	MatchMethodExact   MatchMethod = "exact"   // coincidencia exacta con la taxonomía
	MatchMethodSynonym MatchMethod = "synonym" // término informal del diccionario de sinónimos
	MatchMethodFuzzy   MatchMethod = "fuzzy"   // aproximación por distancia de edición
)

// ClassificationResult es el resultado de clasificar una consulta libre
type ClassificationResult struct {
	Category string      `json:"category"`
	Score    float64     `json:"score"`
	Method   MatchMethod `json:"method"`
}
