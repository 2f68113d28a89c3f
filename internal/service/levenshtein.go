package service

// LevenshteinDistance devuelve el número mínimo de inserciones, eliminaciones
// o sustituciones de un carácter para transformar a en b. Opera sobre runas.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	// matrix[i][j]: distancia entre rb[:i] y ra[:j]
	matrix := make([][]int, len(rb)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(ra)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(ra); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(rb); i++ {
		for j := 1; j <= len(ra); j++ {
			if rb[i-1] == ra[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			matrix[i][j] = 1 + min(
				matrix[i-1][j-1], // sustitución
				matrix[i][j-1],   // inserción
				matrix[i-1][j],   // eliminación
			)
		}
	}

	return matrix[len(rb)][len(ra)]
}
