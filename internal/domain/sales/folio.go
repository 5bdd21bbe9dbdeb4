package sales

// NextFolio siguiente folio de la serie: max + 1, o seed si la serie está vacía.
func NextFolio(max *int64, seed int64) int64 {
	if max == nil {
		return seed
	}
	return *max + 1
}
