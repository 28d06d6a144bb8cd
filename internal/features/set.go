package features

// Set holds the per-call signals shared by the scoring strategies.
type Set struct {
	Length          int
	NumericDensity  float64
	AssetTermHits   int
	NumericEntities int
	HasDate         bool
	HasSignature    bool
}

// Extract computes every text signal for one scoring call.
func Extract(text string) Set {
	return Set{
		Length:          Length(text),
		NumericDensity:  NumericDensity(text),
		AssetTermHits:   KeywordHits(text, AssetTerms),
		NumericEntities: len(NumericEntities(text)),
		HasDate:         HasDate(text),
		HasSignature:    HasSignatureWord(text),
	}
}
