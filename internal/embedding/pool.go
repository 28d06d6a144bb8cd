package embedding

// MeanPool averages token vectors from a flattened [tokens, dims] hidden state, counting only
// positions whose attention mask is set.
func MeanPool(hidden []float32, attentionMask []int64, dims int) []float32 {
	out := make([]float32, dims)
	var count float32
	for tok, m := range attentionMask {
		if m == 0 {
			continue
		}
		off := tok * dims
		if off+dims > len(hidden) {
			break
		}
		for d := 0; d < dims; d++ {
			out[d] += hidden[off+d]
		}
		count++
	}
	if count == 0 {
		return out
	}
	for d := range out {
		out[d] /= count
	}
	return out
}
