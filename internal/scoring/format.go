package scoring

import (
	"strconv"
	"strings"
)

// Pretty renders the breakdown as one "reason: +score" line per entry, in order.
func Pretty(breakdown []Entry) string {
	lines := make([]string, len(breakdown))
	for i, e := range breakdown {
		lines[i] = e.Reason + ": +" + strconv.FormatFloat(e.Score, 'f', -1, 64)
	}
	return strings.Join(lines, "\n")
}
