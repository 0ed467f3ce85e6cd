package topsis

import (
	"math"
	"strconv"
	"strings"
)

// ParseSpec parses the comma-separated weight and direction lists and checks
// that both hold exactly m entries.
func ParseSpec(weightText, directionText string, m int) (Weights, Directions, error) {
	var weights Weights
	for _, tok := range splitTokens(weightText) {
		w, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, nil, validationErr(ReasonWeightsNotNumeric, "token %q", tok)
		}
		weights = append(weights, w)
	}

	var directions Directions
	for _, tok := range splitTokens(directionText) {
		switch tok {
		case "+":
			directions = append(directions, Benefit)
		case "-":
			directions = append(directions, Cost)
		default:
			return nil, nil, validationErr(ReasonInvalidDirection, "token %q, expected '+' or '-'", tok)
		}
	}

	if len(weights) != m || len(directions) != m {
		return nil, nil, validationErr(ReasonCountMismatch,
			"got %d weights and %d directions, want %d", len(weights), len(directions), m)
	}
	return weights, directions, nil
}

// splitTokens splits on commas, trims each token and drops empty ones.
func splitTokens(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
