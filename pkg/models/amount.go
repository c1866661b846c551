package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrParse marks input text that could not be normalized to a number.
var ErrParse = errors.New("unparseable amount")

// Amount pattern: optional currency prefix, digits with comma grouping,
// optional magnitude suffix word.
var amountPattern = regexp.MustCompile(`^(?:[Rr][Ss]\.?\s*|₹\s*)?([0-9][0-9,]*(?:\.[0-9]+)?)\s*([A-Za-z]*)$`)

// Magnitude suffixes in the source currency's numbering convention: lakh
// (hundred-thousand) and crore (ten-million) alongside western k/m.
var suffixMultipliers = map[string]float64{
	"":       1,
	"k":      1_000,
	"m":      1_000_000,
	"mn":     1_000_000,
	"l":      100_000,
	"lac":    100_000,
	"lacs":   100_000,
	"lakh":   100_000,
	"lakhs":  100_000,
	"cr":     10_000_000,
	"crore":  10_000_000,
	"crores": 10_000_000,
}

// ParseAmount normalizes text like "85L", "1.2 Cr", "Rs. 3,50,000" or "950k"
// to a raw numeric amount. Malformed or ambiguous input — unknown suffixes,
// trailing garbage, missing digits — is rejected with ErrParse, never
// guessed at.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrParse)
	}

	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}

	mult, ok := suffixMultipliers[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("%w: unknown magnitude suffix %q in %q", ErrParse, m[2], s)
	}
	return value * mult, nil
}

// decodeAmount accepts a JSON number or a magnitude-suffixed string.
func decodeAmount(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%w: expected a number or a string", ErrParse)
	}
	return ParseAmount(s)
}
