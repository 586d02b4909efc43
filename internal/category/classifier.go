// Package category maps Dewey-Decimal style codes to subject labels.
package category

import (
	"math"
	"strconv"
	"strings"
)

// deweyPrefixLen is the number of digits used for the override lookup.
const deweyPrefixLen = 3

// overrides maps specific 3-digit Dewey sub-classes to precise labels.
// Checked before the coarse range fallback.
var overrides = map[string]string{
	"005": "Technology & Computer Science",
	"153": "Cognitive Psychology",
	"155": "Developmental Psychology",
	"158": "Applied Psychology & Self-Help",
	"302": "Social Interaction",
	"332": "Personal Finance & Economics",
	"658": "Business & Management",
	"745": "Decorative Arts & Crafts",
	"909": "World History",
	"921": "Biography",
}

// Range fallback labels, by upper bound of the Dewey hundreds class.
const (
	labelGeneral    = "General & Computer Science"
	labelPhilosophy = "Philosophy & Psychology"
	labelReligion   = "Religion & Theology"
	labelSocial     = "Social Sciences"
	labelLanguage   = "Language & Linguistics"
	labelScience    = "Pure Science"
	labelApplied    = "Applied Science & Technology"
	labelArts       = "Arts & Recreation"
	labelLiterature = "Literature"
	labelHistory    = "History, Geography & Biography"
)

// Classify maps a Dewey-Decimal style code to a human-readable subject label.
// It is total: every input resolves to a label. Malformed codes parse to NaN,
// fail every range comparison, and land in the final history branch.
func Classify(code string) string {
	if label, ok := overrides[prefix(code)]; ok {
		return label
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(code), 64)
	if err != nil {
		value = math.NaN()
	}

	switch {
	case value < 100:
		return labelGeneral
	case value < 200:
		return labelPhilosophy
	case value < 300:
		return labelReligion
	case value < 400:
		return labelSocial
	case value < 500:
		return labelLanguage
	case value < 600:
		return labelScience
	case value < 700:
		return labelApplied
	case value < 800:
		return labelArts
	case value < 900:
		return labelLiterature
	default:
		return labelHistory
	}
}

// prefix derives the 3-digit lookup key from a code: the integer part,
// left-padded with zeros to 3 digits, truncated to the first 3 digits.
// "005", "005.1", and "0051" all yield "005"; "1234.5" yields "123".
func prefix(code string) string {
	intPart, _, _ := strings.Cut(strings.TrimSpace(code), ".")
	for len(intPart) < deweyPrefixLen {
		intPart = "0" + intPart
	}
	return intPart[:deweyPrefixLen]
}
