package category_test

import (
	"testing"

	"github.com/jonesrussell/book-discovery/internal/category"
)

func TestClassify_Overrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"005", "Technology & Computer Science"},
		{"005.1", "Technology & Computer Science"},
		{"0051", "Technology & Computer Science"},
		{"153", "Cognitive Psychology"},
		{"155.2", "Developmental Psychology"},
		{"158", "Applied Psychology & Self-Help"},
		{"302", "Social Interaction"},
		{"332.024", "Personal Finance & Economics"},
		{"658.4", "Business & Management"},
		{"745", "Decorative Arts & Crafts"},
		{"909", "World History"},
		{"921", "Biography"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			got := category.Classify(tt.code)
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassify_RangeFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"050", "General & Computer Science"},
		{"020", "General & Computer Science"},
		{"101", "Philosophy & Psychology"},
		{"231", "Religion & Theology"},
		{"330", "Social Sciences"},
		{"420", "Language & Linguistics"},
		{"510.2", "Pure Science"},
		{"640", "Applied Science & Technology"},
		{"792", "Arts & Recreation"},
		{"823", "Literature"},
		{"910", "History, Geography & Biography"},
		{"999", "History, Geography & Biography"},
		// Codes >= 1000 truncate to the first 3 integer digits.
		{"1234", "History, Geography & Biography"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			got := category.Classify(tt.code)
			if got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassify_MalformedCode(t *testing.T) {
	t.Parallel()

	// Non-numeric codes are not an error: they fall through every range
	// comparison and resolve to the final history label.
	for _, code := range []string{"", "abc", "6a8", "..."} {
		got := category.Classify(code)
		if got != "History, Geography & Biography" {
			t.Errorf("Classify(%q) = %q, want history label", code, got)
		}
	}
}

func TestClassify_IsTotal(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"0", "000", "99.999", "500", "899.99", "900"} {
		if category.Classify(code) == "" {
			t.Errorf("Classify(%q) returned empty label", code)
		}
	}
}
