package contract

import (
	"testing"
)

// FuzzParseSleepThreshold fuzzes the threshold parser. Accepted values are always positive.
func FuzzParseSleepThreshold(f *testing.F) {
	seeds := []string{
		"6h",
		"6h30m",
		"360 minutes",
		"6 hours",
		"6",
		"5.5",
		"0",   // edge case
		"-1h", // edge case
		"1e400",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		d, err := ParseSleepThreshold(input)
		if err == nil && d <= 0 {
			t.Fatalf("ParseSleepThreshold(%q) = %v, want a positive duration", input, d)
		}
	})
}

// FuzzTruncateText checks that truncation never grows the text.
func FuzzTruncateText(f *testing.F) {
	f.Add("u1", 10)
	f.Add("a-very-long-user-identifier", 8)
	f.Add("", 0)

	f.Fuzz(func(t *testing.T, text string, width int) {
		if got := TruncateText(text, width); len(got) > len(text) {
			t.Fatalf("TruncateText(%q, %d) = %q grew the text", text, width, got)
		}
	})
}
