package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reputation-monitor/models"
	"reputation-monitor/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"$120", 120, true},
		{"$1,200.50", 1200.50, true},
		{" 9.99 ", 9.99, true},
		{"€3,500", 3500, true},
		{"£ 0", 0, true},
		{"", 0, false},
		{"free", 0, false},
		{"$", 0, false},
		{"NaN", 0, false},
		{"-5", 0, false},
		{"12.3.4", 0, false},
	}

	for _, tt := range tests {
		got := ParsePrice(tt.raw)
		if !tt.ok {
			if got != nil {
				t.Errorf("ParsePrice(%q) = %v; want nil", tt.raw, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParsePrice(%q) = nil; want %.2f", tt.raw, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("ParsePrice(%q) = %.2f; want %.2f", tt.raw, *got, tt.want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2023-03-05", "2023-03-05", true},
		{" 2023-03-05 ", "2023-03-05", true},
		{"2023-03-05T22:10:00Z", "2023-03-05", true},
		{"2023-03-05T22:10:00", "2023-03-05", true},
		{"", "", false},
		{"yesterday", "", false},
		{"2023-13-01", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeDate(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("NormalizeDate(%q) = (%q, %v); want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	require.Equal(t, "great value for money", NormalizeText("  great \n value\tfor  money "))
	require.Equal(t, "", NormalizeText(" \n "))
}

func TestCleanerDedupTestimonials(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := []models.Testimonial{
		{Page: 1, Idx: 0, Text: "love it", Rating: 5},
		{Page: 1, Idx: 1, Text: "meh", Rating: 2},
		{Page: 2, Idx: 0, Text: "love it", Rating: 1},
	}

	out := c.DedupTestimonials(in)
	require.Len(t, out, 2)
	require.Equal(t, 1, out[0].Page)
	require.Equal(t, 5, out[0].Rating, "first occurrence must win")
	require.Equal(t, "meh", out[1].Text)
}

func TestCleanerDedupReviews(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := []models.Review{
		{RID: "a", Date: "2023-03-05", Text: "great product"},
		{RID: "b", Date: "2023-03-05", Text: "great product"},
		{RID: "c", Date: "2023-03-06", Text: "great product"},
	}

	out := c.DedupReviews(in)
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].RID)
	require.Equal(t, "c", out[1].RID)
}
