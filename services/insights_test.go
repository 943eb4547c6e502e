package services

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"reputation-monitor/models"
)

func sampleRows() []models.ReviewRow {
	return []models.ReviewRow{
		{Review: models.Review{RID: "1", Text: "great"}, Sentiment: "Positive", Confidence: 0.9},
		{Review: models.Review{RID: "2", Text: "fine"}, Sentiment: "Positive", Confidence: 0.7},
		{Review: models.Review{RID: "3", Text: "awful"}, Sentiment: "Negative", Confidence: 0.8},
		{Review: models.Review{RID: "4", Text: "hm"}, Sentiment: "NEUTRAL", Confidence: 0.4},
	}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	s := svc.Summarize(sampleRows())
	if s.Total != 4 {
		t.Errorf("Total: got %d, want 4", s.Total)
	}
	if len(s.Counts) != 3 {
		t.Fatalf("Counts len: got %d, want 3", len(s.Counts))
	}
	if s.Counts[0].Label != "Positive" || s.Counts[0].Count != 2 {
		t.Errorf("Counts[0]: got %+v, want Positive/2", s.Counts[0])
	}
	if s.Counts[1].Label != "NEUTRAL" || s.Counts[2].Label != "Negative" {
		t.Errorf("ties must sort by label: got %+v", s.Counts)
	}
}

func TestInsightMeans(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	s := svc.Summarize(sampleRows())
	if !almostEqual(s.MeanConfidence, 0.7) {
		t.Errorf("MeanConfidence: got %.4f, want 0.7", s.MeanConfidence)
	}
	if !almostEqual(s.MeanByLabel["Positive"], 0.8) {
		t.Errorf("Positive mean: got %.4f, want 0.8", s.MeanByLabel["Positive"])
	}
	if got := FormatMean(s, "Negative"); got != "0.800" {
		t.Errorf("FormatMean(Negative): got %q, want 0.800", got)
	}
}

func TestInsightMissingLabel(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	s := svc.Summarize(sampleRows()[:2])
	if got := FormatMean(s, "Negative"); got != MissingValue {
		t.Errorf("FormatMean(Negative): got %q, want %q", got, MissingValue)
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	s := svc.Summarize(nil)
	if s.Total != 0 || len(s.Counts) != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
	if got := FormatOverall(s); got != MissingValue {
		t.Errorf("FormatOverall: got %q, want %q", got, MissingValue)
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	rows := sampleRows()
	v := &models.ReviewsView{Year: 2023, Month: "Mar 2023", YearTotal: 10, Rows: rows, Summary: svc.Summarize(rows)}

	var buf bytes.Buffer
	svc.Print(&buf, v)
	out := buf.String()
	for _, want := range []string{"Mar 2023", "awful", "Sentiment summary", "0.800"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print output missing %q", want)
		}
	}
}
