package calculator

import (
	"testing"

	"Farjax/internal/model"

	"github.com/guregu/null/v6"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{400.1, 400.1},
		{0.30000000000001137, 0.3},
		{-0.30000000000001137, -0.3},
		{1.005, 1.01},
		{-1.005, -1.01},
		{399.999, 400},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		hits, total int
		want        string
	}{
		{2, 3, "66.7%"},
		{0, 4, "0.0%"},
		{4, 4, "100.0%"},
		{1, 3, "33.3%"},
	}
	for _, tt := range tests {
		got, err := FormatPercent(tt.hits, tt.total)
		if err != nil {
			t.Fatalf("%d/%d: unexpected error: %v", tt.hits, tt.total, err)
		}
		if got != tt.want {
			t.Errorf("%d/%d: expected %q, got %q", tt.hits, tt.total, tt.want, got)
		}
	}
	if _, err := FormatPercent(1, 0); err == nil {
		t.Error("expected error for empty scope")
	}
}

func TestCalculatePresentMean(t *testing.T) {
	mean, n, err := CalculatePresentMean([]null.Float{null.FloatFrom(400), {}, null.FloatFrom(401)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 present values, got %d", n)
	}
	if mean != 400.5 {
		t.Errorf("expected mean 400.5, got %v", mean)
	}

	if _, _, err := CalculatePresentMean([]null.Float{{}, {}}); err == nil {
		t.Error("expected error when nothing is present")
	}
}

func TestCalculateChartDomain(t *testing.T) {
	candles := []model.Candle{
		{High: null.FloatFrom(401.2), Low: null.FloatFrom(399.7)},
		{Synthetic: true},
		{High: null.FloatFrom(402.05), Low: null.FloatFrom(400.3)},
	}
	lo, hi, err := CalculateChartDomain(candles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo != 399 || hi != 403 {
		t.Errorf("expected [399, 403], got [%v, %v]", lo, hi)
	}

	if _, _, err := CalculateRange([]model.Candle{{Synthetic: true}}); err == nil {
		t.Error("expected error without priced candles")
	}
}
