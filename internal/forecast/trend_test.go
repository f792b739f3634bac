package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"FinPlanner/internal/model"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func consecutive(closes ...float64) model.PriceSeries {
	points := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return model.PriceSeries{Symbol: "TEST", Points: points}
}

func TestForecast_LinearExample(t *testing.T) {
	res, err := Forecast(consecutive(10, 12, 14), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Slope != 2 || res.Intercept != 10 {
		t.Errorf("got slope=%.4f intercept=%.4f, want 2/10", res.Slope, res.Intercept)
	}
	want := []float64{16, 18}
	if len(res.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(res.Points))
	}
	for i, p := range res.Points {
		if p.PredictedClose != want[i] {
			t.Errorf("point %d: got %.4f, want %.4f", i, p.PredictedClose, want[i])
		}
		wantDate := start.AddDate(0, 0, 3+i)
		if !p.Date.Equal(wantDate) {
			t.Errorf("point %d: got date %s, want %s", i, p.Date.Format(time.DateOnly), wantDate.Format(time.DateOnly))
		}
	}
}

func TestForecast_LengthMatchesHorizon(t *testing.T) {
	series := consecutive(5, 7, 6, 8, 9)
	for _, h := range []int{1, 30, 180, 365} {
		res, err := Forecast(series, h)
		if err != nil {
			t.Fatalf("horizon %d: unexpected error: %v", h, err)
		}
		if len(res.Points) != h {
			t.Errorf("horizon %d: got %d points", h, len(res.Points))
		}
		for i := 1; i < len(res.Points); i++ {
			if model.DaysBetween(res.Points[i-1].Date, res.Points[i].Date) != 1 {
				t.Fatalf("horizon %d: points %d and %d are not consecutive days", h, i-1, i)
			}
		}
	}
}

func TestForecast_Deterministic(t *testing.T) {
	series := consecutive(101.3, 99.8, 102.7, 104.1, 103.9, 105.5)
	a, err := Forecast(series, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for run := 0; run < 5; run++ {
		b, err := Forecast(series, 30)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range a.Points {
			if math.Float64bits(a.Points[i].PredictedClose) != math.Float64bits(b.Points[i].PredictedClose) {
				t.Fatalf("run %d point %d differs: %v vs %v", run, i, a.Points[i].PredictedClose, b.Points[i].PredictedClose)
			}
		}
	}
}

func TestForecast_CalendarDayGaps(t *testing.T) {
	// Friday, Monday, Tuesday: the weekend counts toward the offsets.
	fri := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := model.PriceSeries{Points: []model.PricePoint{
		{Date: fri, Close: 10},
		{Date: fri.AddDate(0, 0, 3), Close: 13},
		{Date: fri.AddDate(0, 0, 4), Close: 14},
	}}
	res, err := Forecast(series, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Slope-1) > 1e-12 || math.Abs(res.Intercept-10) > 1e-12 {
		t.Errorf("got slope=%.6f intercept=%.6f, want 1/10", res.Slope, res.Intercept)
	}
	if got := res.Points[0].PredictedClose; math.Abs(got-15) > 1e-9 {
		t.Errorf("got %.6f, want 15", got)
	}
	if !res.Points[0].Date.Equal(fri.AddDate(0, 0, 5)) {
		t.Errorf("forecast should start on Wednesday, got %s", res.Points[0].Date.Weekday())
	}
}

func TestForecast_NoClamping(t *testing.T) {
	res, err := Forecast(consecutive(30, 20, 10), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last := res.Points[len(res.Points)-1].PredictedClose; last >= 0 {
		t.Errorf("expected negative extrapolation, got %.4f", last)
	}
}

func TestForecast_Errors(t *testing.T) {
	tests := []struct {
		name    string
		series  model.PriceSeries
		horizon int
		want    error
	}{
		{"empty series", model.PriceSeries{}, 30, ErrInsufficientData},
		{"single point", consecutive(10), 30, ErrInsufficientData},
		{"zero horizon", consecutive(10, 11), 0, ErrInvalidHorizon},
		{"negative horizon", consecutive(10, 11), -3, ErrInvalidHorizon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Forecast(tt.series, tt.horizon)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
			if len(res.Points) != 0 {
				t.Errorf("expected no points on error, got %d", len(res.Points))
			}
		})
	}
}

func TestFit_SameDate(t *testing.T) {
	series := model.PriceSeries{Points: []model.PricePoint{
		{Date: start, Close: 10},
		{Date: start, Close: 12},
	}}
	if _, err := Fit(series); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("got %v, want ErrInsufficientData", err)
	}
}
