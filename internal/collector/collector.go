package collector

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/samber/lo"

	"FinPlanner/internal/calculator"
	"FinPlanner/internal/model"
)

// DefaultHistoryYears is the trailing window requested from the data source.
const DefaultHistoryYears = 2

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price    float64
	History  []model.PricePoint
	Meta     *model.Metadata
	Err      error
	MetaErr  error
	Unknown  map[string]bool // symbols that return no history
	Requests int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	m.Requests++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Unknown[symbol] {
		return nil, nil
	}
	if m.History != nil {
		return m.History, nil
	}
	return generateMockPoints(m.Price, start, end), nil
}

func (m *MockFetcher) FetchMetadata(_ context.Context, symbol string) (*model.Metadata, error) {
	if m.MetaErr != nil {
		return nil, m.MetaErr
	}
	if m.Meta != nil {
		md := *m.Meta
		return &md, nil
	}
	return &model.Metadata{Name: symbol + " Inc.", Industry: "Testing", CurrentPrice: m.Price}, nil
}

// generateMockPoints produces one weekday bar per day with a gentle upward drift.
func generateMockPoints(basePrice float64, start, end time.Time) []model.PricePoint {
	var points []model.PricePoint
	for d := model.Day(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(len(points))*0.001)
		points = append(points, model.PricePoint{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
	}
	return points
}

// Collector fetches a ticker's history and metadata from a Fetcher.
type Collector struct {
	Fetcher      Fetcher
	HistoryYears int
	Now          func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, historyYears int) *Collector {
	if historyYears <= 0 {
		historyYears = DefaultHistoryYears
	}
	return &Collector{Fetcher: fetcher, HistoryYears: historyYears, Now: time.Now}
}

// Collect fetches the trailing price history and display metadata for symbol.
// An unknown symbol yields an empty series and nil metadata.
func (c *Collector) Collect(ctx context.Context, symbol string) (model.PriceSeries, *model.Metadata, error) {
	end := c.Now()
	start := end.AddDate(-c.HistoryYears, 0, 0)

	raw, err := c.Fetcher.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		return model.PriceSeries{}, nil, fmt.Errorf("fetch history: %w", err)
	}

	series := model.PriceSeries{Symbol: symbol, Points: normalize(raw)}
	if err := series.Validate(); err != nil {
		return model.PriceSeries{}, nil, fmt.Errorf("invalid history for %s: %w", symbol, err)
	}
	if series.IsEmpty() {
		log.Printf("[WARN] no price history for %s from %s", symbol, c.Fetcher.Name())
		return series, nil, nil
	}

	meta, err := c.Fetcher.FetchMetadata(ctx, symbol)
	if err != nil || meta == nil {
		log.Printf("[WARN] metadata for %s unavailable: %v, deriving from history", symbol, err)
		meta = &model.Metadata{}
	}
	fillMetadata(meta, series)

	return series, meta, nil
}

// normalize drops unusable bars, truncates dates to calendar days, sorts
// ascending and keeps the last bar of any duplicated date.
func normalize(raw []model.PricePoint) []model.PricePoint {
	points := lo.FilterMap(raw, func(p model.PricePoint, _ int) (model.PricePoint, bool) {
		p.Date = model.Day(p.Date)
		if p.Volume < 0 {
			p.Volume = 0
		}
		return p, p.Close > 0
	})
	slices.SortStableFunc(points, func(a, b model.PricePoint) int {
		return a.Date.Compare(b.Date)
	})

	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func fillMetadata(meta *model.Metadata, series model.PriceSeries) {
	if meta.CurrentPrice == 0 {
		meta.CurrentPrice = series.Last().Close
	}
	if meta.High52w == 0 || meta.Low52w == 0 {
		if h, l, err := calculator.Calculate52WeekRange(series.Points); err != nil {
			log.Printf("[WARN] 52-week range calculation failed: %v", err)
		} else {
			meta.High52w = h
			meta.Low52w = l
		}
	}
}
