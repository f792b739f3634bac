package notifier

import (
	"database/sql"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"FinPlanner/internal/calculator"
	"FinPlanner/internal/model"
)

// forecastSamples is how many evenly spaced forecast rows the report lists.
const forecastSamples = 6

// maxReasonLen caps error text in failure messages; upstream errors may carry whole response bodies.
const maxReasonLen = 300

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return html.EscapeString(s)
}

func priceOrNA(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", v)
}

// FormatAnalysisReport formats an analysis bundle and optional metadata into a Telegram message.
func FormatAnalysisReport(bundle *model.AnalysisBundle, meta *model.Metadata) string {
	var b strings.Builder
	last := bundle.Series.Last()

	b.WriteString(fmt.Sprintf("📊 <b>%s Stock Summary</b> | %s\n\n", html.EscapeString(bundle.Series.Symbol), last.Date.Format(time.DateOnly)))

	if meta != nil {
		b.WriteString(fmt.Sprintf("Company: %s\n", orNA(meta.Name)))
		b.WriteString(fmt.Sprintf("Industry: %s\n", orNA(meta.Industry)))
		if meta.MarketCap > 0 {
			b.WriteString(fmt.Sprintf("Market Cap: $%s\n", humanize.Comma(meta.MarketCap)))
		} else {
			b.WriteString("Market Cap: N/A\n")
		}
		b.WriteString(fmt.Sprintf("Current Price: %s\n", priceOrNA(meta.CurrentPrice)))
		b.WriteString(fmt.Sprintf("52-Week High: %s | Low: %s\n", priceOrNA(meta.High52w), priceOrNA(meta.Low52w)))
		if pos, err := calculator.Calculate52WeekPosition(last.Close, meta.High52w, meta.Low52w); err == nil && meta.High52w > 0 {
			b.WriteString(fmt.Sprintf("52-Week Position: %.0f%%\n", pos*100))
		}
		b.WriteString("\n")
	}

	// Forecast
	fc := bundle.Forecast
	b.WriteString(fmt.Sprintf("📈 <b>Trend Forecast</b> (%s, %d days)\n", bundle.Horizon.Label(), len(fc.Points)))
	b.WriteString(fmt.Sprintf("  History: %d closes, %s → %s\n", bundle.Series.Len(),
		bundle.Series.Points[0].Date.Format(time.DateOnly), last.Date.Format(time.DateOnly)))
	b.WriteString(fmt.Sprintf("  Trend: %+.4f per day\n", fc.Slope))
	for _, p := range sampleForecast(fc.Points, forecastSamples) {
		b.WriteString(fmt.Sprintf("  %s: %.2f\n", p.Date.Format(time.DateOnly), p.PredictedClose))
	}
	b.WriteString("\n")

	// Moving averages
	b.WriteString("📉 <b>Moving Averages</b>\n")
	b.WriteString(fmt.Sprintf("  Close: %.2f\n", last.Close))
	if ip, ok := bundle.Indicators.Latest(); ok {
		if ip.SMA.Valid {
			b.WriteString(fmt.Sprintf("  %d-Day SMA: %.2f (%s)\n", bundle.Indicators.SMAWindow, ip.SMA.Float64, relation(last.Close, ip.SMA.Float64)))
		} else {
			b.WriteString(fmt.Sprintf("  %d-Day SMA: N/A (insufficient history)\n", bundle.Indicators.SMAWindow))
		}
		b.WriteString(fmt.Sprintf("  %d-Day EMA: %.2f (%s)\n", bundle.Indicators.EMASpan, ip.EMA, relation(last.Close, ip.EMA)))
	}
	b.WriteString("\n")

	// Volatility
	b.WriteString("🌊 <b>Volatility</b>\n")
	if ip, ok := bundle.Indicators.Latest(); ok && ip.Return.Valid {
		b.WriteString(fmt.Sprintf("  Last Daily Return: %+.2f%%\n", ip.Return.Float64*100))
	}
	returns := lo.Map(bundle.Indicators.Points, func(p model.IndicatorPoint, _ int) sql.NullFloat64 {
		return p.Return
	})
	if vol, ok := calculator.Volatility(returns); ok {
		b.WriteString(fmt.Sprintf("  Annualised Volatility: %.1f%%\n", vol*100))
	} else {
		b.WriteString("  Annualised Volatility: N/A\n")
	}
	b.WriteString("\n")

	// Recommendation
	b.WriteString(fmt.Sprintf("💡 <b>Investment Recommendation</b> (risk %d/5, %s)\n", bundle.Recommendation.Score, bundle.Tier()))
	b.WriteString(html.EscapeString(bundle.Advice()))
	b.WriteString("\n")

	return b.String()
}

// FormatUnavailable is shown when no price history exists for a symbol.
func FormatUnavailable(symbol string) string {
	return fmt.Sprintf("❌ Stock data not found for <b>%s</b>. Please enter a valid ticker symbol.", html.EscapeString(symbol))
}

// FormatFailure is shown for any other analysis failure.
func FormatFailure(symbol string, err error) string {
	reason := []rune(err.Error())
	if len(reason) > maxReasonLen {
		reason = append(reason[:maxReasonLen], []rune("...")...)
	}
	return fmt.Sprintf("⚠️ Analysis of <b>%s</b> failed: %s", html.EscapeString(symbol), html.EscapeString(string(reason)))
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /analyze &lt;TICKER&gt; [SHORT|MID|LONG] [1-5]\n" +
		"• /risk [1-5]\n" +
		"• /horizon [SHORT|MID|LONG]\n" +
		"• /ticker [TICKER]\n" +
		"• /help"
}

func relation(price, avg float64) string {
	switch {
	case price > avg:
		return "price above"
	case price < avg:
		return "price below"
	default:
		return "price at"
	}
}

// sampleForecast picks n evenly spaced points, always including the last one.
func sampleForecast(points []model.ForecastPoint, n int) []model.ForecastPoint {
	if len(points) <= n {
		return points
	}
	out := make([]model.ForecastPoint, 0, n)
	step := float64(len(points)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, points[int(float64(i)*step+0.5)])
	}
	return out
}
