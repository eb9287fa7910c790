package usage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// rawPoint is one element of the plinechart response. Values arrive as
// strings or numbers depending on the backend's mood.
type rawPoint map[string]json.RawMessage

const (
	fieldPeriod = "PERIODE"
	fieldUsage  = "USAGES"
	fieldUsers  = "TRAFIK"
)

// ParseSeries normalizes a plinechart body into a UsageSeries.
//
// An empty array, a JSON null, or any element lacking PERIODE yields an empty
// series. Rows whose PERIODE does not parse are dropped. Days reported more
// than once are summed. Non-JSON bodies return ErrMalformedResponse.
func ParseSeries(body []byte) (models.UsageSeries, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}

	var rows []rawPoint
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(rows) == 0 {
		return models.UsageSeries{}, nil
	}

	for _, row := range rows {
		if _, ok := row[fieldPeriod]; !ok {
			return models.UsageSeries{}, nil
		}
	}

	byDay := make(map[time.Time]*models.UsagePoint, len(rows))
	for _, row := range rows {
		day, ok := parseDay(row[fieldPeriod])
		if !ok {
			continue
		}
		p, seen := byDay[day]
		if !seen {
			p = &models.UsagePoint{Date: day}
			byDay[day] = p
		}
		p.UsageBytes += nonNegative(parseNumber(row[fieldUsage]))
		p.ConnectedUsers = addCount(p.ConnectedUsers, parseNumber(row[fieldUsers]))
	}

	series := make(models.UsageSeries, 0, len(byDay))
	for _, p := range byDay {
		series = append(series, *p)
	}
	slices.SortFunc(series, func(a, b models.UsagePoint) int {
		return a.Date.Compare(b.Date)
	})
	return series, nil
}

func parseDay(raw json.RawMessage) (time.Time, bool) {
	s := unquote(raw)
	if s == "" {
		return time.Time{}, false
	}
	day, err := time.Parse(models.RemoteDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// parseNumber coerces a string or numeric JSON value; anything else is 0.
func parseNumber(raw json.RawMessage) float64 {
	s := unquote(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func unquote(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func nonNegative(f float64) float64 {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// addCount adds a user count to total, saturating at math.MaxInt64.
func addCount(total int64, f float64) int64 {
	f = nonNegative(f)
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	n := int64(f)
	if n > math.MaxInt64-total {
		return math.MaxInt64
	}
	return total + n
}
