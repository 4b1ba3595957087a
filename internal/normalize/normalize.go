// Package normalize maps raw detail extractions into canonical property
// records and a parallel price series. Coercion never fails: currency-noisy
// strings become 0.0 and count-like strings become 0 when unparsable.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
)

const (
	// Source is the provenance tag stamped on every canonical record.
	Source = "lamudi"

	// MaxProperties caps the returned record list for response-size parity.
	// The price series is never capped so stats reflect the full result.
	MaxProperties = 100

	// ReasonSelectorMiss is the conservative classification for an empty
	// result: the most common cause is the site's markup drifting past
	// every selector fallback.
	ReasonSelectorMiss = "selector-miss"
)

var lastCommaSegment = regexp.MustCompile(`,\s*([^,]+)\s*$`)

// Normalizer converts RawDetails into canonical Properties.
type Normalizer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize maps the raw details into (capped property list, uncapped price
// series). An empty input yields empty outputs and a reason classification,
// never an error. A panic during mapping is recovered at this boundary and
// treated as an empty result.
func (n *Normalizer) Normalize(details []domain.RawDetail, propertyType string) (props []domain.Property, series []float64, reason string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("adapter-exception", zap.Any("panic", r))
			props, series, reason = nil, nil, ReasonSelectorMiss
		}
	}()

	if len(details) == 0 {
		return nil, nil, ReasonSelectorMiss
	}

	props = make([]domain.Property, 0, len(details))
	series = make([]float64, 0, len(details))

	for _, d := range details {
		p := n.normalizeOne(d, propertyType)
		series = append(series, p.Price)
		if len(props) < MaxProperties {
			props = append(props, p)
		}
	}
	return props, series, ""
}

func (n *Normalizer) normalizeOne(d domain.RawDetail, propertyType string) domain.Property {
	p := domain.Property{
		Source:       Source,
		PropertyID:   d.Stub.ID,
		Name:         strings.ToUpper(strings.TrimSpace(d.Fields[domain.FieldName])),
		Address:      d.Address,
		City:         CityFromAddress(d.Address),
		Price:        d.Price,
		Bedrooms:     CoerceInt(d.Fields[domain.FieldBedrooms]),
		Bathrooms:    CoerceInt(d.Fields[domain.FieldBathrooms]),
		FloorAreaSqm: CoerceFloat(d.Fields[domain.FieldFloorArea]),
		PropertyType: propertyType,
		Coordinates:  buildCoordinates(d.Latitude, d.Longitude),
		URL:          d.Stub.URL,
		AgentName:    d.AgentName,
		AgencyName:   d.AgencyName,
		Overview:     d.Overview,
	}
	return p
}

// CoerceFloat strips currency symbols, thousands separators and whitespace,
// then parses. Failure yields 0.0, never an error.
func CoerceFloat(raw string) float64 {
	text := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, ",", ""), "₱", ""))
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}

// CoerceInt parses a count-like string, tolerating a decimal form ("2.0").
// Failure yields 0.
func CoerceInt(raw string) int {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return int(v)
}

// CityFromAddress returns the segment after the last comma of an address,
// e.g. "BGC, Taguig" → "Taguig". No comma yields the empty string.
func CityFromAddress(address string) string {
	m := lastCommaSegment.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// buildCoordinates emits [lat, lon] only when both components parse.
func buildCoordinates(lat, lon string) []float64 {
	if strings.TrimSpace(lat) == "" || strings.TrimSpace(lon) == "" {
		return nil
	}
	latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return nil
	}
	lonF, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return nil
	}
	return []float64{latF, lonF}
}
