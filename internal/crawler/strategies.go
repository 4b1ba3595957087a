package crawler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
)

// Each field is extracted by an ordered chain of independent strategies;
// the first non-empty result wins. Exhausting a chain leaves the field
// empty or defaulted — it never aborts the listing.

var (
	priceNumberRe = regexp.MustCompile(`(\d[\d,]*)`)
	bedroomsRe    = regexp.MustCompile(`(\d+)\s*Bedrooms?`)
	bathsRe       = regexp.MustCompile(`(\d+)\s*(?:Baths?|T&B)`)
	floorAreaRe   = regexp.MustCompile(`(\d[\d.,]*)\s*m²`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// Floor area plausibility bounds in square metres. Values outside are
// discarded rather than kept.
const (
	floorAreaMinSqm = 12
	floorAreaMaxSqm = 1000
)

// labelSynonyms folds the site's drifting feature labels into canonical ones.
var labelSynonyms = map[string]string{
	"bed":             domain.FieldBedrooms,
	"beds":            domain.FieldBedrooms,
	"bed(s)":          domain.FieldBedrooms,
	"bedroom":         domain.FieldBedrooms,
	"bedrooms":        domain.FieldBedrooms,
	"bedroom(s)":      domain.FieldBedrooms,
	"bath":            domain.FieldBathrooms,
	"baths":           domain.FieldBathrooms,
	"bath(s)":         domain.FieldBathrooms,
	"t&b":             domain.FieldBathrooms,
	"toilet & bath":   domain.FieldBathrooms,
	"toilet and bath": domain.FieldBathrooms,
	"floor area":      domain.FieldFloorArea,
	"floor area (m²)": domain.FieldFloorArea,
	"lot area":        domain.FieldFloorArea,
	"lot area (m²)":   domain.FieldFloorArea,
}

type textStrategy func(doc *goquery.Document) string

func firstNonEmpty(doc *goquery.Document, chain ...textStrategy) string {
	for _, s := range chain {
		if v := strings.TrimSpace(s(doc)); v != "" {
			return v
		}
	}
	return ""
}

// extractDetail runs every field chain over one detail document. Best
// effort: unresolved fields come out empty or defaulted.
func extractDetail(doc *goquery.Document, stub domain.ListingStub) domain.RawDetail {
	text := visibleText(doc)
	fields := featurePairs(doc)

	resolveBedrooms(doc, fields, text)
	resolveBaths(doc, fields, text)
	resolveFloorArea(doc, fields, text)

	lat, lon := extractCoordinates(doc)

	return domain.RawDetail{
		Stub:       stub,
		Fields:     fields,
		Amenities:  extractAmenities(doc),
		Address:    extractAddress(doc),
		Price:      extractPrice(doc),
		Latitude:   lat,
		Longitude:  lon,
		AgentName:  strings.TrimSpace(doc.Find("div.AgentInfoV2-agent-name").First().Text()),
		AgencyName: strings.TrimSpace(doc.Find("div.AgentInfoV2-agent-agency").First().Text()),
		Overview:   collapseSpaces(doc.Find("div.ViewMore-text-description").First().Text()),
	}
}

// extractPrice runs the price chain: styled element text, numeric attribute,
// then a scoped regex near the title-price marker. Unparsable → 0.
func extractPrice(doc *goquery.Document) float64 {
	raw := firstNonEmpty(doc,
		func(doc *goquery.Document) string {
			var found string
			doc.Find("div.prices-and-fees__price").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				// Multi-line price blocks carry fees below the headline figure.
				line := strings.TrimSpace(strings.SplitN(s.Text(), "\n", 2)[0])
				if line != "" {
					found = line
					return false
				}
				return true
			})
			return found
		},
		func(doc *goquery.Document) string {
			v, _ := doc.Find("[data-price]").First().Attr("data-price")
			return v
		},
		func(doc *goquery.Document) string {
			container := doc.Find("div.Title-pdp-price").First()
			if container.Length() == 0 {
				return ""
			}
			return priceNumberRe.FindString(collapseSpaces(container.Text()))
		},
	)
	if raw == "" {
		return 0
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(raw, "₱", ""), ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0
	}
	return v
}

// featurePairs reads the structured feature list as alternating label/value
// lines and canonicalizes synonymous labels.
func featurePairs(doc *goquery.Document) map[string]string {
	var lines []string
	doc.Find("div.details-item-value").Each(func(_ int, s *goquery.Selection) {
		for _, line := range strings.Split(s.Text(), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	})

	fields := make(map[string]string)
	for i := 0; i+1 < len(lines); i += 2 {
		fields[canonicalLabel(lines[i])] = lines[i+1]
	}
	return fields
}

func canonicalLabel(label string) string {
	if canonical, ok := labelSynonyms[strings.ToLower(strings.TrimSpace(label))]; ok {
		return canonical
	}
	return strings.TrimSpace(label)
}

func resolveBedrooms(doc *goquery.Document, fields map[string]string, text string) {
	if fields[domain.FieldBedrooms] != "" {
		return
	}
	if v, ok := doc.Find("[data-bedrooms]").First().Attr("data-bedrooms"); ok && strings.TrimSpace(v) != "" {
		fields[domain.FieldBedrooms] = strings.TrimSpace(v)
		return
	}
	if m := bedroomsRe.FindStringSubmatch(text); m != nil {
		fields[domain.FieldBedrooms] = m[1]
		return
	}
	// Unresolvable: studio listings have zero bedrooms, anything else
	// defaults to one.
	if strings.Contains(strings.ToLower(text), "studio") {
		fields[domain.FieldBedrooms] = "0"
	} else {
		fields[domain.FieldBedrooms] = "1"
	}
}

func resolveBaths(doc *goquery.Document, fields map[string]string, text string) {
	if fields[domain.FieldBathrooms] != "" {
		return
	}
	if v, ok := doc.Find("[data-bathrooms], [data-baths]").First().Attr("data-bathrooms"); ok && strings.TrimSpace(v) != "" {
		fields[domain.FieldBathrooms] = strings.TrimSpace(v)
		return
	}
	if v, ok := doc.Find("[data-baths]").First().Attr("data-baths"); ok && strings.TrimSpace(v) != "" {
		fields[domain.FieldBathrooms] = strings.TrimSpace(v)
		return
	}
	if m := bathsRe.FindStringSubmatch(text); m != nil {
		fields[domain.FieldBathrooms] = m[1]
		return
	}
	fields[domain.FieldBathrooms] = "1"
}

func resolveFloorArea(doc *goquery.Document, fields map[string]string, text string) {
	if fields[domain.FieldFloorArea] == "" {
		if v, ok := doc.Find("[data-floor-area]").First().Attr("data-floor-area"); ok && strings.TrimSpace(v) != "" {
			fields[domain.FieldFloorArea] = strings.TrimSpace(v)
		} else if m := floorAreaRe.FindStringSubmatch(text); m != nil {
			fields[domain.FieldFloorArea] = strings.ReplaceAll(m[1], ",", "")
		}
	}

	// Implausible areas are discarded, leaving the field unset.
	raw := strings.ReplaceAll(fields[domain.FieldFloorArea], ",", "")
	if raw == "" {
		delete(fields, domain.FieldFloorArea)
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < floorAreaMinSqm || v > floorAreaMaxSqm {
		delete(fields, domain.FieldFloorArea)
		return
	}
	fields[domain.FieldFloorArea] = raw
}

// extractCoordinates reads the map-landmark element's latitude/longitude
// attributes. Both must be present; parsing is deferred to normalization.
func extractCoordinates(doc *goquery.Document) (lat, lon string) {
	doc.Find("div.LandmarksPDP-Wrapper").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("data-lat"); ok {
			lat = v
		}
		if v, ok := s.Attr("data-lon"); ok {
			lon = v
		}
	})
	return lat, lon
}

func extractAmenities(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var amenities []string
	doc.Find("span.material-icons.material-icons-outlined").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		amenities = append(amenities, name)
	})
	return amenities
}

func extractAddress(doc *goquery.Document) string {
	addr := ""
	doc.Find("div.view-map__text, div.location-map__location-address-map").Each(func(_ int, s *goquery.Selection) {
		if v := collapseSpaces(s.Text()); v != "" {
			addr = v
		}
	})
	return addr
}

func visibleText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		return collapseSpaces(doc.Text())
	}
	return collapseSpaces(body.Text())
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
