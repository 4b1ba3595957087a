package domain

import "time"

// CMARequest is the payload for the API.
type CMARequest struct {
	PSGCProvinceCode string `json:"psgc_province_code"`
	PropertyType     string `json:"property_type"`
	Count            int    `json:"count"`
	Force            bool   `json:"force"` // bypass the result cache
	AppraisalID      string `json:"appraisal_id,omitempty"`
}

// CrawlRequest is the validated, slug-resolved form handed to the orchestrator.
type CrawlRequest struct {
	Region       string // site slug, e.g. "metro-manila"
	PropertyType string // e.g. "condo"
	Count        int
	Force        bool
	AppraisalID  string
}

// ListingStub identifies a discovered listing prior to detail extraction.
type ListingStub struct {
	ID  string
	URL string
}

// Canonical feature labels used as RawDetail field keys. Detail extraction
// folds the site's synonymous labels into these.
const (
	FieldName      = "Condominium Name"
	FieldBedrooms  = "Bedrooms"
	FieldBathrooms = "Baths"
	FieldFloorArea = "Floor area (m²)"
)

// RawDetail holds the best-effort field bag extracted from one detail page.
// It is consumed once by the normalizer and then discarded.
type RawDetail struct {
	Stub       ListingStub
	Fields     map[string]string // canonical label → raw text
	Amenities  []string
	Address    string
	Price      float64
	Latitude   string
	Longitude  string
	AgentName  string
	AgencyName string
	Overview   string
}

// Property is the normalized, schema-stable representation of one listing.
type Property struct {
	Source       string    `json:"source"`
	PropertyID   string    `json:"property_id"`
	Name         string    `json:"name,omitempty"`
	Address      string    `json:"address"`
	City         string    `json:"city,omitempty"`
	Price        float64   `json:"price"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	FloorAreaSqm float64   `json:"sqm,omitempty"`
	PropertyType string    `json:"property_type"`
	Coordinates  []float64 `json:"coordinates,omitempty"` // [lat, lon]
	URL          string    `json:"url"`
	AgentName    string    `json:"agent_name,omitempty"`
	AgencyName   string    `json:"agency_name,omitempty"`
	Overview     string    `json:"overview,omitempty"`
}

// PriceStats aggregates the full (uncapped) price series of a crawl.
type PriceStats struct {
	Count  int     `json:"count"`
	Avg    float64 `json:"avg,omitempty"`
	Median float64 `json:"median,omitempty"`
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
}

// CrawlResult is the complete outcome of one crawl invocation.
type CrawlResult struct {
	Properties   []Property `json:"properties"`
	Stats        PriceStats `json:"stats"`
	Reason       string     `json:"reason,omitempty"` // set when Properties is empty, e.g. "selector-miss"
	PagesScanned int        `json:"-"`
	EarlyExit    bool       `json:"-"`
}

// ProgressEvent streams crawl advancement from the running work to the
// orchestrator's shared status record.
type ProgressEvent struct {
	PagesScanned int
	MaxPages     int
}

// CrawlStatus is the pollable view of the in-flight crawl.
type CrawlStatus struct {
	Active       bool `json:"active"`
	PagesScanned int  `json:"pagesScanned"`
	MaxPages     *int `json:"maxPages"`
}

// CrawlRun is the per-run diagnostics row appended to the durable log.
type CrawlRun struct {
	Region         string
	PropertyType   string
	RequestedCount int
	ActualCount    int
	Duration       time.Duration
	EarlyExit      bool
	PagesScanned   int
	Outcome        string // "success", "empty", "timeout", "error"
	CreatedAt      time.Time
}

// AddressSuggestion is one autocomplete match for the search endpoint.
type AddressSuggestion struct {
	FullAddress      string    `json:"full_address"`
	PSGCCityCode     string    `json:"psgc_city_code"`
	PSGCProvinceCode string    `json:"psgc_province_code"`
	Coordinates      []float64 `json:"coordinates"`
	SearchRadiusKm   float64   `json:"search_radius_km"`
	ConfidenceLevel  string    `json:"confidence_level"`
}
