package search

import (
	"testing"

	"go.uber.org/zap"
)

func TestQueryMatchesSubstringCaseInsensitively(t *testing.T) {
	s := New(30, 256, zap.NewNop())

	results := s.Query("MAKATI")
	if len(results) != 2 {
		t.Fatalf("got %d results; want 2 (Makati CBD, Rockwell)", len(results))
	}
	for _, r := range results {
		if r.PSGCProvinceCode != "1376" {
			t.Errorf("%q: province = %q; want 1376", r.FullAddress, r.PSGCProvinceCode)
		}
	}
}

func TestQueryMinimumLength(t *testing.T) {
	s := New(30, 256, zap.NewNop())

	for _, q := range []string{"", "m", "  m  "} {
		if results := s.Query(q); results != nil {
			t.Errorf("Query(%q) = %v; want nil", q, results)
		}
	}
	if results := s.Query("ma"); len(results) == 0 {
		t.Error("two-character query returned nothing")
	}
}

func TestQueryNoMatches(t *testing.T) {
	s := New(30, 256, zap.NewNop())
	if results := s.Query("paris"); len(results) != 0 {
		t.Errorf("got %v; want empty", results)
	}
}

func TestQueryCapsSuggestions(t *testing.T) {
	s := New(30, 256, zap.NewNop())
	results := s.Query("metro manila")
	if len(results) != 9 {
		t.Errorf("got %d results; want all 9 Metro Manila entries", len(results))
	}
	if len(results) > MaxSuggestions {
		t.Errorf("got %d results; cap is %d", len(results), MaxSuggestions)
	}
}

func TestCacheEvictsOldestQuery(t *testing.T) {
	s := New(30, 2, zap.NewNop())

	s.Query("makati")
	s.Query("cebu")
	s.Query("davao") // evicts "makati"

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if len(s.cache) != 2 {
		t.Fatalf("cache holds %d entries; want 2", len(s.cache))
	}
	if _, ok := s.cache["makati"]; ok {
		t.Error("oldest entry not evicted")
	}
	if _, ok := s.cache["davao"]; !ok {
		t.Error("newest entry missing from cache")
	}
}

func TestCachedQueryReturnsSameResults(t *testing.T) {
	s := New(30, 256, zap.NewNop())

	first := s.Query("tagaytay")
	second := s.Query("tagaytay")
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("got %d then %d results; want 1 and 1", len(first), len(second))
	}
	if first[0].FullAddress != second[0].FullAddress {
		t.Errorf("cached result diverged: %q vs %q", first[0].FullAddress, second[0].FullAddress)
	}
}

func TestAllowEnforcesPerKeyBudget(t *testing.T) {
	s := New(3, 256, zap.NewNop())

	for i := 0; i < 3; i++ {
		if !s.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected within budget", i+1)
		}
	}
	if s.Allow("10.0.0.1") {
		t.Error("4th request allowed; burst is 3")
	}
	// Budgets are per client key.
	if !s.Allow("10.0.0.2") {
		t.Error("fresh key rejected")
	}
}
