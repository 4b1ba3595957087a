package region

import "testing"

func TestSlugWhitelist(t *testing.T) {
	tests := []struct {
		code     string
		wantSlug string
		wantOK   bool
	}{
		{"1376", "metro-manila", true},
		{"0722", "cebu", true},
		{" 1376 ", "metro-manila", true},
		{"9999", "", false},
		{"", "", false},
		{"123456789", "", false},
	}

	for _, tt := range tests {
		slug, ok := Slug(tt.code)
		if slug != tt.wantSlug || ok != tt.wantOK {
			t.Errorf("Slug(%q) = (%q, %v); want (%q, %v)", tt.code, slug, ok, tt.wantSlug, tt.wantOK)
		}
	}
}

func TestSupported(t *testing.T) {
	if !Supported("1124") {
		t.Error("expected 1124 (davao-del-sur) to be supported")
	}
	if Supported("0000") {
		t.Error("expected 0000 to be unsupported")
	}
}
