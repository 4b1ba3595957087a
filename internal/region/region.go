// Package region maps PSGC province codes to the listing site's URL slugs.
// Whitelist only; unknown codes are rejected explicitly.
package region

import "strings"

var psgcToSlug = map[string]string{
	"1376": "metro-manila",
	"3400": "cavite",
	"4000": "laguna",
	"0722": "cebu",
	"0630": "iloilo",
	"0645": "negros-occidental",
	"0973": "zamboanga-del-sur",
	"1043": "misamis-oriental",
	"1124": "davao-del-sur",
	"1411": "benguet",
	"0458": "rizal",
}

// Slug returns the site slug for a PSGC province code, or false if the code
// is unknown or malformed.
func Slug(psgcProvinceCode string) (string, bool) {
	code := strings.TrimSpace(psgcProvinceCode)
	if code == "" || len(code) > 8 {
		return "", false
	}
	slug, ok := psgcToSlug[code]
	return slug, ok
}

// Supported reports whether the PSGC code is in the whitelist.
func Supported(psgcProvinceCode string) bool {
	_, ok := Slug(psgcProvinceCode)
	return ok
}
