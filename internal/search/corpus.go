package search

import "github.com/isuckplshelpmetestimony/Kairos/internal/domain"

// corpus is the static address set served by the autocomplete endpoint.
// Entries carry the PSGC codes the CMA pipeline needs for region targeting.
var corpus = []domain.AddressSuggestion{
	{FullAddress: "Bonifacio Global City, Taguig, Metro Manila", PSGCCityCode: "137607", PSGCProvinceCode: "1376", Coordinates: []float64{14.5508, 121.0513}, SearchRadiusKm: 2, ConfidenceLevel: "high"},
	{FullAddress: "Makati CBD, Makati, Metro Manila", PSGCCityCode: "137602", PSGCProvinceCode: "1376", Coordinates: []float64{14.5547, 121.0244}, SearchRadiusKm: 2, ConfidenceLevel: "high"},
	{FullAddress: "Ortigas Center, Pasig, Metro Manila", PSGCCityCode: "137603", PSGCProvinceCode: "1376", Coordinates: []float64{14.5866, 121.0614}, SearchRadiusKm: 2, ConfidenceLevel: "high"},
	{FullAddress: "Eastwood City, Quezon City, Metro Manila", PSGCCityCode: "137604", PSGCProvinceCode: "1376", Coordinates: []float64{14.6096, 121.0793}, SearchRadiusKm: 2, ConfidenceLevel: "high"},
	{FullAddress: "Rockwell Center, Makati, Metro Manila", PSGCCityCode: "137602", PSGCProvinceCode: "1376", Coordinates: []float64{14.5652, 121.0365}, SearchRadiusKm: 1.5, ConfidenceLevel: "high"},
	{FullAddress: "Greenhills, San Juan, Metro Manila", PSGCCityCode: "137605", PSGCProvinceCode: "1376", Coordinates: []float64{14.6019, 121.0475}, SearchRadiusKm: 2, ConfidenceLevel: "high"},
	{FullAddress: "Cubao, Quezon City, Metro Manila", PSGCCityCode: "137604", PSGCProvinceCode: "1376", Coordinates: []float64{14.6176, 121.0509}, SearchRadiusKm: 2, ConfidenceLevel: "medium"},
	{FullAddress: "Alabang, Muntinlupa, Metro Manila", PSGCCityCode: "137606", PSGCProvinceCode: "1376", Coordinates: []float64{14.4195, 121.0390}, SearchRadiusKm: 3, ConfidenceLevel: "high"},
	{FullAddress: "Bay Area, Pasay, Metro Manila", PSGCCityCode: "137608", PSGCProvinceCode: "1376", Coordinates: []float64{14.5352, 120.9823}, SearchRadiusKm: 2, ConfidenceLevel: "medium"},
	{FullAddress: "Tagaytay, Cavite", PSGCCityCode: "340012", PSGCProvinceCode: "3400", Coordinates: []float64{14.1153, 120.9621}, SearchRadiusKm: 5, ConfidenceLevel: "high"},
	{FullAddress: "Bacoor, Cavite", PSGCCityCode: "340003", PSGCProvinceCode: "3400", Coordinates: []float64{14.4624, 120.9645}, SearchRadiusKm: 4, ConfidenceLevel: "medium"},
	{FullAddress: "Santa Rosa, Laguna", PSGCCityCode: "400014", PSGCProvinceCode: "4000", Coordinates: []float64{14.3123, 121.1114}, SearchRadiusKm: 4, ConfidenceLevel: "high"},
	{FullAddress: "Calamba, Laguna", PSGCCityCode: "400005", PSGCProvinceCode: "4000", Coordinates: []float64{14.2117, 121.1653}, SearchRadiusKm: 4, ConfidenceLevel: "medium"},
	{FullAddress: "Cebu Business Park, Cebu City, Cebu", PSGCCityCode: "072217", PSGCProvinceCode: "0722", Coordinates: []float64{10.3181, 123.9058}, SearchRadiusKm: 2, ConfidenceLevel: "high"},
	{FullAddress: "IT Park, Cebu City, Cebu", PSGCCityCode: "072217", PSGCProvinceCode: "0722", Coordinates: []float64{10.3305, 123.9058}, SearchRadiusKm: 2, ConfidenceLevel: "high"},
	{FullAddress: "Mandaue, Cebu", PSGCCityCode: "072230", PSGCProvinceCode: "0722", Coordinates: []float64{10.3236, 123.9223}, SearchRadiusKm: 3, ConfidenceLevel: "medium"},
	{FullAddress: "Iloilo City, Iloilo", PSGCCityCode: "063022", PSGCProvinceCode: "0630", Coordinates: []float64{10.7202, 122.5621}, SearchRadiusKm: 4, ConfidenceLevel: "high"},
	{FullAddress: "Bacolod, Negros Occidental", PSGCCityCode: "064501", PSGCProvinceCode: "0645", Coordinates: []float64{10.6765, 122.9509}, SearchRadiusKm: 4, ConfidenceLevel: "high"},
	{FullAddress: "Zamboanga City, Zamboanga del Sur", PSGCCityCode: "097332", PSGCProvinceCode: "0973", Coordinates: []float64{6.9214, 122.0790}, SearchRadiusKm: 5, ConfidenceLevel: "medium"},
	{FullAddress: "Cagayan de Oro, Misamis Oriental", PSGCCityCode: "104305", PSGCProvinceCode: "1043", Coordinates: []float64{8.4542, 124.6319}, SearchRadiusKm: 4, ConfidenceLevel: "high"},
	{FullAddress: "Davao City, Davao del Sur", PSGCCityCode: "112402", PSGCProvinceCode: "1124", Coordinates: []float64{7.1907, 125.4553}, SearchRadiusKm: 5, ConfidenceLevel: "high"},
	{FullAddress: "Baguio, Benguet", PSGCCityCode: "141102", PSGCProvinceCode: "1411", Coordinates: []float64{16.4023, 120.5960}, SearchRadiusKm: 3, ConfidenceLevel: "high"},
	{FullAddress: "Antipolo, Rizal", PSGCCityCode: "045802", PSGCProvinceCode: "0458", Coordinates: []float64{14.5862, 121.1763}, SearchRadiusKm: 4, ConfidenceLevel: "medium"},
}
