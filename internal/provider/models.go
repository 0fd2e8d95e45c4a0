package provider

// ModelType names a kind of data a fetcher can produce.
type ModelType string

// --- Live quotes ---
const (
	ModelMortgageRate  ModelType = "MortgageRate"  // 30-year fixed mortgage rate
	ModelTreasuryYield ModelType = "TreasuryYield" // 10-year benchmark yield
)

// --- Labor statistics ---
const (
	ModelPlaceUnemployment  ModelType = "PlaceUnemployment"  // census-style, by place
	ModelCountyUnemployment ModelType = "CountyUnemployment" // labor time series, by county
)

// AllModels lists every model type in display order.
func AllModels() []ModelType {
	return []ModelType{
		ModelMortgageRate,
		ModelTreasuryYield,
		ModelPlaceUnemployment,
		ModelCountyUnemployment,
	}
}
