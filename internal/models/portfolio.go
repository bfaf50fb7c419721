package models

// AnalyzeRequest is a natural-language portfolio query.
type AnalyzeRequest struct {
	UserID      string `json:"user_id"`
	Query       string `json:"query"`
	ReturnChart bool   `json:"return_chart"`
	DownloadCSV bool   `json:"download_csv"`
}

// PortfolioMatch is one matching property row. Column names are defined by the
// backend's dataset (e.g. "Property Address", "Size (SF)"), so rows stay untyped.
type PortfolioMatch map[string]any

// AnalysisResult is the backend's answer to an AnalyzeRequest.
type AnalysisResult struct {
	TotalMatches        int              `json:"total_matches"`
	Summary             string           `json:"summary"`
	QueryInterpretation string           `json:"query_interpretation"`
	Matches             []PortfolioMatch `json:"matches"`
	ChartURL            string           `json:"chart_url,omitempty"`
	CSVURL              string           `json:"csv_url,omitempty"`
}

// Range is a min/max pair.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PortfolioStats are aggregate figures over the whole portfolio.
type PortfolioStats struct {
	TotalProperties int     `json:"total_properties"`
	AvgRentPerSF    float64 `json:"avg_rent_per_sf"`
	AvgSizeSF       float64 `json:"avg_size_sf"`
	AvgGCI3Years    float64 `json:"avg_gci_3_years,omitempty"`
	SizeRange       *Range  `json:"size_range,omitempty"`
	RentRange       *Range  `json:"rent_range,omitempty"`
}

// Column names used when rendering matches.
var MatchColumns = []string{
	"Property Address", "Floor", "Suite", "Size (SF)",
	"Rent/SF/Year", "GCI On 3 Years", "Associate 1",
}
