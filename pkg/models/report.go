package models

import "time"

// Report is the final aggregated output of an analysis job. Sections that
// could not be computed are nil and listed in Degraded with a reason; a
// missing section is never silently omitted.
type Report struct {
	Address     string             `json:"address"`
	RadiusM     int                `json:"radius_m"`
	Walkability *WalkabilityReport `json:"walkability,omitempty"`
	Vegetation  *VegetationReport  `json:"vegetation,omitempty"`
	Investment  *InvestmentReport  `json:"investment,omitempty"`
	Similar     []SimilarProperty  `json:"similar_properties,omitempty"`
	Summary     string             `json:"summary,omitempty"`
	Degraded    []DegradedSection  `json:"degraded_sections,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// DegradedSection flags a report section that is missing because its subtask
// failed, with the recorded reason.
type DegradedSection struct {
	Section string `json:"section"`
	Reason  string `json:"reason"`
}

// WalkabilityReport is the amenity-weighted walk score with its per-category
// breakdown. Score is in [0, 100].
type WalkabilityReport struct {
	Score          float64                      `json:"score"`
	Breakdown      map[string]CategoryBreakdown `json:"breakdown"`
	TotalAmenities int                          `json:"total_amenities"`
}

// CategoryBreakdown shows how much one amenity category contributed.
type CategoryBreakdown struct {
	Found        int     `json:"found"`
	Counted      int     `json:"counted"`
	Contribution float64 `json:"contribution"`
}

// VegetationReport is the estimated vegetation coverage of the fetched map
// imagery. Coverage is a fraction in [0, 1].
type VegetationReport struct {
	Coverage    float64 `json:"coverage"`
	GreenPixels int     `json:"green_pixels"`
	TotalPixels int     `json:"total_pixels"`
}

// InvestmentReport holds discounted-cash-flow metrics for a rental purchase.
// Rates and ratios are fractional. DSCR is nil when there is no debt service.
// IRR is nil when the root-finder did not converge.
type InvestmentReport struct {
	DownPayment          float64  `json:"down_payment"`
	ClosingCosts         float64  `json:"closing_costs"`
	TotalInvested        float64  `json:"total_invested"`
	LoanAmount           float64  `json:"loan_amount"`
	MonthlyPayment       float64  `json:"monthly_payment"`
	AnnualDebtService    float64  `json:"annual_debt_service"`
	AnnualNOI            float64  `json:"annual_noi"`
	AnnualCashFlow       float64  `json:"annual_cash_flow"`
	GrossYield           float64  `json:"gross_yield"`
	CapRate              float64  `json:"cap_rate"`
	CashOnCash           float64  `json:"cash_on_cash"`
	DSCR                 *float64 `json:"dscr"`
	BreakEvenOccupancy   float64  `json:"break_even_occupancy"`
	BreakEvenRaw         float64  `json:"break_even_raw"`
	PaybackYears         *float64 `json:"payback_years"`
	OnePercentRuleRatio  float64  `json:"one_percent_rule_ratio"`
	FutureValue          float64  `json:"future_value"`
	LoanBalanceAtExit    float64  `json:"loan_balance_at_exit"`
	NetSaleProceeds      float64  `json:"net_sale_proceeds"`
	IRR                  *float64 `json:"irr"`
}

// SimilarProperty is one ranked result from the visual similarity index.
type SimilarProperty struct {
	PropertyID string         `json:"property_id"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
