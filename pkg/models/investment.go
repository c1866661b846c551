package models

import (
	"encoding/json"
	"fmt"
)

// Defaults applied to unset investment parameters. Rates are fractional
// (0.085 = 8.5% annual interest).
const (
	DefaultDownPaymentPct  = 0.20
	DefaultInterestRate    = 0.085
	DefaultLoanTermYears   = 20
	DefaultExpenseRatio    = 0.30
	DefaultClosingCostPct  = 0.07
	DefaultCapexReservePct = 0.01
	DefaultHoldingYears    = 10
	DefaultAppreciation    = 0.05
)

// InvestmentParameters describes the purchase and financing assumptions for
// the financial metrics subtask.
type InvestmentParameters struct {
	Price           float64 `json:"price"`
	MonthlyRent     float64 `json:"monthly_rent"`
	DownPaymentPct  float64 `json:"down_payment_pct,omitempty"`
	InterestRate    float64 `json:"interest_rate,omitempty"`
	LoanTermYears   int     `json:"loan_term_years,omitempty"`
	ExpenseRatio    float64 `json:"expense_ratio,omitempty"`
	ClosingCostPct  float64 `json:"closing_cost_pct,omitempty"`
	CapexReservePct float64 `json:"capex_reserve_pct,omitempty"`
	HoldingYears    int     `json:"holding_years,omitempty"`
	Appreciation    float64 `json:"appreciation,omitempty"`
}

// UnmarshalJSON accepts price and monthly_rent either as plain numbers or as
// magnitude-suffixed strings ("2.5 cr", "85L", "Rs. 3,50,000").
func (p *InvestmentParameters) UnmarshalJSON(data []byte) error {
	type alias InvestmentParameters
	aux := struct {
		Price       json.RawMessage `json:"price"`
		MonthlyRent json.RawMessage `json:"monthly_rent"`
		*alias
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if p.Price, err = decodeAmount(aux.Price); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	if p.MonthlyRent, err = decodeAmount(aux.MonthlyRent); err != nil {
		return fmt.Errorf("monthly_rent: %w", err)
	}
	return nil
}

// Normalize returns a copy with defaults filled in for zero-valued optional
// fields. Price and MonthlyRent are never defaulted.
func (p InvestmentParameters) Normalize() InvestmentParameters {
	if p.DownPaymentPct == 0 {
		p.DownPaymentPct = DefaultDownPaymentPct
	}
	if p.InterestRate == 0 {
		p.InterestRate = DefaultInterestRate
	}
	if p.LoanTermYears == 0 {
		p.LoanTermYears = DefaultLoanTermYears
	}
	if p.ExpenseRatio == 0 {
		p.ExpenseRatio = DefaultExpenseRatio
	}
	if p.ClosingCostPct == 0 {
		p.ClosingCostPct = DefaultClosingCostPct
	}
	if p.CapexReservePct == 0 {
		p.CapexReservePct = DefaultCapexReservePct
	}
	if p.HoldingYears == 0 {
		p.HoldingYears = DefaultHoldingYears
	}
	if p.Appreciation == 0 {
		p.Appreciation = DefaultAppreciation
	}
	return p
}

// Validate rejects negative or nonsensical parameters.
func (p InvestmentParameters) Validate() error {
	if p.Price <= 0 {
		return fmt.Errorf("price must be positive, got %v", p.Price)
	}
	if p.MonthlyRent < 0 {
		return fmt.Errorf("monthly_rent must be non-negative, got %v", p.MonthlyRent)
	}
	for name, v := range map[string]float64{
		"down_payment_pct":  p.DownPaymentPct,
		"interest_rate":     p.InterestRate,
		"expense_ratio":     p.ExpenseRatio,
		"closing_cost_pct":  p.ClosingCostPct,
		"capex_reserve_pct": p.CapexReservePct,
		"appreciation":      p.Appreciation,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, v)
		}
	}
	if p.DownPaymentPct > 1 {
		return fmt.Errorf("down_payment_pct is fractional (0.20 = 20%%), got %v", p.DownPaymentPct)
	}
	if p.LoanTermYears < 0 || p.HoldingYears < 0 {
		return fmt.Errorf("loan_term_years and holding_years must be non-negative")
	}
	return nil
}
