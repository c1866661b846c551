package scoring

import (
	"math"

	"github.com/geoinsight/geoinsight/pkg/models"
)

// FinanceConfig holds the numerical contract of the IRR root-finder: starting
// guess, convergence tolerance on |NPV| and the iteration budget.
type FinanceConfig struct {
	IRRGuess     float64
	IRRTolerance float64
	IRRMaxIter   int
}

func DefaultFinanceConfig() FinanceConfig {
	return FinanceConfig{
		IRRGuess:     0.10,
		IRRTolerance: 1e-7,
		IRRMaxIter:   100,
	}
}

// Investment computes discounted-cash-flow metrics for normalized investment
// parameters. The projected series is: total cash invested as the initial
// outflow, the annual cash flow for each holding year, and net sale proceeds
// added to the final year. IRR non-convergence is returned as
// ErrNonConvergence rather than a misleading rate.
func Investment(p models.InvestmentParameters, cfg FinanceConfig) (*models.InvestmentReport, error) {
	downPayment := p.Price * p.DownPaymentPct
	closingCosts := p.Price * p.ClosingCostPct
	totalInvested := downPayment + closingCosts
	loanAmount := p.Price - downPayment

	monthlyPayment := MonthlyPayment(loanAmount, p.InterestRate, p.LoanTermYears)
	annualDebt := monthlyPayment * 12

	annualRent := p.MonthlyRent * 12
	annualOpex := annualRent * p.ExpenseRatio
	annualNOI := annualRent - annualOpex
	annualCapex := p.Price * p.CapexReservePct
	annualCF := annualNOI - annualDebt - annualCapex

	r := &models.InvestmentReport{
		DownPayment:       downPayment,
		ClosingCosts:      closingCosts,
		TotalInvested:     totalInvested,
		LoanAmount:        loanAmount,
		MonthlyPayment:    monthlyPayment,
		AnnualDebtService: annualDebt,
		AnnualNOI:         annualNOI,
		AnnualCashFlow:    annualCF,
	}

	if p.Price > 0 {
		r.GrossYield = annualRent / p.Price
		r.CapRate = annualNOI / p.Price
		r.OnePercentRuleRatio = p.MonthlyRent / (p.Price * 0.01)
	}
	if totalInvested > 0 {
		r.CashOnCash = annualCF / totalInvested
	}

	// DSCR is undefined with no debt service; nil is the sentinel.
	if annualDebt > 0 {
		dscr := annualNOI / annualDebt
		r.DSCR = &dscr
	}

	if annualRent > 0 {
		r.BreakEvenRaw = (annualOpex + annualDebt) / annualRent
		r.BreakEvenOccupancy = math.Min(math.Max(r.BreakEvenRaw, 0), 1)
	} else {
		r.BreakEvenOccupancy = 1
	}

	if annualCF > 0 && totalInvested > 0 {
		payback := totalInvested / annualCF
		r.PaybackYears = &payback
	}

	r.FutureValue = p.Price * math.Pow(1+p.Appreciation, float64(p.HoldingYears))
	r.LoanBalanceAtExit = RemainingBalance(loanAmount, p.InterestRate, p.LoanTermYears, p.HoldingYears)
	r.NetSaleProceeds = r.FutureValue - r.LoanBalanceAtExit

	flows := make([]float64, 0, p.HoldingYears+1)
	flows = append(flows, -totalInvested)
	for yr := 1; yr <= p.HoldingYears; yr++ {
		cf := annualCF
		if yr == p.HoldingYears {
			cf += r.NetSaleProceeds
		}
		flows = append(flows, cf)
	}

	irr, err := IRR(flows, cfg)
	if err != nil {
		return nil, err
	}
	r.IRR = &irr
	return r, nil
}

// MonthlyPayment is the amortized monthly payment on a loan. annualRate is
// fractional (0.085 = 8.5%). Zero principal or term yields 0.
func MonthlyPayment(principal, annualRate float64, years int) float64 {
	n := years * 12
	if principal <= 0 || n <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return principal / float64(n)
	}
	pow := math.Pow(1+r, float64(n))
	return principal * r * pow / (pow - 1)
}

// RemainingBalance is the principal still owed after elapsedYears of payments.
func RemainingBalance(principal, annualRate float64, totalYears, elapsedYears int) float64 {
	n := totalYears * 12
	p := elapsedYears * 12
	if principal <= 0 || n <= 0 || p >= n {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return principal * float64(n-p) / float64(n)
	}
	return principal * (math.Pow(1+r, float64(n)) - math.Pow(1+r, float64(p))) / (math.Pow(1+r, float64(n)) - 1)
}

// NPV discounts the flow series at the given rate; flows[0] is period zero.
func NPV(rate float64, flows []float64) float64 {
	var sum float64
	for t, cf := range flows {
		sum += cf / math.Pow(1+rate, float64(t))
	}
	return sum
}

// IRR finds the rate zeroing NPV by Newton-Raphson with the analytic
// derivative. It refuses series with no sign change — there is no root to
// find — and fails with ErrNonConvergence when the derivative flattens out or
// the iteration budget runs out. Callers may retry with a different guess.
func IRR(flows []float64, cfg FinanceConfig) (float64, error) {
	if len(flows) < 2 || !hasSignChange(flows) {
		return 0, ErrNonConvergence
	}

	rate := cfg.IRRGuess
	for i := 0; i < cfg.IRRMaxIter; i++ {
		npv := NPV(rate, flows)
		if math.Abs(npv) < cfg.IRRTolerance {
			return rate, nil
		}

		var deriv float64
		for t, cf := range flows {
			deriv += -float64(t) * cf / math.Pow(1+rate, float64(t+1))
		}
		if math.Abs(deriv) < 1e-12 {
			return 0, ErrNonConvergence
		}

		rate -= npv / deriv
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			return 0, ErrNonConvergence
		}
		// Keep the discount factor positive; a step past -100% has no
		// financial meaning.
		if rate <= -1 {
			rate = -0.9999
		}
	}
	return 0, ErrNonConvergence
}

func hasSignChange(flows []float64) bool {
	var pos, neg bool
	for _, cf := range flows {
		if cf > 0 {
			pos = true
		}
		if cf < 0 {
			neg = true
		}
	}
	return pos && neg
}
