package core

import (
	"fmt"
	"strings"

	"github.com/geoinsight/geoinsight/pkg/models"
)

// BuildPrompt renders a report into a summarization prompt. Sections
// that failed during analysis are simply absent from the prompt.
func BuildPrompt(report *models.Report) string {
	var b strings.Builder

	b.WriteString("You are a real-estate analyst. Write a concise, factual summary ")
	b.WriteString("(3-5 sentences) of the following property analysis. Do not invent ")
	b.WriteString("numbers that are not listed below.\n\n")

	fmt.Fprintf(&b, "Property: %s (analysis radius %dm)\n", report.Address, report.RadiusM)

	if report.Walkability != nil {
		fmt.Fprintf(&b, "Walkability score: %.1f/100 across %d nearby amenities\n",
			report.Walkability.Score, report.Walkability.TotalAmenities)
	}
	if report.Vegetation != nil {
		fmt.Fprintf(&b, "Green coverage: %.1f%% of the surrounding area\n",
			report.Vegetation.Coverage*100)
	}
	if report.Investment != nil {
		inv := report.Investment
		fmt.Fprintf(&b, "Monthly mortgage payment: %.0f, annual net operating income: %.0f, annual cash flow: %.0f\n",
			inv.MonthlyPayment, inv.AnnualNOI, inv.AnnualCashFlow)
		fmt.Fprintf(&b, "Cap rate: %.2f%%, cash-on-cash return: %.2f%%\n",
			inv.CapRate*100, inv.CashOnCash*100)
		if inv.IRR != nil {
			fmt.Fprintf(&b, "Projected IRR over hold period: %.2f%%\n", *inv.IRR*100)
		}
	}
	if len(report.Similar) > 0 {
		fmt.Fprintf(&b, "Comparable properties found: %d (best similarity %.2f)\n",
			len(report.Similar), report.Similar[0].Similarity)
	}
	if len(report.Degraded) > 0 {
		names := make([]string, 0, len(report.Degraded))
		for _, d := range report.Degraded {
			names = append(names, d.Section)
		}
		fmt.Fprintf(&b, "Unavailable sections (do not speculate about them): %s\n",
			strings.Join(names, ", "))
	}

	return b.String()
}
