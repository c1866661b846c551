package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"plain integer", "950000", 950_000},
		{"comma grouped", "3,50,000", 350_000},
		{"decimal", "1250.50", 1250.50},
		{"thousand suffix", "950k", 950_000},
		{"thousand upper", "950K", 950_000},
		{"lakh short", "85L", 8_500_000},
		{"lakh word", "3 lakh", 300_000},
		{"lakhs plural", "2.5 lakhs", 250_000},
		{"lac variant", "4 lac", 400_000},
		{"crore short", "1.2Cr", 12_000_000},
		{"crore word", "2 crore", 20_000_000},
		{"million", "2.5m", 2_500_000},
		{"rupee prefix", "Rs. 85L", 8_500_000},
		{"rupee symbol", "₹ 1.2 Cr", 12_000_000},
		{"surrounding spaces", "  45k  ", 45_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if err != nil {
				t.Fatalf("ParseAmount(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseAmount_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"no digits", "lakh"},
		{"unknown suffix", "85 zillion"},
		{"ambiguous double suffix", "1.2 cr lakh"},
		{"trailing garbage", "85L or so"},
		{"leading garbage", "about 85L"},
		{"negative sign", "-500"},
		{"just text", "cheap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAmount(tt.input); !errors.Is(err, ErrParse) {
				t.Errorf("ParseAmount(%q) should fail with ErrParse, got %v", tt.input, err)
			}
		})
	}
}

func TestInvestmentParameters_UnmarshalStringAmounts(t *testing.T) {
	var p InvestmentParameters
	err := json.Unmarshal([]byte(`{"price": "2.5 cr", "monthly_rent": "85k", "holding_years": 5}`), &p)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Price != 25_000_000 {
		t.Errorf("price = %v, want 25000000", p.Price)
	}
	if p.MonthlyRent != 85_000 {
		t.Errorf("monthly_rent = %v, want 85000", p.MonthlyRent)
	}
	if p.HoldingYears != 5 {
		t.Errorf("holding_years = %v, want 5", p.HoldingYears)
	}
}

func TestInvestmentParameters_UnmarshalNumericAmounts(t *testing.T) {
	var p InvestmentParameters
	err := json.Unmarshal([]byte(`{"price": 25000000, "monthly_rent": 85000}`), &p)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Price != 25_000_000 || p.MonthlyRent != 85_000 {
		t.Errorf("got price=%v rent=%v", p.Price, p.MonthlyRent)
	}
}

func TestInvestmentParameters_UnmarshalRejectsMalformedAmount(t *testing.T) {
	var p InvestmentParameters
	err := json.Unmarshal([]byte(`{"price": "2.5 zillion"}`), &p)
	if !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}
