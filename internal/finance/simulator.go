package finance

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is returned when simulation input is malformed or out
// of range. The simulation is rejected before any computation begins.
var ErrInvalidParameters = errors.New("invalid parameters")

// Reference discount rate used for the fixed NPV output.
const referenceDiscountRate = 0.08

const (
	irrInitialGuess    = 0.10
	irrMaxIterations   = 200
	irrTolerance       = 1e-7
	irrDerivativeFloor = 1e-14
)

// InvestmentParameters describe a buy-to-rent scenario. Rate fields are
// fractions (0.06 means 6%). AppreciationRate may be negative; every other
// rate must be non-negative.
type InvestmentParameters struct {
	PurchasePriceUSD   float64 `json:"purchase_price_usd"`
	MonthlyRentUSD     float64 `json:"monthly_rent_usd"`
	HoldingPeriodYears int     `json:"holding_period_years"`
	AppreciationRate   float64 `json:"appreciation_rate"`
	ExpensesRate       float64 `json:"expenses_rate"`
	VacancyRate        float64 `json:"vacancy_rate"`
	ClosingCostsPct    float64 `json:"closing_costs_pct"`
	RentIncreaseRate   float64 `json:"rent_increase_rate"`
	DiscountRate       float64 `json:"discount_rate"`
}

func (p *InvestmentParameters) validate() error {
	if p.PurchasePriceUSD <= 0 {
		return fmt.Errorf("%w: purchase_price_usd must be positive", ErrInvalidParameters)
	}
	if p.MonthlyRentUSD <= 0 {
		return fmt.Errorf("%w: monthly_rent_usd must be positive", ErrInvalidParameters)
	}
	if p.HoldingPeriodYears < 1 {
		return fmt.Errorf("%w: holding_period_years must be at least 1", ErrInvalidParameters)
	}
	for name, v := range map[string]float64{
		"expenses_rate":      p.ExpensesRate,
		"vacancy_rate":       p.VacancyRate,
		"closing_costs_pct":  p.ClosingCostsPct,
		"rent_increase_rate": p.RentIncreaseRate,
		"discount_rate":      p.DiscountRate,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidParameters, name)
		}
	}
	return nil
}

// YearCashFlow is one year of the projection. SaleProceeds is set only in the
// final year.
type YearCashFlow struct {
	Year          int      `json:"year"`
	GrossRent     float64  `json:"gross_rent"`
	EffectiveRent float64  `json:"effective_rent"`
	Expenses      float64  `json:"expenses"`
	NetIncome     float64  `json:"net_income"`
	PropertyValue float64  `json:"property_value"`
	SaleProceeds  *float64 `json:"sale_proceeds"`
	TotalCashFlow float64  `json:"total_cash_flow"`
}

// CashFlowProjection is the full simulation output. IRR is a decimal rate
// (0.12 for 12%) and is nil when the root finder did not converge; everything
// else is still populated.
type CashFlowProjection struct {
	InitialInvestment  float64        `json:"initial_investment"`
	FinalPropertyValue float64        `json:"final_property_value"`
	TotalRentalIncome  float64        `json:"total_rental_income"`
	TotalExpenses      float64        `json:"total_expenses"`
	TotalReturnPct     float64        `json:"total_return_pct"`
	IRR                *float64       `json:"irr"`
	NPVAt8Pct          float64        `json:"npv_at_8pct"`
	NPVAtDiscountRate  *float64       `json:"npv_at_discount_rate,omitempty"`
	HoldingPeriodYears int            `json:"holding_period_years"`
	YearlyCashflows    []YearCashFlow `json:"yearly_cashflows"`
	CashFlows          []float64      `json:"-"`
}

// Simulate runs the year-by-year buy-to-rent projection and derives IRR, NPV
// and total nominal return. It is a pure function of its parameters.
func Simulate(params InvestmentParameters) (*CashFlowProjection, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	years := params.HoldingPeriodYears
	initialCost := params.PurchasePriceUSD * (1 + params.ClosingCostsPct)

	cashFlows := make([]float64, 0, years+1)
	cashFlows = append(cashFlows, -initialCost)
	yearly := make([]YearCashFlow, 0, years)

	currentRent := params.MonthlyRentUSD
	propertyValue := params.PurchasePriceUSD
	totalRentalIncome := 0.0
	totalExpenses := 0.0

	for year := 1; year <= years; year++ {
		grossRent := currentRent * 12
		effectiveRent := grossRent * (1 - params.VacancyRate)

		// Expenses are charged on the value before this year's appreciation
		annualExpenses := propertyValue * params.ExpensesRate
		netIncome := effectiveRent - annualExpenses

		totalRentalIncome += effectiveRent
		totalExpenses += annualExpenses

		propertyValue *= 1 + params.AppreciationRate

		var saleProceeds *float64
		annualCF := netIncome
		if year == years {
			proceeds := propertyValue * (1 - params.ClosingCostsPct)
			saleProceeds = &proceeds
			annualCF += proceeds
		}
		cashFlows = append(cashFlows, annualCF)

		yearly = append(yearly, YearCashFlow{
			Year:          year,
			GrossRent:     grossRent,
			EffectiveRent: effectiveRent,
			Expenses:      annualExpenses,
			NetIncome:     netIncome,
			PropertyValue: propertyValue,
			SaleProceeds:  saleProceeds,
			TotalCashFlow: annualCF,
		})

		currentRent *= 1 + params.RentIncreaseRate
	}

	totalCashIn := 0.0
	for _, cf := range cashFlows[1:] {
		totalCashIn += cf
	}
	totalReturn := (totalCashIn - initialCost) / initialCost * 100

	projection := &CashFlowProjection{
		InitialInvestment:  initialCost,
		FinalPropertyValue: propertyValue,
		TotalRentalIncome:  totalRentalIncome,
		TotalExpenses:      totalExpenses,
		TotalReturnPct:     totalReturn,
		NPVAt8Pct:          ComputeNPV(referenceDiscountRate, cashFlows),
		HoldingPeriodYears: years,
		YearlyCashflows:    yearly,
		CashFlows:          cashFlows,
	}

	if irr, ok := ComputeIRR(cashFlows); ok {
		projection.IRR = &irr
	}

	if params.DiscountRate > 0 {
		npv := ComputeNPV(params.DiscountRate, cashFlows)
		projection.NPVAtDiscountRate = &npv
	}

	return projection, nil
}

// ComputeNPV evaluates the net present value of cashFlows at the given
// discount rate, with cashFlows[0] at t=0.
func ComputeNPV(rate float64, cashFlows []float64) float64 {
	npv := 0.0
	for t, cf := range cashFlows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

// ComputeIRR finds the discount rate that zeroes the NPV of cashFlows using
// Newton-Raphson iteration. The second return value is false when the search
// does not converge or the derivative vanishes; callers must treat the IRR as
// optional.
func ComputeIRR(cashFlows []float64) (float64, bool) {
	guess := irrInitialGuess

	for i := 0; i < irrMaxIterations; i++ {
		npv := 0.0
		dNPV := 0.0
		for t, cf := range cashFlows {
			denom := math.Pow(1+guess, float64(t))
			if denom == 0 {
				return 0, false
			}
			npv += cf / denom
			if t > 0 {
				dNPV -= float64(t) * cf / math.Pow(1+guess, float64(t+1))
			}
		}

		if math.Abs(dNPV) < irrDerivativeFloor {
			return 0, false
		}

		next := guess - npv/dNPV
		if math.Abs(next-guess) < irrTolerance {
			return next, true
		}
		guess = next
	}

	return 0, false
}
