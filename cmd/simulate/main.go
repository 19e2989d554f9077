package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"barriometrics/server/internal/finance"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	params := finance.InvestmentParameters{}
	flag.Float64Var(&params.PurchasePriceUSD, "price", 0, "Purchase price in USD")
	flag.Float64Var(&params.MonthlyRentUSD, "rent", 0, "Expected monthly rent in USD")
	flag.IntVar(&params.HoldingPeriodYears, "years", 10, "Holding period in years")
	flag.Float64Var(&params.AppreciationRate, "appreciation", 0.03, "Annual appreciation rate (0.03 = 3%)")
	flag.Float64Var(&params.ExpensesRate, "expenses", 0.01, "Annual expenses as a fraction of property value")
	flag.Float64Var(&params.VacancyRate, "vacancy", 0.05, "Vacancy rate")
	flag.Float64Var(&params.ClosingCostsPct, "closing", 0.06, "Closing costs as a fraction of price")
	flag.Float64Var(&params.RentIncreaseRate, "rent-increase", 0.02, "Annual rent increase rate")
	flag.Float64Var(&params.DiscountRate, "discount", 0, "Discount rate for an additional NPV (0 skips it)")
	flag.Parse()

	projection, err := finance.Simulate(params)
	if err != nil {
		logger.WithError(err).Fatal("Simulation rejected")
	}
	if projection.IRR == nil {
		logger.Warn("IRR did not converge, field omitted from output")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(projection); err != nil {
		logger.WithError(err).Fatal("Failed to encode projection")
	}
}
