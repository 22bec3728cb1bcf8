package alphavantage

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/stocklens/internal/contracts"
)

// overviewResponse mirrors the OVERVIEW payload (company reference data
// plus trailing-twelve-month figures).
type overviewResponse struct {
	envelope
	Symbol            string `json:"Symbol"`
	Name              string `json:"Name"`
	Exchange          string `json:"Exchange"`
	Sector            string `json:"Sector"`
	Industry          string `json:"Industry"`
	Country           string `json:"Country"`
	MarketCap         string `json:"MarketCapitalization"`
	SharesOutstanding string `json:"SharesOutstanding"`
	EPS               string `json:"EPS"`
}

// statementResponse mirrors INCOME_STATEMENT / BALANCE_SHEET / CASH_FLOW
// payloads, which all share the annualReports list shape.
type statementResponse struct {
	envelope
	AnnualReports []map[string]string `json:"annualReports"`
}

// Profile fetches company reference data from OVERVIEW.
func (c *Client) Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error) {
	overview, err := c.fetchOverview(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &contracts.CompanyProfile{
		Symbol:            symbol,
		Name:              overview.Name,
		Exchange:          overview.Exchange,
		Sector:            overview.Sector,
		Industry:          overview.Industry,
		Country:           overview.Country,
		MarketCap:         parseFloat(overview.MarketCap),
		SharesOutstanding: parseFloat(overview.SharesOutstanding),
	}, nil
}

// Fundamentals assembles period-keyed fundamentals from the annual
// statement endpoints, joined on fiscal year end. The latest period
// additionally carries the trailing EPS from OVERVIEW.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*contracts.FundamentalsSet, error) {
	overview, err := c.fetchOverview(ctx, symbol)
	if err != nil {
		return nil, err
	}

	income, err := c.fetchStatement(ctx, "INCOME_STATEMENT", symbol)
	if err != nil {
		return nil, err
	}
	balance, err := c.fetchStatement(ctx, "BALANCE_SHEET", symbol)
	if err != nil {
		return nil, err
	}
	cashflow, err := c.fetchStatement(ctx, "CASH_FLOW", symbol)
	if err != nil {
		return nil, err
	}

	byPeriod := map[string]*contracts.FundamentalPeriod{}
	period := func(fiscalDate string) *contracts.FundamentalPeriod {
		if entry, ok := byPeriod[fiscalDate]; ok {
			return entry
		}
		entry := &contracts.FundamentalPeriod{Period: fiscalDate}
		byPeriod[fiscalDate] = entry
		return entry
	}

	for _, report := range income.AnnualReports {
		entry := period(report["fiscalDateEnding"])
		entry.Revenue = parseFloat(report["totalRevenue"])
		entry.NetIncome = parseFloat(report["netIncome"])
	}
	for _, report := range balance.AnnualReports {
		entry := period(report["fiscalDateEnding"])
		entry.TotalDebt = parseFloat(report["shortLongTermDebtTotal"])
		entry.TotalEquity = parseFloat(report["totalShareholderEquity"])
	}
	for _, report := range cashflow.AnnualReports {
		entry := period(report["fiscalDateEnding"])
		operating := parseFloat(report["operatingCashflow"])
		capex := parseFloat(report["capitalExpenditures"])
		if operating != nil && capex != nil {
			fcf := *operating - *capex
			entry.FreeCashFlow = &fcf
		}
	}
	delete(byPeriod, "")

	if len(byPeriod) == 0 {
		return nil, fmt.Errorf("fundamentals schema validation failed: no annual reports in payload")
	}

	periods := make([]contracts.FundamentalPeriod, 0, len(byPeriod))
	for _, entry := range byPeriod {
		periods = append(periods, *entry)
	}
	// Most recent first; fiscal dates are ISO so string order works
	sort.Slice(periods, func(i, j int) bool { return periods[i].Period > periods[j].Period })
	if len(periods) > 5 {
		periods = periods[:5]
	}

	periods[0].EPS = parseFloat(overview.EPS)

	return &contracts.FundamentalsSet{Symbol: symbol, Periods: periods}, nil
}

func (c *Client) fetchOverview(ctx context.Context, symbol string) (*overviewResponse, error) {
	var payload overviewResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("OVERVIEW", symbol, nil), &payload); err != nil {
		return nil, fmt.Errorf("overview request failed: %w", err)
	}
	if err := payload.vendorError(); err != nil {
		return nil, err
	}
	if payload.Symbol == "" && payload.Name == "" {
		return nil, fmt.Errorf("overview schema validation failed: empty payload")
	}
	return &payload, nil
}

func (c *Client) fetchStatement(ctx context.Context, function, symbol string) (*statementResponse, error) {
	var payload statementResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint(function, symbol, nil), &payload); err != nil {
		return nil, fmt.Errorf("%s request failed: %w", function, err)
	}
	if err := payload.vendorError(); err != nil {
		return nil, err
	}
	return &payload, nil
}
