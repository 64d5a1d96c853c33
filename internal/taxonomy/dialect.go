// Package taxonomy maps dialect-specific XBRL concepts onto canonical fields.
package taxonomy

import "github.com/ternarybob/scrutor/internal/models"

// Dialect is the lookup contract every taxonomy version implements. Alias
// lists are ordered by preference and hold concept local names.
type Dialect interface {
	ID() models.Dialect
	Version() string
	// Aliases returns the generic concept names for a canonical field.
	Aliases(field models.Field) []string
	// BankingAliases returns the banking-overlay concept names for a field.
	BankingAliases(field models.Field) []string
}

type aliasTable map[models.Field][]string

type staticDialect struct {
	id      models.Dialect
	version string
	generic aliasTable
	banking aliasTable
}

func (d *staticDialect) ID() models.Dialect { return d.id }
func (d *staticDialect) Version() string    { return d.version }

func (d *staticDialect) Aliases(field models.Field) []string {
	return d.generic[field]
}

func (d *staticDialect) BankingAliases(field models.Field) []string {
	return d.banking[field]
}

var sebi2025 = &staticDialect{
	id:      models.DialectSEBI2025,
	version: "in-capmkt 2025-03-31",
	generic: aliasTable{
		models.Revenue:                 {"RevenueFromOperations"},
		models.OtherIncome:             {"OtherIncome"},
		models.TotalIncome:             {"Income", "TotalIncome"},
		models.TotalExpenses:           {"Expenses", "TotalExpenses"},
		models.CostOfMaterials:         {"CostOfMaterialsConsumed"},
		models.PurchasesOfStockInTrade: {"PurchasesOfStockInTrade"},
		models.ChangesInInventories:    {"ChangesInInventoriesOfFinishedGoodsWorkInProgressAndStockInTrade"},
		models.EmployeeBenefits:        {"EmployeeBenefitExpense"},
		models.FinanceCosts:            {"FinanceCosts"},
		models.Depreciation:            {"DepreciationDepletionAndAmortisationExpense"},
		models.OtherExpenses:           {"OtherExpenses"},
		models.ExceptionalItems:        {"ExceptionalItemsBeforeTax"},
		models.ProfitBeforeTax:         {"ProfitBeforeTax", "ProfitLossBeforeTax"},
		models.TaxExpense:              {"TaxExpense"},
		models.NetProfit:               {"ProfitLossForPeriod", "ProfitLossForPeriodFromContinuingOperations"},
		models.EPSBasic:                {"BasicEarningsLossPerShareFromContinuingOperations", "BasicEarningsLossPerShareFromContinuingAndDiscontinuedOperations"},
		models.EPSDiluted:              {"DilutedEarningsLossPerShareFromContinuingOperations", "DilutedEarningsLossPerShareFromContinuingAndDiscontinuedOperations"},
		models.DividendPerShare:        {"DividendPerShare"},

		models.Assets:                 {"Assets"},
		models.CurrentAssets:          {"CurrentAssets"},
		models.NonCurrentAssets:       {"NoncurrentAssets", "NonCurrentAssets"},
		models.PropertyPlantEquipment: {"PropertyPlantAndEquipment"},
		models.Cash:                   {"CashAndCashEquivalents"},
		models.Receivables:            {"TradeReceivablesCurrent", "TradeReceivables"},
		models.Inventories:            {"Inventories"},
		models.Liabilities:            {"Liabilities"},
		models.CurrentLiabilities:     {"CurrentLiabilities"},
		models.NonCurrentLiabilities:  {"NoncurrentLiabilities", "NonCurrentLiabilities"},
		models.CurrentBorrowings:      {"BorrowingsCurrent"},
		models.NonCurrentBorrowings:   {"BorrowingsNoncurrent"},
		models.ShareCapital:           {"EquityShareCapital"},
		models.Reserves:               {"OtherEquity"},
		models.Equity:                 {"EquityAttributableToOwnersOfParent", "Equity"},
		models.NumberOfShares:         {"NumberOfSharesOutstanding"},
		models.FaceValue:              {"FaceValueOfEquityShareCapital"},

		models.OperatingCashFlow:  {"CashFlowsFromUsedInOperatingActivities"},
		models.InvestingCashFlow:  {"CashFlowsFromUsedInInvestingActivities"},
		models.FinancingCashFlow:  {"CashFlowsFromUsedInFinancingActivities"},
		models.CapitalExpenditure: {"PurchaseOfPropertyPlantAndEquipmentClassifiedAsInvestingActivities"},
		models.DividendsPaid:      {"DividendsPaidClassifiedAsFinancingActivities"},
	},
	banking: aliasTable{
		models.InterestIncome:    {"InterestEarned", "TotalInterestEarned"},
		models.InterestExpense:   {"InterestExpended"},
		models.NetInterestIncome: {"NetInterestIncome"},
		models.FeeIncome:         {"FeeAndCommissionIncome"},
		models.Provisions:        {"ProvisionsOtherThanTaxAndContingencies"},
		models.Advances:          {"Advances"},
		models.Deposits:          {"Deposits"},
		models.DemandDeposits:    {"DemandDeposits"},
		models.SavingsDeposits:   {"SavingsBankDeposits"},
		models.TermDeposits:      {"TermDeposits"},
		models.GrossNPA:          {"GrossNonPerformingAssets"},
		models.NetNPA:            {"NetNonPerformingAssets"},

		models.Revenue:           {"TotalInterestEarned", "InterestEarned"},
		models.NetProfit:         {"NetProfitLossForThePeriod"},
		models.OperatingExpenses: {"OperatingExpenses"},
	},
}

var bse2020 = &staticDialect{
	id:      models.DialectBSE2020,
	version: "in-bse-fin 2020-03-31",
	generic: aliasTable{
		models.Revenue:                 {"RevenueFromOperations"},
		models.OtherIncome:             {"OtherIncome"},
		models.TotalIncome:             {"Income"},
		models.TotalExpenses:           {"Expenses"},
		models.CostOfMaterials:         {"CostOfMaterialsConsumed"},
		models.PurchasesOfStockInTrade: {"PurchasesOfStockInTrade"},
		models.ChangesInInventories:    {"ChangesInInventoriesOfFinishedGoodsWorkInProgressAndStockInTrade"},
		models.EmployeeBenefits:        {"EmployeeBenefitExpense"},
		models.FinanceCosts:            {"FinanceCosts"},
		models.Depreciation:            {"DepreciationAndAmortisationExpense"},
		models.OtherExpenses:           {"OtherExpenses"},
		models.ExceptionalItems:        {"ExceptionalItemsBeforeTax", "ExceptionalItems"},
		models.ProfitBeforeTax:         {"ProfitBeforeTax"},
		models.TaxExpense:              {"TaxExpense", "TotalTaxExpense"},
		models.NetProfit:               {"ProfitLossForPeriod", "NetProfitLossForThePeriod"},
		models.EPSBasic:                {"BasicEarningsLossPerShareFromContinuingAndDiscontinuedOperations", "BasicEarningsPerShareBeforeExtraordinaryItems"},
		models.EPSDiluted:              {"DilutedEarningsLossPerShareFromContinuingAndDiscontinuedOperations", "DilutedEarningsPerShareBeforeExtraordinaryItems"},
		models.DividendPerShare:        {"DividendPerShare", "InterimDividendPerShare"},

		models.Assets:                 {"Assets", "TotalAssets"},
		models.CurrentAssets:          {"CurrentAssets"},
		models.NonCurrentAssets:       {"NoncurrentAssets"},
		models.PropertyPlantEquipment: {"PropertyPlantAndEquipment"},
		models.Cash:                   {"CashAndCashEquivalents"},
		models.Receivables:            {"TradeReceivablesCurrent"},
		models.Inventories:            {"Inventories"},
		models.Liabilities:            {"Liabilities", "TotalLiabilities"},
		models.CurrentLiabilities:     {"CurrentLiabilities"},
		models.NonCurrentLiabilities:  {"NoncurrentLiabilities"},
		models.CurrentBorrowings:      {"BorrowingsCurrent"},
		models.NonCurrentBorrowings:   {"BorrowingsNoncurrent"},
		models.ShareCapital:           {"PaidUpValueOfEquityShareCapital", "EquityShareCapital"},
		models.Reserves:               {"ReservesExcludingRevaluationReserves", "OtherEquity"},
		models.Equity:                 {"Equity", "EquityAttributableToOwnersOfParent"},
		models.NumberOfShares:         {"NumberOfEquityShares"},
		models.FaceValue:              {"FaceValueOfEquityShareCapital"},

		models.OperatingCashFlow:  {"NetCashFlowsFromUsedInOperatingActivities", "CashFlowsFromUsedInOperatingActivities"},
		models.InvestingCashFlow:  {"NetCashFlowsFromUsedInInvestingActivities", "CashFlowsFromUsedInInvestingActivities"},
		models.FinancingCashFlow:  {"NetCashFlowsFromUsedInFinancingActivities", "CashFlowsFromUsedInFinancingActivities"},
		models.CapitalExpenditure: {"PurchaseOfPropertyPlantAndEquipment"},
		models.DividendsPaid:      {"DividendsPaid"},
	},
	banking: aliasTable{
		models.InterestIncome:    {"InterestEarned"},
		models.InterestExpense:   {"InterestExpended"},
		models.NetInterestIncome: {"NetInterestIncome"},
		models.FeeIncome:         {"CommissionExchangeAndBrokerage", "FeeIncome"},
		models.Provisions:        {"ProvisionsOtherThanTaxAndContingencies", "ProvisionsAndContingencies"},
		models.Advances:          {"Advances"},
		models.Deposits:          {"Deposits"},
		models.DemandDeposits:    {"DemandDeposits"},
		models.SavingsDeposits:   {"SavingsBankDeposits"},
		models.TermDeposits:      {"TermDeposits"},
		models.GrossNPA:          {"GrossNPA", "AmountOfGrossNonPerformingAssets"},
		models.NetNPA:            {"NetNPA", "AmountOfNetNonPerformingAssets"},

		models.Revenue:           {"InterestEarned"},
		models.NetProfit:         {"NetProfitLossForThePeriod"},
		models.OperatingExpenses: {"OperatingExpenses"},
	},
}

// unknown merges the known dialects newest first so an unrecognized filing
// still resolves any concept either version would.
var unknown = &staticDialect{
	id:      models.DialectUnknown,
	version: "best-effort",
	generic: mergeTables(sebi2025.generic, bse2020.generic),
	banking: mergeTables(sebi2025.banking, bse2020.banking),
}

func mergeTables(tables ...aliasTable) aliasTable {
	out := make(aliasTable)
	for _, t := range tables {
		for field, names := range t {
			for _, n := range names {
				if !contains(out[field], n) {
					out[field] = append(out[field], n)
				}
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// For returns the strategy for a detected dialect.
func For(id models.Dialect) Dialect {
	switch id {
	case models.DialectSEBI2025:
		return sebi2025
	case models.DialectBSE2020:
		return bse2020
	}
	return unknown
}

// Dialects enumerates every supported strategy.
func Dialects() []Dialect {
	return []Dialect{sebi2025, bse2020, unknown}
}
