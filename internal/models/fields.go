package models

import "sort"

// Field is a canonical financial field name, independent of taxonomy dialect.
type Field string

// PeriodType is the context axis a field must be read from.
type PeriodType int

const (
	// PeriodInstant fields are point-in-time balances.
	PeriodInstant PeriodType = iota
	// PeriodDuration fields accumulate over a start/end interval.
	PeriodDuration
	// PeriodAny fields are descriptive attributes tagged on either axis.
	PeriodAny
)

// FieldUnit describes how a field's value is measured.
type FieldUnit int

const (
	UnitMonetary FieldUnit = iota
	UnitPerShare
	UnitShares
)

// Income statement
const (
	Revenue                 Field = "Revenue"
	OtherIncome             Field = "OtherIncome"
	TotalIncome             Field = "TotalIncome"
	TotalExpenses           Field = "TotalExpenses"
	OperatingExpenses       Field = "OperatingExpenses"
	CostOfMaterials         Field = "CostOfMaterials"
	PurchasesOfStockInTrade Field = "PurchasesOfStockInTrade"
	ChangesInInventories    Field = "ChangesInInventories"
	EmployeeBenefits        Field = "EmployeeBenefits"
	FinanceCosts            Field = "FinanceCosts"
	Depreciation            Field = "Depreciation"
	OtherExpenses           Field = "OtherExpenses"
	ExceptionalItems        Field = "ExceptionalItems"
	ProfitBeforeTax         Field = "ProfitBeforeTax"
	TaxExpense              Field = "TaxExpense"
	NetProfit               Field = "NetProfit"
	OperatingProfit         Field = "OperatingProfit"
	EBITDA                  Field = "EBITDA"
	EPSBasic                Field = "EPSBasic"
	EPSDiluted              Field = "EPSDiluted"
	DividendPerShare        Field = "DividendPerShare"
)

// Balance sheet
const (
	Assets                 Field = "Assets"
	CurrentAssets          Field = "CurrentAssets"
	NonCurrentAssets       Field = "NonCurrentAssets"
	PropertyPlantEquipment Field = "PropertyPlantEquipment"
	Cash                   Field = "Cash"
	Receivables            Field = "Receivables"
	Inventories            Field = "Inventories"
	Liabilities            Field = "Liabilities"
	CurrentLiabilities     Field = "CurrentLiabilities"
	NonCurrentLiabilities  Field = "NonCurrentLiabilities"
	CurrentBorrowings      Field = "CurrentBorrowings"
	NonCurrentBorrowings   Field = "NonCurrentBorrowings"
	TotalDebt              Field = "TotalDebt"
	ShareCapital           Field = "ShareCapital"
	Reserves               Field = "Reserves"
	Equity                 Field = "Equity"
	NumberOfShares         Field = "NumberOfShares"
	FaceValue              Field = "FaceValue"
)

// Cash flow
const (
	OperatingCashFlow  Field = "OperatingCashFlow"
	InvestingCashFlow  Field = "InvestingCashFlow"
	FinancingCashFlow  Field = "FinancingCashFlow"
	CapitalExpenditure Field = "CapitalExpenditure"
	DividendsPaid      Field = "DividendsPaid"
)

// Banking overlay
const (
	InterestIncome    Field = "InterestIncome"
	InterestExpense   Field = "InterestExpense"
	NetInterestIncome Field = "NetInterestIncome"
	FeeIncome         Field = "FeeIncome"
	Provisions        Field = "Provisions"
	Advances          Field = "Advances"
	Deposits          Field = "Deposits"
	DemandDeposits    Field = "DemandDeposits"
	SavingsDeposits   Field = "SavingsDeposits"
	TermDeposits      Field = "TermDeposits"
	GrossNPA          Field = "GrossNPA"
	NetNPA            Field = "NetNPA"
)

// FieldSpec describes how a canonical field is read, aggregated and stored.
type FieldSpec struct {
	Field    Field
	Column   string
	Period   PeriodType
	Unit     FieldUnit
	CashFlow bool
	Banking  bool
}

var fieldSpecs = []FieldSpec{
	{Field: Revenue, Column: "revenue", Period: PeriodDuration},
	{Field: OtherIncome, Column: "other_income", Period: PeriodDuration},
	{Field: TotalIncome, Column: "total_income", Period: PeriodDuration},
	{Field: TotalExpenses, Column: "total_expenses", Period: PeriodDuration},
	{Field: OperatingExpenses, Column: "operating_expenses", Period: PeriodDuration},
	{Field: CostOfMaterials, Column: "cost_of_materials", Period: PeriodDuration},
	{Field: PurchasesOfStockInTrade, Column: "purchases_stock_in_trade", Period: PeriodDuration},
	{Field: ChangesInInventories, Column: "changes_in_inventories", Period: PeriodDuration},
	{Field: EmployeeBenefits, Column: "employee_benefits", Period: PeriodDuration},
	{Field: FinanceCosts, Column: "finance_costs", Period: PeriodDuration},
	{Field: Depreciation, Column: "depreciation", Period: PeriodDuration},
	{Field: OtherExpenses, Column: "other_expenses", Period: PeriodDuration},
	{Field: ExceptionalItems, Column: "exceptional_items", Period: PeriodDuration},
	{Field: ProfitBeforeTax, Column: "profit_before_tax", Period: PeriodDuration},
	{Field: TaxExpense, Column: "tax_expense", Period: PeriodDuration},
	{Field: NetProfit, Column: "net_profit", Period: PeriodDuration},
	{Field: OperatingProfit, Column: "operating_profit", Period: PeriodDuration},
	{Field: EBITDA, Column: "ebitda", Period: PeriodDuration},
	{Field: EPSBasic, Column: "eps_basic", Period: PeriodDuration, Unit: UnitPerShare},
	{Field: EPSDiluted, Column: "eps_diluted", Period: PeriodDuration, Unit: UnitPerShare},
	{Field: DividendPerShare, Column: "dividend_per_share", Period: PeriodDuration, Unit: UnitPerShare},

	{Field: Assets, Column: "assets", Period: PeriodInstant},
	{Field: CurrentAssets, Column: "current_assets", Period: PeriodInstant},
	{Field: NonCurrentAssets, Column: "non_current_assets", Period: PeriodInstant},
	{Field: PropertyPlantEquipment, Column: "ppe", Period: PeriodInstant},
	{Field: Cash, Column: "cash", Period: PeriodInstant},
	{Field: Receivables, Column: "receivables", Period: PeriodInstant},
	{Field: Inventories, Column: "inventories", Period: PeriodInstant},
	{Field: Liabilities, Column: "liabilities", Period: PeriodInstant},
	{Field: CurrentLiabilities, Column: "current_liabilities", Period: PeriodInstant},
	{Field: NonCurrentLiabilities, Column: "non_current_liabilities", Period: PeriodInstant},
	{Field: CurrentBorrowings, Column: "current_borrowings", Period: PeriodInstant},
	{Field: NonCurrentBorrowings, Column: "non_current_borrowings", Period: PeriodInstant},
	{Field: TotalDebt, Column: "total_debt", Period: PeriodInstant},
	{Field: ShareCapital, Column: "share_capital", Period: PeriodInstant},
	{Field: Reserves, Column: "reserves", Period: PeriodInstant},
	{Field: Equity, Column: "equity", Period: PeriodInstant},
	{Field: NumberOfShares, Column: "number_of_shares", Period: PeriodInstant, Unit: UnitShares},
	{Field: FaceValue, Column: "face_value", Period: PeriodAny, Unit: UnitPerShare},

	{Field: OperatingCashFlow, Column: "operating_cash_flow", Period: PeriodDuration, CashFlow: true},
	{Field: InvestingCashFlow, Column: "investing_cash_flow", Period: PeriodDuration, CashFlow: true},
	{Field: FinancingCashFlow, Column: "financing_cash_flow", Period: PeriodDuration, CashFlow: true},
	{Field: CapitalExpenditure, Column: "capital_expenditure", Period: PeriodDuration, CashFlow: true},
	{Field: DividendsPaid, Column: "dividends_paid", Period: PeriodDuration, CashFlow: true},

	{Field: InterestIncome, Column: "interest_income", Period: PeriodDuration, Banking: true},
	{Field: InterestExpense, Column: "interest_expense", Period: PeriodDuration, Banking: true},
	{Field: NetInterestIncome, Column: "net_interest_income", Period: PeriodDuration, Banking: true},
	{Field: FeeIncome, Column: "fee_income", Period: PeriodDuration, Banking: true},
	{Field: Provisions, Column: "provisions", Period: PeriodDuration, Banking: true},
	{Field: Advances, Column: "advances", Period: PeriodInstant, Banking: true},
	{Field: Deposits, Column: "deposits", Period: PeriodInstant, Banking: true},
	{Field: DemandDeposits, Column: "demand_deposits", Period: PeriodInstant, Banking: true},
	{Field: SavingsDeposits, Column: "savings_deposits", Period: PeriodInstant, Banking: true},
	{Field: TermDeposits, Column: "term_deposits", Period: PeriodInstant, Banking: true},
	{Field: GrossNPA, Column: "gross_npa", Period: PeriodInstant, Banking: true},
	{Field: NetNPA, Column: "net_npa", Period: PeriodInstant, Banking: true},
}

var fieldIndex = func() map[Field]FieldSpec {
	m := make(map[Field]FieldSpec, len(fieldSpecs))
	for _, s := range fieldSpecs {
		m[s.Field] = s
	}
	return m
}()

// AllFields returns every canonical field spec in registry order.
func AllFields() []FieldSpec {
	out := make([]FieldSpec, len(fieldSpecs))
	copy(out, fieldSpecs)
	return out
}

// SpecFor returns the spec of a canonical field.
func SpecFor(f Field) (FieldSpec, bool) {
	s, ok := fieldIndex[f]
	return s, ok
}

// Fields holds the raw canonical values of one statement. A missing key means
// the value was not reported, which is distinct from a reported zero.
type Fields map[Field]float64

// Get returns the value and whether it is present.
func (f Fields) Get(field Field) (float64, bool) {
	if f == nil {
		return 0, false
	}
	v, ok := f[field]
	return v, ok
}

// Has reports whether field is present.
func (f Fields) Has(field Field) bool {
	_, ok := f.Get(field)
	return ok
}

// NonZero reports whether field is present with a non-zero value.
func (f Fields) NonZero(field Field) bool {
	v, ok := f.Get(field)
	return ok && v != 0
}

// Ptr returns a pointer to the value, or nil when absent.
func (f Fields) Ptr(field Field) *float64 {
	v, ok := f.Get(field)
	if !ok {
		return nil
	}
	return &v
}

// Clone returns an independent copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the present fields in sorted order.
func (f Fields) Keys() []Field {
	keys := make([]Field, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
