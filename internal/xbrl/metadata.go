package xbrl

import (
	"strings"
	"time"
)

var (
	metaSymbol         = []string{"Symbol", "NSESymbol", "SymbolOfTheCompany"}
	metaScripCode      = []string{"ScripCode", "BSEScripCode"}
	metaCompanyName    = []string{"NameOfTheCompany", "NameOfCompany", "EntityName"}
	metaQuarter        = []string{"ReportingQuarter", "TypeOfReportingPeriod"}
	metaNature         = []string{"NatureOfReportStandaloneConsolidated", "NatureOfReport"}
	metaPeriodStart    = []string{"DateOfStartOfReportingPeriod"}
	metaPeriodEnd      = []string{"DateOfEndOfReportingPeriod"}
	metaFiscalStart    = []string{"DateOfStartOfFinancialYear"}
	metaFiscalEnd      = []string{"DateOfEndOfFinancialYear"}
	metaCurrency       = []string{"ReportingCurrency", "DescriptionOfPresentationCurrency", "CurrencyOfReporting"}
	currencyByKeyword  = map[string]string{"RUPEE": "INR", "DOLLAR": "USD", "EURO": "EUR", "POUND": "GBP"}
	currencyKeywordKey = []string{"RUPEE", "DOLLAR", "EURO", "POUND"}
)

// readMetadata collects the general-information block. The first tagged
// value of each item wins.
func readMetadata(facts []Fact) Metadata {
	text := make(map[string]string)
	for _, f := range facts {
		if f.Numeric || f.Nil || f.Text == "" {
			continue
		}
		key := strings.ToLower(f.Name)
		if _, ok := text[key]; !ok {
			text[key] = f.Text
		}
	}

	lookup := func(names []string) string {
		for _, n := range names {
			if v, ok := text[strings.ToLower(n)]; ok {
				return v
			}
		}
		return ""
	}
	date := func(names []string) time.Time {
		t, _ := parseDate(lookup(names))
		return t
	}

	return Metadata{
		Symbol:          strings.ToUpper(lookup(metaSymbol)),
		ScripCode:       lookup(metaScripCode),
		CompanyName:     lookup(metaCompanyName),
		Quarter:         lookup(metaQuarter),
		NatureOfReport:  lookup(metaNature),
		PeriodStart:     date(metaPeriodStart),
		PeriodEnd:       date(metaPeriodEnd),
		FiscalYearStart: date(metaFiscalStart),
		FiscalYearEnd:   date(metaFiscalEnd),
		Currency:        currencyCode(lookup(metaCurrency)),
	}
}

// currencyCode turns "INR", "Indian Rupee" or "iso4217:INR" into an ISO code.
func currencyCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "ISO4217:")
	if len(s) == 3 {
		return s
	}
	for _, k := range currencyKeywordKey {
		if strings.Contains(s, k) {
			return currencyByKeyword[k]
		}
	}
	return ""
}
