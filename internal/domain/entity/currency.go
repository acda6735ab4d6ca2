package entity

// BaseCurrency is the currency all rates are expressed relative to.
const BaseCurrency = "USD"

// SupportedCurrencies is the fixed set of currencies the store prices in.
var SupportedCurrencies = []string{"USD", "GBP", "EUR", "AUD", "MXN", "JPY"}

// CurrencyInfo describes a supported currency for display purposes.
type CurrencyInfo struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int    `json:"decimal_places"`
}

var currencyInfo = map[string]CurrencyInfo{
	"USD": {Code: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2},
	"GBP": {Code: "GBP", Name: "British Pound", Symbol: "£", DecimalPlaces: 2},
	"EUR": {Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2},
	"AUD": {Code: "AUD", Name: "Australian Dollar", Symbol: "A$", DecimalPlaces: 2},
	"MXN": {Code: "MXN", Name: "Mexican Peso", Symbol: "MX$", DecimalPlaces: 2},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Symbol: "¥", DecimalPlaces: 0},
}

// IsSupportedCurrency reports whether the code is in the supported set.
func IsSupportedCurrency(code string) bool {
	_, ok := currencyInfo[code]
	return ok
}

// CurrencyInfoFor returns display info for a supported currency code.
func CurrencyInfoFor(code string) (CurrencyInfo, bool) {
	info, ok := currencyInfo[code]
	return info, ok
}

// CurrencyDecimals returns the number of minor-unit decimal places for a
// currency. JPY has none; everything else in the supported set has two.
func CurrencyDecimals(code string) int {
	if info, ok := currencyInfo[code]; ok {
		return info.DecimalPlaces
	}
	return 2
}
