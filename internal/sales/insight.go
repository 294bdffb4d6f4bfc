package sales

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoCutoverInsight is shown when the active range does not contain the cutover.
const NoCutoverInsight = "Select a date range that includes January 15, 2021 to see the impact of the price increase."

// NoCutoverNote accompanies the summary statistics when the comparison is omitted.
const NoCutoverNote = "Note: Price increase date (Jan 15, 2021) not in selected date range"

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount as dollars with thousands separators.
func FormatMoney(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// Insight returns the textual before/after verdict for a comparison.
func Insight(c *Comparison) string {
	if c == nil {
		return NoCutoverInsight
	}
	if c.Direction == AfterHigher {
		return "Sales were HIGHER after the price increase! Sales increased by " +
			FormatMoney(c.Delta) + " after January 15, 2021."
	}
	return "Sales were LOWER after the price increase. Sales decreased by " +
		FormatMoney(c.Delta) + " after January 15, 2021."
}
