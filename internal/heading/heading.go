// Package heading describes an active filter selection in words.
package heading

import (
	"fintrack/internal/core"
)

// DescribeFilter returns the caption for a table of kind narrowed by month
// and category. Empty values mean the axis is unrestricted.
//
//	DescribeFilter(core.KindIncome, "March", "farm") // "Income for the month of March from the farm category"
//	DescribeFilter(core.KindExpense, "", "")         // "Expenses"
func DescribeFilter(kind core.Kind, month, category string) string {
	k := kind.Title()
	switch {
	case month != "" && category != "":
		return k + " for the month of " + month + " from the " + category + " category"
	case month != "":
		return k + " for the month of " + month
	case category != "":
		return k + " from the " + category + " category"
	default:
		return k + "s"
	}
}
