// Package markdown renders result sets and money figures for the
// chat-style dashboard surfaces. Tables are GitHub-flavored pipe tables
// so they display in any markdown renderer.
package markdown

import (
	"fmt"
	"strconv"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

// emptyTable is rendered when a result set has no rows.
const emptyTable = "_no rows_"

// Table renders a result set as a markdown pipe table. Column order
// follows the result set. An empty or nil result renders a placeholder
// instead of a bare header.
func Table(rs *query.ResultSet) string {
	if rs == nil || rs.Empty() {
		return emptyTable
	}

	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(rs.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = Cell(v)
		}
		table.Append(cells)
	}
	table.Render()

	return strings.TrimRight(buf.String(), "\n")
}

// Cell renders one result cell as table text. Null renders as the empty
// string so sparse columns stay readable.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Money formats an amount as dollars and cents, e.g. "$1,234.50".
func Money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// MoneyWhole formats an amount as whole dollars, e.g. "$50,000".
func MoneyWhole(v float64) string {
	return "$" + humanize.FormatFloat("#,###.", v)
}

// Percent formats a value already scaled to percent, e.g. "12.3%".
func Percent(v float64) string {
	return humanize.FormatFloat("#,###.#", v) + "%"
}
