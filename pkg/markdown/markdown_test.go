package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
)

func TestTable(t *testing.T) {
	t.Run("renders header separator and rows", func(t *testing.T) {
		rs := query.NewResultSet([]string{"year_month", "net_revenue"})
		rs.Rows = append(rs.Rows,
			[]any{"1995-01", 30000.5},
			[]any{"1995-02", int64(20000)},
		)

		out := Table(rs)
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 4)

		assert.True(t, strings.HasPrefix(lines[0], "|"))
		assert.Contains(t, lines[0], "year_month")
		assert.Contains(t, lines[0], "net_revenue")
		assert.Contains(t, lines[1], "|-")
		assert.Contains(t, lines[2], "1995-01")
		assert.Contains(t, lines[2], "30000.5")
		assert.Contains(t, lines[3], "20000")
	})

	t.Run("null cells render blank", func(t *testing.T) {
		rs := query.NewResultSet([]string{"region", "margin_pct"})
		rs.Rows = append(rs.Rows, []any{"ASIA", nil})

		out := Table(rs)
		assert.Contains(t, out, "ASIA")
		assert.NotContains(t, out, "<nil>")
	})

	t.Run("empty result", func(t *testing.T) {
		assert.Equal(t, emptyTable, Table(query.NewResultSet([]string{"a"})))
		assert.Equal(t, emptyTable, Table(nil))
	})
}

func TestCell(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "EUROPE", "EUROPE"},
		{"int64", int64(42), "42"},
		{"float64 fractional", 1234.5, "1234.5"},
		{"float64 whole", 50000.0, "50000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Cell(tc.in))
		})
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", Money(1234.5))
	assert.Equal(t, "$0.99", Money(0.99))
	assert.Equal(t, "$1,000,000.00", Money(1000000))
}

func TestMoneyWhole(t *testing.T) {
	assert.Equal(t, "$50,000", MoneyWhole(50000))
	assert.Equal(t, "$1,235", MoneyWhole(1234.5))
	assert.Equal(t, "$0", MoneyWhole(0))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.3%", Percent(12.3))
	assert.Equal(t, "-3.2%", Percent(-3.2))
	assert.Equal(t, "100.0%", Percent(100))
}
