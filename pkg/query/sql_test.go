package query

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anagilla/retail-lakehouse-demo/pkg/dataset"
)

func TestDescriptorSQL_Filtered(t *testing.T) {
	b := testBuilder(t)

	desc, err := b.Build(dataset.MonthlySales, FilterSet{
		"region":      "ASIA",
		"start_month": "1995-01",
		"end_month":   "1995-03",
	}, SortSpec{}, 0)
	require.NoError(t, err)

	sqlText, args, err := desc.SQL(sq.Question)
	require.NoError(t, err)

	assert.Contains(t, sqlText, "FROM main.retail_gold.gold_monthly_sales")
	assert.Contains(t, sqlText, "WHERE region = ? AND year_month >= ? AND year_month <= ?")
	assert.Contains(t, sqlText, "GROUP BY year_month, region")
	assert.Contains(t, sqlText, "ORDER BY year_month ASC, region ASC")
	assert.Contains(t, sqlText, "LIMIT 1000")
	assert.Equal(t, []any{"ASIA", "1995-01", "1995-03"}, args)
}

func TestDescriptorSQL_DollarPlaceholders(t *testing.T) {
	b := testBuilder(t)

	desc, err := b.Build(dataset.MonthlySales, FilterSet{
		"region":      "EUROPE",
		"start_month": "1996-06",
	}, SortSpec{}, 0)
	require.NoError(t, err)

	sqlText, args, err := desc.SQL(sq.Dollar)
	require.NoError(t, err)

	assert.Contains(t, sqlText, "region = $1")
	assert.Contains(t, sqlText, "year_month >= $2")
	assert.Equal(t, []any{"EUROPE", "1996-06"}, args)
}

func TestDescriptorSQL_Unfiltered(t *testing.T) {
	b := testBuilder(t)

	desc, err := b.Build(dataset.ExecutiveSummary, nil, SortSpec{}, 0)
	require.NoError(t, err)

	sqlText, args, err := desc.SQL(sq.Question)
	require.NoError(t, err)

	assert.NotContains(t, sqlText, "WHERE")
	assert.Contains(t, sqlText, "FROM main.retail_gold.gold_executive_summary")
	assert.Contains(t, sqlText, "ORDER BY year_quarter ASC")
	assert.Contains(t, sqlText, "LIMIT 100")
	assert.Empty(t, args)
}

func TestDescriptorSQL_CustomerJoin(t *testing.T) {
	b := testBuilder(t)

	desc, err := b.Build(dataset.CustomerProfile, FilterSet{"customer_id": "42"}, SortSpec{}, 1)
	require.NoError(t, err)

	sqlText, args, err := desc.SQL(sq.Question)
	require.NoError(t, err)

	assert.Contains(t, sqlText, "LEFT JOIN main.retail_gold.gold_customer_rfm r ON c.customer_key = r.customer_key")
	assert.Contains(t, sqlText, "c.customer_key = ?")
	assert.Contains(t, sqlText, "ROUND(r.monetary, 2) AS lifetime_value")
	assert.Contains(t, sqlText, "LIMIT 1")
	assert.NotContains(t, sqlText, "ORDER BY")
	assert.Equal(t, []any{int64(42)}, args)
}

func TestDescriptorSQL_TopProducts(t *testing.T) {
	b := testBuilder(t)

	desc, err := b.Build(dataset.ProductPerformance, nil, SortSpec{Column: "net_revenue", Descending: true}, 5)
	require.NoError(t, err)

	sqlText, args, err := desc.SQL(sq.Question)
	require.NoError(t, err)

	assert.Contains(t, sqlText, "GROUP BY brand, price_band")
	assert.Contains(t, sqlText, "ORDER BY net_revenue DESC")
	assert.Contains(t, sqlText, "LIMIT 5")
	assert.Empty(t, args)
}
