package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	reg := Builtin("main")

	t.Run("all datasets registered", func(t *testing.T) {
		expected := []string{
			CustomerProfile, MonthlySales, ProductPerformance,
			ExecutiveSummary, ChurnScores,
		}
		assert.Equal(t, expected, reg.Names())
	})

	t.Run("catalog rendered into relations", func(t *testing.T) {
		d, ok := reg.Get(MonthlySales)
		require.True(t, ok)
		assert.Equal(t, "main.retail_gold.gold_monthly_sales", d.From)
		assert.NotContains(t, d.From, "{catalog}")
	})

	t.Run("customer profile joins silver and gold", func(t *testing.T) {
		d, ok := reg.Get(CustomerProfile)
		require.True(t, ok)
		assert.Contains(t, d.From, "main.retail_silver.dim_customer")
		assert.Contains(t, d.From, "LEFT JOIN main.retail_gold.gold_customer_rfm")
	})

	t.Run("monthly sales filters", func(t *testing.T) {
		d, ok := reg.Get(MonthlySales)
		require.True(t, ok)

		region, ok := d.Filter("region")
		require.True(t, ok)
		assert.Equal(t, TypeCategory, region.Type)
		assert.Equal(t, RegionAll, region.Wildcard)
		assert.Equal(t, Regions, region.Values)

		start, ok := d.Filter("start_month")
		require.True(t, ok)
		assert.Equal(t, OpGtOrEq, start.Op)

		end, ok := d.Filter("end_month")
		require.True(t, ok)
		assert.Equal(t, OpLtOrEq, end.Op)
	})

	t.Run("product performance sort allow-list", func(t *testing.T) {
		d, ok := reg.Get(ProductPerformance)
		require.True(t, ok)
		assert.Equal(t, []string{"net_revenue", "margin_pct", "return_rate_pct", "orders"}, d.Sortable)
		assert.Equal(t, 20, d.DefaultLimit)
		assert.Equal(t, 50, d.MaxLimit)
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Run("replaces existing name", func(t *testing.T) {
		reg := NewRegistry("main")
		require.NoError(t, reg.Register(&Dataset{
			Name:    "sales",
			From:    "{catalog}.retail_gold.v1",
			Columns: []string{"a"},
		}))
		require.NoError(t, reg.Register(&Dataset{
			Name:    "sales",
			From:    "{catalog}.retail_gold.v2",
			Columns: []string{"a"},
		}))

		d, ok := reg.Get("sales")
		require.True(t, ok)
		assert.Equal(t, "main.retail_gold.v2", d.From)
		assert.Equal(t, []string{"sales"}, reg.Names())
	})

	t.Run("missing name rejected", func(t *testing.T) {
		reg := NewRegistry("main")
		err := reg.Register(&Dataset{From: "t", Columns: []string{"a"}})
		assert.Error(t, err)
	})

	t.Run("missing columns rejected", func(t *testing.T) {
		reg := NewRegistry("main")
		err := reg.Register(&Dataset{Name: "x", From: "t"})
		assert.Error(t, err)
	})

	t.Run("category filter without values rejected", func(t *testing.T) {
		reg := NewRegistry("main")
		err := reg.Register(&Dataset{
			Name:    "x",
			From:    "t",
			Columns: []string{"a"},
			Filters: []Filter{{Name: "f", Column: "c", Type: TypeCategory, Op: OpEq}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "require values")
	})

	t.Run("unknown filter op rejected", func(t *testing.T) {
		reg := NewRegistry("main")
		err := reg.Register(&Dataset{
			Name:    "x",
			From:    "t",
			Columns: []string{"a"},
			Filters: []Filter{{Name: "f", Column: "c", Type: TypeMonth, Op: "like"}},
		})
		assert.Error(t, err)
	})

	t.Run("default limit above max rejected", func(t *testing.T) {
		reg := NewRegistry("main")
		err := reg.Register(&Dataset{
			Name:         "x",
			From:         "t",
			Columns:      []string{"a"},
			DefaultLimit: 100,
			MaxLimit:     50,
		})
		assert.Error(t, err)
	})

	t.Run("caller's definition is not mutated", func(t *testing.T) {
		reg := NewRegistry("main")
		d := &Dataset{Name: "x", From: "{catalog}.s.t", Columns: []string{"a"}}
		require.NoError(t, reg.Register(d))
		assert.Equal(t, "{catalog}.s.t", d.From)
	})
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns builtins", func(t *testing.T) {
		reg, err := Load("", "main")
		require.NoError(t, err)
		assert.Len(t, reg.Names(), 5)
	})

	t.Run("file overrides and extends builtins", func(t *testing.T) {
		content := `
datasets:
  - name: product_performance
    from: "{catalog}.retail_gold.gold_product_performance_v2"
    columns:
      - brand
      - "SUM(num_orders) AS orders"
    sortable: [orders]
    group_by: [brand]
    default_sort: ["orders DESC"]
    default_limit: 10
    max_limit: 25
  - name: nation_sales
    from: "{catalog}.retail_gold.gold_nation_sales"
    columns: [nation_name, "SUM(net_revenue) AS net_revenue"]
    group_by: [nation_name]
    sortable: [net_revenue]
`
		path := filepath.Join(t.TempDir(), "datasets.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		reg, err := Load(path, "dev")
		require.NoError(t, err)

		d, ok := reg.Get(ProductPerformance)
		require.True(t, ok)
		assert.Equal(t, "dev.retail_gold.gold_product_performance_v2", d.From)
		assert.Equal(t, 25, d.MaxLimit)

		added, ok := reg.Get("nation_sales")
		require.True(t, ok)
		assert.Equal(t, "dev.retail_gold.gold_nation_sales", added.From)
		assert.Len(t, reg.Names(), 6)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "main")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading datasets file")
	})

	t.Run("invalid yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("datasets: [not: \"valid"), 0o600))

		_, err := Load(path, "main")
		assert.Error(t, err)
	})

	t.Run("invalid dataset definition errors", func(t *testing.T) {
		content := "datasets:\n  - name: broken\n    columns: [a]\n"
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := Load(path, "main")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registering dataset")
	})
}
