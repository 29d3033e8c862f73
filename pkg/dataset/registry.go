package dataset

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Logical dataset names registered by Builtin.
const (
	CustomerProfile    = "customer_profile"
	MonthlySales       = "monthly_sales"
	ProductPerformance = "product_performance"
	ExecutiveSummary   = "executive_summary"
	ChurnScores        = "churn_scores"
)

// Regions enumerates the region filter members, matching the warehouse's
// region dimension.
var Regions = []string{"AMERICA", "EUROPE", "ASIA", "AFRICA", "MIDDLE EAST"}

// RegionAll is the region category wildcard meaning "all regions".
const RegionAll = "ALL"

// catalogToken is the placeholder in From templates replaced with the
// configured catalog name at registration time.
const catalogToken = "{catalog}"

// Registry holds the allow-listed datasets, keyed by logical name.
// It is populated at startup and read-only afterwards; lookups are safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	catalog  string
	datasets map[string]*Dataset
	names    []string
}

// NewRegistry creates an empty registry with the given catalog name.
func NewRegistry(catalog string) *Registry {
	return &Registry{
		catalog:  catalog,
		datasets: make(map[string]*Dataset),
	}
}

// Catalog returns the catalog name rendered into dataset relations.
func (r *Registry) Catalog() string {
	return r.catalog
}

// Register validates a dataset definition and adds it to the registry.
// Re-registering a name replaces the earlier definition, which is how a
// datasets file overrides a builtin.
func (r *Registry) Register(d *Dataset) error {
	if err := d.validate(); err != nil {
		return err
	}

	ds := *d
	ds.From = strings.ReplaceAll(ds.From, catalogToken, r.catalog)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.datasets[ds.Name]; !exists {
		r.names = append(r.names, ds.Name)
	}
	r.datasets[ds.Name] = &ds
	return nil
}

// Get retrieves a dataset by logical name.
func (r *Registry) Get(name string) (*Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.datasets[name]
	return d, ok
}

// Names returns the logical dataset names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// All returns the registered datasets in registration order.
func (r *Registry) All() []*Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	datasets := make([]*Dataset, 0, len(r.names))
	for _, name := range r.names {
		datasets = append(datasets, r.datasets[name])
	}
	return datasets
}

// Builtin returns a registry populated with the retail lakehouse datasets.
// The definitions are static; Register cannot fail on them.
func Builtin(catalog string) *Registry {
	r := NewRegistry(catalog)
	for _, d := range builtinDatasets() {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("registering builtin dataset: %v", err))
		}
	}
	return r
}

// registryFile is the YAML shape of a datasets override file.
type registryFile struct {
	Datasets []*Dataset `yaml:"datasets"`
}

// Load returns the builtin registry with overrides from the given YAML file
// applied. An empty path returns the builtins unchanged.
func Load(path, catalog string) (*Registry, error) {
	reg := Builtin(catalog)
	if path == "" {
		return reg, nil
	}

	// #nosec G304 -- path is from configuration, controlled by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading datasets file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing datasets file: %w", err)
	}

	for _, d := range file.Datasets {
		if err := reg.Register(d); err != nil {
			return nil, fmt.Errorf("registering dataset: %w", err)
		}
	}
	return reg, nil
}

// builtinDatasets defines the Gold and Silver layer datasets served by the
// dashboard. Aggregate expressions mirror the warehouse's pre-aggregated
// table shapes.
func builtinDatasets() []*Dataset {
	return []*Dataset{
		{
			Name: CustomerProfile,
			From: catalogToken + ".retail_silver.dim_customer c" +
				" LEFT JOIN " + catalogToken + ".retail_gold.gold_customer_rfm r" +
				" ON c.customer_key = r.customer_key",
			Columns: []string{
				"c.customer_key",
				"c.customer_name",
				"c.market_segment",
				"c.nation_name",
				"c.region_name",
				"c.balance_tier",
				"r.rfm_segment",
				"r.rfm_score",
				"r.r_score",
				"r.f_score",
				"r.m_score",
				"ROUND(r.monetary, 2) AS lifetime_value",
				"r.frequency AS total_orders",
				"r.recency_days",
				"ROUND(r.avg_order_value, 2) AS avg_order_value",
			},
			Filters: []Filter{
				{Name: "customer_id", Column: "c.customer_key", Type: TypeIntegerID, Op: OpEq},
			},
			DefaultLimit: 1,
			MaxLimit:     1,
		},
		{
			Name: MonthlySales,
			From: catalogToken + ".retail_gold.gold_monthly_sales",
			Columns: []string{
				"year_month",
				"region",
				"ROUND(SUM(net_revenue), 0) AS net_revenue",
				"SUM(num_orders) AS orders",
				"ROUND(AVG(profit_margin_pct), 1) AS margin_pct",
			},
			Filters: []Filter{
				{Name: "region", Column: "region", Type: TypeCategory, Op: OpEq, Values: Regions, Wildcard: RegionAll},
				{Name: "start_month", Column: "year_month", Type: TypeMonth, Op: OpGtOrEq},
				{Name: "end_month", Column: "year_month", Type: TypeMonth, Op: OpLtOrEq},
			},
			Sortable:     []string{"year_month", "region", "net_revenue", "orders", "margin_pct"},
			GroupBy:      []string{"year_month", "region"},
			DefaultSort:  []string{"year_month ASC", "region ASC"},
			DefaultLimit: 1000,
			MaxLimit:     1000,
		},
		{
			Name: ProductPerformance,
			From: catalogToken + ".retail_gold.gold_product_performance",
			Columns: []string{
				"brand",
				"price_band",
				"ROUND(SUM(net_revenue), 0) AS net_revenue",
				"ROUND(AVG(profit_margin_pct), 1) AS margin_pct",
				"ROUND(AVG(return_rate_pct), 1) AS return_rate_pct",
				"SUM(num_orders) AS orders",
			},
			Sortable:     []string{"net_revenue", "margin_pct", "return_rate_pct", "orders"},
			GroupBy:      []string{"brand", "price_band"},
			DefaultSort:  []string{"net_revenue DESC"},
			DefaultLimit: 20,
			MaxLimit:     50,
		},
		{
			Name: ExecutiveSummary,
			From: catalogToken + ".retail_gold.gold_executive_summary",
			Columns: []string{
				"year_quarter",
				"total_orders",
				"active_customers",
				"ROUND(gross_order_value, 0) AS gross_order_value",
				"ROUND(avg_order_value, 0) AS avg_order_value",
				"ROUND(revenue_per_customer, 0) AS rev_per_customer",
				"qoq_revenue_growth_pct",
			},
			Sortable:     []string{"year_quarter"},
			DefaultSort:  []string{"year_quarter ASC"},
			DefaultLimit: 100,
			MaxLimit:     1000,
		},
		{
			Name: ChurnScores,
			From: catalogToken + ".retail_gold.gold_churn_scores",
			Columns: []string{
				"churn_probability",
				"risk_tier",
			},
			Filters: []Filter{
				{Name: "customer_id", Column: "customer_key", Type: TypeIntegerID, Op: OpEq},
			},
			DefaultLimit: 1,
			MaxLimit:     1,
		},
	}
}
