package memory

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML layout accepted by LoadFixture:
//
//	schemas:
//	  acct10001:
//	    products:
//	      - {id: 1, region: us-east-1, instance_type: m5.large}
//	    line_items:
//	      - {usage_start: "2026-03-10", usage_account_id: "111", product_code: AmazonEC2,
//	         resource_id: i-1, unblended_cost: "1.5", cost_entry_product_id: 1}
type Fixture struct {
	Schemas map[string]SchemaFixture `yaml:"schemas"`
}

// SchemaFixture holds the source rows of one tenant schema.
type SchemaFixture struct {
	Products  []ProductRecord  `yaml:"products"`
	LineItems []LineItemRecord `yaml:"line_items"`
}

// ProductRecord mirrors a reporting_awscostentryproduct row. Omitted fields are NULL.
type ProductRecord struct {
	ID            int64   `yaml:"id"`
	Region        *string `yaml:"region"`
	InstanceType  *string `yaml:"instance_type"`
	ProductFamily *string `yaml:"product_family"`
}

// LineItemRecord mirrors a reporting_awscostentrylineitem_daily row.
// Amounts are strings so they are parsed exactly.
type LineItemRecord struct {
	UsageStart       string  `yaml:"usage_start"`
	UsageAccountID   string  `yaml:"usage_account_id"`
	ProductCode      string  `yaml:"product_code"`
	ResourceID       string  `yaml:"resource_id"`
	AvailabilityZone *string `yaml:"availability_zone"`
	UsageAmount      *string `yaml:"usage_amount"`
	UnblendedCost    *string `yaml:"unblended_cost"`
	ProductID        *int64  `yaml:"cost_entry_product_id"`
}

// LoadFixture reads a YAML fixture file into a new Store.
func LoadFixture(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	store := NewStore()
	if err := store.LoadYAML(data); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return store, nil
}

// LoadYAML appends the fixture's rows to the store.
func (s *Store) LoadYAML(data []byte) error {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	for schema, sf := range fx.Schemas {
		products := make([]rollup.Product, 0, len(sf.Products))
		for i, rec := range sf.Products {
			if rec.ID <= 0 {
				return fmt.Errorf("schema %s products[%d]: id must be positive", schema, i)
			}
			products = append(products, rollup.Product{
				ID:            rec.ID,
				Region:        nullString(rec.Region),
				InstanceType:  nullString(rec.InstanceType),
				ProductFamily: nullString(rec.ProductFamily),
			})
		}

		items := make([]rollup.LineItem, 0, len(sf.LineItems))
		for i, rec := range sf.LineItems {
			item, err := rec.lineItem()
			if err != nil {
				return fmt.Errorf("schema %s line_items[%d]: %w", schema, i, err)
			}
			items = append(items, item)
		}

		s.AddProducts(schema, products...)
		s.AddLineItems(schema, items...)
	}
	return nil
}

func (rec LineItemRecord) lineItem() (rollup.LineItem, error) {
	day, err := time.Parse(time.DateOnly, rec.UsageStart)
	if err != nil {
		return rollup.LineItem{}, fmt.Errorf("usage_start: %w", err)
	}
	usage, err := rollup.ParseNullDecimal(nullString(rec.UsageAmount))
	if err != nil {
		return rollup.LineItem{}, fmt.Errorf("usage_amount: %w", err)
	}
	cost, err := rollup.ParseNullDecimal(nullString(rec.UnblendedCost))
	if err != nil {
		return rollup.LineItem{}, fmt.Errorf("unblended_cost: %w", err)
	}
	if !cost.Valid {
		cost = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
	}

	productID := rollup.NoProduct
	if rec.ProductID != nil {
		productID = *rec.ProductID
	}

	return rollup.LineItem{
		UsageDate:        day,
		UsageAccountID:   rec.UsageAccountID,
		ProductCode:      rec.ProductCode,
		ResourceID:       rec.ResourceID,
		AvailabilityZone: nullString(rec.AvailabilityZone),
		UsageAmount:      usage,
		UnblendedCost:    cost.Decimal,
		ProductID:        productID,
	}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
