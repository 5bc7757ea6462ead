package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Table names follow the reporting schema the billing ingestion writes to.
const (
	tableLineItemDaily = "reporting_awscostentrylineitem_daily"
	tableProduct       = "reporting_awscostentryproduct"
	tableSummary       = "reporting_awscostentrylineitem_aggregates"

	stagingTablePrefix = "rollup_staging_"
)

// summaryColumns is the published RollupBucket schema, in COPY/INSERT order.
var summaryColumns = []string{
	"time_scope_value",
	"report_type",
	"usage_account_id",
	"product_code",
	"region",
	"availability_zone",
	"usage_amount",
	"unblended_cost",
	"resource_count",
}

const (
	// queryLineItemsTmpl reads facts in [$1, $2). A NULL $2 leaves the range open.
	queryLineItemsTmpl = `
		SELECT
			usage_start, usage_account_id, product_code, resource_id,
			availability_zone, usage_amount, unblended_cost, cost_entry_product_id
		FROM %s
		WHERE usage_start >= $1::date
		  AND ($2::date IS NULL OR usage_start < $2::date)
	`

	queryProductsTmpl = `
		SELECT id, region, instance_type, product_family
		FROM %s
		WHERE id = ANY($1)
	`

	// queryAdvisoryXactLock serializes publishers of one summary table until commit.
	queryAdvisoryXactLock = `SELECT pg_advisory_xact_lock(hashtext($1))`

	queryTryAdvisoryLock = `SELECT pg_try_advisory_lock(hashtext($1))`

	queryAdvisoryUnlock = `SELECT pg_advisory_unlock(hashtext($1))`

	createTempStagingTmpl = `
		CREATE TEMP TABLE %s (
			time_scope_value  INTEGER       NOT NULL,
			report_type       VARCHAR(50)   NOT NULL,
			usage_account_id  VARCHAR(50)   NOT NULL,
			product_code      VARCHAR(50)   NOT NULL,
			region            VARCHAR(50),
			availability_zone VARCHAR(50),
			usage_amount      NUMERIC(24,9),
			unblended_cost    NUMERIC(24,9) NOT NULL,
			resource_count    INTEGER       NOT NULL
		) ON COMMIT DROP
	`

	createStagingTmpl = `
		CREATE UNLOGGED TABLE %s (
			time_scope_value  INTEGER       NOT NULL,
			report_type       VARCHAR(50)   NOT NULL,
			usage_account_id  VARCHAR(50)   NOT NULL,
			product_code      VARCHAR(50)   NOT NULL,
			region            VARCHAR(50),
			availability_zone VARCHAR(50),
			usage_amount      NUMERIC(24,9),
			unblended_cost    NUMERIC(24,9) NOT NULL,
			resource_count    INTEGER       NOT NULL
		)
	`

	dropTableTmpl = `DROP TABLE IF EXISTS %s`

	deleteSummaryTmpl = `DELETE FROM %s`

	publishSummaryTmpl = `INSERT INTO %s (%s) SELECT %s FROM %s`

	querySummaryTmpl = `
		SELECT
			time_scope_value, report_type, usage_account_id, product_code,
			region, availability_zone, usage_amount, unblended_cost, resource_count
		FROM %s
		WHERE ($1::integer = 0 OR time_scope_value = $1::integer)
		  AND ($2::text = '' OR report_type = $2::text)
		ORDER BY time_scope_value, report_type, usage_account_id, product_code
	`

	queryTablesExist = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_name = ANY($2)
	`
)

// qualify returns a quoted schema-qualified identifier.
func qualify(schema, table string) string {
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}

// stagingTableName derives the scratch table for one run.
// Postgres truncates identifiers at 63 bytes, so the uuid is kept compact.
func stagingTableName(runID string) string {
	return stagingTablePrefix + strings.ReplaceAll(runID, "-", "")
}

func lineItemsQuery(schema string) string {
	return fmt.Sprintf(queryLineItemsTmpl, qualify(schema, tableLineItemDaily))
}

func productsQuery(schema string) string {
	return fmt.Sprintf(queryProductsTmpl, qualify(schema, tableProduct))
}

func summaryQuery(schema string) string {
	return fmt.Sprintf(querySummaryTmpl, qualify(schema, tableSummary))
}

func deleteSummaryQuery(schema string) string {
	return fmt.Sprintf(deleteSummaryTmpl, qualify(schema, tableSummary))
}

func publishSummaryQuery(schema, stagingIdent string) string {
	cols := strings.Join(summaryColumns, ", ")
	return fmt.Sprintf(publishSummaryTmpl, qualify(schema, tableSummary), cols, cols, stagingIdent)
}

// summaryLockKey identifies one summary table for advisory locking.
func summaryLockKey(schema string) string {
	return schema + "." + tableSummary
}
