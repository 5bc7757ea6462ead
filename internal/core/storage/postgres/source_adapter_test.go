package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var lineItemColumns = []string{
	"usage_start", "usage_account_id", "product_code", "resource_id",
	"availability_zone", "usage_amount", "unblended_cost", "cost_entry_product_id",
}

func TestSourceAdapter_LineItemsOpenRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lineItemsQuery(testSchema))).
		WithArgs(start, nil).
		WillReturnRows(sqlmock.NewRows(lineItemColumns).
			AddRow(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "111111111111", "AmazonEC2", "i-1", "us-east-1a", "24.000000000", "10.000000000", int64(7)).
			AddRow(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), "111111111111", "AmazonS3", nil, nil, nil, nil, nil))
	mock.ExpectRollback()

	snap, err := NewSourceAdapter(db).Snapshot(context.Background(), testSchema)
	require.NoError(t, err)

	items, err := snap.LineItems(context.Background(), start, time.Time{})
	require.NoError(t, err)
	require.NoError(t, snap.Close())
	require.Len(t, items, 2)

	require.Equal(t, "2026-03-10", items[0].UsageDate.Format(time.DateOnly))
	require.Equal(t, "i-1", items[0].ResourceID)
	require.True(t, items[0].UsageAmount.Valid)
	require.True(t, decimal.NewFromInt(10).Equal(items[0].UnblendedCost))
	require.Equal(t, int64(7), items[0].ProductID)

	// NULL cost reads as zero, NULL product id never joins.
	require.Empty(t, items[1].ResourceID)
	require.False(t, items[1].UsageAmount.Valid)
	require.False(t, items[1].AvailabilityZone.Valid)
	require.True(t, items[1].UnblendedCost.IsZero())
	require.Equal(t, rollup.NoProduct, items[1].ProductID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceAdapter_LineItemsBoundedRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lineItemsQuery(testSchema))).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows(lineItemColumns))
	mock.ExpectRollback()

	snap, err := NewSourceAdapter(db).Snapshot(context.Background(), testSchema)
	require.NoError(t, err)

	items, err := snap.LineItems(context.Background(), start, end)
	require.NoError(t, err)
	require.Empty(t, items)
	require.NoError(t, snap.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceAdapter_LineItemsQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lineItemsQuery(testSchema))).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	snap, err := NewSourceAdapter(db).Snapshot(context.Background(), testSchema)
	require.NoError(t, err)

	_, err = snap.LineItems(context.Background(), time.Now().UTC(), time.Time{})
	require.ErrorContains(t, err, "relation does not exist")
	require.NoError(t, snap.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceAdapter_Products(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(productsQuery(testSchema))).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "region", "instance_type", "product_family"}).
			AddRow(int64(7), "us-east-1", "m5.large", "Compute Instance").
			AddRow(int64(9), nil, nil, "Storage"))
	mock.ExpectRollback()

	snap, err := NewSourceAdapter(db).Snapshot(context.Background(), testSchema)
	require.NoError(t, err)

	products, err := snap.Products(context.Background(), []int64{7, 9, 11})
	require.NoError(t, err)
	require.NoError(t, snap.Close())

	require.Len(t, products, 2)
	require.Equal(t, "m5.large", products[7].InstanceType.String)
	require.False(t, products[9].Region.Valid)
	require.Equal(t, "Storage", products[9].ProductFamily.String)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceAdapter_ProductsEmptyIDsSkipsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	snap, err := NewSourceAdapter(db).Snapshot(context.Background(), testSchema)
	require.NoError(t, err)

	products, err := snap.Products(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, products)
	require.NoError(t, snap.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}
