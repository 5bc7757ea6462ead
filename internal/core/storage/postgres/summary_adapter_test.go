package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/aevon-lab/cost-rollup/internal/core/storage"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testSchema = "acct10001"
	testRunID  = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

func testBuckets() []rollup.Bucket {
	return []rollup.Bucket{
		{
			TimeScope:  rollup.ScopeLast30Days,
			ReportType: rollup.ReportCosts,
			Key: rollup.GroupKey{
				UsageAccountID:   "111111111111",
				ProductCode:      "AmazonEC2",
				Region:           sql.NullString{String: "us-east-1", Valid: true},
				AvailabilityZone: sql.NullString{String: "us-east-1a", Valid: true},
			},
			UnblendedCost: decimal.RequireFromString("12.5"),
			ResourceCount: 2,
		},
		{
			TimeScope:  rollup.ScopeCurrentMonth,
			ReportType: rollup.ReportStorage,
			Key: rollup.GroupKey{
				UsageAccountID: "111111111111",
				ProductCode:    "AmazonS3",
			},
			UsageAmount:   decimal.NewNullDecimal(decimal.RequireFromString("40")),
			UnblendedCost: decimal.RequireFromString("0.92"),
			ResourceCount: 1,
		},
	}
}

func expectCopy(mock sqlmock.Sqlmock, copyStmt string, buckets []rollup.Bucket) {
	prep := mock.ExpectPrepare(regexp.QuoteMeta(copyStmt))
	for _, b := range buckets {
		prep.ExpectExec().WithArgs(
			int(b.TimeScope),
			string(b.ReportType),
			b.Key.UsageAccountID,
			b.Key.ProductCode,
			b.Key.Region,
			b.Key.AvailabilityZone,
			b.UsageAmount,
			b.UnblendedCost,
			b.ResourceCount,
		).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestSummaryAdapter_AtomicStageAndPublish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishAtomic)
	buckets := testBuckets()
	staging := stagingTableName(testRunID)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).
		WithArgs(testSchema + "." + tableSummary).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(createTempStagingTmpl, pq.QuoteIdentifier(staging)))).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectCopy(mock, pq.CopyIn(staging, summaryColumns...), buckets)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "acct10001"."reporting_awscostentrylineitem_aggregates"`)).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta(publishSummaryQuery(testSchema, pq.QuoteIdentifier(staging)))).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	stage, err := adapter.Stage(context.Background(), testSchema, testRunID, buckets)
	require.NoError(t, err)

	inserted, err := stage.Publish(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_AtomicInsertFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, "")
	staging := stagingTableName(testRunID)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(createTempStagingTmpl, pq.QuoteIdentifier(staging)))).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectCopy(mock, pq.CopyIn(staging, summaryColumns...), nil)
	mock.ExpectExec(regexp.QuoteMeta(deleteSummaryQuery(testSchema))).WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta(publishSummaryQuery(testSchema, pq.QuoteIdentifier(staging)))).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	stage, err := adapter.Stage(context.Background(), testSchema, testRunID, nil)
	require.NoError(t, err)

	_, err = stage.Publish(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrPartialPublish)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_AtomicCopyFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishAtomic)
	staging := stagingTableName(testRunID)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(createTempStagingTmpl, pq.QuoteIdentifier(staging)))).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(regexp.QuoteMeta(pq.CopyIn(staging, summaryColumns...))).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	_, err = adapter.Stage(context.Background(), testSchema, testRunID, testBuckets())
	require.ErrorContains(t, err, "prepare copy")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_AtomicDiscard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishAtomic)
	staging := stagingTableName(testRunID)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryXactLock)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(createTempStagingTmpl, pq.QuoteIdentifier(staging)))).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectCopy(mock, pq.CopyIn(staging, summaryColumns...), nil)
	mock.ExpectRollback()

	stage, err := adapter.Stage(context.Background(), testSchema, testRunID, nil)
	require.NoError(t, err)
	require.NoError(t, stage.Discard(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func expectSplitStage(mock sqlmock.Sqlmock, buckets []rollup.Bucket) string {
	ident := qualify(testSchema, stagingTableName(testRunID))

	mock.ExpectQuery(regexp.QuoteMeta(queryTryAdvisoryLock)).
		WithArgs(summaryLockKey(testSchema)).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(createStagingTmpl, ident))).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	expectCopy(mock, pq.CopyInSchema(testSchema, stagingTableName(testRunID), summaryColumns...), buckets)
	mock.ExpectCommit()
	return ident
}

func expectSplitRelease(mock sqlmock.Sqlmock, ident string) {
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf(dropTableTmpl, ident))).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(queryAdvisoryUnlock)).
		WithArgs(summaryLockKey(testSchema)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestSummaryAdapter_SplitStageAndPublish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishSplit)
	buckets := testBuckets()

	ident := expectSplitStage(mock, buckets)
	mock.ExpectExec(regexp.QuoteMeta(deleteSummaryQuery(testSchema))).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta(publishSummaryQuery(testSchema, ident))).WillReturnResult(sqlmock.NewResult(0, 2))
	expectSplitRelease(mock, ident)

	stage, err := adapter.Stage(context.Background(), testSchema, testRunID, buckets)
	require.NoError(t, err)

	inserted, err := stage.Publish(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_SplitInsertFailureIsPartialPublish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishSplit)

	ident := expectSplitStage(mock, nil)
	mock.ExpectExec(regexp.QuoteMeta(deleteSummaryQuery(testSchema))).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta(publishSummaryQuery(testSchema, ident))).WillReturnError(errors.New("connection reset"))
	expectSplitRelease(mock, ident)

	stage, err := adapter.Stage(context.Background(), testSchema, testRunID, nil)
	require.NoError(t, err)

	_, err = stage.Publish(context.Background())
	require.ErrorIs(t, err, storage.ErrPartialPublish)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_SplitDeleteFailureIsNotPartial(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishSplit)

	ident := expectSplitStage(mock, nil)
	mock.ExpectExec(regexp.QuoteMeta(deleteSummaryQuery(testSchema))).WillReturnError(errors.New("lock timeout"))
	expectSplitRelease(mock, ident)

	stage, err := adapter.Stage(context.Background(), testSchema, testRunID, nil)
	require.NoError(t, err)

	_, err = stage.Publish(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, storage.ErrPartialPublish)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_SplitLockHeldElsewhere(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishSplit)

	mock.ExpectQuery(regexp.QuoteMeta(queryTryAdvisoryLock)).
		WithArgs(summaryLockKey(testSchema)).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	_, err = adapter.Stage(context.Background(), testSchema, testRunID, testBuckets())
	require.ErrorIs(t, err, storage.ErrRunInProgress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_SplitDiscardDropsStaging(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishSplit)

	ident := expectSplitStage(mock, nil)
	expectSplitRelease(mock, ident)

	stage, err := adapter.Stage(context.Background(), testSchema, testRunID, nil)
	require.NoError(t, err)
	require.NoError(t, stage.Discard(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryAdapter_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := NewSummaryAdapter(db, PublishAtomic)

	rows := sqlmock.NewRows(summaryColumns).
		AddRow(-30, "costs", "111111111111", "AmazonEC2", "us-east-1", nil, nil, "12.500000000", 2).
		AddRow(-30, "instance_type", "111111111111", "AmazonEC2", "us-east-1", "us-east-1a", "24.000000000", "10.000000000", 1)

	mock.ExpectQuery(regexp.QuoteMeta(summaryQuery(testSchema))).
		WithArgs(-30, "").
		WillReturnRows(rows)

	buckets, err := adapter.Query(context.Background(), testSchema, rollup.ScopeLast30Days, "")
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	require.Equal(t, rollup.ReportCosts, buckets[0].ReportType)
	require.False(t, buckets[0].UsageAmount.Valid)
	require.False(t, buckets[0].Key.AvailabilityZone.Valid)
	require.True(t, decimal.RequireFromString("12.5").Equal(buckets[0].UnblendedCost))
	require.Equal(t, int64(2), buckets[0].ResourceCount)

	require.Equal(t, rollup.ReportInstanceType, buckets[1].ReportType)
	require.True(t, buckets[1].UsageAmount.Valid)
	require.True(t, decimal.NewFromInt(24).Equal(buckets[1].UsageAmount.Decimal))
	require.Equal(t, "us-east-1a", buckets[1].Key.AvailabilityZone.String)
	require.NoError(t, mock.ExpectationsWereMet())
}
