package summary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aevon-lab/cost-rollup/internal/core/rollup"
	"github.com/aevon-lab/cost-rollup/internal/core/storage/memory"
	storagemocks "github.com/aevon-lab/cost-rollup/internal/mocks/storage"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSchema = "acct10001"

func publishedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	stage, err := store.Stage(context.Background(), testSchema, "run-1", []rollup.Bucket{
		{
			TimeScope:  rollup.ScopeCurrentMonth,
			ReportType: rollup.ReportCosts,
			Key: rollup.GroupKey{
				UsageAccountID:   "A1",
				ProductCode:      "P1",
				Region:           sql.NullString{String: "R1", Valid: true},
				AvailabilityZone: sql.NullString{String: "Z1", Valid: true},
			},
			UnblendedCost: decimal.NewFromInt(15),
			ResourceCount: 2,
		},
		{
			TimeScope:     rollup.ScopeCurrentMonth,
			ReportType:    rollup.ReportStorage,
			Key:           rollup.GroupKey{UsageAccountID: "A1", ProductCode: "AmazonS3"},
			UsageAmount:   decimal.NewNullDecimal(decimal.RequireFromString("40.5")),
			UnblendedCost: decimal.RequireFromString("0.25"),
			ResourceCount: 1,
		},
		{
			TimeScope:     rollup.ScopeLast30Days,
			ReportType:    rollup.ReportCosts,
			Key:           rollup.GroupKey{UsageAccountID: "A1", ProductCode: "P1"},
			UnblendedCost: decimal.NewFromInt(99),
			ResourceCount: 4,
		},
	})
	require.NoError(t, err)
	_, err = stage.Publish(context.Background())
	require.NoError(t, err)
	return store
}

func TestService_QueryFiltersByScope(t *testing.T) {
	svc := NewService(publishedStore(t), []string{testSchema})

	resp, err := svc.Query(context.Background(), QueryRequest{Schema: testSchema, TimeScope: -1})
	require.NoError(t, err)
	require.Equal(t, 2, resp.RowCount)
	require.True(t, decimal.RequireFromString("15.25").Equal(resp.TotalCost))

	costs := resp.Rows[0]
	require.Equal(t, "costs", costs.ReportType)
	require.Nil(t, costs.UsageAmount)
	require.Equal(t, "R1", *costs.Region)

	storageRow := resp.Rows[1]
	require.Nil(t, storageRow.Region)
	require.NotNil(t, storageRow.UsageAmount)
	require.True(t, decimal.RequireFromString("40.5").Equal(*storageRow.UsageAmount))
}

func TestService_QueryValidation(t *testing.T) {
	svc := NewService(memory.NewStore(), []string{testSchema})

	_, err := svc.Query(context.Background(), QueryRequest{Schema: "other"})
	require.ErrorIs(t, err, ErrUnknownSchema)

	_, err = svc.Query(context.Background(), QueryRequest{Schema: testSchema, TimeScope: -7})
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = svc.Query(context.Background(), QueryRequest{Schema: testSchema, ReportType: "network"})
	require.ErrorIs(t, err, ErrInvalidQuery)

	resp, err := svc.Query(context.Background(), QueryRequest{Schema: testSchema})
	require.NoError(t, err)
	require.Empty(t, resp.Rows)
	require.NotNil(t, resp.Rows)
}

func TestService_HandleQuery_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		path           string
		configureStore func(store *storagemocks.SummaryStore)
		expectedStatus int
	}{
		{
			name: "published rows return 200",
			path: "/v1/summary/acct10001?time_scope=-2&report_type=storage",
			configureStore: func(store *storagemocks.SummaryStore) {
				store.EXPECT().Query(mock.Anything, testSchema, rollup.ScopePreviousMonth, rollup.ReportStorage).
					Return([]rollup.Bucket(nil), nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-numeric scope returns 400",
			path:           "/v1/summary/acct10001?time_scope=month",
			configureStore: func(_ *storagemocks.SummaryStore) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown report returns 400",
			path:           "/v1/summary/acct10001?report_type=network",
			configureStore: func(_ *storagemocks.SummaryStore) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unconfigured schema returns 404",
			path:           "/v1/summary/acct99999",
			configureStore: func(_ *storagemocks.SummaryStore) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "store error returns 500",
			path: "/v1/summary/acct10001",
			configureStore: func(store *storagemocks.SummaryStore) {
				store.EXPECT().Query(mock.Anything, testSchema, rollup.TimeScope(0), rollup.ReportType("")).
					Return(nil, errors.New("db failure")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := storagemocks.NewSummaryStore(t)
			tc.configureStore(store)

			r := gin.New()
			NewService(store, []string{testSchema}).RegisterRoutes(r)

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != tc.expectedStatus {
				t.Logf("unexpected response body: %s", resp.Body.String())
			}
			require.Equal(t, tc.expectedStatus, resp.Code)
		})
	}
}

func TestService_HandleQuery_EncodesNulls(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	NewService(publishedStore(t), []string{testSchema}).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/v1/summary/acct10001?time_scope=-30", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	rows := body["rows"].([]any)
	require.Len(t, rows, 1)

	row := rows[0].(map[string]any)
	require.Nil(t, row["region"])
	require.Nil(t, row["usage_amount"])
	require.Equal(t, "99", row["unblended_cost"])
	require.Equal(t, float64(4), row["resource_count"])
}
