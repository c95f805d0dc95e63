package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
)

var baseTime = time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

func testPrefill(amount string, at time.Time) model.PrefillRequest {
	return model.PrefillRequest{
		CreatedAt:   at,
		Amount:      decimal.RequireFromString(amount),
		SourceID:    "com.eg.android.AlipayGphone",
		SourceLabel: "Alipay",
		Source:      model.CaptureSourceAuto,
		Note:        "支付成功 ¥" + amount,
		Title:       "Payment detected",
		Summary:     "Alipay ￥" + amount + ", tap to record",
		Detail:      "Alipay ￥" + amount + ", tap to record\n支付成功 ¥" + amount,
		RequestCode: 1234,
	}
}

func TestSQLiteStorage_SaveAndGetPrefillRequest(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	req := testPrefill("88.00", baseTime)
	require.NoError(t, store.SavePrefillRequest(ctx, &req))

	assert.NotEmpty(t, req.ID, "ID is generated")
	assert.Equal(t, model.PrefillPending, req.Status)

	got, err := store.GetPrefillRequest(ctx, req.ID)
	require.NoError(t, err)

	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, "88.00", got.Amount.StringFixed(2))
	assert.Equal(t, req.SourceID, got.SourceID)
	assert.Equal(t, req.SourceLabel, got.SourceLabel)
	assert.Equal(t, req.Note, got.Note)
	assert.Equal(t, req.Summary, got.Summary)
	assert.Equal(t, req.Detail, got.Detail)
	assert.Equal(t, req.RequestCode, got.RequestCode)
	assert.Equal(t, model.PrefillPending, got.Status)
	assert.True(t, baseTime.Equal(got.CreatedAt))
}

func TestSQLiteStorage_SavePrefillRequestValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		wantErr error
		mutate  func(*model.PrefillRequest)
		name    string
	}{
		{name: "missing source", mutate: func(r *model.PrefillRequest) { r.SourceID = "" }, wantErr: ErrInvalidPrefill},
		{name: "zero amount", mutate: func(r *model.PrefillRequest) { r.Amount = decimal.Zero }, wantErr: ErrInvalidPrefill},
		{name: "missing time", mutate: func(r *model.PrefillRequest) { r.CreatedAt = time.Time{} }, wantErr: ErrInvalidPrefill},
		{name: "bad status", mutate: func(r *model.PrefillRequest) { r.Status = "archived" }, wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testPrefill("5.00", baseTime)
			tt.mutate(&req)
			require.ErrorIs(t, store.SavePrefillRequest(ctx, &req), tt.wantErr)
		})
	}

	require.ErrorIs(t, store.SavePrefillRequest(ctx, nil), ErrNilParameter)
}

func TestSQLiteStorage_SavePrefillRequestDuplicateID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	req := testPrefill("5.00", baseTime)
	req.ID = "fixed-id"
	require.NoError(t, store.SavePrefillRequest(ctx, &req))

	again := testPrefill("6.00", baseTime)
	again.ID = "fixed-id"
	require.ErrorIs(t, store.SavePrefillRequest(ctx, &again), common.ErrDuplicateEntry)
}

func TestSQLiteStorage_GetPrefillRequestNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetPrefillRequest(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetPrefillRequest(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyString)
}

func TestSQLiteStorage_ListPrefillRequests(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var ids []string
	for i, amount := range []string{"1.00", "2.00", "3.00"} {
		req := testPrefill(amount, baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.SavePrefillRequest(ctx, &req))
		ids = append(ids, req.ID)
	}
	require.NoError(t, store.DismissPrefillRequest(ctx, ids[0]))

	tests := []struct {
		name   string
		filter service.PrefillFilter
		want   []string
	}{
		{name: "all newest first", filter: service.PrefillFilter{}, want: []string{"3.00", "2.00", "1.00"}},
		{name: "pending", filter: service.PrefillFilter{Status: model.PrefillPending}, want: []string{"3.00", "2.00"}},
		{name: "dismissed", filter: service.PrefillFilter{Status: model.PrefillDismissed}, want: []string{"1.00"}},
		{name: "confirmed", filter: service.PrefillFilter{Status: model.PrefillConfirmed}, want: nil},
		{name: "limit", filter: service.PrefillFilter{Limit: 1}, want: []string{"3.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests, err := store.ListPrefillRequests(ctx, tt.filter)
			require.NoError(t, err)

			var got []string
			for _, r := range requests {
				got = append(got, r.Amount.StringFixed(2))
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := store.ListPrefillRequests(ctx, service.PrefillFilter{Status: "bogus"})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSQLiteStorage_ConfirmPrefillRequest(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	req := testPrefill("23.50", baseTime)
	require.NoError(t, store.SavePrefillRequest(ctx, &req))

	confirmedAt := baseTime.Add(5 * time.Minute)
	record, err := store.ConfirmPrefillRequest(ctx, req.ID, "Groceries", confirmedAt)
	require.NoError(t, err)

	assert.NotZero(t, record.ID)
	assert.Equal(t, "23.50", record.Amount.StringFixed(2))
	assert.Equal(t, "Groceries", record.Category)
	assert.Equal(t, req.Note, record.Note)
	assert.Equal(t, model.RecordSourceAuto, record.Source)
	assert.Equal(t, "Alipay", record.PaymentApp)
	assert.Equal(t, req.ID, record.PrefillID)

	got, err := store.GetPrefillRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PrefillConfirmed, got.Status)

	records, err := store.GetRecords(ctx, service.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
	assert.True(t, confirmedAt.Equal(records[0].Timestamp))

	_, err = store.ConfirmPrefillRequest(ctx, req.ID, "Groceries", confirmedAt)
	require.ErrorIs(t, err, ErrPrefillNotPending)
	require.ErrorIs(t, store.DismissPrefillRequest(ctx, req.ID), ErrPrefillNotPending)
}

func TestSQLiteStorage_ConfirmPrefillRequestDefaultCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	req := testPrefill("9.90", baseTime)
	require.NoError(t, store.SavePrefillRequest(ctx, &req))

	record, err := store.ConfirmPrefillRequest(ctx, req.ID, " ", baseTime)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategory, record.Category)
}

func TestSQLiteStorage_ConfirmPrefillRequestNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.ConfirmPrefillRequest(context.Background(), "missing", "Food", baseTime)
	require.ErrorIs(t, err, common.ErrNotFound)

	records, err := store.GetRecords(context.Background(), service.RecordFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStorage_DismissPrefillRequest(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	req := testPrefill("4.00", baseTime)
	require.NoError(t, store.SavePrefillRequest(ctx, &req))
	require.NoError(t, store.DismissPrefillRequest(ctx, req.ID))

	got, err := store.GetPrefillRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PrefillDismissed, got.Status)

	_, err = store.ConfirmPrefillRequest(ctx, req.ID, "Food", baseTime)
	require.ErrorIs(t, err, ErrPrefillNotPending)

	require.ErrorIs(t, store.DismissPrefillRequest(ctx, "missing"), common.ErrNotFound)
}

func TestSQLiteStorage_Present(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var presenter service.Presenter = store
	require.NoError(t, presenter.Present(ctx, testPrefill("12.00", baseTime)))

	pending, err := store.ListPrefillRequests(ctx, service.PrefillFilter{Status: model.PrefillPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "12.00", pending[0].Amount.StringFixed(2))
}

func TestSQLiteStorage_ConcurrentPresent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.Present(ctx, testPrefill(decimal.NewFromInt(int64(i+1)).StringFixed(2), baseTime))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	all, err := store.ListPrefillRequests(ctx, service.PrefillFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))

	plain := errors.New("plain")
	assert.Equal(t, plain, classifyError(plain))
	assert.False(t, common.IsRetryable(classifyError(plain)))
}
