package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
	"github.com/Veraticus/paycapture/internal/testutil"
)

func TestEngine_InboxIntegration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e, clock := newTestEngine(t, nil, nil)
	e.presenter = db.Storage
	ctx := context.Background()

	event, err := e.Handle(ctx, alipay("支付成功 ¥88.00 超市购物"))
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = e.Handle(ctx, alipay("支付成功 ¥88.00 超市购物"))
	require.ErrorIs(t, err, common.ErrDuplicateSuppressed)

	pending, err := db.Storage.ListPrefillRequests(ctx, service.PrefillFilter{Status: model.PrefillPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, event.Summary, pending[0].Summary)
	assert.Equal(t, event.RequestCode, pending[0].RequestCode)

	record, err := db.Storage.ConfirmPrefillRequest(ctx, pending[0].ID, "Groceries", clock.Now())
	require.NoError(t, err)
	assert.Equal(t, model.RecordSourceAuto, record.Source)
	assert.Equal(t, "Alipay", record.PaymentApp)
	assert.Equal(t, "88.00", record.Amount.StringFixed(2))
	assert.Equal(t, "支付成功 ¥88.00 超市购物", record.Note)
}

func TestEngine_MultiPresenterWithInbox(t *testing.T) {
	db := testutil.SetupTestDB(t)
	screen := NewMockPresenter(common.ErrPresentationDenied)
	e, _ := newTestEngine(t, nil, nil)
	e.presenter = MultiPresenter{screen, db.Storage}

	_, err := e.Handle(context.Background(), alipay("付款 ￥30.00"))
	require.ErrorIs(t, err, common.ErrPresentationDenied)

	pending, err := db.Storage.ListPrefillRequests(context.Background(), service.PrefillFilter{})
	require.NoError(t, err)
	assert.Len(t, pending, 1, "the inbox still receives the capture when the screen is denied")
}
