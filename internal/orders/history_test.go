package orders

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront-go/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/types"
)

type stubOrderAPI struct {
	orders   []types.Order
	listErr  error
	getCalls atomic.Int64
}

func (s *stubOrderAPI) ListOrders(context.Context) ([]types.Order, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]types.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *stubOrderAPI) GetOrder(_ context.Context, orderNumber string) (*types.Order, error) {
	s.getCalls.Add(1)
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return &order, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testOrder(number string) types.Order {
	return types.Order{
		OrderNumber:   number,
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
	}
}

func TestRefreshPopulatesListing(t *testing.T) {
	t.Parallel()

	api := &stubOrderAPI{orders: []types.Order{testOrder("SO-2"), testOrder("SO-1")}}
	history, err := NewHistory(api, testLogger())
	require.NoError(t, err)

	orders, err := history.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "SO-2", orders[0].OrderNumber)
	assert.Equal(t, "SO-1", orders[1].OrderNumber)
}

func TestGetServesFromCacheAfterRefresh(t *testing.T) {
	t.Parallel()

	api := &stubOrderAPI{orders: []types.Order{testOrder("SO-1")}}
	history, err := NewHistory(api, testLogger())
	require.NoError(t, err)
	_, err = history.Refresh(context.Background())
	require.NoError(t, err)

	order, err := history.Get(context.Background(), "SO-1")
	require.NoError(t, err)
	assert.Equal(t, "SO-1", order.OrderNumber)
	assert.Equal(t, int64(0), api.getCalls.Load())
}

func TestGetFetchesUncachedOrderOnce(t *testing.T) {
	t.Parallel()

	api := &stubOrderAPI{orders: []types.Order{testOrder("SO-1")}}
	history, err := NewHistory(api, testLogger())
	require.NoError(t, err)

	_, err = history.Get(context.Background(), "SO-1")
	require.NoError(t, err)
	_, err = history.Get(context.Background(), "SO-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), api.getCalls.Load())
}

func TestGetValidatesOrderNumber(t *testing.T) {
	t.Parallel()

	history, err := NewHistory(&stubOrderAPI{}, testLogger())
	require.NoError(t, err)

	_, err = history.Get(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestRecordPrependsNewOrder(t *testing.T) {
	t.Parallel()

	api := &stubOrderAPI{orders: []types.Order{testOrder("SO-1")}}
	history, err := NewHistory(api, testLogger())
	require.NoError(t, err)
	_, err = history.Refresh(context.Background())
	require.NoError(t, err)

	history.Record(testOrder("SO-2"))

	orders := history.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, "SO-2", orders[0].OrderNumber)
}

func TestClearEmptiesHistory(t *testing.T) {
	t.Parallel()

	api := &stubOrderAPI{orders: []types.Order{testOrder("SO-1")}}
	history, err := NewHistory(api, testLogger())
	require.NoError(t, err)
	_, err = history.Refresh(context.Background())
	require.NoError(t, err)

	history.Clear()
	assert.Empty(t, history.Orders())
	_, err = history.Get(context.Background(), "SO-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), api.getCalls.Load())
}
