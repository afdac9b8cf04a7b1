package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	side, err := ParseSide("buy")
	require.NoError(t, err)
	assert.Equal(t, SideBuy, side)
	assert.Equal(t, "buy", side.String())

	side, err = ParseSide("sell")
	require.NoError(t, err)
	assert.Equal(t, SideSell, side)

	_, err = ParseSide("short")
	assert.Error(t, err)

	assert.Equal(t, "unknown", Side(0).String())
}

func TestParseOrderType(t *testing.T) {
	orderType, err := ParseOrderType("market")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeMarket, orderType)

	_, err = ParseOrderType("stop_loss")
	assert.Error(t, err)
}

func TestParseOrderTerm(t *testing.T) {
	term, err := ParseOrderTerm("good_til_canceled")
	require.NoError(t, err)
	assert.Equal(t, OrderTermGoodTilCanceled, term)

	_, err = ParseOrderTerm("")
	assert.Error(t, err)
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("partially_filled")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPartiallyFilled, status)

	_, err = ParseOrderStatus("resting")
	assert.Error(t, err)
}

func TestSerializer(t *testing.T) {
	s := &DefaultJSONSerializer{}

	req := &PlaceOrderRequest{
		ClientOrderID: "c-1",
		Side:          "buy",
		Symbol:        "AAPL",
		Quantity:      "100",
		Type:          "limit",
		LimitPrice:    "50.00",
	}

	data, err := s.Marshal(req)
	require.NoError(t, err)

	var decoded PlaceOrderRequest
	require.NoError(t, s.Unmarshal(data, &decoded))
	assert.Equal(t, *req, decoded)
}
