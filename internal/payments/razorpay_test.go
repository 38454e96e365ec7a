package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	g := NewRazorpayGateway("rzp_test_key", "secret123")

	mac := hmac.New(sha256.New, []byte("secret123"))
	mac.Write([]byte("order_abc|pay_xyz"))
	valid := hex.EncodeToString(mac.Sum(nil))

	require.True(t, g.VerifySignature("order_abc", "pay_xyz", valid))
	require.False(t, g.VerifySignature("order_abc", "pay_xyz", "tampered"))
	require.False(t, g.VerifySignature("order_other", "pay_xyz", valid))
}

func TestToPaise(t *testing.T) {
	require.Equal(t, int64(100), ToPaise(1))
	require.Equal(t, int64(23600), ToPaise(236.00))
	// 19.99 is not exactly representable; rounding keeps the paise honest.
	require.Equal(t, int64(1999), ToPaise(19.99))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test_key", user)
		require.Equal(t, "secret123", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, float64(23600), body["amount"])
		require.Equal(t, "INR", body["currency"])

		json.NewEncoder(w).Encode(RazorpayOrder{
			ID: "order_abc", Amount: 23600, Currency: "INR", Receipt: body["receipt"].(string), Status: "created",
		})
	}))
	defer srv.Close()

	g := NewRazorpayGateway("rzp_test_key", "secret123")
	g.baseURL = srv.URL

	order, err := g.CreateOrder(context.Background(), 236.00, "INV-1")
	require.NoError(t, err)
	require.Equal(t, "order_abc", order.ID)
	require.Equal(t, int64(23600), order.Amount)
	require.Equal(t, "INV-1", order.Receipt)

	_, err = g.CreateOrder(context.Background(), 0, "INV-2")
	require.ErrorIs(t, err, ErrValidation)
}
