package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// razorpayBaseURL is overridable so tests can point at a local server.
const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayOrder is the slice of the gateway's order object the portal needs.
type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// RazorpayGateway talks to the Razorpay orders API and verifies capture
// callbacks.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewRazorpayGateway constructs the gateway client.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   razorpayBaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether gateway credentials were configured.
func (g *RazorpayGateway) Enabled() bool {
	return g != nil && g.keyID != "" && g.keySecret != ""
}

// KeyID returns the publishable key the checkout widget embeds.
func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

// CreateOrder registers an order for the amount in rupees. Razorpay takes
// amounts in paise.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount float64, receipt string) (*RazorpayOrder, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: order amount must be positive", ErrValidation)
	}
	payload, err := json.Marshal(map[string]any{
		"amount":   ToPaise(amount),
		"currency": "INR",
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay create order: unexpected status %d", resp.StatusCode)
	}
	var order RazorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("razorpay create order: decode: %w", err)
	}
	return &order, nil
}

// VerifySignature checks the capture callback signature: HMAC-SHA256 of
// "order_id|payment_id" keyed with the secret.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// ToPaise converts rupees to the integer paise the gateway expects.
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
