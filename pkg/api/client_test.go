package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-go/pkg/config"
	pkgerrors "github.com/oakmart/storefront-go/pkg/errors"
	"github.com/oakmart/storefront-go/pkg/logger"
	"github.com/oakmart/storefront-go/pkg/types"
)

type stubCreds struct {
	bearer string
	cart   string
}

func (s stubCreds) BearerToken() string { return s.bearer }
func (s stubCreds) CartToken() string   { return s.cart }

func newTestClient(t *testing.T, handler http.Handler, creds CredentialSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.APIConfig{BaseURL: srv.URL}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if creds != nil {
		client.SetCredentialSource(creds)
	}
	return client, srv
}

func TestGetCartAttachesBearerTokenFirst(t *testing.T) {
	var gotAuth, gotCartToken string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCartToken = r.Header.Get(headerCartToken)
		_ = json.NewEncoder(w).Encode(types.Cart{ID: uuid.New()})
	})
	client, _ := newTestClient(t, handler, stubCreds{bearer: "jwt-abc", cart: "guest-1"})

	if _, err := client.GetCart(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer jwt-abc" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotCartToken != "" {
		t.Fatalf("cart token must not be sent alongside bearer, got %q", gotCartToken)
	}
}

func TestGetCartAttachesGuestCartToken(t *testing.T) {
	var gotCartToken string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCartToken = r.Header.Get(headerCartToken)
		_ = json.NewEncoder(w).Encode(types.Cart{ID: uuid.New()})
	})
	client, _ := newTestClient(t, handler, stubCreds{cart: "guest-1"})

	if _, err := client.GetCart(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCartToken != "guest-1" {
		t.Fatalf("expected guest cart token header, got %q", gotCartToken)
	}
}

func TestGetCartTreats404AsNoCart(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no cart"}`, http.StatusNotFound)
	})
	client, _ := newTestClient(t, handler, nil)

	cart, err := client.GetCart(context.Background())
	if err != nil {
		t.Fatalf("404 must not be an error: %v", err)
	}
	if cart != nil {
		t.Fatalf("expected nil cart, got %+v", cart)
	}
}

func TestAddCartItemMaps404ToVariantNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"unknown variant"}`, http.StatusNotFound)
	})
	client, _ := newTestClient(t, handler, nil)

	_, err := client.AddCartItem(context.Background(), uuid.New(), 1)
	if !pkgerrors.Is(err, pkgerrors.CodeVariantNotFound) {
		t.Fatalf("expected VARIANT_NOT_FOUND, got %v", err)
	}
}

func TestLoginMaps401ToInvalidCredentials(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"bad password"}`, http.StatusUnauthorized)
	})
	client, _ := newTestClient(t, handler, nil)

	_, err := client.Login(context.Background(), "a@b.c", "nope")
	if !pkgerrors.Is(err, pkgerrors.CodeInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}
}

func TestValidationErrorCarriesFieldDetails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"invalid address","errors":{"district":["is required"]}}`))
	})
	client, _ := newTestClient(t, handler, nil)

	err := client.do(context.Background(), "test_op", http.MethodPost, "/x", map[string]string{}, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	details, ok := typed.Details().(map[string][]string)
	if !ok || len(details["district"]) != 1 {
		t.Fatalf("expected field details, got %v", typed.Details())
	}
	if typed.Message() != "invalid address" {
		t.Fatalf("expected backend detail as message, got %q", typed.Message())
	}
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	client, srv := newTestClient(t, handler, nil)
	srv.Close()

	_, err := client.GetCart(context.Background())
	if !pkgerrors.Is(err, pkgerrors.CodeTransport) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
	if !pkgerrors.Retryable(err) {
		t.Fatal("transport errors must be retryable")
	}
}

func TestValidateCouponDecodesBusinessRejection(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid":false,"detail":"coupon expired"}`))
	})
	client, _ := newTestClient(t, handler, nil)

	result, err := client.ValidateCoupon(context.Background(), "SAVE10", decimal.RequireFromString("500.00"))
	if err != nil {
		t.Fatalf("business rejection is not a transport error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected valid=false")
	}
	if result.Detail != "coupon expired" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestSubmitCheckoutDecodesOrder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.PaymentMethod != "cash_on_delivery" {
			t.Errorf("unexpected payment method %q", req.PaymentMethod)
		}
		_, _ = w.Write([]byte(`{"order_number":"SO-1001","status":"pending","payment_status":"unpaid","total":"450.00"}`))
	})
	client, _ := newTestClient(t, handler, nil)

	order, err := client.SubmitCheckout(context.Background(), CheckoutRequest{
		PaymentMethod: "cash_on_delivery",
		ShippingFee:   decimal.Zero,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.OrderNumber != "SO-1001" {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if !order.Total.Equal(decimal.RequireFromString("450.00")) {
		t.Fatalf("unexpected total %s", order.Total)
	}
}
