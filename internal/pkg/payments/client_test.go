package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/pay-1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		json.NewEncoder(w).Encode(Payment{
			ID:                "pay-1",
			Status:            PaymentStatusApproved,
			ExternalReference: "buyer@example.com|order-1",
			TransactionAmount: 42.50,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	payment, err := client.GetPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != PaymentStatusApproved {
		t.Fatalf("expected approved, got %q", payment.Status)
	}
	if payment.ExternalReference != "buyer@example.com|order-1" {
		t.Fatalf("unexpected external reference %q", payment.ExternalReference)
	}
}

func TestGetPayment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	_, err := client.GetPayment(context.Background(), "missing")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestGetPayment_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	_, err := client.GetPayment(context.Background(), "pay-1")
	if err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}

func TestCreatePreference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkout/preferences" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req PreferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ExternalReference != "buyer@example.com|order-1" {
			t.Fatalf("unexpected external reference %q", req.ExternalReference)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Preference{ID: "pref-1", InitPoint: "https://pay.example.com/pref-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token")
	pref, err := client.CreatePreference(context.Background(), PreferenceRequest{
		Items:             []PreferenceItem{{Title: "Widget", Quantity: 2, UnitPrice: 21.25}},
		ExternalReference: "buyer@example.com|order-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pref.ID != "pref-1" || pref.InitPoint == "" {
		t.Fatalf("unexpected preference %+v", pref)
	}
}

func TestPaymentFromPayload(t *testing.T) {
	payment, ok := PaymentFromPayload([]byte(`{"id":"pay-1","status":"approved","external_reference":"order-1"}`))
	if !ok {
		t.Fatal("expected top-level payload to be sufficient")
	}
	if payment.ID != "pay-1" || payment.Status != PaymentStatusApproved {
		t.Fatalf("unexpected payment %+v", payment)
	}

	payment, ok = PaymentFromPayload([]byte(`{"id":"evt-1","type":"payment","data":{"id":"pay-2","status":"rejected","status_detail":"cc_rejected","external_reference":"order-2"}}`))
	if !ok {
		t.Fatal("expected nested data payload to be sufficient")
	}
	if payment.ID != "pay-2" || payment.Status != PaymentStatusRejected || payment.StatusDetail != "cc_rejected" {
		t.Fatalf("unexpected payment %+v", payment)
	}

	insufficient := []string{
		`{"id":"evt-1","type":"payment","data":{"id":"pay-3"}}`,
		`{"id":"pay-4","status":"approved"}`,
		`{"id":"pay-5","external_reference":"order-5"}`,
		`not json`,
	}
	for _, payload := range insufficient {
		if _, ok := PaymentFromPayload([]byte(payload)); ok {
			t.Fatalf("expected payload %q to be insufficient", payload)
		}
	}
}

func TestWebhookNotificationPaymentID(t *testing.T) {
	var notif WebhookNotification
	notif.ID = "evt-1"
	if got := notif.PaymentID(); got != "evt-1" {
		t.Fatalf("expected top-level id fallback, got %q", got)
	}
	notif.Data.ID = "pay-1"
	if got := notif.PaymentID(); got != "pay-1" {
		t.Fatalf("expected data id to win, got %q", got)
	}
}
