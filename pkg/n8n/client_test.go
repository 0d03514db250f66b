package n8n

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend(t *testing.T) {
	var gotAPIKey, gotSecret string
	var gotPayload SpinPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("lucky-wheel")
		gotSecret = r.Header.Get("X-Webhook-Secret")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Write([]byte(`{"received":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "api-key", "hook-secret")
	response, err := client.Send(context.Background(), SpinPayload{
		CampaignID:     "camp-1",
		Phone:          "0912345678",
		CouponCode:     "AB12CD",
		Prize:          50000,
		IdempotencyKey: "camp-1-hash-123",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if response != `{"received":true}` {
		t.Errorf("response = %q", response)
	}
	if gotAPIKey != "api-key" || gotSecret != "hook-secret" {
		t.Errorf("headers = %q / %q", gotAPIKey, gotSecret)
	}
	if gotPayload.CouponCode != "AB12CD" || gotPayload.IdempotencyKey != "camp-1-hash-123" {
		t.Errorf("unexpected payload %+v", gotPayload)
	}
}

func TestSendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	response, err := client.Send(context.Background(), SpinPayload{})
	if err == nil {
		t.Fatal("expected an error for a 502 response")
	}
	// The body is still returned so the caller can record it
	if response != "upstream down" {
		t.Errorf("response = %q", response)
	}
}

func TestSendNotConfigured(t *testing.T) {
	client := NewClient("", "", "")
	_, err := client.Send(context.Background(), SpinPayload{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
