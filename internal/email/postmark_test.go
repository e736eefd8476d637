package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendConsentRequest(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "hola@semillita.test", "https://semillita.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	err := client.SendConsentRequest("mama@example.com", "tok123", "Luna")
	if err != nil {
		t.Fatalf("send consent request: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "mama@example.com" {
		t.Errorf("To = %q, want %q", received.To, "mama@example.com")
	}
	if received.From != "hola@semillita.test" {
		t.Errorf("From = %q, want %q", received.From, "hola@semillita.test")
	}
	if !strings.Contains(received.Subject, "Luna") {
		t.Errorf("Subject = %q, want child alias mentioned", received.Subject)
	}
	if !strings.Contains(received.TextBody, "https://semillita.test/consent/verify?token=tok123") {
		t.Errorf("TextBody = %q, want verification link", received.TextBody)
	}
}

func TestSendConsentRequestNotConfigured(t *testing.T) {
	client := NewClient("", "hola@semillita.test", "https://semillita.test")

	err := client.SendConsentRequest("mama@example.com", "tok123", "Luna")
	if err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendConsentRequestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "hola@semillita.test", "https://semillita.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	err := client.SendConsentRequest("mama@example.com", "tok123", "Luna")
	if err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestConfigured(t *testing.T) {
	c1 := NewClient("token", "from@test.com", "https://test.com")
	if !c1.Configured() {
		t.Error("expected Configured() = true")
	}

	c2 := NewClient("", "from@test.com", "https://test.com")
	if c2.Configured() {
		t.Error("expected Configured() = false")
	}
}

// rewriteTransport redirects all requests to a test server URL.
type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.target[len("http://"):]
	return t.base.RoundTrip(req)
}
