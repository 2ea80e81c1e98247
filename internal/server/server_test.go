package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/gobotkit/twilio"
	"github.com/gobotkit/twilio/message"
	"github.com/gobotkit/twilio/security"
)

const (
	testToken = "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"
	testURL   = "http://bot.example.com/twilio"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testServer(t *testing.T, handler Handler, onEvent EventHandler) *Server {
	t.Helper()
	s, err := New(Config{
		Twilio:  twilio.Config{Token: testToken},
		Logger:  testLogger(),
		OnEvent: onEvent,
	}, handler)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func signedRequest(t *testing.T, params map[string]string) *http.Request {
	t.Helper()
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	r := httptest.NewRequest(http.MethodPost, testURL, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	sig := security.NewRequestValidator(testToken).Compute(testURL, params)
	r.Header.Set(twilio.SignatureHeader, sig)
	return r
}

func smsParams(body string) map[string]string {
	return map[string]string{
		"MessageSid": "SM0123456789abcdef0123456789abcdef",
		"AccountSid": "AC0123456789abcdef0123456789abcdef",
		"Body":       body,
		"From":       "+15005550001",
		"To":         "+15005550006",
	}
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{Logger: testLogger()}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing auth token")
	}
}

func TestHandleWebhookMethodNotAllowed(t *testing.T) {
	s := testServer(t, nil, nil)
	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, testURL, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestHandleWebhookUnsigned(t *testing.T) {
	s := testServer(t, nil, nil)
	form := url.Values{}
	for k, v := range smsParams("hi") {
		form.Set(k, v)
	}
	r := httptest.NewRequest(http.MethodPost, testURL, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, r)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestHandleWebhookEcho(t *testing.T) {
	var gotDriver string
	s := testServer(t, func(ctx context.Context, drv twilio.Driver, msg *message.Incoming) (any, *twilio.SendOptions) {
		gotDriver = drv.Name()
		return "echo: " + msg.Text, nil
	}, nil)

	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, signedRequest(t, smsParams("hello")))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotDriver != twilio.DriverNameMessage {
		t.Errorf("handler saw driver %q", gotDriver)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := rr.Body.String(); !strings.Contains(body, "<Body>echo: hello</Body>") {
		t.Errorf("body = %q", body)
	}
}

func TestHandleWebhookNilReply(t *testing.T) {
	s := testServer(t, func(ctx context.Context, drv twilio.Driver, msg *message.Incoming) (any, *twilio.SendOptions) {
		return nil, nil
	}, nil)

	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, signedRequest(t, smsParams("hi")))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "<Response></Response>") {
		t.Errorf("expected empty TwiML, got %q", body)
	}
}

func TestHandleWebhookIncomingCallEvent(t *testing.T) {
	params := map[string]string{
		"CallSid":    "CA0123456789abcdef0123456789abcdef",
		"AccountSid": "AC0123456789abcdef0123456789abcdef",
		"From":       "+15005550001",
		"To":         "+15005550006",
		"CallStatus": "ringing",
	}

	var gotEvent string
	s := testServer(t, func(ctx context.Context, drv twilio.Driver, msg *message.Incoming) (any, *twilio.SendOptions) {
		return message.NewQuestion("pick").AddButton(message.Button{Text: "One", Value: "1"}), nil
	}, func(ctx context.Context, drv twilio.Driver, ev *message.Event) {
		gotEvent = ev.Name
	})

	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, signedRequest(t, params))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotEvent != twilio.EventIncomingCall {
		t.Errorf("event = %q, want %q", gotEvent, twilio.EventIncomingCall)
	}
	if body := rr.Body.String(); !strings.Contains(body, `<Gather input="dtmf">`) {
		t.Errorf("body = %q", body)
	}
}
