package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"alphaflow-alerts/internal/application/alert"
	"alphaflow-alerts/internal/application/enrich"
	"alphaflow-alerts/internal/application/render"
	alertDomain "alphaflow-alerts/internal/domain/alert"
	authinfra "alphaflow-alerts/internal/infrastructure/auth"
	"alphaflow-alerts/internal/infrastructure/config"
	"alphaflow-alerts/internal/infrastructure/notify"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubDispatcher struct {
	mu       sync.Mutex
	channels []string
	alerts   []alertDomain.Alert
	err      error
}

func (d *stubDispatcher) Platform() string { return "stub" }

func (d *stubDispatcher) Dispatch(_ context.Context, channelID string, a alertDomain.Alert, _ []alertDomain.ActionRow) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.channels = append(d.channels, channelID)
	d.alerts = append(d.alerts, a)
	return nil
}

func newTestServer(cfg config.Config, router alert.Router, d alert.Dispatcher, verifier *authinfra.WebhookVerifier) *Server {
	svc := alert.NewService(enrich.DefaultLevelConfig(), render.NewRenderer(render.DefaultConfig()), router, d, nil)
	return NewServer(cfg, svc, verifier, nil)
}

type apiResponse struct {
	Success        bool                    `json:"success"`
	OK             bool                    `json:"ok"`
	ChannelID      string                  `json:"channel_id"`
	Confidence     int                     `json:"confidence"`
	Error          string                  `json:"error"`
	ErrorCode      string                  `json:"error_code"`
	PlatformStatus int                     `json:"platform_status"`
	PlatformError  map[string]interface{}  `json:"platform_error"`
	Health         string                  `json:"health"`
	Platform       string                  `json:"platform"`
	Tier           string                  `json:"tier"`
	Alert          alertDomain.Alert       `json:"alert"`
	Components     []alertDomain.ActionRow `json:"components"`
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

const btcSignal = `{"payload":{"symbol":"BTCUSDT","timeframe":"4h","side":"buy","price":100,"technicals":{"atr":2}},"tier":"pro","source":"tv"}`

func TestHealthHandlers(t *testing.T) {
	srv := newTestServer(config.Config{}, alert.Router{}, &stubDispatcher{}, nil)

	w, _ := doRequest(t, srv.Handler(), http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"ok":true}` {
		t.Errorf("unexpected healthz response %d %s", w.Code, w.Body.String())
	}

	w, resp := doRequest(t, srv.Handler(), http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK || resp.Health != "ok" || resp.Platform != "stub" {
		t.Errorf("unexpected health response %d %+v", w.Code, resp)
	}

	w, _ = doRequest(t, srv.Handler(), http.MethodGet, "/api/ping", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected ping 200, got %d", w.Code)
	}

	w, _ = doRequest(t, srv.Handler(), http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected metrics 200, got %d", w.Code)
	}
}

func TestSendHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		d := &stubDispatcher{}
		srv := newTestServer(config.Config{}, alert.Router{Free: "free", Pro: "pro"}, d, nil)

		w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/send", btcSignal, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !resp.Success || !resp.OK || resp.ChannelID != "pro" {
			t.Errorf("unexpected response %+v", resp)
		}
		if len(d.alerts) != 1 || d.alerts[0].Author.Name != "AlphaFlow • tv" {
			t.Errorf("unexpected dispatched alerts %+v", d.alerts)
		}
	})

	t.Run("flat_payload_free_fallback", func(t *testing.T) {
		d := &stubDispatcher{}
		srv := newTestServer(config.Config{}, alert.Router{Pro: "pro"}, d, nil)

		w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/send", `{"symbol":"ETHUSDT","price":"3000"}`, nil)
		if w.Code != http.StatusOK || resp.ChannelID != "pro" {
			t.Fatalf("expected fallback to pro channel, got %d %+v", w.Code, resp)
		}
	})

	t.Run("numeric_text_fields", func(t *testing.T) {
		d := &stubDispatcher{}
		srv := newTestServer(config.Config{}, alert.Router{Free: "free"}, d, nil)

		body := `{"symbol":"BTCUSDT","timeframe":15,"tv_symbol":5,"side":"buy","price":100}`
		w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/send", body, nil)
		if w.Code != http.StatusOK || !resp.Success {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if len(d.alerts) != 1 {
			t.Fatalf("expected one dispatch, got %d", len(d.alerts))
		}
		if d.alerts[0].Title != "BTCUSDT • BUY • 15" {
			t.Errorf("unexpected title %q", d.alerts[0].Title)
		}
		if d.alerts[0].Footer != "Binance • 15" {
			t.Errorf("unexpected footer %q", d.alerts[0].Footer)
		}
	})

	t.Run("bad_body", func(t *testing.T) {
		srv := newTestServer(config.Config{}, alert.Router{Free: "free"}, &stubDispatcher{}, nil)

		w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/send", `[1,2,3]`, nil)
		if w.Code != http.StatusBadRequest || resp.ErrorCode != errCodeBadRequest {
			t.Errorf("expected 400 BAD_REQUEST, got %d %+v", w.Code, resp)
		}
	})

	t.Run("no_channel", func(t *testing.T) {
		srv := newTestServer(config.Config{}, alert.Router{}, &stubDispatcher{}, nil)

		w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/send", btcSignal, nil)
		if w.Code != http.StatusInternalServerError || resp.ErrorCode != errCodeNoChannel {
			t.Errorf("expected 500 NO_CHANNEL, got %d %+v", w.Code, resp)
		}
	})

	t.Run("dispatch_failed", func(t *testing.T) {
		d := &stubDispatcher{err: &notify.DispatchError{
			Platform: notify.PlatformDiscord,
			Status:   http.StatusForbidden,
			Payload:  map[string]any{"message": "Missing Access"},
		}}
		srv := newTestServer(config.Config{}, alert.Router{Free: "free"}, d, nil)

		w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/send", btcSignal, nil)
		if w.Code != http.StatusBadGateway || resp.ErrorCode != errCodeDispatchFailed {
			t.Fatalf("expected 502 DISPATCH_FAILED, got %d %+v", w.Code, resp)
		}
		if resp.PlatformStatus != http.StatusForbidden || resp.PlatformError["message"] != "Missing Access" {
			t.Errorf("unexpected platform details %+v", resp)
		}
	})
}

func TestPreviewHandler(t *testing.T) {
	d := &stubDispatcher{}
	srv := newTestServer(config.Config{}, alert.Router{}, d, nil)

	w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/preview", btcSignal, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Alert.Title != "BTCUSDT • BUY • 4h" || resp.Tier != alert.TierPro {
		t.Errorf("unexpected preview %+v", resp)
	}
	if len(resp.Components) != 1 || len(resp.Components[0].Buttons) != 2 {
		t.Errorf("unexpected components %+v", resp.Components)
	}
	if len(d.alerts) != 0 {
		t.Error("preview must not dispatch")
	}
}

func TestWebhookAuth(t *testing.T) {
	hash, err := authinfra.HashAPIKey("key-1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	verifier := authinfra.NewWebhookVerifier("secret", hash)
	token, err := verifier.IssueToken("strategy-a", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	d := &stubDispatcher{}
	srv := newTestServer(config.Config{}, alert.Router{Free: "free"}, d, verifier)
	flat := `{"symbol":"BTCUSDT","price":100}`

	w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/send", flat, nil)
	if w.Code != http.StatusUnauthorized || resp.ErrorCode != errCodeUnauthorized {
		t.Fatalf("expected 401, got %d %+v", w.Code, resp)
	}

	w, _ = doRequest(t, srv.Handler(), http.MethodPost, "/send", flat, map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}
	if d.alerts[0].Author.Name != "AlphaFlow • strategy-a" {
		t.Errorf("expected token source in author, got %q", d.alerts[0].Author.Name)
	}

	w, _ = doRequest(t, srv.Handler(), http.MethodPost, "/send", flat, map[string]string{"X-API-Key": "key-1"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with api key, got %d", w.Code)
	}

	w, _ = doRequest(t, srv.Handler(), http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health must stay public, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.Config{HTTP: config.HTTPConfig{RateLimit: 0.001, RateBurst: 1}}
	srv := newTestServer(cfg, alert.Router{Free: "free"}, &stubDispatcher{}, nil)

	w, _ := doRequest(t, srv.Handler(), http.MethodPost, "/preview", btcSignal, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", w.Code)
	}
	w, resp := doRequest(t, srv.Handler(), http.MethodPost, "/preview", btcSignal, nil)
	if w.Code != http.StatusTooManyRequests || resp.ErrorCode != errCodeRateLimited {
		t.Errorf("expected 429, got %d %+v", w.Code, resp)
	}
}
