package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SessionState is the state the gateway reports for the WhatsApp session.
type SessionState string

const (
	SessionStopped  SessionState = "STOPPED"
	SessionStarting SessionState = "STARTING"
	SessionScanQR   SessionState = "SCAN_QR_CODE"
	SessionWorking  SessionState = "WORKING"
	SessionFailed   SessionState = "FAILED"
)

var ErrNotRegistered = errors.New("number is not registered on WhatsApp")

// Gateway is the transport to a WhatsApp session.
type Gateway interface {
	Start(ctx context.Context) error
	State(ctx context.Context) (SessionState, error)
	SendText(ctx context.Context, phone, text string) error
	Logout(ctx context.Context) error
}

// HTTPGateway talks to a REST WhatsApp bridge that owns the browser session.
type HTTPGateway struct {
	baseURL string
	token   string
	session string
	http    *http.Client
}

func NewHTTPGateway(baseURL, token, session string) *HTTPGateway {
	if session == "" {
		session = "default"
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		session: session,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (g *HTTPGateway) Start(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/api/sessions/start", map[string]string{"name": g.session}, nil)
}

func (g *HTTPGateway) State(ctx context.Context) (SessionState, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(g.session), nil, &out); err != nil {
		return SessionFailed, err
	}
	if out.Status == "" {
		return SessionStopped, nil
	}
	return SessionState(out.Status), nil
}

// SendText checks the number is on WhatsApp and sends text to the chat the gateway resolved.
func (g *HTTPGateway) SendText(ctx context.Context, phone, text string) error {
	var exists struct {
		NumberExists bool   `json:"numberExists"`
		ChatID       string `json:"chatId"`
	}
	q := url.Values{"phone": {phone}, "session": {g.session}}
	if err := g.do(ctx, http.MethodGet, "/api/contacts/check-exists?"+q.Encode(), nil, &exists); err != nil {
		return err
	}
	if !exists.NumberExists {
		return fmt.Errorf("%w: %s", ErrNotRegistered, phone)
	}
	chatID := exists.ChatID
	if chatID == "" {
		chatID = phone + "@c.us"
	}
	return g.do(ctx, http.MethodPost, "/api/sendText", map[string]string{
		"session": g.session,
		"chatId":  chatID,
		"text":    text,
	}, nil)
}

func (g *HTTPGateway) Logout(ctx context.Context) error {
	return g.do(ctx, http.MethodPost, "/api/sessions/logout", map[string]string{"name": g.session}, nil)
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body, out any) error {
	if g.baseURL == "" {
		return errors.New("whatsapp gateway url not configured")
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NoopGateway logs instead of sending. The session is always working.
type NoopGateway struct {
	logger *slog.Logger
}

func NewNoopGateway(logger *slog.Logger) *NoopGateway {
	return &NoopGateway{logger: logger}
}

func (g *NoopGateway) Start(context.Context) error { return nil }

func (g *NoopGateway) State(context.Context) (SessionState, error) { return SessionWorking, nil }

func (g *NoopGateway) SendText(ctx context.Context, phone, text string) error {
	g.logger.DebugContext(ctx, "whatsapp message dropped", "phone", phone, "chars", len(text))
	return nil
}

func (g *NoopGateway) Logout(context.Context) error { return nil }
