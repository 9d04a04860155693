package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		baseURL = flag.String("base-url", getenv("BASE_URL", "http://localhost:3002"), "booking service base url")
		from    = flag.String("from", getenv("FROM", ""), "sender phone, digits or a chat id like 5511999999999@c.us")
		body    = flag.String("body", getenv("BODY", "1"), "reply text (1 confirms, 2 cancels)")
		secret  = flag.String("secret", getenv("WHATSAPP_WEBHOOK_SECRET", ""), "webhook shared secret")
	)
	flag.Parse()

	if strings.TrimSpace(*secret) == "" {
		fatal("WHATSAPP_WEBHOOK_SECRET is required")
	}
	if strings.TrimSpace(*from) == "" {
		fatal("FROM is required")
	}
	chatID := *from
	if !strings.Contains(chatID, "@") {
		chatID += "@c.us"
	}

	payload, err := json.Marshal(map[string]any{
		"event": "message",
		"payload": map[string]any{
			"from":   chatID,
			"body":   *body,
			"fromMe": false,
		},
	})
	if err != nil {
		fatal(err.Error())
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*baseURL, "/")+"/api/v1/whatsapp/webhook", bytes.NewReader(payload))
	if err != nil {
		fatal(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", *secret)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d body=%s\n", resp.StatusCode, strings.TrimSpace(string(out)))
}

func getenv(k, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
