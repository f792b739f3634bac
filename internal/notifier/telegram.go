package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const telegramAPI = "https://api.telegram.org"

// maxMessageLen is the Telegram limit on message text, in characters.
const maxMessageLen = 4096

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	APIURL   string
	BotToken string
	ChatID   string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		APIURL:   telegramAPI,
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (t *TelegramNotifier) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIURL, t.BotToken, name)
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	text = truncateHTML(text, maxMessageLen)
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.method("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(ctx, text); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// truncateHTML shortens an HTML-mode message to at most limit characters.
// It never cuts inside a tag or an entity and closes any tag left open.
func truncateHTML(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	const ellipsis = "..."
	var (
		b      strings.Builder
		open   []string
		kept   int
		suffix = len(ellipsis) // ellipsis plus closing tags of open elements
	)
	for i := 0; i < len(runes); {
		token := nextToken(runes[i:])
		extra := 0
		name := ""
		if token[0] == '<' {
			name = tagName(token)
			if name != "" && token[1] != '/' {
				extra = len(name) + 3
			}
		}
		if kept+len(token)+suffix+extra > limit {
			break
		}

		switch {
		case name == "":
		case token[1] == '/':
			if n := len(open); n > 0 && open[n-1] == name {
				open = open[:n-1]
				suffix -= len(name) + 3
			}
		default:
			open = append(open, name)
			suffix += extra
		}
		b.WriteString(string(token))
		kept += len(token)
		i += len(token)
	}

	b.WriteString(ellipsis)
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + open[i] + ">")
	}
	return b.String()
}

// nextToken returns the leading tag, entity or single character of rs.
func nextToken(rs []rune) []rune {
	var closer rune
	switch rs[0] {
	case '<':
		closer = '>'
	case '&':
		closer = ';'
	default:
		return rs[:1]
	}
	for i, r := range rs {
		if r == closer {
			return rs[:i+1]
		}
		if closer == ';' && i > 10 {
			break
		}
	}
	if closer == '>' {
		return rs
	}
	return rs[:1]
}

// tagName returns the lower-case element name of "<b>", "</b>" or "<a href=..>".
func tagName(tag []rune) string {
	s := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(string(tag), "<"), "/"), ">")
	if i := strings.IndexAny(s, " \t\n/"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}
