// Package atlassian реализует адаптеры двух несовместимых API каталога:
// Standard API сайта и Organization API. Адаптеры выкачивают страницы до
// конца и отдают уже канонические записи.
package atlassian

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	readTimeout      = 30 * time.Second
	retryReadTimeout = 60 * time.Second
	mutationTimeout  = 30 * time.Second
	maxReadAttempts  = 5
)

// client — общая HTTP-обвязка обоих адаптеров: повторы на чтении,
// классификация ошибок, разбор JSON.
type client struct {
	httpc     *http.Client
	log       *slog.Logger
	authorize func(*http.Request)
}

// getJSON выполняет GET с повторами на временных сбоях и разбирает тело в out.
// Таймаут одиночного вызова — 30s, повторного — 60s; пауза между попытками
// экспоненциальная: 1s, 2s, 4s...
func (c *client) getJSON(ctx context.Context, rawURL string, q url.Values, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxReadAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return &TransientError{Err: ctx.Err()}
			case <-time.After(delay):
			}
			c.log.Debug("retrying read", slog.String("url", rawURL), slog.Int("attempt", attempt+1))
		}
		timeout := readTimeout
		if attempt > 0 {
			timeout = retryReadTimeout
		}
		body, err := c.once(ctx, http.MethodGet, rawURL, q, nil, timeout)
		if err == nil {
			if len(body) == 0 {
				return nil
			}
			if uerr := json.Unmarshal(body, out); uerr != nil {
				return &ParseError{Err: uerr}
			}
			return nil
		}
		var te *TransientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// mutate выполняет изменяющий вызов. Мутации никогда не повторяются
// автоматически; успехом считается любой 2xx.
func (c *client) mutate(ctx context.Context, method, rawURL string, q url.Values, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	_, err := c.once(ctx, method, rawURL, q, body, mutationTimeout)
	return err
}

// once выполняет ровно один HTTP-вызов и классифицирует результат.
func (c *client) once(ctx context.Context, method, rawURL string, q url.Values, body io.Reader, timeout time.Duration) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := rawURL
	if len(q) > 0 {
		u = rawURL + "?" + q.Encode()
	}
	rq, err := http.NewRequestWithContext(callCtx, method, u, body)
	if err != nil {
		return nil, err
	}
	rq.Header.Set("Accept", "application/json")
	if body != nil {
		rq.Header.Set("Content-Type", "application/json")
	}
	c.authorize(rq)

	rs, err := c.httpc.Do(rq)
	if err != nil {
		// Сетевые сбои и таймауты считаем временными.
		return nil, &TransientError{Err: err}
	}
	defer rs.Body.Close()

	data, err := io.ReadAll(rs.Body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}

	switch {
	case rs.StatusCode < 300:
		return data, nil
	case rs.StatusCode == http.StatusTooManyRequests || rs.StatusCode >= 500:
		return nil, &TransientError{StatusCode: rs.StatusCode}
	default:
		return nil, &PermanentError{StatusCode: rs.StatusCode, Body: truncate(string(data), 512)}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
