package moodle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/iapioniers/evasion-backend/internal/pkg/ctxutil"
	"github.com/iapioniers/evasion-backend/internal/pkg/httpx"
	"github.com/iapioniers/evasion-backend/internal/platform/envutil"
	"github.com/iapioniers/evasion-backend/internal/platform/logger"
	"github.com/iapioniers/evasion-backend/internal/types"
)

// Client wraps the three Moodle API operations the pipeline consumes. Every
// call retries transient transport failures with exponential backoff; the
// final failure is returned as-is once attempts are exhausted.
type Client interface {
	GetToken(ctx context.Context) (string, error)
	ListUsers(ctx context.Context, token string) ([]types.StudentDescriptor, error)
	GetUserLogs(ctx context.Context, token, userID string) ([]LogEntry, error)
}

// LogEntry is one row of the per-user log payload as the API returns it.
// Dates stay strings here; the collector owns parsing and dropping bad rows.
type LogEntry struct {
	Date           string `json:"date"`
	Action         string `json:"action"`
	CourseFullname string `json:"course_fullname"`
}

type Config struct {
	BaseURL     string
	Email       string
	Password    string
	Timeout     time.Duration
	MaxAttempts int
	RetryBase   time.Duration
	RetryCap    time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:     strings.TrimSpace(os.Getenv("MOODLE_API_BASE_URL")),
		Email:       strings.TrimSpace(os.Getenv("MOODLE_EMAIL")),
		Password:    strings.TrimSpace(os.Getenv("MOODLE_PASSWORD")),
		Timeout:     envutil.Duration("MOODLE_TIMEOUT", 30*time.Second),
		MaxAttempts: envutil.Int("MOODLE_MAX_ATTEMPTS", 5),
		RetryBase:   envutil.Duration("MOODLE_RETRY_BASE", 2*time.Second),
		RetryCap:    envutil.Duration("MOODLE_RETRY_CAP", 60*time.Second),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing MOODLE_API_BASE_URL")
	}
	if cfg.Email == "" || cfg.Password == "" {
		return nil, fmt.Errorf("missing MOODLE_EMAIL / MOODLE_PASSWORD")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 2 * time.Second
	}
	if cfg.RetryCap <= 0 {
		cfg.RetryCap = 60 * time.Second
	}
	return &client{
		log:        log.With("client", "MoodleClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *client) GetToken(ctx context.Context) (string, error) {
	body := map[string]string{"email": c.cfg.Email, "password": c.cfg.Password}
	out, err := doJSON[tokenResponse](c, ctx, http.MethodPost, c.cfg.BaseURL+"/get-token", "", body, nil)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", fmt.Errorf("moodle: token response carried no access_token")
	}
	return out.AccessToken, nil
}

func (c *client) ListUsers(ctx context.Context, token string) ([]types.StudentDescriptor, error) {
	out, err := doJSON[[]types.StudentDescriptor](c, ctx, http.MethodGet, c.cfg.BaseURL+"/moodle/usuarios", token, nil, nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *client) GetUserLogs(ctx context.Context, token, userID string) ([]LogEntry, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	out, err := doJSON[[]LogEntry](c, ctx, http.MethodGet, c.cfg.BaseURL+"/moodle/logs-usuario", token, nil, q)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// ---------- HTTP / retry helpers ----------

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "moodle: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("moodle http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func doJSON[T any](c *client, ctx context.Context, method, urlStr, token string, body any, query url.Values) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			sleepFor := httpx.Backoff(c.cfg.RetryBase, c.cfg.RetryCap, attempt-1)
			c.log.Warn("Moodle request retrying",
				"url", urlStr,
				"attempt", attempt+1,
				"max_attempts", c.cfg.MaxAttempts,
				"sleep", sleepFor.String(),
				"error", lastErr.Error(),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sleepFor):
			}
		}

		out, err := doJSONOnce[T](c, ctx, method, urlStr, token, body, query)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !httpx.IsRetryableError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func doJSONOnce[T any](c *client, ctx context.Context, method, urlStr, token string, body any, query url.Values) (*T, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = strings.NewReader(string(payload))
	}
	if len(query) > 0 {
		urlStr = urlStr + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, urlStr, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out T
	if len(raw) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("moodle decode error: %w", err)
	}
	return &out, nil
}
