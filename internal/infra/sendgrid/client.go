// Package sendgrid delivers rendered reports by email through the SendGrid
// v3 mail send API.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/logger"
	"adaptive-quiz-service/internal/report"
)

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Subject          string
	Timeout          time.Duration
	MaxRetries       int
}

// Deliverer sends quiz reports as email attachments.
type Deliverer struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	sleep      func(time.Duration)
}

func New(log *logger.Logger, cfg Config) (*Deliverer, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(cfg.DefaultFromEmail) == "" {
		return nil, fmt.Errorf("missing SENDGRID_FROM_EMAIL")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Subject == "" {
		cfg.Subject = "Your quiz results"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}

	return &Deliverer{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      time.Sleep,
	}, nil
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Attachments      []sgAttachment    `json:"attachments,omitempty"`
}

type personalization struct {
	To []EmailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgAttachment struct {
	Content     string `json:"content"`
	Type        string `json:"type,omitempty"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition,omitempty"`
}

// Deliver emails documents to the learner. Failures wrap
// domain.ErrDeliveryFailed.
func (d *Deliverer) Deliver(ctx context.Context, name, email string, documents ...report.Artifact) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("sendgrid: recipient required: %w", domain.ErrDeliveryFailed)
	}

	atts := make([]sgAttachment, 0, len(documents))
	for _, doc := range documents {
		if len(doc.Data) == 0 {
			return fmt.Errorf("sendgrid: attachment %q missing content: %w", doc.Name, domain.ErrDeliveryFailed)
		}
		mime := doc.MIMEType
		if mime == "" {
			mime = "application/pdf"
		}
		atts = append(atts, sgAttachment{
			Content:     base64.StdEncoding.EncodeToString(doc.Data),
			Type:        mime,
			Filename:    doc.Name,
			Disposition: "attachment",
		})
	}

	greeting := "Hello"
	if n := strings.TrimSpace(name); n != "" {
		greeting = "Hello " + n
	}
	wire := mailSendRequest{
		Personalizations: []personalization{{To: []EmailAddress{{Email: email, Name: strings.TrimSpace(name)}}}},
		From:             EmailAddress{Email: d.cfg.DefaultFromEmail, Name: d.cfg.DefaultFromName},
		Subject:          d.cfg.Subject,
		Content: []mailContent{{
			Type:  "text/plain",
			Value: greeting + ",\n\nYour quiz results and study material are attached.",
		}},
		Attachments: atts,
	}

	if err := d.do(ctx, "/v3/mail/send", wire); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	d.log.Info("reports delivered", "recipient", email, "attachments", len(atts))
	return nil
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func retryable(err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode == http.StatusTooManyRequests || he.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (d *Deliverer) do(ctx context.Context, path string, body any) error {
	backoff := time.Second

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := d.doOnce(ctx, path, body)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= d.cfg.MaxRetries {
			return err
		}

		sleepFor := backoff
		var he *HTTPError
		if errors.As(err, &he) && he.RetryAfter > 0 {
			sleepFor = he.RetryAfter
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor += time.Duration(rand.Int63n(int64(sleepFor)/5 + 1))

		d.log.Warn("Sendgrid request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", d.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		d.sleep(sleepFor)
		backoff *= 2
	}
}

func (d *Deliverer) doOnce(ctx context.Context, path string, body any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			he.RetryAfter = time.Duration(secs) * time.Second
		}
		return he
	}
	return nil
}
