package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/korjavin/catmoodbot/models"
)

const (
	// DefaultTranslatorURL is the translation endpoint
	DefaultTranslatorURL = "https://translation.googleapis.com/language/translate/v2"

	serviceTranslator = "translator"
	// oracleLanguage is the language the oracle writes in
	oracleLanguage = "en"
)

// ErrTranslatorDisabled is returned when no API key is configured
var ErrTranslatorDisabled = errors.New("translator api key not configured")

// Translator re-expresses text in another language
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// TranslatorClient calls the translation HTTP API
type TranslatorClient struct {
	url    string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

// NewTranslatorClient creates a new translation API client
func NewTranslatorClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *TranslatorClient {
	if baseURL == "" {
		baseURL = DefaultTranslatorURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranslatorClient{
		url:    baseURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Target string `json:"target"`
	Source string `json:"source"`
	Format string `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate sends text to the translation API. Failures, including a missing
// API key, are returned as *models.ExternalServiceError.
func (c *TranslatorClient) Translate(ctx context.Context, text, target string) (string, error) {
	if c.apiKey == "" {
		return "", translatorErr(ErrTranslatorDisabled)
	}

	reqJSON, err := json.Marshal(translateRequest{Q: text, Target: target, Source: oracleLanguage, Format: "text"})
	if err != nil {
		return "", translatorErr(fmt.Errorf("marshal request: %w", err))
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return "", translatorErr(fmt.Errorf("parse url: %w", err))
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(reqJSON))
	if err != nil {
		return "", translatorErr(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", translatorErr(fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", translatorErr(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("translator returned error status",
			zap.Int("status", resp.StatusCode), zap.String("body", truncate(string(body), maxLoggedBody)))
		return "", translatorErr(fmt.Errorf("status %d", resp.StatusCode))
	}

	var tr translateResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", translatorErr(fmt.Errorf("unmarshal response: %w", err))
	}
	if len(tr.Data.Translations) == 0 || tr.Data.Translations[0].TranslatedText == "" {
		return "", translatorErr(errors.New("empty translation"))
	}

	return tr.Data.Translations[0].TranslatedText, nil
}

func translatorErr(err error) error {
	return &models.ExternalServiceError{Service: serviceTranslator, Err: err}
}
