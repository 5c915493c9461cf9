package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/korjavin/catmoodbot/models"
)

const (
	// DefaultOracleURL is the tarot prediction endpoint
	DefaultOracleURL = "https://json.astrologyapi.com/v1/tarot_predictions"
	// DefaultTimeout bounds every external call
	DefaultTimeout = 15 * time.Second

	serviceOracle = "oracle"
	maxLoggedBody = 300
)

// Oracle produces raw topic predictions for three card values
type Oracle interface {
	Predict(ctx context.Context, love, career, finance int) (models.Predictions, error)
}

// OracleClient calls the tarot prediction HTTP API
type OracleClient struct {
	url    string
	userID string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

// NewOracleClient creates a new oracle API client
func NewOracleClient(baseURL, userID, apiKey string, timeout time.Duration, logger *zap.Logger) *OracleClient {
	if baseURL == "" {
		baseURL = DefaultOracleURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OracleClient{
		url:    baseURL,
		userID: userID,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Predict asks the oracle for love, career and finance predictions.
// Any failure is returned as *models.ExternalServiceError.
func (c *OracleClient) Predict(ctx context.Context, love, career, finance int) (models.Predictions, error) {
	startTime := time.Now()

	u, err := url.Parse(c.url)
	if err != nil {
		return models.Predictions{}, oracleErr(fmt.Errorf("parse url: %w", err))
	}
	q := u.Query()
	q.Set(models.TopicLove, strconv.Itoa(love))
	q.Set(models.TopicCareer, strconv.Itoa(career))
	q.Set(models.TopicFinance, strconv.Itoa(finance))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return models.Predictions{}, oracleErr(fmt.Errorf("create request: %w", err))
	}
	req.SetBasicAuth(c.userID, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending oracle request",
		zap.Int("love", love), zap.Int("career", career), zap.Int("finance", finance))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("oracle request failed", zap.Error(err), zap.Duration("elapsed", time.Since(startTime)))
		return models.Predictions{}, oracleErr(fmt.Errorf("do request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Predictions{}, oracleErr(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("oracle returned error status",
			zap.Int("status", resp.StatusCode), zap.String("body", truncate(string(body), maxLoggedBody)))
		return models.Predictions{}, oracleErr(fmt.Errorf("status %d", resp.StatusCode))
	}

	var p models.Predictions
	if err := json.Unmarshal(body, &p); err != nil {
		c.logger.Warn("oracle response is not valid json", zap.String("body", truncate(string(body), maxLoggedBody)))
		return models.Predictions{}, oracleErr(fmt.Errorf("unmarshal response: %w", err))
	}

	c.logger.Info("oracle prediction received", zap.Duration("elapsed", time.Since(startTime)))
	return p, nil
}

func oracleErr(err error) error {
	return &models.ExternalServiceError{Service: serviceOracle, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
