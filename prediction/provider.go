// Package prediction turns a drawn spread into topic predictions. Oracle and
// translator failures never reach the caller: they are replaced by a
// placeholder or by the untranslated text.
package prediction

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/korjavin/catmoodbot/models"
)

// PlaceholderText fills any topic the oracle could not answer
const PlaceholderText = "The cards are silent for now. Prediction unavailable, try again later."

var errNoOracle = errors.New("oracle not configured")

// outcome is the result of one oracle call: a value or a typed failure
type outcome struct {
	value models.Predictions
	err   error
}

// Provider fetches predictions and optionally translates them
type Provider struct {
	oracle     Oracle
	translator Translator
	language   string
	logger     *zap.Logger
}

// NewProvider creates a provider. A nil translator or empty language
// disables translation.
func NewProvider(oracle Oracle, translator Translator, language string, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		oracle:     oracle,
		translator: translator,
		language:   language,
		logger:     logger,
	}
}

// FetchPrediction returns one non-empty text per topic for the spread
// love, career, finance. It never fails.
func (p *Provider) FetchPrediction(ctx context.Context, love, career, finance models.Card) models.Predictions {
	var o outcome
	if p.oracle == nil {
		o.err = &models.ExternalServiceError{Service: serviceOracle, Err: errNoOracle}
	} else {
		o.value, o.err = p.oracle.Predict(ctx, love.Value, career.Value, finance.Value)
	}

	result, fromOracle := p.resolve(o)
	return p.translateAll(ctx, result, fromOracle)
}

// resolve is the single point where oracle failures become placeholder text.
// fromOracle marks the topics that carry real oracle text.
func (p *Provider) resolve(o outcome) (models.Predictions, map[string]bool) {
	var result models.Predictions
	fromOracle := make(map[string]bool, len(models.Topics))

	if o.err != nil {
		p.logger.Warn("oracle unavailable, using placeholder", zap.Error(o.err))
	}

	for _, topic := range models.Topics {
		text := ""
		if o.err == nil {
			text = strings.TrimSpace(o.value.Get(topic))
		}
		if text == "" {
			if o.err == nil {
				p.logger.Warn("oracle returned no text for topic", zap.String("topic", topic))
			}
			result.Set(topic, PlaceholderText)
			continue
		}
		result.Set(topic, text)
		fromOracle[topic] = true
	}
	return result, fromOracle
}

// translateAll translates oracle-produced topics concurrently and waits for
// all of them. Placeholder text is left as is.
func (p *Provider) translateAll(ctx context.Context, in models.Predictions, fromOracle map[string]bool) models.Predictions {
	if p.translator == nil || p.language == "" || len(fromOracle) == 0 {
		return in
	}

	var translated [len(models.Topics)]string
	var g errgroup.Group
	for i, topic := range models.Topics {
		if !fromOracle[topic] {
			translated[i] = in.Get(topic)
			continue
		}
		g.Go(func() error {
			translated[i] = p.Translate(ctx, in.Get(topic), p.language)
			return nil
		})
	}
	_ = g.Wait()

	var out models.Predictions
	for i, topic := range models.Topics {
		out.Set(topic, translated[i])
	}
	return out
}

// Translate re-expresses text in lang, falling back to text on any failure
func (p *Provider) Translate(ctx context.Context, text, lang string) string {
	if p.translator == nil || lang == "" || strings.TrimSpace(text) == "" {
		return text
	}
	out, err := p.translator.Translate(ctx, text, lang)
	if err != nil {
		p.logger.Info("translation skipped, keeping source text", zap.String("lang", lang), zap.Error(err))
		return text
	}
	if strings.TrimSpace(out) == "" {
		return text
	}
	return out
}
