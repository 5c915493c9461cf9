// Package session drives the quiz and tarot flows for the presentation layer.
// It owns all per-flow state; the presentation layer only renders results.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/korjavin/catmoodbot/deck"
	"github.com/korjavin/catmoodbot/models"
	"github.com/korjavin/catmoodbot/mood"
)

// ErrNoQuiz is returned when an answer arrives without a quiz in progress
var ErrNoQuiz = errors.New("no quiz in progress")

// Store is the part of the event store the session needs
type Store interface {
	SaveMoodEntry(ctx context.Context, category string, total int, answers []int) (int64, error)
	SaveTarotReading(ctx context.Context, cards []string, p models.Predictions) (models.TarotReading, error)
	GetMoodHistory(ctx context.Context, limit int) ([]models.MoodEntry, error)
	GetTarotHistory(ctx context.Context, limit int) ([]models.TarotReading, error)
	GetMoodStatistics(ctx context.Context) ([]models.CategoryCount, error)
	CountMoodEntries(ctx context.Context) (int, error)
	GetMoodTrend(ctx context.Context, days int) ([]models.TrendPoint, error)
	GetMoodByWeekday(ctx context.Context) ([]models.WeekdayPoint, error)
}

// Predictor turns a spread into predictions and never fails
type Predictor interface {
	FetchPrediction(ctx context.Context, love, career, finance models.Card) models.Predictions
}

// QuizStep is what the presentation layer shows after an answer: either the
// next question or the final result.
type QuizStep struct {
	Index    int
	Question *models.Question
	Result   *QuizResult
}

// QuizResult is a completed quiz. SaveErr is set when the entry could not be
// stored; the result itself is still valid.
type QuizResult struct {
	Category models.MoodCategory
	Total    int
	Answers  []int
	EntryID  int64
	SaveErr  error
}

// ReadingResult is a drawn spread with predictions. SaveErr is set when the
// reading could not be stored.
type ReadingResult struct {
	Reading models.TarotReading
	Cards   [3]models.Card
	SaveErr error
}

// Stats is the category frequency table with the total it was computed from
type Stats struct {
	Counts []models.CategoryCount
	Total  int
}

// Session is the state of one user's interaction. It is not safe for
// concurrent use.
type Session struct {
	store     Store
	predictor Predictor
	deck      *deck.Deck
	questions []models.Question
	logger    *zap.Logger

	flowID   string
	inQuiz   bool
	question int
	answers  []int
}

// New creates a session over the fixed quiz questions
func New(store Store, predictor Predictor, d *deck.Deck, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		store:     store,
		predictor: predictor,
		deck:      d,
		questions: models.Questions,
		logger:    logger,
	}
}

// StartQuiz discards any quiz in progress and returns the first question
func (s *Session) StartQuiz() QuizStep {
	s.flowID = uuid.NewString()
	s.inQuiz = true
	s.question = 0
	s.answers = make([]int, 0, len(s.questions))
	s.logger.Info("quiz started", zap.String("flow_id", s.flowID))
	return s.step()
}

// Reset abandons the current quiz
func (s *Session) Reset() {
	s.inQuiz = false
	s.question = 0
	s.answers = nil
}

// QuestionIndex returns the index of the question awaiting an answer
func (s *Session) QuestionIndex() (int, bool) {
	return s.question, s.inQuiz
}

// QuestionCount is the number of questions in the quiz
func (s *Session) QuestionCount() int {
	return len(s.questions)
}

// Question returns question i of the quiz
func (s *Session) Question(i int) (models.Question, bool) {
	if i < 0 || i >= len(s.questions) {
		return models.Question{}, false
	}
	return s.questions[i], true
}

func (s *Session) step() QuizStep {
	q := s.questions[s.question]
	return QuizStep{Index: s.question, Question: &q}
}

// SubmitAnswer records the score of the current question. After the last
// question the total is classified and saved.
func (s *Session) SubmitAnswer(ctx context.Context, score int) (QuizStep, error) {
	if !s.inQuiz {
		return QuizStep{}, ErrNoQuiz
	}
	if score < mood.MinAnswer || score > mood.MaxAnswer {
		return QuizStep{}, fmt.Errorf("%w: score %d", mood.ErrInvalidAnswers, score)
	}

	s.answers = append(s.answers, score)
	s.question++
	if s.question < len(s.questions) {
		return s.step(), nil
	}

	result, err := s.finishQuiz(ctx)
	if err != nil {
		return QuizStep{}, err
	}
	return QuizStep{Index: s.question, Result: result}, nil
}

func (s *Session) finishQuiz(ctx context.Context) (*QuizResult, error) {
	answers := s.answers
	flowID := s.flowID
	s.Reset()

	total, err := mood.ScoreAnswers(answers)
	if err != nil {
		return nil, err
	}
	category := mood.Classify(total)

	result := &QuizResult{
		Category: category,
		Total:    total,
		Answers:  answers,
	}

	result.EntryID, result.SaveErr = s.store.SaveMoodEntry(ctx, category.Name, total, answers)
	if result.SaveErr != nil {
		s.logger.Error("could not save mood entry", zap.String("flow_id", flowID), zap.Error(result.SaveErr))
	} else {
		s.logger.Info("quiz completed",
			zap.String("flow_id", flowID), zap.String("category", category.Name), zap.Int("total", total))
	}
	return result, nil
}

// RequestReading shuffles the deck, draws love, career and finance cards,
// fetches predictions and saves the reading.
func (s *Session) RequestReading(ctx context.Context) (ReadingResult, error) {
	flowID := uuid.NewString()
	log := s.logger.With(zap.String("flow_id", flowID))

	s.deck.Reset()
	cards, err := s.deck.DrawN(len(models.Topics))
	if err != nil {
		return ReadingResult{}, fmt.Errorf("draw spread: %w", err)
	}

	var result ReadingResult
	copy(result.Cards[:], cards)
	for i, c := range result.Cards {
		result.Reading.Cards[i] = c.Name
	}
	log.Info("spread drawn", zap.Strings("cards", result.Reading.Cards[:]))

	result.Reading.Predictions = s.predictor.FetchPrediction(ctx, result.Cards[0], result.Cards[1], result.Cards[2])

	saved, err := s.store.SaveTarotReading(ctx, result.Reading.Cards[:], result.Reading.Predictions)
	if err != nil {
		result.SaveErr = err
		log.Error("could not save tarot reading", zap.Error(err))
		return result, nil
	}
	result.Reading.ID = saved.ID
	result.Reading.CreatedAt = saved.CreatedAt
	return result, nil
}

// ViewHistory returns the latest mood entries, newest first
func (s *Session) ViewHistory(ctx context.Context, limit int) ([]models.MoodEntry, error) {
	return s.store.GetMoodHistory(ctx, limit)
}

// ViewTarotHistory returns the latest readings, newest first
func (s *Session) ViewTarotHistory(ctx context.Context, limit int) ([]models.TarotReading, error) {
	return s.store.GetTarotHistory(ctx, limit)
}

// ViewStats returns how often each category occurred
func (s *Session) ViewStats(ctx context.Context) (Stats, error) {
	counts, err := s.store.GetMoodStatistics(ctx)
	if err != nil {
		return Stats{}, err
	}
	total, err := s.store.CountMoodEntries(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Counts: counts, Total: total}, nil
}

// ViewTrends returns daily averages over the last days days
func (s *Session) ViewTrends(ctx context.Context, days int) ([]models.TrendPoint, error) {
	return s.store.GetMoodTrend(ctx, days)
}

// ViewWeekdays returns averages per day of week
func (s *Session) ViewWeekdays(ctx context.Context) ([]models.WeekdayPoint, error) {
	return s.store.GetMoodByWeekday(ctx)
}
