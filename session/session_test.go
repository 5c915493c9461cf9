package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/korjavin/catmoodbot/deck"
	"github.com/korjavin/catmoodbot/models"
	"github.com/korjavin/catmoodbot/mood"
)

type savedMood struct {
	category string
	total    int
	answers  []int
}

type fakeStore struct {
	saveErr  error
	moods    []savedMood
	readings [][]string
	preds    []models.Predictions
	stats    []models.CategoryCount
	count    int
	now      time.Time
}

func (f *fakeStore) SaveMoodEntry(_ context.Context, category string, total int, answers []int) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.moods = append(f.moods, savedMood{category, total, answers})
	return int64(len(f.moods)), nil
}

func (f *fakeStore) SaveTarotReading(_ context.Context, cards []string, p models.Predictions) (models.TarotReading, error) {
	if f.saveErr != nil {
		return models.TarotReading{}, f.saveErr
	}
	f.readings = append(f.readings, cards)
	f.preds = append(f.preds, p)
	r := models.TarotReading{ID: int64(len(f.readings)), CreatedAt: f.now, Predictions: p}
	copy(r.Cards[:], cards)
	return r, nil
}

func (f *fakeStore) GetMoodHistory(context.Context, int) ([]models.MoodEntry, error) {
	return nil, nil
}

func (f *fakeStore) GetTarotHistory(context.Context, int) ([]models.TarotReading, error) {
	return nil, nil
}

func (f *fakeStore) GetMoodStatistics(context.Context) ([]models.CategoryCount, error) {
	return f.stats, nil
}

func (f *fakeStore) CountMoodEntries(context.Context) (int, error) {
	return f.count, nil
}

func (f *fakeStore) GetMoodTrend(context.Context, int) ([]models.TrendPoint, error) {
	return nil, nil
}

func (f *fakeStore) GetMoodByWeekday(context.Context) ([]models.WeekdayPoint, error) {
	return nil, nil
}

type fakePredictor struct {
	calls int
}

func (f *fakePredictor) FetchPrediction(_ context.Context, love, career, finance models.Card) models.Predictions {
	f.calls++
	return models.Predictions{Love: "l:" + love.Name, Career: "c:" + career.Name, Finance: "f:" + finance.Name}
}

func newTestDeck(t *testing.T, n int) *deck.Deck {
	t.Helper()
	cards := make([]models.Card, n)
	for i := range cards {
		cards[i] = models.Card{Name: fmt.Sprintf("card_%d", i), Value: i}
	}
	d, err := deck.NewDeck(cards)
	require.NoError(t, err)
	return d
}

func TestQuizFlow(t *testing.T) {
	store := &fakeStore{}
	s := New(store, &fakePredictor{}, newTestDeck(t, 5), zap.NewNop())
	ctx := context.Background()

	step := s.StartQuiz()
	require.NotNil(t, step.Question)
	assert.Equal(t, 0, step.Index)

	scores := []int{3, 3, 3, 3, 3}
	for i, score := range scores {
		step, err := s.SubmitAnswer(ctx, score)
		require.NoError(t, err)
		if i < len(scores)-1 {
			require.NotNil(t, step.Question)
			assert.Equal(t, i+1, step.Index)
			assert.Nil(t, step.Result)
			continue
		}
		require.NotNil(t, step.Result)
		assert.Equal(t, 15, step.Result.Total)
		assert.Equal(t, "Content", step.Result.Category.Name)
		assert.NoError(t, step.Result.SaveErr)
	}

	require.Len(t, store.moods, 1)
	assert.Equal(t, savedMood{"Content", 15, scores}, store.moods[0])

	_, inQuiz := s.QuestionIndex()
	assert.False(t, inQuiz)
	_, err := s.SubmitAnswer(ctx, 3)
	assert.ErrorIs(t, err, ErrNoQuiz)
}

func TestQuizSaveFailureKeepsResult(t *testing.T) {
	saveErr := &models.StorageError{Op: "save mood entry", Err: errors.New("disk full")}
	s := New(&fakeStore{saveErr: saveErr}, &fakePredictor{}, newTestDeck(t, 5), nil)
	ctx := context.Background()

	s.StartQuiz()
	var step QuizStep
	var err error
	for i := 0; i < s.QuestionCount(); i++ {
		step, err = s.SubmitAnswer(ctx, 5)
		require.NoError(t, err)
	}
	require.NotNil(t, step.Result)
	assert.Equal(t, "Storm", step.Result.Category.Name)
	assert.Equal(t, 25, step.Result.Total)
	var storageErr *models.StorageError
	assert.ErrorAs(t, step.Result.SaveErr, &storageErr)
}

func TestSubmitAnswerRejectsOutOfRange(t *testing.T) {
	s := New(&fakeStore{}, &fakePredictor{}, newTestDeck(t, 5), nil)
	s.StartQuiz()

	_, err := s.SubmitAnswer(context.Background(), 9)
	assert.ErrorIs(t, err, mood.ErrInvalidAnswers)
	idx, inQuiz := s.QuestionIndex()
	assert.True(t, inQuiz)
	assert.Equal(t, 0, idx)
}

func TestStartQuizResetsProgress(t *testing.T) {
	s := New(&fakeStore{}, &fakePredictor{}, newTestDeck(t, 5), nil)
	ctx := context.Background()

	s.StartQuiz()
	_, err := s.SubmitAnswer(ctx, 1)
	require.NoError(t, err)

	step := s.StartQuiz()
	assert.Equal(t, 0, step.Index)
	idx, _ := s.QuestionIndex()
	assert.Equal(t, 0, idx)
}

func TestRequestReading(t *testing.T) {
	store := &fakeStore{}
	predictor := &fakePredictor{}
	s := New(store, predictor, newTestDeck(t, 3), nil)
	ctx := context.Background()

	// A three-card catalog only works if every reading starts from a full deck.
	for i := 0; i < 3; i++ {
		res, err := s.RequestReading(ctx)
		require.NoError(t, err)
		assert.NoError(t, res.SaveErr)

		names := map[string]bool{}
		for _, c := range res.Reading.Cards {
			names[c] = true
		}
		assert.Len(t, names, 3)
		assert.Equal(t, "l:"+res.Cards[0].Name, res.Reading.Predictions.Love)
		assert.Equal(t, "f:"+res.Cards[2].Name, res.Reading.Predictions.Finance)
	}
	assert.Equal(t, 3, predictor.calls)
	assert.Len(t, store.readings, 3)
}

func TestRequestReadingTakesTimestampFromStore(t *testing.T) {
	stored := time.Date(2026, 10, 16, 5, 30, 0, 0, time.FixedZone("JST", 9*60*60))
	s := New(&fakeStore{now: stored}, &fakePredictor{}, newTestDeck(t, 5), nil)

	res, err := s.RequestReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Reading.ID)
	assert.True(t, stored.Equal(res.Reading.CreatedAt))
	assert.Equal(t, stored.Location(), res.Reading.CreatedAt.Location())
}

func TestRequestReadingSmallCatalog(t *testing.T) {
	s := New(&fakeStore{}, &fakePredictor{}, newTestDeck(t, 2), nil)
	_, err := s.RequestReading(context.Background())
	assert.ErrorIs(t, err, models.ErrEmptyDeck)
}

func TestRequestReadingSaveFailure(t *testing.T) {
	store := &fakeStore{saveErr: &models.StorageError{Op: "save tarot reading", Err: errors.New("locked")}}
	s := New(store, &fakePredictor{}, newTestDeck(t, 5), nil)

	res, err := s.RequestReading(context.Background())
	require.NoError(t, err)
	assert.Error(t, res.SaveErr)
	assert.NotEmpty(t, res.Reading.Predictions.Career)
}

func TestViewStats(t *testing.T) {
	store := &fakeStore{
		stats: []models.CategoryCount{{Category: "Content", Count: 3}, {Category: "Sleepy", Count: 1}},
		count: 4,
	}
	s := New(store, &fakePredictor{}, newTestDeck(t, 3), nil)

	stats, err := s.ViewStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.InDelta(t, 75.0, stats.Counts[0].Percent(stats.Total), 0.001)
}
