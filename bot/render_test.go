package bot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korjavin/catmoodbot/models"
	"github.com/korjavin/catmoodbot/mood"
	"github.com/korjavin/catmoodbot/session"
)

func TestAnswerCallbackRoundTrip(t *testing.T) {
	q, o, err := parseAnswerCallback(answerCallback(3, 4))
	require.NoError(t, err)
	assert.Equal(t, 3, q)
	assert.Equal(t, 4, o)

	for _, bad := range []string{"", "answer:", "answer:1", "answer:x:1", "answer:1:y", "other:1:2", "answer:1:2:3"} {
		_, _, err := parseAnswerCallback(bad)
		assert.ErrorIs(t, err, errBadCallback, "data %q", bad)
	}
}

func TestRenderQuestion(t *testing.T) {
	out := renderQuestion(1, 5, models.Questions[1])
	assert.Contains(t, out, "Question 2 of 5")
	assert.Contains(t, out, models.Questions[1].Text)
	assert.Contains(t, out, "▰▰▰▰▰▰▰▰▱")
}

func TestRenderQuizResult(t *testing.T) {
	r := &session.QuizResult{Category: mood.Classify(25), Total: 25}
	out := renderQuizResult(r)
	assert.Contains(t, out, "Hurricane cat")
	assert.Contains(t, out, "Score: 25 of 25")
	assert.NotContains(t, out, "Could not save")

	r.SaveErr = &models.StorageError{Op: "save", Err: errors.New("disk")}
	assert.Contains(t, renderQuizResult(r), "Could not save")
}

func TestRenderReading(t *testing.T) {
	r := session.ReadingResult{
		Reading: models.TarotReading{
			Cards:       [3]string{"the_high_priestess", "the_sun", "death"},
			Predictions: models.Predictions{Love: "L", Career: "C", Finance: "F"},
		},
	}
	out := renderReading(r)
	assert.Contains(t, out, "❤️ Love: The High Priestess\nL")
	assert.Contains(t, out, "💼 Career: The Sun\nC")
	assert.Contains(t, out, "💰 Finance: Death\nF")
}

func TestRenderHistoryAndStats(t *testing.T) {
	assert.Contains(t, renderHistory(nil), "No quiz results")

	at := time.Date(2026, 10, 15, 9, 5, 0, 0, time.UTC)
	out := renderHistory([]models.MoodEntry{{CreatedAt: at, Category: "Content", Score: 16}})
	assert.Contains(t, out, "2026-10-15 09:05  Content kitty 😺 (16)")

	stats := session.Stats{
		Counts: []models.CategoryCount{{Category: "Storm", Count: 1}, {Category: "Legacy", Count: 1}},
		Total:  2,
	}
	out = renderStats(stats)
	assert.Contains(t, out, "Hurricane cat 🙀: 1 (50.0%)")
	assert.Contains(t, out, "Legacy: 1 (50.0%)")
	assert.Contains(t, renderStats(session.Stats{}), "No statistics")
}

func TestRenderTrendAndWeekdays(t *testing.T) {
	assert.Contains(t, renderTrend(nil, 14), "last 14 days")

	out := renderTrend([]models.TrendPoint{
		{Day: time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), AvgScore: 5, Count: 1},
		{Day: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), AvgScore: 25, Count: 2},
	}, 14)
	assert.Contains(t, out, "10-12 █ 5.0 (1)")
	assert.Contains(t, out, "10-14 ████████████████████ 25.0 (2)")

	out = renderWeekdays([]models.WeekdayPoint{{Weekday: 0, AvgScore: 15, Count: 3}, {Weekday: 6, AvgScore: 10, Count: 1}})
	assert.Contains(t, out, "Mon ")
	assert.Contains(t, out, "Sun ")
}

func TestCardTitle(t *testing.T) {
	assert.Equal(t, "Wheel Of Fortune", cardTitle("wheel_of_fortune"))
	assert.Equal(t, "—", cardTitle(""))
	assert.Equal(t, "Étoile Du Nord", cardTitle("étoile_du_nord"))
	assert.Equal(t, "Шут", cardTitle("шут"))
	assert.True(t, utf8.ValidString(cardTitle("ñandú")))
}

// longPredictions are about the length the oracle returns after translation
func longPredictions() models.Predictions {
	return models.Predictions{
		Love:    strings.Repeat("Звёзды обещают тёплую встречу и долгий разговор. ", 25),
		Career:  strings.Repeat("Your work will be noticed by the right people soon. ", 24),
		Finance: strings.Repeat("Деньги любят тишину, не спешите с покупками. ", 27),
	}
}

func assertFitsAndKeepsText(t *testing.T, text string, chunks []string) {
	t.Helper()
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqual(t, utf16Len(c), maxMessageLen, "chunk %d", i)
		assert.NotEmpty(t, strings.TrimSpace(c), "chunk %d", i)
		assert.True(t, utf8.ValidString(c), "chunk %d", i)
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(chunks, " ")))
}

func TestRenderTarotHistoryOneMessagePerReading(t *testing.T) {
	assert.Equal(t, []string{"No readings yet. Use /tarot to draw your first spread."}, renderTarotHistory(nil))

	at := time.Date(2026, 10, 15, 9, 5, 0, 0, time.UTC)
	var readings []models.TarotReading
	for i := 0; i < 3; i++ {
		readings = append(readings, models.TarotReading{
			ID:          int64(i + 1),
			CreatedAt:   at,
			Cards:       [3]string{"the_fool", "the_sun", "death"},
			Predictions: longPredictions(),
		})
	}
	msgs := renderTarotHistory(readings)
	require.Len(t, msgs, 3)
	assert.True(t, strings.HasPrefix(msgs[0], "🃏 Latest readings:"))
	for _, m := range msgs {
		assert.Contains(t, m, "2026-10-15 09:05")
		assertFitsAndKeepsText(t, m, splitMessage(m, maxMessageLen))
	}
}

func TestRenderReadingSplitsOverLimit(t *testing.T) {
	p := longPredictions()
	p.Love += strings.Repeat("Луна советует довериться сердцу. ", 10)
	r := session.ReadingResult{
		Reading: models.TarotReading{Cards: [3]string{"the_lovers", "the_chariot", "the_star"}, Predictions: p},
		SaveErr: errors.New("disk"),
	}
	out := renderReading(r)
	require.Greater(t, utf16Len(out), maxMessageLen)

	chunks := splitMessage(out, maxMessageLen)
	assert.Greater(t, len(chunks), 1)
	assertFitsAndKeepsText(t, out, chunks)
	assert.Contains(t, chunks[len(chunks)-1], "Could not save")
}

func TestSplitMessage(t *testing.T) {
	assert.Empty(t, splitMessage("  \n ", maxMessageLen))
	assert.Equal(t, []string{"short"}, splitMessage("short\n", maxMessageLen))

	// paragraphs are kept whole when they fit
	text := strings.Repeat("a", 6) + "\n\n" + strings.Repeat("b", 6)
	assert.Equal(t, []string{"aaaaaa", "bbbbbb"}, splitMessage(text, 10))

	// emoji take two UTF-16 units each and must not be cut in half
	cats := strings.Repeat("🐱", 3000)
	chunks := splitMessage(cats, maxMessageLen)
	require.Len(t, chunks, 2)
	assertFitsAndKeepsText(t, cats, chunks)
	assert.Equal(t, cats, strings.Join(chunks, ""))
}

func TestRandomImage(t *testing.T) {
	dir := t.TempDir()
	_, ok := randomImage(dir, "sleepy")
	assert.False(t, ok)

	folder := filepath.Join(dir, "sleepy")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("x"), 0o644))
	_, ok = randomImage(dir, "sleepy")
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(folder, "cat.JPG"), []byte("x"), 0o644))
	path, ok := randomImage(dir, "sleepy")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(folder, "cat.JPG"), path)
	assert.True(t, fileExists(path))
	assert.False(t, fileExists(folder))
}
