package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/korjavin/catmoodbot/models"
	"github.com/korjavin/catmoodbot/mood"
	"github.com/korjavin/catmoodbot/session"
)

const (
	callbackPrefix = "answer:"
	barWidth       = 20
	// maxMessageLen is Telegram's text limit, counted in UTF-16 code units
	maxMessageLen = 4096
)

var errBadCallback = errors.New("invalid callback data")

const welcomeText = `Welcome to CatMoodBot! 🐱

Find out which cat you are today and ask the cards about love, career and money.

Commands:
/quiz - Which cat are you today? (5 questions)
/tarot - Draw a three-card spread
/history - Your latest moods
/readings - Your latest tarot readings
/stats - How often each mood came up
/trends - Daily average over the last two weeks
/weekdays - Average mood per day of the week
/help - Show this message`

const saveFailedText = "⚠️ Could not save this result. It is shown above but will be missing from your history."

// answerCallback encodes a quiz answer as inline button data
func answerCallback(question, option int) string {
	return fmt.Sprintf("%s%d:%d", callbackPrefix, question, option)
}

// parseAnswerCallback decodes answer:<question>:<option>
func parseAnswerCallback(data string) (question, option int, err error) {
	if !strings.HasPrefix(data, callbackPrefix) {
		return 0, 0, errBadCallback
	}
	parts := strings.Split(strings.TrimPrefix(data, callbackPrefix), ":")
	if len(parts) != 2 {
		return 0, 0, errBadCallback
	}
	if question, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errBadCallback, err)
	}
	if option, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errBadCallback, err)
	}
	return question, option, nil
}

func renderQuestion(index, count int, q models.Question) string {
	filled := (index + 1) * barWidth / count
	return fmt.Sprintf("Question %d of %d\n%s\n\n%s",
		index+1, count,
		strings.Repeat("▰", filled)+strings.Repeat("▱", barWidth-filled),
		q.Text)
}

func renderQuizResult(r *session.QuizResult) string {
	var sb strings.Builder
	sb.WriteString("✨ Your result ✨\n\n")
	sb.WriteString(r.Category.Label)
	fmt.Fprintf(&sb, "\nScore: %d of %d\n\n", r.Total, mood.MaxTotal)
	sb.WriteString(r.Category.Description)
	if r.SaveErr != nil {
		sb.WriteString("\n\n" + saveFailedText)
	}
	return sb.String()
}

func topicTitle(topic string) string {
	switch topic {
	case models.TopicLove:
		return "❤️ Love"
	case models.TopicCareer:
		return "💼 Career"
	case models.TopicFinance:
		return "💰 Finance"
	}
	return topic
}

// cardTitle turns a catalog name like the_high_priestess into The High Priestess
func cardTitle(name string) string {
	if name == "" {
		return "—"
	}
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func renderReading(r session.ReadingResult) string {
	var sb strings.Builder
	sb.WriteString("🔮 Your spread\n")
	for i, topic := range models.Topics {
		fmt.Fprintf(&sb, "\n%s: %s\n%s\n", topicTitle(topic), cardTitle(r.Reading.Cards[i]), r.Reading.Predictions.Get(topic))
	}
	if r.SaveErr != nil {
		sb.WriteString("\n" + saveFailedText)
	}
	return sb.String()
}

func renderHistory(entries []models.MoodEntry) string {
	if len(entries) == 0 {
		return "No quiz results yet. Use /quiz to take the test."
	}
	var sb strings.Builder
	sb.WriteString("📖 Latest moods:\n")
	for _, e := range entries {
		label := e.Category
		if c, ok := mood.CategoryByName(e.Category); ok {
			label = c.Label
		}
		fmt.Fprintf(&sb, "\n%s  %s (%d)", e.CreatedAt.Format("2006-01-02 15:04"), label, e.Score)
	}
	return sb.String()
}

// renderTarotHistory returns one message per reading so a long spread
// never drags its neighbours over the message limit.
func renderTarotHistory(readings []models.TarotReading) []string {
	if len(readings) == 0 {
		return []string{"No readings yet. Use /tarot to draw your first spread."}
	}
	msgs := make([]string, 0, len(readings))
	for i, r := range readings {
		var sb strings.Builder
		if i == 0 {
			sb.WriteString("🃏 Latest readings:\n\n")
		}
		sb.WriteString(r.CreatedAt.Format("2006-01-02 15:04"))
		for j, topic := range models.Topics {
			fmt.Fprintf(&sb, "\n%s: %s. %s", topicTitle(topic), cardTitle(r.Cards[j]), r.Predictions.Get(topic))
		}
		msgs = append(msgs, sb.String())
	}
	return msgs
}

func renderStats(stats session.Stats) string {
	if stats.Total == 0 {
		return "No statistics yet. Use /quiz to take the test."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Your moods (%d results):\n", stats.Total)
	for _, c := range stats.Counts {
		label := c.Category
		if cat, ok := mood.CategoryByName(c.Category); ok {
			label = cat.Label
		}
		fmt.Fprintf(&sb, "\n%s: %d (%.1f%%)", label, c.Count, c.Percent(stats.Total))
	}
	return sb.String()
}

// bar draws avg on the MinTotal..MaxTotal scale
func bar(avg float64) string {
	n := int((avg - mood.MinTotal + 1) / float64(mood.MaxTotal-mood.MinTotal+1) * barWidth)
	if n < 1 {
		n = 1
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("█", n)
}

func renderTrend(points []models.TrendPoint, days int) string {
	if len(points) == 0 {
		return fmt.Sprintf("No quiz results in the last %d days.", days)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 Average score per day, last %d days:\n", days)
	for _, p := range points {
		fmt.Fprintf(&sb, "\n%s %s %.1f (%d)", p.Day.Format("01-02"), bar(p.AvgScore), p.AvgScore, p.Count)
	}
	return sb.String()
}

func renderWeekdays(points []models.WeekdayPoint) string {
	if len(points) == 0 {
		return "No statistics yet. Use /quiz to take the test."
	}
	var sb strings.Builder
	sb.WriteString("🗓 Average score per weekday:\n")
	for _, p := range points {
		name := strconv.Itoa(p.Weekday)
		if p.Weekday >= 0 && p.Weekday < len(models.WeekdayNames) {
			name = models.WeekdayNames[p.Weekday]
		}
		fmt.Fprintf(&sb, "\n%s %s %.1f (%d)", name, bar(p.AvgScore), p.AvgScore, p.Count)
	}
	return sb.String()
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// splitMessage cuts text into chunks of at most limit UTF-16 units,
// preferring paragraph, then line, then word boundaries.
func splitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	var chunks []string
	for utf16Len(text) > limit {
		cut := cutPoint(text, limit)
		chunks = append(chunks, strings.TrimRightFunc(text[:cut], unicode.IsSpace))
		text = strings.TrimLeftFunc(text[cut:], unicode.IsSpace)
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// cutPoint returns a byte offset in text whose prefix fits in limit units
func cutPoint(text string, limit int) int {
	end, n := len(text), 0
	for i, r := range text {
		n += utf16.RuneLen(r)
		if n > limit {
			end = i
			break
		}
	}
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(text[:end], sep); i > 0 {
			return i
		}
	}
	if end == 0 {
		// limit is smaller than the first rune
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	return end
}
