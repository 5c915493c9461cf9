// Package mood turns quiz answers into a cat mood category.
package mood

import (
	"errors"
	"fmt"

	"github.com/korjavin/catmoodbot/models"
)

const (
	// QuestionCount is the number of answers a completed quiz has
	QuestionCount = 5
	MinAnswer     = 1
	MaxAnswer     = 5

	MinTotal = QuestionCount * MinAnswer
	MaxTotal = QuestionCount * MaxAnswer
)

// ErrInvalidAnswers is returned for a wrong number of answers or an out of range score
var ErrInvalidAnswers = errors.New("invalid quiz answers")

// ScoreAnswers sums the per-question scores of a completed quiz
func ScoreAnswers(answers []int) (int, error) {
	if len(answers) != QuestionCount {
		return 0, fmt.Errorf("%w: got %d answers, want %d", ErrInvalidAnswers, len(answers), QuestionCount)
	}

	total := 0
	for i, a := range answers {
		if a < MinAnswer || a > MaxAnswer {
			return 0, fmt.Errorf("%w: answer %d has score %d", ErrInvalidAnswers, i+1, a)
		}
		total += a
	}
	return total, nil
}

// Classify returns the category whose range contains total.
// A total outside every range yields DefaultCategory instead of an error.
func Classify(total int) models.MoodCategory {
	for _, c := range models.MoodCategories {
		if c.Contains(total) {
			return c
		}
	}
	return DefaultCategory()
}

// DefaultCategory is the fallback for totals no category claims
func DefaultCategory() models.MoodCategory {
	return models.MoodCategories[0]
}

// CategoryByName finds a category by its stored name
func CategoryByName(name string) (models.MoodCategory, bool) {
	for _, c := range models.MoodCategories {
		if c.Name == name {
			return c, true
		}
	}
	return models.MoodCategory{}, false
}

// ValidateCategories checks that cats cover every total from MinTotal to
// MaxTotal exactly once and that names are unique.
func ValidateCategories(cats []models.MoodCategory) error {
	if len(cats) == 0 {
		return &models.ConfigError{Source: "mood categories", Msg: "no categories defined"}
	}

	names := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.Name == "" {
			return &models.ConfigError{Source: "mood categories", Msg: "category without name"}
		}
		if names[c.Name] {
			return &models.ConfigError{Source: "mood categories", Msg: fmt.Sprintf("duplicate category %q", c.Name)}
		}
		names[c.Name] = true
		if c.MinScore > c.MaxScore {
			return &models.ConfigError{Source: "mood categories", Msg: fmt.Sprintf("category %q has min %d above max %d", c.Name, c.MinScore, c.MaxScore)}
		}
		if c.MinScore < MinTotal || c.MaxScore > MaxTotal {
			return &models.ConfigError{Source: "mood categories", Msg: fmt.Sprintf("category %q range [%d,%d] leaves [%d,%d]", c.Name, c.MinScore, c.MaxScore, MinTotal, MaxTotal)}
		}
	}

	for total := MinTotal; total <= MaxTotal; total++ {
		var owners []string
		for _, c := range cats {
			if c.Contains(total) {
				owners = append(owners, c.Name)
			}
		}
		switch len(owners) {
		case 0:
			return &models.ConfigError{Source: "mood categories", Msg: fmt.Sprintf("total %d has no category", total)}
		case 1:
		default:
			return &models.ConfigError{Source: "mood categories", Msg: fmt.Sprintf("total %d claimed by %v", total, owners)}
		}
	}
	return nil
}

// ValidateQuestions checks the quiz has QuestionCount questions, each with
// at least one option scored within MinAnswer..MaxAnswer.
func ValidateQuestions(qs []models.Question) error {
	if len(qs) != QuestionCount {
		return &models.ConfigError{Source: "questions", Msg: fmt.Sprintf("got %d questions, want %d", len(qs), QuestionCount)}
	}
	for i, q := range qs {
		if q.Text == "" || len(q.Options) == 0 {
			return &models.ConfigError{Source: "questions", Msg: fmt.Sprintf("question %d is incomplete", i+1)}
		}
		for _, o := range q.Options {
			if o.Score < MinAnswer || o.Score > MaxAnswer {
				return &models.ConfigError{Source: "questions", Msg: fmt.Sprintf("question %d option %q scores %d", i+1, o.Text, o.Score)}
			}
		}
	}
	return nil
}
