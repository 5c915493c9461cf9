package models

import "time"

// MoodCategory is one of the cat moods a quiz total can resolve to.
// Name is the stable key written to the event store.
type MoodCategory struct {
	Name        string
	Label       string
	MinScore    int
	MaxScore    int
	Description string
	Color       string
	ImageFolder string
}

// Contains reports whether total falls within the category range
func (c MoodCategory) Contains(total int) bool {
	return c.MinScore <= total && total <= c.MaxScore
}

// MoodCategories partition the attainable totals 5..25 without gaps or overlaps.
var MoodCategories = []MoodCategory{
	{
		Name:  "Sleepy",
		Label: "Sleepy kitty 😴",
		Description: "Today you need rest. Let yourself relax like a cat on a soft blanket. " +
			"Don't demand too much of yourself: hot tea, a warm plaid and a favourite show.",
		MinScore:    5,
		MaxScore:    9,
		Color:       "#9E9E9E",
		ImageFolder: "sleepy",
	},
	{
		Name:  "Thoughtful",
		Label: "Thoughtful cat 🐱",
		Description: "You are in a contemplative mood. A good time for reflection and planning, " +
			"like a cat watching the window and thinking about important things.",
		MinScore:    10,
		MaxScore:    14,
		Color:       "#78909C",
		ImageFolder: "thoughtful",
	},
	{
		Name:  "Content",
		Label: "Content kitty 😺",
		Description: "Your mood is good and steady, like a cat that has eaten and is pleased with life. " +
			"A fine day for ordinary things and small joys. Purr!",
		MinScore:    15,
		MaxScore:    19,
		Color:       "#81C784",
		ImageFolder: "happy",
	},
	{
		Name:  "Playful",
		Label: "Playful cat 😸",
		Description: "You are full of energy and ready for adventure, like a kitten chasing a sunbeam. " +
			"A great day to start something new!",
		MinScore:    20,
		MaxScore:    22,
		Color:       "#FFB74D",
		ImageFolder: "playful",
	},
	{
		Name:  "Storm",
		Label: "Hurricane cat 🙀",
		Description: "Energy is overflowing! You are a cat at 3 a.m., ready to run across the ceiling. " +
			"Use it wisely: today everything is within reach.",
		MinScore:    23,
		MaxScore:    25,
		Color:       "#FF7043",
		ImageFolder: "crazy",
	},
}

// MoodEntry is one completed quiz
type MoodEntry struct {
	ID        int64
	CreatedAt time.Time
	Category  string
	Score     int
	Answers   []int
}

// CategoryCount is how often a category occurred across all history
type CategoryCount struct {
	Category string
	Count    int
}

// Percent returns the share of this category in total, 0 when total is 0
func (c CategoryCount) Percent(total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(c.Count) / float64(total) * 100
}

// TrendPoint is the average quiz total of one calendar day
type TrendPoint struct {
	Day      time.Time
	AvgScore float64
	Count    int
}

// WeekdayPoint is the average quiz total of one day of the week.
// Weekday 0 is Monday and 6 is Sunday.
type WeekdayPoint struct {
	Weekday  int
	AvgScore float64
	Count    int
}

// WeekdayNames maps WeekdayPoint.Weekday to a display name
var WeekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
