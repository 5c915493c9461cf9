package models

// Option is a single answer choice of a quiz question
type Option struct {
	Text  string
	Score int
}

// Question represents one quiz question with its ordered options
type Question struct {
	Text    string
	Options []Option
}

// Questions is the fixed mood quiz. Every option scores between 1 and 5.
var Questions = []Question{
	{
		Text: "How do you feel right now?",
		Options: []Option{
			{Text: "I want to sleep and do nothing", Score: 1},
			{Text: "A little tired", Score: 2},
			{Text: "Fine, an ordinary day", Score: 3},
			{Text: "Pretty lively!", Score: 4},
			{Text: "Full of energy! 🔥", Score: 5},
		},
	},
	{
		Text: "What would you like to do right now?",
		Options: []Option{
			{Text: "Curl up in a ball and fall asleep", Score: 1},
			{Text: "Sit somewhere quiet", Score: 2},
			{Text: "Watch something", Score: 3},
			{Text: "Hang out with friends", Score: 4},
			{Text: "Do something active!", Score: 5},
		},
	},
	{
		Text: "How do you feel about today?",
		Options: []Option{
			{Text: "I want it to be over already", Score: 1},
			{Text: "Not great...", Score: 2},
			{Text: "Just a regular day", Score: 3},
			{Text: "A good day!", Score: 4},
			{Text: "A great day! Everything is awesome!", Score: 5},
		},
	},
	{
		Text: "Pick the weather closest to your mood:",
		Options: []Option{
			{Text: "🌧️ Rain outside", Score: 1},
			{Text: "☁️ Overcast", Score: 2},
			{Text: "⛅ Partly cloudy", Score: 3},
			{Text: "🌤️ Sun peeking through", Score: 4},
			{Text: "☀️ Bright sunshine!", Score: 5},
		},
	},
	{
		Text: "If you were a cat, what would you be doing?",
		Options: []Option{
			{Text: "Sleeping all day", Score: 1},
			{Text: "Lying around, looking out the window", Score: 2},
			{Text: "Strolling around the house", Score: 3},
			{Text: "Playing with toys", Score: 4},
			{Text: "Racing around like crazy!", Score: 5},
		},
	},
}
