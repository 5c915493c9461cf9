package models

import "time"

// Topic names of a three-card spread, in card order
const (
	TopicLove    = "love"
	TopicCareer  = "career"
	TopicFinance = "finance"
)

// Topics lists the spread topics in the order cards are laid out
var Topics = [3]string{TopicLove, TopicCareer, TopicFinance}

// Card is a tarot card from the catalog
type Card struct {
	Name      string
	Value     int
	ImagePath string
}

// Predictions holds one text per spread topic. A value is never empty once
// it leaves the prediction provider.
type Predictions struct {
	Love    string `json:"love"`
	Career  string `json:"career"`
	Finance string `json:"finance"`
}

// Get returns the prediction for topic
func (p Predictions) Get(topic string) string {
	switch topic {
	case TopicLove:
		return p.Love
	case TopicCareer:
		return p.Career
	case TopicFinance:
		return p.Finance
	}
	return ""
}

// Set stores text under topic; unknown topics are ignored
func (p *Predictions) Set(topic, text string) {
	switch topic {
	case TopicLove:
		p.Love = text
	case TopicCareer:
		p.Career = text
	case TopicFinance:
		p.Finance = text
	}
}

// TarotReading is one drawn spread with its predictions
type TarotReading struct {
	ID          int64
	CreatedAt   time.Time
	Cards       [3]string
	Predictions Predictions
}
