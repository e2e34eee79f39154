// Package trivia supplies quiz questions: multiple-choice trivia from the
// Open Trivia DB, or locally generated arithmetic problems. Network
// failures never reach the caller; a built-in question is served instead.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"time"

	waLog "go.mau.fi/whatsmeow/util/log"
)

const (
	CategoryTrivia = "trivia"
	CategoryMath   = "math"
)

// Difficulties lists the accepted difficulty names per category.
var Difficulties = map[string][]string{
	CategoryTrivia: {"easy", "medium", "hard"},
	CategoryMath:   {"easy", "hard", "extreme"},
}

// DisplayNames maps category keys to the names shown to players.
var DisplayNames = map[string]string{
	CategoryTrivia: "Trivia Duel",
	CategoryMath:   "Math Showdown",
}

func ValidCategory(category string) bool {
	_, ok := Difficulties[category]
	return ok
}

func ValidDifficulty(category, difficulty string) bool {
	for _, d := range Difficulties[category] {
		if d == difficulty {
			return true
		}
	}
	return false
}

// Question is one multiple-choice question. Exactly one option is correct.
type Question struct {
	Text         string
	Options      []string
	CorrectIndex int
	Category     string
}

func (q Question) Correct() string {
	return q.Options[q.CorrectIndex]
}

type Source struct {
	apiBase string
	client  *http.Client
	rng     *rand.Rand
	log     waLog.Logger
}

func NewSource(apiBase string, rng *rand.Rand, log waLog.Logger) *Source {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Source{
		apiBase: apiBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		rng:     rng,
		log:     log,
	}
}

// Fetch returns a question for the category and difficulty. It never
// fails: math questions are generated locally, and a trivia API error
// falls back to Fallback().
func (s *Source) Fetch(ctx context.Context, category, difficulty string) Question {
	if category == CategoryMath {
		return s.MathProblem(difficulty)
	}
	q, err := s.fetchTrivia(ctx, difficulty)
	if err != nil {
		s.log.Warnf("trivia fetch failed, using fallback question: %v", err)
		return Fallback()
	}
	return q
}

type openTDBResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

func (s *Source) fetchTrivia(ctx context.Context, difficulty string) (Question, error) {
	url := fmt.Sprintf("%s?amount=1&type=multiple&difficulty=%s", s.apiBase, difficulty)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Question{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Question{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Question{}, fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}

	var parsed openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Question{}, err
	}
	if parsed.ResponseCode != 0 || len(parsed.Results) == 0 {
		return Question{}, fmt.Errorf("opentdb response code %d with %d results",
			parsed.ResponseCode, len(parsed.Results))
	}

	r := parsed.Results[0]
	correct := html.UnescapeString(r.CorrectAnswer)
	options := make([]string, 0, len(r.IncorrectAnswers)+1)
	for _, a := range r.IncorrectAnswers {
		options = append(options, html.UnescapeString(a))
	}
	options = append(options, correct)
	s.shuffle(options)

	q := Question{
		Text:     html.UnescapeString(r.Question),
		Options:  options,
		Category: r.Category,
	}
	for i, opt := range options {
		if opt == correct {
			q.CorrectIndex = i
			break
		}
	}
	return q, nil
}

func (s *Source) shuffle(options []string) {
	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

// Fallback is served when the trivia API cannot be reached.
func Fallback() Question {
	return Question{
		Text:         "What is the capital of France?",
		Options:      []string{"London", "Berlin", "Madrid", "Paris"},
		CorrectIndex: 3,
		Category:     "General Knowledge",
	}
}
