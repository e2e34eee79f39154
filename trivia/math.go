package trivia

import (
	"fmt"
	"math"
	"strconv"
)

// MathProblem generates an arithmetic question. Operand ranges and
// operator sets grow with difficulty; division results are rounded to
// two decimals.
func (s *Source) MathProblem(difficulty string) Question {
	var limit int
	var operators []byte
	switch difficulty {
	case "hard":
		limit = 50
		operators = []byte{'+', '-', '*'}
	case "extreme":
		limit = 100
		operators = []byte{'+', '-', '*', '/'}
	default: // easy
		limit = 10
		operators = []byte{'+', '-'}
	}

	a := s.rng.Intn(limit) + 1
	b := s.rng.Intn(limit) + 1
	op := operators[s.rng.Intn(len(operators))]

	var answer float64
	switch op {
	case '+':
		answer = float64(a + b)
	case '-':
		answer = float64(a - b)
	case '*':
		answer = float64(a * b)
	case '/':
		answer = math.Round(float64(a)/float64(b)*100) / 100
	}

	correct := formatNumber(answer)
	options := []string{correct}
	for len(options) < 4 {
		wrong := formatNumber(answer + float64(s.rng.Intn(11)-5))
		if !contains(options, wrong) {
			options = append(options, wrong)
		}
	}
	s.shuffle(options)

	q := Question{
		Text:     fmt.Sprintf("What is %d %c %d?", a, op, b),
		Options:  options,
		Category: "Mathematics",
	}
	for i, opt := range options {
		if opt == correct {
			q.CorrectIndex = i
			break
		}
	}
	return q
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
