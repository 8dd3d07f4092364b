package generation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"classroom-backend/internal/models"
)

// ErrParse is wrapped by every *ParseError.
var ErrParse = errors.New("generated quiz could not be parsed")

// ParseError reports where a reply broke the expected format. A reply with
// any error yields no questions at all.
type ParseError struct {
	Line   int // 1-based, 0 when not tied to a line
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ParsedQuiz is the structured result of a generation reply.
type ParsedQuiz struct {
	Title       string
	Description string
	Questions   []models.Question
}

type QuizParser interface {
	Parse(text string) (*ParsedQuiz, error)
}

// QuizFormat pairs a prompt template with the parser that reads its replies.
type QuizFormat interface {
	QuizParser
	Prompt(req QuizRequest) string
}

// NewQuizFormat returns the format registered under name ("lines" or
// "json").
func NewQuizFormat(name string) (QuizFormat, error) {
	switch name {
	case "", "lines":
		return LineFormat{}, nil
	case "json":
		return NewJSONFormat()
	default:
		return nil, fmt.Errorf("unknown quiz format %q", name)
	}
}

// LineFormat is the seven-line block format:
//
//	Question: ...
//	1. ...
//	2. ...
//	3. ...
//	4. ...
//	Correct Answer: N
//	Explanation: ...
//
// Lines outside a block are skipped. Inside a block every line must match.
type LineFormat struct{}

const blockLen = 7

func (LineFormat) Prompt(req QuizRequest) string { return lineQuizPrompt(req) }

func (LineFormat) Parse(text string) (*ParsedQuiz, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var questions []models.Question

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "Question:") {
			i++
			continue
		}

		q := models.Question{
			Question: strings.TrimSpace(strings.TrimPrefix(line, "Question:")),
			Options:  make([]string, 0, 4),
		}

		for j := 1; j <= 4; j++ {
			opt, ok := lineAt(lines, i+j)
			prefix := strconv.Itoa(j) + "."
			if !ok || !strings.HasPrefix(opt, prefix) {
				return nil, &ParseError{Line: i + j + 1, Reason: fmt.Sprintf("expected option %q", prefix)}
			}
			q.Options = append(q.Options, strings.TrimSpace(strings.TrimPrefix(opt, prefix)))
		}

		answerLine, ok := lineAt(lines, i+5)
		if !ok || !strings.HasPrefix(answerLine, "Correct Answer:") {
			return nil, &ParseError{Line: i + 6, Reason: `expected "Correct Answer:"`}
		}
		n, err := leadingInt(strings.TrimSpace(strings.TrimPrefix(answerLine, "Correct Answer:")))
		if err != nil {
			return nil, &ParseError{Line: i + 6, Reason: "correct answer is not a number"}
		}
		if n < 1 || n > 4 {
			return nil, &ParseError{Line: i + 6, Reason: fmt.Sprintf("correct answer %d is not between 1 and 4", n)}
		}
		q.CorrectAnswer = n - 1

		explanation, ok := lineAt(lines, i+6)
		if !ok || !strings.HasPrefix(explanation, "Explanation:") {
			return nil, &ParseError{Line: i + 7, Reason: `expected "Explanation:"`}
		}
		q.Explanation = strings.TrimSpace(strings.TrimPrefix(explanation, "Explanation:"))

		questions = append(questions, q)
		i += blockLen
	}

	if len(questions) == 0 {
		return nil, &ParseError{Reason: "no questions found"}
	}
	return &ParsedQuiz{Questions: questions}, nil
}

func lineAt(lines []string, i int) (string, bool) {
	if i >= len(lines) {
		return "", false
	}
	line := strings.TrimSpace(lines[i])
	return line, line != ""
}

// leadingInt reads the digits at the start of s, so "3 (Paris)" is 3.
func leadingInt(s string) (int, error) {
	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	return strconv.Atoi(s[:end])
}
