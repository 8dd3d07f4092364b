package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"classroom-backend/internal/models"
)

const quizSchemaURL = "schema://generated-quiz.json"

const quizSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "title": {"type": "string"},
    "description": {"type": "string"},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "options", "correctAnswer"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "minItems": 4,
            "maxItems": 4,
            "items": {"type": "string", "minLength": 1}
          },
          "correctAnswer": {"type": "integer", "minimum": 0, "maximum": 3},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// JSONFormat asks the model for machine-readable output and checks it
// against a JSON schema before trusting it.
type JSONFormat struct {
	schema *jsonschema.Schema
}

func NewJSONFormat() (*JSONFormat, error) {
	var doc any
	if err := json.Unmarshal([]byte(quizSchema), &doc); err != nil {
		return nil, fmt.Errorf("parse quiz schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(quizSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add quiz schema: %w", err)
	}
	schema, err := c.Compile(quizSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile quiz schema: %w", err)
	}
	return &JSONFormat{schema: schema}, nil
}

func (f *JSONFormat) Prompt(req QuizRequest) string { return jsonQuizPrompt(req) }

func (f *JSONFormat) Parse(text string) (*ParsedQuiz, error) {
	raw := extractJSON(text)
	if raw == "" {
		return nil, &ParseError{Reason: "no JSON object found"}
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := f.schema.Validate(doc); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("schema validation failed: %v", err)}
	}

	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Questions   []struct {
			Question      string   `json:"question"`
			Options       []string `json:"options"`
			CorrectAnswer int      `json:"correctAnswer"`
			Explanation   string   `json:"explanation"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	out := &ParsedQuiz{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Questions:   make([]models.Question, 0, len(payload.Questions)),
	}
	for _, q := range payload.Questions {
		out.Questions = append(out.Questions, models.Question{
			Question:      strings.TrimSpace(q.Question),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   strings.TrimSpace(q.Explanation),
		})
	}
	return out, nil
}

// extractJSON prefers a fenced block and falls back to the outermost braces.
func extractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
