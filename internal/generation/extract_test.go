package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"markdown heading", "# Photosynthesis Lab Report\n\nDescription...", "Photosynthesis Lab Report"},
		{"title prefix", "Title: The Water Cycle\nmore", "Title The Water Cycle"},
		{"skips bullets", "- intro\n* note\nEnergy Transfer", "Energy Transfer"},
		{"only first three lines", "\n\n\nLate Title", DefaultAssignmentTitle},
		{"empty", "", DefaultAssignmentTitle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractTitle(tc.in))
		})
	}
}

func TestParseProblem(t *testing.T) {
	text := "Title: Reverse a String\n\n" +
		"Description: Write a function that reverses text.\n\n" +
		"Instructions: Implement reverse(s).\n\n" +
		"Language: Python\n\n" +
		"Difficulty: Easy\n\n" +
		"Starter Code:\n```python\ndef reverse(s):\n    pass\n```\n\n" +
		"Expected Output or Behavior:\nreverse(\"ab\") == \"ba\"\n"

	p := ParseProblem(text, "go")
	assert.Equal(t, "Reverse a String", p.Title)
	assert.Equal(t, "python", p.Language)
	assert.Equal(t, "easy", p.Difficulty)
	assert.Equal(t, "def reverse(s):\n    pass", p.StartCode)
	assert.Equal(t, "Write a function that reverses text.", p.Description)
	assert.Contains(t, p.Instructions, "Implement reverse(s).")
	assert.Contains(t, p.Instructions, `reverse("ab") == "ba"`)
}

func TestParseProblem_Defaults(t *testing.T) {
	p := ParseProblem("just prose", "")
	assert.Equal(t, "AI Generated Coding Problem", p.Title)
	assert.Equal(t, "javascript", p.Language)
	assert.Equal(t, "medium", p.Difficulty)
	assert.Equal(t, "// Your code here", p.StartCode)
}

func TestSuggestedGrade(t *testing.T) {
	g, ok := SuggestedGrade("Solid work. I'd suggest 8/ 10 overall, then 3/4 later.", 10)
	assert.True(t, ok)
	assert.Equal(t, 8, g)

	_, ok = SuggestedGrade("Grade: 12/10", 10)
	assert.False(t, ok)

	_, ok = SuggestedGrade("Nice effort.", 10)
	assert.False(t, ok)
}
