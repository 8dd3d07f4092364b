package generation

import (
	"regexp"
	"strconv"
	"strings"
)

const DefaultAssignmentTitle = "AI-Generated Assignment"

// ExtractTitle picks a title from the first three lines of a generated
// assignment. Bullets and overly long lines are skipped; markdown heading
// marks and colons are stripped.
func ExtractTitle(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	for _, line := range lines {
		clean := strings.TrimSpace(line)
		if clean == "" || len(clean) >= 100 || strings.HasPrefix(clean, "-") || strings.HasPrefix(clean, "*") {
			continue
		}
		clean = strings.NewReplacer(":", "", "#", "").Replace(clean)
		if clean = strings.TrimSpace(clean); clean != "" {
			return clean
		}
	}
	return DefaultAssignmentTitle
}

// GeneratedProblem is a coding problem read out of a generation reply.
type GeneratedProblem struct {
	Title        string
	Description  string
	Instructions string
	Language     string
	Difficulty   string
	StartCode    string
}

var (
	titleLine      = regexp.MustCompile(`(?m)^\s*Title:\s*(.+?)\s*$`)
	languageLine   = regexp.MustCompile(`(?m)^\s*Language:\s*(.+?)\s*$`)
	difficultyLine = regexp.MustCompile(`(?m)^\s*Difficulty:\s*(.+?)\s*$`)
	starterCode    = regexp.MustCompile("(?s)```[\\w+#-]*\\n?(.*?)```")
	sectionHeader  = regexp.MustCompile(`(?m)^\s*(Title|Description|Instructions|Language|Difficulty|Starter Code|Expected Output or Behavior):`)
)

// ParseProblem fills in defaults for anything missing, the same way a
// teacher would see an editable draft.
func ParseProblem(text, fallbackLanguage string) GeneratedProblem {
	p := GeneratedProblem{
		Title:      "AI Generated Coding Problem",
		Language:   fallbackLanguage,
		Difficulty: "medium",
		StartCode:  "// Your code here",
	}
	if p.Language == "" {
		p.Language = "javascript"
	}

	if m := titleLine.FindStringSubmatch(text); m != nil {
		p.Title = m[1]
	}
	if m := languageLine.FindStringSubmatch(text); m != nil {
		p.Language = strings.ToLower(m[1])
	}
	if m := difficultyLine.FindStringSubmatch(text); m != nil {
		p.Difficulty = strings.ToLower(m[1])
	}
	if m := starterCode.FindStringSubmatch(text); m != nil {
		p.StartCode = strings.TrimSpace(m[1])
	}

	withoutCode := starterCode.ReplaceAllString(text, "")
	p.Description = section(withoutCode, "Description")
	p.Instructions = section(withoutCode, "Instructions")
	if expected := section(withoutCode, "Expected Output or Behavior"); expected != "" {
		p.Instructions = strings.TrimSpace(p.Instructions + "\n\nExpected output: " + expected)
	}
	return p
}

// section returns the text after "name:" up to the next known header.
func section(text, name string) string {
	locs := sectionHeader.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range locs {
		if text[loc[2]:loc[3]] != name {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return strings.TrimSpace(text[loc[1]:end])
	}
	return ""
}

var gradePattern = regexp.MustCompile(`\b(\d+)/\s*(\d+)\b`)

// SuggestedGrade finds the first "n/m" in feedback text. It reports false
// when there is none or n falls outside 0..points.
func SuggestedGrade(feedback string, points int) (int, bool) {
	m := gradePattern.FindStringSubmatch(feedback)
	if m == nil {
		return 0, false
	}
	grade, err := strconv.Atoi(m[1])
	if err != nil || grade < 0 || grade > points {
		return 0, false
	}
	return grade, true
}
