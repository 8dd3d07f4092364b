package generation

import (
	"fmt"
	"strings"
)

// QuizRequest describes a quiz to generate.
type QuizRequest struct {
	Topic        string
	Difficulty   string
	NumQuestions int
}

func lineQuizPrompt(req QuizRequest) string {
	return fmt.Sprintf(`Generate a %s level quiz with %d questions on the topic of %s. Each question should have 4 options, a correct answer, and an explanation. Return the response in the following format:

Question: [Your question here]
1. [Option 1]
2. [Option 2]
3. [Option 3]
4. [Option 4]
Correct Answer: [Correct option number]
Explanation: [Explanation for why the correct answer is correct]`,
		req.Difficulty, req.NumQuestions, req.Topic)
}

func jsonQuizPrompt(req QuizRequest) string {
	return fmt.Sprintf(`Create a %s level quiz with %d multiple-choice questions on the topic of %s.

Generate a title and a brief description. Each question has exactly 4 options, the zero-based index of the correct option, and a one-sentence explanation.

Return ONLY JSON, no markdown, in this shape:
{
  "title": "Quiz Title",
  "description": "Quiz description",
  "questions": [
    {
      "question": "Question text?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": 0,
      "explanation": "Why the answer is correct"
    }
  ]
}`, req.Difficulty, req.NumQuestions, req.Topic)
}

// AssignmentRequest describes an assignment to generate.
type AssignmentRequest struct {
	Subject         string
	Topic           string
	DifficultyLevel string
	Grade           string
}

func AssignmentPrompt(req AssignmentRequest) string {
	difficulty := req.DifficultyLevel
	if difficulty == "" {
		difficulty = "Intermediate"
	}
	grade := req.Grade
	if grade == "" {
		grade = "High School"
	}

	return fmt.Sprintf(`Create an educational assignment for students on the subject of %s, specifically about %s.
Difficulty level: %s
Grade level: %s

Please provide:
1. A clear title for the assignment
2. A detailed description that explains what students need to do
3. Learning objectives (3-5 bullet points)
4. Requirements for completion
5. Grading criteria
6. Suggested resources for students

Format the response in a clear, well-structured way that's ready to be presented to students.`,
		req.Subject, req.Topic, difficulty, grade)
}

// ProblemRequest describes a coding-lab problem to generate.
type ProblemRequest struct {
	Topic      string
	Language   string
	Difficulty string
}

func ProblemPrompt(req ProblemRequest) string {
	return fmt.Sprintf(`As a programming instructor, create a %s coding problem in %s based on the following prompt: "%s".

Format the response as follows:

Title: [Problem title]

Description: [Brief problem description]

Instructions: [Detailed instructions for the student]

Language: [Recommended programming language]

Difficulty: [easy/medium/hard]

Starter Code:
`+"```"+`
[Starter code that students will begin with]
`+"```"+`

Expected Output or Behavior:
[What the solution should accomplish]`,
		req.Difficulty, req.Language, req.Topic)
}

// FeedbackPrompt asks for written feedback and a grade out of points.
func FeedbackPrompt(assignmentTitle, submission string, points int) string {
	return fmt.Sprintf(`You are an educational AI assistant. Based on the following student submission, provide helpful, constructive feedback in plain text (100-200 words). Avoid bold text or formatting. Suggest a good grade out of %d points, written as "<grade>/%d". Focus on strengths and areas for improvement.

Assignment: %s
Student Submission: %s`,
		points, points, assignmentTitle, strings.TrimSpace(submission))
}
