package quiz

import (
	"math"

	"classroom-backend/internal/models"
)

// Score returns the rounded percentage of answers matching their question's
// correct option, and the raw count. A quiz without questions scores 0.
func Score(questions []models.Question, answers []int) (score, correct int) {
	if len(questions) == 0 {
		return 0, 0
	}
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	score = int(math.Round(100 * float64(correct) / float64(len(questions))))
	return score, correct
}
