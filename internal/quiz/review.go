package quiz

import (
	"iter"

	"classroom-backend/internal/models"
)

// ReviewItem shows one question with the student's choice next to the
// correct one.
type ReviewItem struct {
	Index       int      `json:"index"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Selected    int      `json:"selected"`
	Correct     int      `json:"correct"`
	IsCorrect   bool     `json:"is_correct"`
	Explanation string   `json:"explanation,omitempty"`
}

// Review is a cursor over a submitted attempt. It holds its own copy of the
// questions and answers, so moving it never touches the session.
type Review struct {
	items []ReviewItem
	pos   int
}

func newReview(questions []models.Question, answers []int) *Review {
	items := make([]ReviewItem, len(questions))
	for i, q := range questions {
		selected := Unanswered
		if i < len(answers) {
			selected = answers[i]
		}
		items[i] = ReviewItem{
			Index:       i,
			Question:    q.Question,
			Options:     append([]string(nil), q.Options...),
			Selected:    selected,
			Correct:     q.CorrectAnswer,
			IsCorrect:   selected == q.CorrectAnswer,
			Explanation: q.Explanation,
		}
	}
	return &Review{items: items}
}

func (r *Review) Len() int { return len(r.items) }

func (r *Review) Position() int { return r.pos }

// Current returns the item under the cursor; ok is false for an empty quiz.
func (r *Review) Current() (item ReviewItem, ok bool) {
	if r.pos < 0 || r.pos >= len(r.items) {
		return ReviewItem{}, false
	}
	return r.copyOf(r.pos), true
}

func (r *Review) Next() bool {
	if r.pos+1 >= len(r.items) {
		return false
	}
	r.pos++
	return true
}

func (r *Review) Prev() bool {
	if r.pos == 0 {
		return false
	}
	r.pos--
	return true
}

func (r *Review) Seek(i int) bool {
	if i < 0 || i >= len(r.items) {
		return false
	}
	r.pos = i
	return true
}

func (r *Review) Rewind() { r.pos = 0 }

// All yields every item in order without moving the cursor.
func (r *Review) All() iter.Seq[ReviewItem] {
	return func(yield func(ReviewItem) bool) {
		for i := range r.items {
			if !yield(r.copyOf(i)) {
				return
			}
		}
	}
}

func (r *Review) copyOf(i int) ReviewItem {
	item := r.items[i]
	item.Options = append([]string(nil), item.Options...)
	return item
}
