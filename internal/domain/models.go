package domain

// QuizType selects how answers are tallied.
type QuizType string

const (
	QuizTypeQnA  QuizType = "Q&A"
	QuizTypePoll QuizType = "Poll"
)

// Option is one selectable answer of a question.
type Option struct {
	ID              string `json:"_id,omitempty" yaml:"id,omitempty"`
	Text            string `json:"optionText,omitempty" yaml:"text,omitempty"`
	ImageURL        string `json:"optionImageUrl,omitempty" yaml:"imageUrl,omitempty"`
	IsCorrectAnswer bool   `json:"isCorrectAnswer" yaml:"correct"`
	PollCount       int    `json:"optionPollCount" yaml:"pollCount"`
}

// Question carries its prompt, options and the tally counters persisted on submission.
type Question struct {
	ID             string   `json:"_id,omitempty" yaml:"id,omitempty"`
	Prompt         string   `json:"pollQuestion" yaml:"prompt"`
	Options        []Option `json:"optionSets" yaml:"options"`
	TotalAttempted int      `json:"totalAttempted" yaml:"totalAttempted"`
	TotalCorrect   int      `json:"totalCorrect" yaml:"totalCorrect"`
	TotalIncorrect int      `json:"totalIncorrect" yaml:"totalIncorrect"`
}

// Quiz is an ordered set of questions of a single type.
type Quiz struct {
	ID        string     `json:"_id" yaml:"id"`
	Name      string     `json:"quizName,omitempty" yaml:"name,omitempty"`
	Type      QuizType   `json:"quizType" yaml:"type"`
	Timer     int        `json:"timer" yaml:"timer"` // seconds per question, 0 = untimed
	Questions []Question `json:"questionSets" yaml:"questions"`
}

// Clone returns a copy sharing no slices with q.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]Option(nil), q.Options...)
	return out
}

// Clone returns a deep copy of the quiz.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = CloneQuestions(q.Questions)
	return out
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(questions []Question) []Question {
	if questions == nil {
		return nil
	}
	out := make([]Question, len(questions))
	for i, question := range questions {
		out[i] = question.Clone()
	}
	return out
}

// Validate checks the structural invariants a quiz must satisfy to be played.
func (q Quiz) Validate() error {
	switch q.Type {
	case QuizTypeQnA, QuizTypePoll:
	default:
		return ErrUnsupportedQuizType
	}
	if len(q.Questions) == 0 {
		return ErrEmptyQuiz
	}
	for _, question := range q.Questions {
		if len(question.Options) == 0 {
			return ErrQuestionWithoutOptions
		}
	}
	if q.Timer < 0 {
		return ErrInvalidTimer
	}
	return nil
}
