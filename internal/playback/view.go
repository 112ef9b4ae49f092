package playback

import "fmt"

// Button labels of the advance control.
const (
	ButtonNext   = "Next"
	ButtonSubmit = "Submit"
	ButtonWait   = "Please Wait..."
)

// View is the presentation model of a snapshot. It never exposes which option is correct.
type View struct {
	Phase    string       `json:"phase"`
	Question int          `json:"question"`
	Progress string       `json:"progress,omitempty"`
	Timer    string       `json:"timer,omitempty"`
	Prompt   string       `json:"prompt,omitempty"`
	Options  []OptionView `json:"options,omitempty"`
	Button   string       `json:"button,omitempty"`
	Result   *ResultView  `json:"result,omitempty"`
	Notice   string       `json:"notice,omitempty"`
}

// OptionView is one rendered option.
type OptionView struct {
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Selected bool   `json:"selected"`
}

// ResultView is the result screen; Score and Total are only meaningful for "qna".
type ResultView struct {
	Kind  string `json:"kind"`
	Score int    `json:"score,omitempty"`
	Total int    `json:"total,omitempty"`
}

// View renders s.
func (s State) View() View {
	v := View{Phase: s.Phase.String(), Question: s.Current, Notice: s.Notice}

	switch s.Phase {
	case PhasePlaying:
		question := s.quiz.Questions[s.Current]
		v.Progress = fmt.Sprintf("%02d/%02d", s.Current+1, len(s.quiz.Questions))
		if s.TimerOn && s.Remaining > 0 {
			v.Timer = formatTimer(s.Remaining)
		}
		v.Prompt = question.Prompt
		v.Options = make([]OptionView, len(question.Options))
		for i, opt := range question.Options {
			v.Options[i] = OptionView{Text: opt.Text, ImageURL: opt.ImageURL, Selected: i == s.Selected}
		}
		v.Button = ButtonNext
		if s.Last() {
			v.Button = ButtonSubmit
		}
	case PhaseSubmitting, PhaseResult:
		v.Result = &ResultView{Kind: s.Result.String()}
		if s.Result == ResultQnA {
			v.Result.Score = s.Score
			v.Result.Total = len(s.quiz.Questions)
		}
		if s.Phase == PhaseSubmitting {
			v.Button = ButtonSubmit
			if s.Busy {
				v.Button = ButtonWait
			}
		}
	}
	return v
}

func formatTimer(seconds int) string {
	return fmt.Sprintf("%02d:%02ds", seconds/60, seconds%60)
}
