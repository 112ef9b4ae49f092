package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"playquiz/internal/playback"
)

// ErrQuit reports that the user left before the quiz finished.
var ErrQuit = errors.New("quit by user")

// Controller is the part of playback.Player the terminal drives.
type Controller interface {
	Select(question, option int)
	Next(question int)
	Retry()
	Subscribe() (<-chan playback.State, func())
}

// Run renders every snapshot to out and turns input lines into commands:
// a number picks an option, an empty line or "n" advances, "r" retries a
// failed submission and "q" quits. It returns when playback ends, input
// says quit, or ctx is done. ErrQuit is returned for "q".
func Run(ctx context.Context, c Controller, in io.Reader, out io.Writer) error {
	updates, cancel := c.Subscribe()
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		last     playback.State
		rendered playback.View
		seen     bool
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			last = state
			view := state.View()
			switch {
			case seen && sameScreen(rendered, view):
				if view.Timer != rendered.Timer && view.Timer != "" {
					fmt.Fprintf(out, "  %s\n", view.Timer)
				}
			case seen && rendered.Result != nil && view.Result != nil:
				renderStatus(out, view)
			default:
				Render(out, view)
			}
			rendered, seen = view, true
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if quit := handle(c, last, line, out); quit {
				return ErrQuit
			}
		}
	}
}

func handle(c Controller, s playback.State, line string, out io.Writer) bool {
	switch strings.ToLower(line) {
	case "q", "quit":
		return true
	case "r", "retry":
		c.Retry()
		return false
	case "", "n", "next":
		if s.Phase == playback.PhasePlaying {
			c.Next(s.Current)
		}
		return false
	}
	n, err := strconv.Atoi(line)
	if err != nil || s.Phase != playback.PhasePlaying {
		fmt.Fprintf(out, "? %q not understood (a number picks, enter for next, q quits)\n", line)
		return false
	}
	c.Select(s.Current, n-1)
	return false
}

// sameScreen reports whether two views differ only in their countdown.
func sameScreen(a, b playback.View) bool {
	if a.Phase != b.Phase || a.Question != b.Question || a.Button != b.Button || a.Notice != b.Notice {
		return false
	}
	if len(a.Options) != len(b.Options) {
		return false
	}
	for i := range a.Options {
		if a.Options[i] != b.Options[i] {
			return false
		}
	}
	return (a.Result == nil) == (b.Result == nil)
}

// Render writes one full screen for v.
func Render(out io.Writer, v playback.View) {
	switch v.Phase {
	case playback.PhaseLoading.String():
		fmt.Fprintln(out, "Loading quiz...")
	case playback.PhasePlaying.String():
		header := v.Progress
		if v.Timer != "" {
			header += "   " + v.Timer
		}
		fmt.Fprintf(out, "\n%s\n%s\n", header, v.Prompt)
		for i, opt := range v.Options {
			mark := " "
			if opt.Selected {
				mark = "x"
			}
			fmt.Fprintf(out, "  [%s] %d. %s\n", mark, i+1, optionLabel(opt))
		}
		fmt.Fprintf(out, "(%s)\n", v.Button)
	case playback.PhaseSubmitting.String(), playback.PhaseResult.String():
		if v.Result != nil {
			renderResult(out, *v.Result)
		}
	case playback.PhaseNotFound.String():
		fmt.Fprintln(out, "Quiz not found.")
	}
	renderStatus(out, v)
}

// renderStatus writes the lines that change once the result is on screen.
func renderStatus(out io.Writer, v playback.View) {
	switch {
	case v.Phase == playback.PhaseResult.String():
		fmt.Fprintln(out, "Your answers have been recorded.")
	case v.Result != nil && v.Button == playback.ButtonWait:
		fmt.Fprintln(out, v.Button)
	case v.Result != nil && v.Button == playback.ButtonSubmit:
		fmt.Fprintln(out, "Submission failed, type r to retry.")
	}
	if v.Notice != "" {
		fmt.Fprintf(out, "! %s\n", v.Notice)
	}
}

func renderResult(out io.Writer, r playback.ResultView) {
	switch r.Kind {
	case playback.ResultQnA.String():
		fmt.Fprintf(out, "\nCongrats, quiz is completed!\nYou scored %02d/%02d\n", r.Score, r.Total)
	case playback.ResultPoll.String():
		fmt.Fprintln(out, "\nThank you for participating in the poll!")
	}
}

func optionLabel(opt playback.OptionView) string {
	switch {
	case opt.Text != "" && opt.ImageURL != "":
		return opt.Text + " <" + opt.ImageURL + ">"
	case opt.Text != "":
		return opt.Text
	}
	return "<" + opt.ImageURL + ">"
}
