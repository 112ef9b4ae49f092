package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"playquiz/internal/client"
	"playquiz/internal/config"
	"playquiz/internal/domain"
	"playquiz/internal/playback"
	"playquiz/internal/terminal"
)

// NewPlayCmd builds the subcommand that plays a quiz in the terminal.
func NewPlayCmd(configPath, backendFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <quiz-id>",
		Short: "Play a quiz in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runPlay(ctx, *configPath, *backendFlag, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(backendFlag, "backend", os.Getenv("BACKEND_URL"), "quiz backend base URL")
	return cmd
}

func runPlay(ctx context.Context, configPath, backendFlag, quizID string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil && !(errors.Is(err, fs.ErrNotExist) && backendFlag != "") {
		return err
	}
	baseURL := backendFlag
	if baseURL == "" {
		baseURL = cfg.Backend.URL
	}
	if baseURL == "" {
		return fmt.Errorf("backend url not configured")
	}

	backend := client.New(baseURL, client.WithTimeout(config.TTLDuration(cfg.Backend.Timeout, 10*time.Second)))
	return play(ctx, backend, quizID, in, out)
}

func play(ctx context.Context, backend playback.Backend, quizID string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	player := playback.NewPlayer(backend, quizID)
	uiDone := make(chan error, 1)
	go func() {
		err := terminal.Run(ctx, player, in, out)
		cancel()
		uiDone <- err
	}()

	state, err := player.Run(ctx)
	if uiErr := <-uiDone; errors.Is(uiErr, terminal.ErrQuit) {
		return uiErr
	}
	if err != nil {
		return err
	}
	switch state.Phase {
	case playback.PhaseNotFound:
		return domain.ErrQuizNotFound
	case playback.PhaseFailed:
		return errors.New(state.Notice)
	}
	return nil
}
