package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"studymate/internal/app"
	"studymate/internal/config"
	"studymate/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var root = &cobra.Command{
		Use:          "studymate",
		Short:        "Command-line client for the StudyMate backend",
		SilenceUsage: true,
	}
	root.AddCommand(
		loginCMD(),
		documentsCMD(),
		summarizeCMD(),
		explainCMD(),
		quizCMD(),
		askCMD(),
		discussCMD(),
		speakCMD(),
		serveCMD(),
	)
	return root
}

// terminalPrompt shows the sign-in URL on stderr and reads the pasted code from stdin.
func terminalPrompt(cmd *cobra.Command) func(ctx context.Context, authURL string) (string, error) {
	return func(_ context.Context, authURL string) (string, error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL to sign in:\n\n  %s\n\nPaste the authorization code: ", authURL)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read authorization code: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
}

// withSession builds the app, signs in and runs fn. Logs go to stderr.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load()
	log := logging.New(cmd.ErrOrStderr(), logging.Location(cfg.Timezone))

	a, err := app.New(ctx, cfg, log, terminalPrompt(cmd))
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	if _, err := a.Session.SignIn(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
