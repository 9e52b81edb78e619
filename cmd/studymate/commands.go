package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"studymate/internal/app"
	"studymate/internal/model"
	"studymate/internal/service"
)

func loginCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and print the signed-in principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, a *app.App) error {
				return printJSON(cmd.OutOrStdout(), a.Session.CurrentPrincipal())
			})
		},
	}
}

func documentsCMD() *cobra.Command {
	docs := &cobra.Command{
		Use:   "documents",
		Short: "List, upload and read documents",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				items, err := a.Study.Documents(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), items)
			})
		},
	}

	var name, subject, topic string
	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a PDF, JPEG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			filename := filepath.Base(args[0])
			if name == "" {
				name = strings.TrimSuffix(filename, filepath.Ext(filename))
			}
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				doc, err := a.Study.Upload(ctx, service.UploadInput{
					File:     f,
					Filename: filename,
					Name:     name,
					Subject:  subject,
					Topic:    topic,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), doc)
			})
		},
	}
	upload.Flags().StringVar(&name, "name", "", "display name (default: file name)")
	upload.Flags().StringVar(&subject, "subject", "", "subject")
	upload.Flags().StringVar(&topic, "topic", "", "topic")

	content := &cobra.Command{
		Use:   "content <document-id>",
		Short: "Print the extracted text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				c, err := a.Study.Content(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), c.Content)
				return err
			})
		},
	}

	docs.AddCommand(list, upload, content)
	return docs
}

// resultCMD is a command that prints the text of a per-document AI operation.
func resultCMD(use, short string, op func(a *app.App) func(ctx context.Context, id string) (*model.AIResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <document-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				res, err := op(a)(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), res.ResultText)
				return err
			})
		},
	}
}

func summarizeCMD() *cobra.Command {
	return resultCMD("summarize", "Summarize a document", func(a *app.App) func(context.Context, string) (*model.AIResult, error) {
		return a.Study.Summarize
	})
}

func explainCMD() *cobra.Command {
	return resultCMD("explain", "Explain a document", func(a *app.App) func(context.Context, string) (*model.AIResult, error) {
		return a.Study.Explain
	})
}

func quizCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz <document-id>",
		Short: "Generate quiz questions for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				q, err := a.Study.Quiz(ctx, args[0])
				if err != nil {
					return err
				}
				for i, item := range q.Items {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n\n", i+1, item); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func askCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <document-id> <question>",
		Short: "Ask a question about a document",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args[1:], " ")
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				res, err := a.Study.Ask(ctx, args[0], question)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), res.ResultText)
				return err
			})
		},
	}
}

func discussCMD() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "discuss <document-id>",
		Short: "Read a document's discussion board, or post with --message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				if message != "" {
					if err := a.Study.Discuss(ctx, args[0], message); err != nil {
						return err
					}
				}
				msgs, err := a.Study.Discussions(ctx, args[0])
				if err != nil {
					return err
				}
				for _, m := range msgs {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", m.Timestamp, m.UserName, m.Message); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "message to post first")
	return cmd
}

func speakCMD() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Synthesize speech and write the audio to a file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return withSession(cmd, func(ctx context.Context, a *app.App) error {
				clip, err := a.Study.Speak(ctx, text)
				if err != nil {
					return err
				}
				defer a.Study.Release(ctx, clip.Key)

				rc, _, err := a.Study.OpenClip(ctx, clip.Key)
				if err != nil {
					return err
				}
				defer rc.Close()

				path := out
				if path == "" {
					path = clip.Key
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if _, err := io.Copy(f, rc); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes (%s) to %s\n", clip.Size, clip.ContentType, path)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: clip key)")
	return cmd
}
