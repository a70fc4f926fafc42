package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/lessonreview/internal/services"
)

func newReviewCmd() *cobra.Command {
	flags := &deckFlags{}
	var local bool

	cmd := &cobra.Command{
		Use:   "review <deck.pdf>...",
		Short: "Run the full AI review for one or more decks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.title != "" && len(args) > 1 {
				return fmt.Errorf("--title can only be used with a single deck")
			}
			config, err := services.LoadLessonReviewConfig()
			if err != nil {
				return err
			}
			config.LocalOnly = local

			ctx := cmd.Context()
			f, err := services.NewLessonReviewWithConfig(ctx, *config)
			if err != nil {
				return err
			}
			defer f.Close()

			results, failed := forEachDeck(ctx, args, flags.concurrency, func(ctx context.Context, path string, pdf []byte) (any, error) {
				in, err := flags.input(path, pdf)
				if err != nil {
					return nil, err
				}
				res, err := f.Review(ctx, in)
				if res == nil {
					return nil, err
				}
				return res, err
			})
			return writeResults(cmd.OutOrStdout(), results, failed)
		},
	}

	addDeckFlags(cmd, flags)
	cmd.Flags().BoolVar(&local, "local", false, "keep runs in memory and use built-in prompts")
	return cmd
}

func addDeckFlags(cmd *cobra.Command, flags *deckFlags) {
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "full-lesson", "review mode: full-lesson, chunk-qa, stem-qa or post-design-qa")
	cmd.Flags().StringVarP(&flags.sourceType, "source-type", "s", "inline_notes", "notes layout: inline_notes or separate_notes")
	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "lesson title (defaults to the file name)")
	cmd.Flags().StringVarP(&flags.user, "user", "u", defaultUser(), "identity recorded on the run")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "j", 4, "decks processed at once")
}
