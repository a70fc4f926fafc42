package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/lessonreview/internal/pdftext"
	"github.com/Lllllllleong/lessonreview/internal/pipeline"
)

func newCheckCmd() *cobra.Command {
	flags := &deckFlags{}

	cmd := &cobra.Command{
		Use:   "check <deck.pdf>...",
		Short: "Extract, normalize and run the structural checks without calling the AI service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.title != "" && len(args) > 1 {
				return fmt.Errorf("--title can only be used with a single deck")
			}
			p := pipeline.New(pdftext.NewExtractor(slog.Default()), nil, slog.Default())

			results, failed := forEachDeck(cmd.Context(), args, flags.concurrency, func(ctx context.Context, path string, pdf []byte) (any, error) {
				in, err := flags.input(path, pdf)
				if err != nil {
					return nil, err
				}
				out, err := p.Check(ctx, in)
				if err != nil {
					return nil, err
				}
				return out, nil
			})
			return writeResults(cmd.OutOrStdout(), results, failed)
		},
	}

	addDeckFlags(cmd, flags)
	return cmd
}
