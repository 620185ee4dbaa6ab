package commands

import (
	"github.com/hadi77ir/go-searchpage/paginate"
	"github.com/hadi77ir/go-searchpage/query"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCursorCommand creates the cursor command
func newCursorCommand(flags *globalFlags, open BackendOpener) *cobra.Command {
	var (
		size     int
		token    string
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Walk results with search_after cursors, one JSON page per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(flags, open)
			if err != nil {
				return err
			}
			defer sess.close()

			params := query.CursorParams{Cursor: token, Size: size}
			for n := 1; ; n++ {
				page, err := paginate.Cursor(cmd.Context(), sess.search, params, sess.options...)
				if err != nil {
					return err
				}
				if err := printPage(cmd.OutOrStdout(), page); err != nil {
					return err
				}
				if !page.HasNextPage() || (maxPages > 0 && n >= maxPages) {
					sess.logger.Debug("cursor walk finished", zap.Int("pages", n), zap.Bool("more", page.HasNextPage()))
					return nil
				}
				params.Cursor = *page.NextPage
			}
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "page size (0 uses the configured default)")
	cmd.Flags().StringVar(&token, "cursor", "", "cursor to resume from")
	cmd.Flags().IntVar(&maxPages, "max-pages", 1, "stop after this many pages (0 walks every page)")
	return cmd
}
