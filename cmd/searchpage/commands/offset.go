package commands

import (
	"github.com/hadi77ir/go-searchpage/paginate"
	"github.com/hadi77ir/go-searchpage/query"
	"github.com/spf13/cobra"
)

// newOffsetCommand creates the offset command
func newOffsetCommand(flags *globalFlags, open BackendOpener) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "offset",
		Short: "Fetch one window of results with size/from",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(flags, open)
			if err != nil {
				return err
			}
			defer sess.close()

			var params query.LimitOffsetParams
			if cmd.Flags().Changed("limit") {
				params.Limit = &limit
			}
			if cmd.Flags().Changed("offset") {
				params.Offset = &offset
			}

			page, err := paginate.Offset(cmd.Context(), sess.search, params, sess.options...)
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of results to skip")
	return cmd
}
