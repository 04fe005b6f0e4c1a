package main

import (
	"github.com/spf13/cobra"
)

func newVisualsCmd(options *rootOptions) *cobra.Command {
	var (
		topic    string
		keywords string
	)

	visualsCmd := &cobra.Command{
		Use:   "visuals",
		Short: "Find candidate images for a topic and print them as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := options.build(cmd)
			if err != nil {
				return err
			}

			urls := application.Workflow.RefreshVisuals(cmd.Context(), topic, splitList(keywords))
			return printJSON(cmd.OutOrStdout(), map[string][]string{"visuals": urls})
		},
	}

	visualsCmd.Flags().StringVar(&topic, "topic", "", "Topic of the images")
	visualsCmd.Flags().StringVar(&keywords, "keywords", "", "Comma separated keywords")
	return visualsCmd
}
