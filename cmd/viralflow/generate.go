package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanhariharan/ViralFlow.ai/internal/pipeline"
)

var errNoContent = errors.New("provide the content as arguments, with --file, or on stdin")

func newGenerateCmd(options *rootOptions) *cobra.Command {
	var (
		platforms string
		tone      string
		file      string
	)

	generateCmd := &cobra.Command{
		Use:   "generate [content...]",
		Short: "Generate posts for the given platforms and print them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}

			application, err := options.build(cmd)
			if err != nil {
				return err
			}

			response, err := application.Workflow.Generate(cmd.Context(), pipeline.Request{
				BaseContent: content,
				Platforms:   splitList(platforms),
				Tone:        tone,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), response)
		},
	}

	generateCmd.Flags().StringVar(&platforms, "platforms", "twitter,linkedin", "Comma separated platforms: "+supportedPlatforms())
	generateCmd.Flags().StringVar(&tone, "tone", "Professional", "Brand tone")
	generateCmd.Flags().StringVarP(&file, "file", "f", "", "Read the content from a file ('-' for stdin)")
	return generateCmd
}

// readContent takes the content from the arguments, a file, or stdin when
// the file is "-".
func readContent(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", errNoContent
	}
}

func supportedPlatforms() string {
	names := make([]string, len(pipeline.AllPlatforms))
	for index, platform := range pipeline.AllPlatforms {
		names[index] = string(platform)
	}
	return strings.Join(names, ", ")
}
