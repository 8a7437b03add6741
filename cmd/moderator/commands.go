package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kapu/toxicity-agent-go/internal/adapter"
	"github.com/kapu/toxicity-agent-go/internal/domain"
	"github.com/kapu/toxicity-agent-go/pkg/errors"
	"github.com/spf13/cobra"
)

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <text>",
		Short: "Analyze a single text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.NewValidationError("text must not be blank", "text", text)
			}

			container, logger, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer container.Close()
			defer logger.Sync() //nolint:errcheck

			result, err := container.Pipeline.Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), opts.format, result)
		},
	}
}

func newBatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch [file|-]",
		Short: "Analyze one text per line from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.NewValidationError("cannot open input file", "file", args[0])
				}
				defer f.Close()
				in = f
			}

			texts, err := readLines(in)
			if err != nil {
				return err
			}
			if len(texts) == 0 {
				return errors.NewValidationError("no texts to analyze", "input", len(texts))
			}

			container, logger, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer container.Close()
			defer logger.Sync() //nolint:errcheck

			results, err := container.Pipeline.BatchAnalyze(cmd.Context(), texts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, result := range results {
				if err := writeResult(out, opts.format, result); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr(), adapter.NewResponseFormatter("").FormatBatchSummary(domain.SummarizeBatch(results)))
			return nil
		},
	}
}

func newListenCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Moderate live chat through the chat gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, logger, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer container.Close()
			defer logger.Sync() //nolint:errcheck

			listener, ws, err := container.NewListener()
			if err != nil {
				return err
			}

			logger.Info("Listening for chat messages, waiting for signals...")
			if err := listener.Run(cmd.Context(), ws); err != nil {
				return err
			}
			logger.Info("Shutdown complete")
			return nil
		},
	}
}

// readLines returns the trimmed non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var texts []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewValidationError("failed to read input", "input", err.Error())
	}
	return texts, nil
}

func writeResult(w io.Writer, format string, result *domain.AnalysisResult) error {
	if format == "text" {
		_, err := fmt.Fprintf(w, "%s\n\n", adapter.NewResponseFormatter("").FormatAnalysis(result))
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(result)
}
