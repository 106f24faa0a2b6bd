// Copyright © 2024 The GHLS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/luthersystems/ghls/complete"
	"github.com/luthersystems/ghls/document"
	"github.com/luthersystems/ghls/trigger"
)

const cacheURI = "ghls:cache"

// CacheCommand creates the "cache" cobra command, which loads the caches
// once and prints the completions a client would receive for a kind and
// needle.
func CacheCommand(opts ...Option) *cobra.Command {
	var (
		detail bool
		trace  bool
	)

	cmd := &cobra.Command{
		Use:   "cache [flags] KIND [NEEDLE]",
		Short: "Load the caches and print completions for a kind",
		Long: `Load the issues, members, repositories and wiki pages of the configured
repository, then print the completions for KIND filtered by NEEDLE.

KIND is one of issue, member, repository, wiki or user. The user kind
searches GitHub directly and requires a NEEDLE.

Examples:
  ghls cache issue cron              Issues mentioning "cron"
  ghls cache member                  Every member of the owner
  ghls cache user octo --detail      User search with link text
  ghls cache wiki --trace            Wiki pages and the timing of each load`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(c *cobra.Command, args []string) error {
			kind, ok := trigger.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q", args[0])
			}
			var needle string
			if len(args) > 1 {
				needle = args[1]
			}

			var exporter *tracetest.InMemoryExporter
			if trace {
				exporter = tracetest.NewInMemoryExporter()
				tp := sdktrace.NewTracerProvider(
					sdktrace.WithSyncer(exporter),
					sdktrace.WithSampler(sdktrace.AlwaysSample()),
				)
				prev := otel.GetTracerProvider()
				otel.SetTracerProvider(tp)
				defer func() {
					otel.SetTracerProvider(prev)
					_ = tp.Shutdown(context.Background())
				}()
			}

			ctx := c.Context()
			cfg := newConfig(opts)
			sess, err := cfg.newSession(ctx)
			if err != nil {
				return err
			}

			report := sess.Initialize(ctx)
			fmt.Fprintln(c.ErrOrStderr(), report)
			if err := report.Err(); err != nil {
				fmt.Fprintln(c.ErrOrStderr(), err)
			}

			line := kind.Sigil() + needle
			sess.Docs.Open(cacheURI, 0, line)
			items, err := complete.New(sess).Complete(ctx, cacheURI, document.Position{
				Character: document.UTF16Len(line),
			})
			if err != nil {
				return err
			}
			printItems(c.OutOrStdout(), items, detail)

			if exporter != nil {
				printSpans(c.ErrOrStderr(), exporter.GetSpans())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&detail, "detail", false,
		"Print the detail text and inserted link of each item")
	cmd.Flags().BoolVar(&trace, "trace", false,
		"Print the spans recorded while loading and completing")

	return cmd
}

func printItems(w io.Writer, items []complete.Item, detail bool) {
	for _, item := range items {
		fmt.Fprintln(w, item.Label)
		if !detail {
			continue
		}
		fmt.Fprintf(w, "    %s\n", item.Edit.NewText)
		for _, l := range strings.Split(item.Detail, "\n") {
			fmt.Fprintf(w, "    %s\n", l)
		}
	}
}

func printSpans(w io.Writer, spans tracetest.SpanStubs) {
	for _, span := range spans {
		status := "ok"
		if span.Status.Code == codes.Error {
			status = "error: " + span.Status.Description
		}
		fmt.Fprintf(w, "%-24s %10s  %s\n", span.Name, span.EndTime.Sub(span.StartTime).Round(time.Microsecond), status)
	}
}

func init() {
	rootCmd.AddCommand(CacheCommand())
}
