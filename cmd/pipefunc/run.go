package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davidroman0O/pipefunc"
	"github.com/davidroman0O/pipefunc/builtins"
	"github.com/davidroman0O/pipefunc/def"
	"github.com/davidroman0O/pipefunc/metrics"
	"github.com/davidroman0O/pipefunc/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply a pipeline to a JSON document",
		Long: `Reads a JSON document from --input (or stdin), applies the pipeline in
--file and prints the result as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath, _ := cmd.Flags().GetString("input")
			if trace, _ := cmd.Flags().GetBool("trace"); trace {
				cfg.Trace.Enabled = true
			}
			if m, _ := cmd.Flags().GetBool("metrics"); m {
				cfg.Metrics.Enabled = true
			}

			p, err := loadPipeline(cmd)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if inputPath != "" && inputPath != "-" {
				f, err := os.Open(inputPath)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runPipeline(cmd.Context(), p, in, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	addFileFlag(cmd)
	cmd.Flags().StringP("input", "i", "-", "JSON input file, - for stdin")
	cmd.Flags().Bool("trace", false, "Write OpenTelemetry spans to stderr")
	cmd.Flags().Bool("metrics", false, "Write Prometheus metrics to stderr after the run")
	return cmd
}

func addFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Pipeline definition (YAML or JSON)")
}

// loadPipeline builds the pipeline named by --file, or by the config.
func loadPipeline(cmd *cobra.Command) (*pipefunc.Pipeline, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = cfg.Pipeline
	}
	if path == "" {
		return nil, fmt.Errorf("no pipeline definition: use --file or set pipeline in the config")
	}

	d, err := def.Load(path)
	if err != nil {
		return nil, err
	}
	return d.Build(builtins.NewRegistry(),
		pipefunc.WithLogger(pipefunc.NewSlogLogger(logger)),
		pipefunc.WithMiddleware(pipefunc.RecoverMiddleware()),
	)
}

func runPipeline(ctx context.Context, p *pipefunc.Pipeline, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var input any
	if err := json.NewDecoder(in).Decode(&input); err != nil {
		return fmt.Errorf("failed to decode input: %w", err)
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		rec, err := metrics.New(reg, cfg.Metrics.Namespace)
		if err != nil {
			return err
		}
		p = p.With(pipefunc.WithMiddleware(rec.Middleware()))
	}

	if cfg.Trace.Enabled {
		tp, shutdown, err := telemetry.InitStdoutTracer(errOut)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()
		// stage counts are exported through --metrics; spans only here
		mw, err := telemetry.NewMiddleware(tp, metricnoop.NewMeterProvider())
		if err != nil {
			return err
		}
		p = p.With(pipefunc.WithMiddleware(mw))
	}

	logger.Debug("running pipeline", "name", p.Name(), "stages", p.Len())
	result, runErr := p.Run(ctx, input)

	if reg != nil {
		if err := writeMetrics(reg, errOut); err != nil {
			logger.Warn("failed to write metrics", "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeMetrics(reg *prometheus.Registry, w io.Writer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
