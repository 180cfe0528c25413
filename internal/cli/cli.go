package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/palacegrid/internal/app"
	"github.com/vk/palacegrid/internal/notify"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return usageError(fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", ")))
	}
	return nil
}

// AppFactory creates the App once the global flags are parsed.
type AppFactory func(out io.Writer, cfg *app.Config) *app.App

type globalFlags struct {
	logLevel  string
	logFormat string
}

// NewRootCmd returns the palacegrid command tree. Commands write to out.
func NewRootCmd(ctx context.Context, out io.Writer, newApp AppFactory) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "palacegrid",
		Short: "Assemble Palace simulation configs and analyze eigenmode results",
		Long: `palacegrid assembles configuration documents for the Palace
electromagnetic solver from HCL deck files, and derives qubit metrics
(anharmonicity, dispersive shift, Lamb shift, coupling) from eigenmode results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.SetContext(ctx)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError(err) })
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Logging level: debug, info, warn or error.")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log output format: text or json.")

	appFor := func(cmd *cobra.Command) (*app.App, error) {
		cfg, err := app.NewConfig(app.Config{LogLevel: g.logLevel, LogFormat: g.logFormat})
		if err != nil {
			return nil, usageError(err)
		}
		slog.Debug("CLI parameter validation complete.", "command", cmd.Name())
		return newApp(cmd.OutOrStdout(), cfg), nil
	}

	root.AddCommand(
		buildCmd(appFor),
		analyzeCmd(appFor),
		meshCmd(appFor),
		jobCmd(appFor),
		runCmd(appFor),
	)
	return root
}

func notifyFlags(cmd *cobra.Command, o *notify.Options) {
	f := cmd.Flags()
	f.StringVar(&o.URL, "notify-url", "", "socket.io server that receives lifecycle events.")
	f.StringVar(&o.Namespace, "notify-namespace", "/", "socket.io namespace for events.")
	f.BoolVar(&o.InsecureSkipVerify, "notify-insecure", false, "Skip TLS verification for the notify server.")
	f.DurationVar(&o.Timeout, "notify-timeout", notify.DefaultTimeout, "Connection timeout for the notify server.")
}

type appGetter func(cmd *cobra.Command) (*app.App, error)

func buildCmd(appFor appGetter) *cobra.Command {
	var (
		opts       app.BuildOptions
		watch      bool
		healthPort int
	)
	cmd := &cobra.Command{
		Use:   "build [paths...]",
		Short: "Assemble a configuration document from deck files",
		Long: `Load every .hcl deck file under the given files or directories and
write the assembled configuration document. The document is only written when
the Problem, Model, Domains and Solver sections are all declared.

Examples:
  palacegrid build deck/ -o config.json
  palacegrid build deck/ -o config.json --watch`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFor(cmd)
			if err != nil {
				return err
			}
			opts.Paths = args
			if watch {
				if opts.Output == "" || opts.Output == "-" {
					return usageError(errors.New("--watch requires --output"))
				}
				return a.Watch(cmd.Context(), opts, healthPort)
			}
			return a.Build(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Document path; stdout when empty.")
	cmd.Flags().BoolVar(&opts.ArrayEncoding, "array-encoding", false, "Always encode grouped records as arrays.")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild whenever a deck file changes.")
	cmd.Flags().IntVar(&healthPort, "healthcheck-port", 0, "Port for the build status endpoint in watch mode. 0 is disabled.")
	notifyFlags(cmd, &opts.Notify)
	return cmd
}

func analyzeCmd(appFor appGetter) *cobra.Command {
	var (
		opts   app.AnalyzeOptions
		ej, lj float64
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Derive qubit metrics from eigenmode results",
		Long: `Read a saved configuration document together with the eigenmode
frequency table and the port participation ratio table, then report the
junction energy, qubit anharmonicity and, for each resonator mode, the
dispersive shift, Lamb shift and coupling strength.

Examples:
  palacegrid analyze --config config.json --freq out/eig.csv \
    --epr out/port-EPR.csv --port 1 --qubit 1 --resonator 2`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "config", "freq", "epr"); err != nil {
				return err
			}
			a, err := appFor(cmd)
			if err != nil {
				return err
			}
			opts.Junction = app.JunctionFromFlags(ej, lj)
			return a.Analyze(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Config, "config", "", "Saved configuration document.")
	f.StringVar(&opts.Freq, "freq", "", "Eigenmode frequency table (eig.csv).")
	f.StringVar(&opts.EPR, "epr", "", "Participation ratio table (port-EPR.csv).")
	f.IntVar(&opts.EPRColumn, "epr-column", 1, "Value column of the participation ratio table.")
	f.IntVar(&opts.Port, "port", 1, "Index of the lumped port modelling the junction.")
	f.IntVar(&opts.Qubit, "qubit", 1, "Qubit mode number.")
	f.IntSliceVar(&opts.Resonators, "resonator", nil, "Resonator mode number; repeatable.")
	f.Float64Var(&ej, "ej", 0, "Josephson energy in J; overrides the port inductance.")
	f.Float64Var(&lj, "lj", 0, "Josephson inductance in H; overrides the port inductance.")
	return cmd
}

func meshCmd(appFor appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "mesh <file>",
		Short: "List the named attributes of a .msh or .bdf mesh",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFor(cmd)
			if err != nil {
				return err
			}
			return a.Mesh(cmd.Context(), args[0])
		},
	}
}

func jobCmd(appFor appGetter) *cobra.Command {
	var opts app.JobOptions
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Render or submit a Slurm batch script for a solver run",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "profile", "config"); err != nil {
				return err
			}
			if opts.Submit && opts.Script == "" {
				return usageError(app.ErrSubmitNeedsScript)
			}
			a, err := appFor(cmd)
			if err != nil {
				return err
			}
			return a.Job(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Profile, "profile", "", "YAML cluster profile.")
	f.StringVar(&opts.Config, "config", "", "Configuration document the job runs.")
	f.IntVarP(&opts.Processes, "processes", "n", 1, "MPI process count.")
	f.StringVar(&opts.Script, "script", "", "Write the script here instead of stdout.")
	f.BoolVar(&opts.Submit, "submit", false, "Submit the written script with sbatch.")
	return cmd
}

func runCmd(appFor appGetter) *cobra.Command {
	var opts app.RunOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the solver locally on a configuration document",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "config"); err != nil {
				return err
			}
			a, err := appFor(cmd)
			if err != nil {
				return err
			}
			return a.RunSolver(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Config, "config", "", "Configuration document.")
	f.IntVarP(&opts.Processes, "processes", "n", 1, "MPI process count.")
	f.StringVar(&opts.Palace, "palace", "", "Solver executable; defaults to palace.")
	notifyFlags(cmd, &opts.Notify)
	return cmd
}
