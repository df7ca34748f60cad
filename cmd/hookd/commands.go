package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
	"github.com/joeydtaylor/steeze-hooks/pkg/jsonhook"
	"github.com/joeydtaylor/steeze-hooks/pkg/manifest"
	"github.com/joeydtaylor/steeze-hooks/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-hooks/pkg/relay"
	"github.com/joeydtaylor/steeze-hooks/pkg/serverfx"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type rootOpts struct {
	verbosity int
	manifest  string
}

// manifestPath: --manifest, then HOOKD_MANIFEST, then ./hooks.toml.
func (o *rootOpts) manifestPath() string {
	if o.manifest != "" {
		return o.manifest
	}
	if v := os.Getenv("HOOKD_MANIFEST"); v != "" {
		return v
	}
	return "hooks.toml"
}

// cliLogger writes JSON to stderr so stdout stays the call result.
func (o *rootOpts) cliLogger() *zap.Logger {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(logger.LevelFromVerbosity(o.verbosity))
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zl, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

// NewRootCmd builds the hookd command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOpts{}
	root := &cobra.Command{
		Use:           "hookd",
		Short:         "Run and inspect manifest-defined hook points",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().CountVarP(&o.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG)")
	root.PersistentFlags().StringVarP(&o.manifest, "manifest", "m", "", "Manifest path (default $HOOKD_MANIFEST or hooks.toml)")

	root.AddCommand(newServeCmd(o), newCallCmd(o), newPointsCmd(o))
	return root
}

func newServeCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the manifest's points over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lc := logger.DefaultConfig()
			if o.verbosity > 0 {
				lc.Level = logger.LevelFromVerbosity(o.verbosity)
			}
			app := fx.New(
				serverfx.Module(
					serverfx.WithManifestPath(o.manifestPath()),
					serverfx.WithLogConfig(lc),
				),
				fx.NopLogger,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

type callOpts struct {
	data   string
	file   string
	ref    bool
	dryRun bool
}

func newCallCmd(o *rootOpts) *cobra.Command {
	co := &callOpts{}
	cmd := &cobra.Command{
		Use:   "call <point>",
		Short: "Run one point on a JSON document and print the result",
		Long: `Run one point on a JSON document and print the result.

The document comes from --data, --file, or stdin, in that order.
With --dry-run, relay.publish handlers are captured and printed to stderr
instead of being sent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), o, co, args[0], cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&co.data, "data", "d", "", "Inline JSON document")
	cmd.Flags().StringVarP(&co.file, "file", "f", "", "Read the JSON document from a file")
	cmd.Flags().BoolVar(&co.ref, "ref", false, "Skip payload isolation (handlers share the input)")
	cmd.Flags().BoolVar(&co.dryRun, "dry-run", false, "Capture relay publishes instead of sending them")
	return cmd
}

func runCall(ctx context.Context, o *rootOpts, co *callOpts, point string, stdin io.Reader, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	man, err := manifest.Load(o.manifestPath())
	if err != nil {
		return err
	}
	if _, ok := man.Point(point); !ok {
		return fmt.Errorf("unknown point %q", point)
	}

	doc, err := readDoc(co, stdin)
	if err != nil {
		return err
	}

	zl := o.cliLogger()
	defer func() { _ = zl.Sync() }()

	var (
		pub relay.Publisher
		rec *relay.Recorder
	)
	if co.dryRun {
		rec = &relay.Recorder{}
		pub = rec
	} else {
		if pub, err = relay.NewFromEnv(ctx); err != nil {
			return err
		}
	}

	reg, err := jsonhook.NewRegistry(man, hooks.WithObserver(logger.NewHookObserver(zl)))
	if err != nil {
		return err
	}
	batch, err := jsonhook.Install(reg, man, jsonhook.Deps{Publisher: pub, Logger: zl})
	if err != nil {
		return err
	}
	defer batch.Unregister()

	var opts []hooks.CallOption
	if co.ref {
		opts = append(opts, hooks.AsRef())
	}
	out, err := reg.Call(ctx, point, doc, jsonhook.Info{InvocationID: uuid.NewString(), User: os.Getenv("USER")}, opts...)
	if err != nil {
		return err
	}
	res, ok := out.(jsonhook.Doc)
	if !ok {
		return errors.New("point returned a non-document payload")
	}
	if _, err := stdout.Write(pretty.Pretty(res)); err != nil {
		return err
	}

	if rec != nil {
		for _, m := range rec.Messages() {
			fmt.Fprintf(stderr, "publish %s %s\n", m.Topic, pretty.Ugly(m.Body))
		}
	}
	return nil
}

func readDoc(co *callOpts, stdin io.Reader) (jsonhook.Doc, error) {
	var (
		b   []byte
		err error
	)
	switch {
	case co.data != "":
		b = []byte(co.data)
	case co.file != "":
		b, err = os.ReadFile(co.file)
	default:
		b, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(b) {
		return nil, jsonhook.ErrInvalidDoc
	}
	return jsonhook.Doc(b), nil
}

func newPointsCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "points",
		Short: "List the manifest's points and their handler chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			man, err := manifest.Load(o.manifestPath())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "POINT\tHANDLERS\tGUARD\tTIMEOUT")
			for _, p := range man.Points {
				types := make([]string, 0, len(p.Handlers))
				for _, h := range p.Handlers {
					types = append(types, string(h.Type))
				}
				chain := strings.Join(types, " > ")
				if chain == "" {
					chain = "-"
				}
				timeout := "-"
				if p.TimeoutMS > 0 {
					timeout = fmt.Sprintf("%dms", p.TimeoutMS)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, chain, guardString(p.Guard), timeout)
			}
			return tw.Flush()
		},
	}
}

func guardString(g manifest.Guard) string {
	var parts []string
	if len(g.Roles) > 0 {
		parts = append(parts, "roles="+strings.Join(g.Roles, ","))
	}
	if len(g.Users) > 0 {
		parts = append(parts, "users="+strings.Join(g.Users, ","))
	}
	if g.RequireAuth && len(parts) == 0 {
		parts = append(parts, "auth")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
