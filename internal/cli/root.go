package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/melih/patchwork-docker/internal/adapters/docker"
	"github.com/melih/patchwork-docker/internal/adapters/importer"
	"github.com/melih/patchwork-docker/internal/core/preparer"
	"github.com/sirupsen/logrus"
)

const name = "patchwork"

// Globals holds the flags shared by every command.
type Globals struct {
	Quiet   bool   `short:"q" help:"Only log warnings and errors."`
	Verbose int    `short:"v" type:"counter" help:"Increase log verbosity (repeat for more)."`
	WorkDir string `name:"work-dir" env:"PATCHWORK_WORK_DIR" help:"Parent directory for temporary build contexts." placeholder:"PATH"`
}

type root struct {
	Globals `embed:""`

	Prepare    PrepareCmd    `cmd:"" help:"Prepare a build context and print its location."`
	Build      BuildCmd      `cmd:"" help:"Prepare a build context and build an image from it."`
	InputFiles InputFilesCmd `cmd:"" name:"inputfiles" help:"List the local files a preparation reads, as JSON."`
	Serve      ServeCmd      `cmd:"" help:"Serve the HTTP API."`
}

// Execute parses os.Args and runs the selected command.
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdout)
}

// Run parses args, configures logging and runs the selected command, writing
// command output to stdout.
func Run(ctx context.Context, args []string, stdout io.Writer) error {
	var cli root
	parser, err := kong.New(&cli,
		kong.Name(name),
		kong.Description("Assembles Docker build contexts from a local directory or git repository, "+
			"overlaying additional files and applying patches before building."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(stdout, (*io.Writer)(nil)),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	configureLogger(&cli.Globals)
	return kctx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger(g *Globals) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors: !isatty(os.Stderr),
		FullTimestamp: true,
	})
	logrus.SetLevel(logLevel(g))
}

func logLevel(g *Globals) logrus.Level {
	switch {
	case g.Quiet:
		return logrus.WarnLevel
	case g.Verbose == 1:
		return logrus.DebugLevel
	case g.Verbose > 1:
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Creates the context service. The Docker adapter is only created when the
// command builds images; the returned function releases it.
func (g *Globals) service(withBuilder bool) (*preparer.Preparer, func(), error) {
	factory := importer.NewDefaultFactory(g.WorkDir)
	if !withBuilder {
		return preparer.New(factory, nil, preparer.WithTempRoot(g.WorkDir)), func() {}, nil
	}

	dockerAdapter, err := docker.NewAdapter()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := dockerAdapter.Close(); err != nil {
			logrus.WithError(err).Debug("failed to close docker client")
		}
	}
	return preparer.New(factory, dockerAdapter, preparer.WithTempRoot(g.WorkDir)), closeFn, nil
}
