package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/gqlcompose/gqlcompose/internal/compose"
	"github.com/gqlcompose/gqlcompose/internal/descriptor"
	"github.com/gqlcompose/gqlcompose/internal/eventbus"
	"github.com/gqlcompose/gqlcompose/internal/events"
	"github.com/gqlcompose/gqlcompose/internal/gen"
	"github.com/gqlcompose/gqlcompose/internal/otel"
	"github.com/gqlcompose/gqlcompose/internal/runid"
	"github.com/gqlcompose/gqlcompose/internal/schemacheck"
)

const rootUsage = `gqlcompose — compose GraphQL resolver types from annotated parts

USAGE:
  gqlcompose <command> [flags]

COMMANDS:
  generate         Scan annotated sources and write the composed files
  check            Scan and merge without writing; exit non-zero on violations
  check-schema     Additionally verify composites against a GraphQL SDL file
  help             Show help for any command
`

const generateUsage = `generate FLAGS:
  -root <dir>            Source root to scan (default: .)
  -config <file>         Config file (default: gqlcompose.yaml if present)
  -schema <file>         SDL file to verify composites against before writing
  -log.level <level>     Log level: debug, info, warn, error (default: info)
  -otel.endpoint <addr>  OTLP collector endpoint
  -otel.service <name>   OpenTelemetry service name (default: gqlcompose)
`

const checkUsage = `check FLAGS:
  -root <dir>            Source root to scan (default: .)
  -config <file>         Config file (default: gqlcompose.yaml if present)
  -log.level <level>     Log level: debug, info, warn, error (default: info)
  -otel.endpoint <addr>  OTLP collector endpoint
  -otel.service <name>   OpenTelemetry service name (default: gqlcompose)
`

const checkSchemaUsage = `check-schema FLAGS:
  -root <dir>            Source root to scan (default: .)
  -config <file>         Config file (default: gqlcompose.yaml if present)
  -schema <file>         SDL file to verify composites against (required)
  -log.level <level>     Log level: debug, info, warn, error (default: info)
  -otel.endpoint <addr>  OTLP collector endpoint
  -otel.service <name>   OpenTelemetry service name (default: gqlcompose)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		logrus.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("gqlcompose", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "generate":
		return cmdGenerate(cmdArgs)
	case "check":
		return cmdCheck(cmdArgs)
	case "check-schema":
		return cmdCheckSchema(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "generate":
		fmt.Print(generateUsage)
	case "check":
		fmt.Print(checkUsage)
	case "check-schema":
		fmt.Print(checkSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

// defaultConfigFile is looked up relative to the working directory when no
// -config flag is given; its absence is not an error then.
const defaultConfigFile = "gqlcompose.yaml"

type config struct {
	Root   string `yaml:"root"`
	Schema string `yaml:"schema"`
}

func loadConfig(path string, explicit bool) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// options carries the settings shared by every command, resolved from the
// config file first and flags second. Flags win.
type options struct {
	root         string
	configFile   string
	schemaFile   string
	logLevel     string
	otelEndpoint string
	otelService  string
}

func (o *options) bind(fs *flag.FlagSet, withSchema bool) {
	fs.StringVar(&o.root, "root", "", "Source root to scan")
	fs.StringVar(&o.configFile, "config", "", "Config file")
	if withSchema {
		fs.StringVar(&o.schemaFile, "schema", "", "SDL file to verify composites against")
	}
	fs.StringVar(&o.logLevel, "log.level", "info", "Log level")
	fs.StringVar(&o.otelEndpoint, "otel.endpoint", "", "OTLP collector endpoint")
	fs.StringVar(&o.otelService, "otel.service", "gqlcompose", "OpenTelemetry service name")
}

func (o *options) resolve() error {
	path := o.configFile
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	if o.root == "" {
		o.root = cfg.Root
	}
	if o.root == "" {
		o.root = "."
	}
	if o.schemaFile == "" {
		o.schemaFile = cfg.Schema
	}

	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("invalid -log.level %q", o.logLevel)
	}
	logrus.SetLevel(level)
	return nil
}

func parseOptions(name, usage string, args []string, withSchema bool) (*options, error) {
	var opts options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	opts.bind(fs, withSchema)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, usage)
		return nil, err
	}
	if err := opts.resolve(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func cmdGenerate(args []string) error {
	opts, err := parseOptions("generate", generateUsage, args, true)
	if err != nil {
		return err
	}
	return withRun("generate", opts, func(ctx context.Context) error {
		proj, tables, err := scanAndMerge(ctx, opts.root)
		if err != nil {
			return err
		}
		if opts.schemaFile != "" {
			if err := checkSchema(opts.schemaFile, tables); err != nil {
				return err
			}
		}
		files, err := gen.WriteAll(ctx, afero.NewOsFs(), opts.root, proj, tables)
		if err != nil {
			return err
		}
		for _, f := range files {
			logrus.WithField("file", f).Info("wrote")
		}
		return nil
	})
}

func cmdCheck(args []string) error {
	opts, err := parseOptions("check", checkUsage, args, false)
	if err != nil {
		return err
	}
	return withRun("check", opts, func(ctx context.Context) error {
		_, tables, err := scanAndMerge(ctx, opts.root)
		if err != nil {
			return err
		}
		logrus.WithField("composites", len(tables)).Info("check passed")
		return nil
	})
}

func cmdCheckSchema(args []string) error {
	opts, err := parseOptions("check-schema", checkSchemaUsage, args, true)
	if err != nil {
		return err
	}
	if opts.schemaFile == "" {
		fmt.Fprint(os.Stderr, checkSchemaUsage)
		return fmt.Errorf("-schema is required")
	}
	return withRun("check-schema", opts, func(ctx context.Context) error {
		_, tables, err := scanAndMerge(ctx, opts.root)
		if err != nil {
			return err
		}
		if err := checkSchema(opts.schemaFile, tables); err != nil {
			return err
		}
		logrus.WithField("schema", opts.schemaFile).Info("schema check passed")
		return nil
	})
}

// withRun installs the event bus and tracing, tags the context with a run ID
// and brackets fn with run events.
func withRun(command string, opts *options, fn func(context.Context) error) error {
	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(opts.otelEndpoint, opts.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	ctx, _ := runid.NewContext(context.Background())
	start := time.Now()
	eventbus.Publish(ctx, events.RunStart{Command: command, Root: opts.root})
	err = fn(ctx)
	eventbus.Publish(ctx, events.RunFinish{Command: command, Err: err, Duration: time.Since(start)})
	return err
}

func scanAndMerge(ctx context.Context, root string) (*descriptor.Project, []*compose.Table, error) {
	start := time.Now()
	eventbus.Publish(ctx, events.ScanStart{Root: root})
	proj, err := descriptor.Load(root)
	finish := events.ScanFinish{Root: root, Err: err, Duration: time.Since(start)}
	if proj != nil {
		finish.Packages = len(proj.Packages)
		for _, pkg := range proj.Packages {
			finish.Parts += len(pkg.Parts)
		}
	}
	eventbus.Publish(ctx, finish)
	if err != nil {
		return nil, nil, err
	}

	tables, violations := mergeProject(ctx, proj)
	if len(violations) > 0 {
		return nil, nil, descriptor.ValidationError(violations)
	}
	return proj, tables, nil
}

// mergeProject mirrors compose.MergeAll but brackets each composite with
// compose events for tracing.
func mergeProject(ctx context.Context, proj *descriptor.Project) ([]*compose.Table, []*descriptor.Violation) {
	ids := make([]descriptor.PackageID, 0, len(proj.Packages))
	for id := range proj.Packages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var tables []*compose.Table
	var violations []*descriptor.Violation
	for _, id := range ids {
		pkg := proj.Packages[id]
		for _, comp := range pkg.Composites {
			start := time.Now()
			eventbus.Publish(ctx, events.ComposeStart{Composite: comp.Name, Parts: comp.Parts})
			table, vs := compose.Merge(pkg, comp)
			finish := events.ComposeFinish{
				Composite:  comp.Name,
				Violations: len(vs),
				Duration:   time.Since(start),
			}
			if table != nil {
				finish.Resolvers = len(table.Entries)
				tables = append(tables, table)
			}
			eventbus.Publish(ctx, finish)
			violations = append(violations, vs...)
		}
	}
	return tables, violations
}

func checkSchema(schemaFile string, tables []*compose.Table) error {
	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	violations, err := schemacheck.Check(filepath.Base(schemaFile), string(sdl), tables)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return descriptor.ValidationError(violations)
	}
	return nil
}
