// Command brep evaluates sketch and part scripts, snaps cursor positions,
// inspects primitives and exports parts as STL.
//
// Usage:
//
//	brep eval [--config path] FILE
//	brep snap [--config path] --x X --y Y FILE
//	brep export [--config path] [--out DIR] FILE
//	brep inspect [--config path] [--size S] box|cylinder|cone|sphere
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"

	"github.com/chazu/brep/pkg/config"
)

const (
	ARG_FILE      = "FILE"
	ARG_PRIMITIVE = "PRIMITIVE"
)

const configHelp = "config file (default: search $" + config.EnvConfigPath + ", ./" + config.ConfigFileName + ", ~/.config/brep)"

type EvalFlags struct {
	Config string `flag:"config" help:"config file"`
}

type SnapFlags struct {
	Config string  `flag:"config" help:"config file"`
	X      float64 `flag:"x" help:"cursor x in sketch coordinates"`
	Y      float64 `flag:"y" help:"cursor y in sketch coordinates"`
}

type ExportFlags struct {
	Config string `flag:"config" help:"config file"`
	Out    string `flag:"out" help:"output directory (default: export.dir from config)"`
}

type InspectFlags struct {
	Config string  `flag:"config" help:"config file"`
	Size   float64 `flag:"size" help:"edge length, or radius for round primitives"`
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("brep: ")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd, err := newCommand()
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(flarc.Run(ctx, cmd, flarc.WithHelp(true)))
}

func newCommand() (flarc.Command, error) {
	script := flarc.Args{
		{Name: ARG_FILE, Required: true, Help: "script file"},
	}

	eval, err := flarc.NewCommand(
		"Evaluate a script and print its sketch and parts",
		EvalFlags{},
		script,
		evalTask,
		flarc.WithDescription(configHelp),
	)
	if err != nil {
		return nil, err
	}

	snap, err := flarc.NewCommand(
		"Snap a cursor position against the sketch a script builds",
		SnapFlags{},
		script,
		snapTask,
		flarc.WithDescription(configHelp),
	)
	if err != nil {
		return nil, err
	}

	export, err := flarc.NewCommand(
		"Write every part of a script as an STL file",
		ExportFlags{},
		script,
		exportTask,
		flarc.WithDescription(configHelp),
	)
	if err != nil {
		return nil, err
	}

	inspect, err := flarc.NewCommand(
		"Build a primitive and print its topology summary",
		InspectFlags{Size: 1},
		flarc.Args{
			{Name: ARG_PRIMITIVE, Required: true, Help: "box, cylinder, cone or sphere"},
		},
		inspectTask,
		flarc.WithDescription(configHelp),
	)
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"B-Rep sketch and part scripting",
		struct{}{},
		flarc.WithSubcommand("eval", eval),
		flarc.WithSubcommand("snap", snap),
		flarc.WithSubcommand("export", export),
		flarc.WithSubcommand("inspect", inspect),
	)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, _, err := config.LoadFromPath(path)
		return cfg, err
	}
	cfg, found, err := config.Load()
	if err != nil {
		return nil, err
	}
	if found != "" {
		log.Printf("Using config %s", found)
	}
	return cfg, nil
}

// singleArg returns the one value bound to name, or a usage error.
func singleArg(args map[string][]string, name string) (string, error) {
	vs := args[name]
	if len(vs) != 1 || vs[0] == "" {
		return "", fmt.Errorf("%w: expected one %s", flarc.ErrUsage, name)
	}
	return vs[0], nil
}

func readScript(args map[string][]string) (string, string, error) {
	path, err := singleArg(args, ARG_FILE)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return path, string(data), nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}

// errScript reports a script that evaluated with errors.
var errScript = errors.New("script has errors")

func evalTask(ctx context.Context, c flarc.Commandline[EvalFlags], _ []any) error {
	cfg, err := loadConfig(c.Flags().Config)
	if err != nil {
		return err
	}
	path, source, err := readScript(c.Args())
	if err != nil {
		return err
	}
	result := NewApp(cfg).Evaluate(source)
	if err := writeYAML(c.Stdout(), result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %d error(s) in %s", errScript, len(result.Errors), path)
	}
	return nil
}

// snapOutput is the YAML form of a snap result.
type snapOutput struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Type   string  `yaml:"type"`
	Source string  `yaml:"source,omitempty"`
}

func snapTask(ctx context.Context, c flarc.Commandline[SnapFlags], _ []any) error {
	flags := c.Flags()
	cfg, err := loadConfig(flags.Config)
	if err != nil {
		return err
	}
	_, source, err := readScript(c.Args())
	if err != nil {
		return err
	}
	res, err := NewApp(cfg).Snap(source, flags.X, flags.Y)
	if err != nil {
		return err
	}
	out := snapOutput{X: res.Position.X, Y: res.Position.Y, Type: res.Type.String()}
	if res.Source != nil {
		out.Source = fmt.Sprintf("entity %d", *res.Source)
	}
	return writeYAML(c.Stdout(), out)
}

func exportTask(ctx context.Context, c flarc.Commandline[ExportFlags], _ []any) error {
	flags := c.Flags()
	cfg, err := loadConfig(flags.Config)
	if err != nil {
		return err
	}
	_, source, err := readScript(c.Args())
	if err != nil {
		return err
	}
	if flags.Out != "" {
		cfg.Export.Dir = flags.Out
	}
	paths, err := NewApp(cfg).Export(source)
	if err != nil {
		return err
	}
	return writeYAML(c.Stdout(), map[string][]string{"written": paths})
}

func inspectTask(ctx context.Context, c flarc.Commandline[InspectFlags], _ []any) error {
	flags := c.Flags()
	cfg, err := loadConfig(flags.Config)
	if err != nil {
		return err
	}
	name, err := singleArg(c.Args(), ARG_PRIMITIVE)
	if err != nil {
		return err
	}
	summary, err := NewApp(cfg).Inspect(name, flags.Size)
	if err != nil {
		return err
	}
	return writeYAML(c.Stdout(), summary)
}
