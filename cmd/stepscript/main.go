// Command stepscript loads a script, then steps through one function call
// interactively, or just syntax-checks a file.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	stepscript "github.com/daios-ai/stepscript"
)

const (
	exitOK       = 0
	exitError    = 1
	exitCanceled = 130
)

var (
	flagArgs    string
	flagKwargs  string
	flagWatch   string
	flagPlain   bool
	flagContext int
	flagMaxRepr int
	flagTheme   string
	flagConfig  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "stepscript",
		Short:         "Step through script functions one statement at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run <script> <function>",
		Short: "Trace one function call interactively",
		Args:  cobra.ExactArgs(2),
		RunE:  runTrace,
	}
	runCmd.Flags().StringVar(&flagArgs, "args", "", "positional arguments, as a script expression (e.g. '[1, [2, 3]]')")
	runCmd.Flags().StringVar(&flagKwargs, "kwargs", "", "keyword arguments, as a script map expression (e.g. '{\"limit\": 10}')")
	runCmd.Flags().StringVar(&flagWatch, "watch", "", "comma-separated variable names to pin above the locals")
	runCmd.Flags().BoolVar(&flagPlain, "plain", false, "force the plain text renderer")
	runCmd.Flags().IntVar(&flagContext, "context", -1, "source lines of context around the current line")
	runCmd.Flags().IntVar(&flagMaxRepr, "max-repr", -1, "maximum characters per displayed value")
	runCmd.Flags().StringVar(&flagTheme, "theme", "", "rich renderer theme (monokai, plain)")
	runCmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML settings file")
	runCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "log session lifecycle to stderr")

	checkCmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Parse a script and report the first syntax error",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	root.AddCommand(runCmd, checkCmd)

	if err := root.Execute(); err != nil {
		if errors.Is(err, stepscript.ErrCanceled) {
			fmt.Fprintln(os.Stderr, "stopped by user")
			os.Exit(exitCanceled)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}

func runCheck(cmd *cobra.Command, args []string) error {
	unit, err := stepscript.LoadUnit(args[0])
	if err != nil {
		return err
	}
	if _, perr := stepscript.ParseProgram(unit.Src); perr != nil {
		return stepscript.WrapErrorWithName(perr, unit.Name, unit.Src)
	}
	fmt.Printf("%s: ok\n", unit.Name)
	return nil
}

func runTrace(cmd *cobra.Command, cliArgs []string) error {
	scriptPath, fnName := cliArgs[0], cliArgs[1]

	settings, err := buildSettings()
	if err != nil {
		return err
	}

	ip := stepscript.NewInterp()

	unit, err := stepscript.LoadUnit(scriptPath)
	if err != nil {
		return err
	}
	if err := ip.ExecUnit(unit); err != nil {
		return stepscript.WrapErrorWithName(err, unit.Name, unit.Src)
	}

	fnv, ok := ip.Globals().Get(fnName)
	if !ok {
		return fmt.Errorf("function %q is not defined in %s", fnName, unit.Name)
	}

	args, kwargs, err := parseCallArgs(ip)
	if err != nil {
		return err
	}

	renderer := stepscript.NewRenderer(settings, os.Stdout)
	in := stepscript.NewLinerReader()
	defer in.Close()

	viz := stepscript.NewVisualizer(settings, renderer, in)
	if flagVerbose {
		viz.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	res, err := viz.Run(ip, fnv, args, kwargs)
	if err != nil {
		if errors.Is(err, stepscript.ErrCanceled) {
			return err
		}
		return stepscript.WrapErrorWithName(err, unit.Name, unit.Src)
	}
	fmt.Printf("result = %s\n", stepscript.FormatValue(res))
	return nil
}

// buildSettings layers config file and flags over the defaults. Flags win.
func buildSettings() (stepscript.Settings, error) {
	settings := stepscript.DefaultSettings()
	if flagConfig != "" {
		var err error
		settings, err = stepscript.LoadSettings(flagConfig)
		if err != nil {
			return settings, err
		}
	}
	if flagContext >= 0 {
		settings.ContextLines = flagContext
	}
	if flagMaxRepr >= 0 {
		settings.MaxValueRepr = flagMaxRepr
	}
	if flagWatch != "" {
		for _, name := range strings.Split(flagWatch, ",") {
			if name = strings.TrimSpace(name); name != "" {
				settings.Watch = append(settings.Watch, name)
			}
		}
	}
	if flagPlain {
		settings.UseRich = false
	}
	if flagTheme != "" {
		settings.Theme = flagTheme
	}
	return settings, nil
}

// parseCallArgs evaluates --args and --kwargs as script expressions. An
// --args value that is not an array is taken as a single positional argument.
func parseCallArgs(ip *stepscript.Interp) ([]stepscript.Value, map[string]stepscript.Value, error) {
	var args []stepscript.Value
	if flagArgs != "" {
		v, err := ip.EvalExprString(flagArgs)
		if err != nil {
			return nil, nil, fmt.Errorf("bad --args: %w", err)
		}
		if v.Tag == stepscript.VTArray {
			args = append(args, v.Data.([]stepscript.Value)...)
		} else {
			args = append(args, v)
		}
	}

	var kwargs map[string]stepscript.Value
	if flagKwargs != "" {
		v, err := ip.EvalExprString(flagKwargs)
		if err != nil {
			return nil, nil, fmt.Errorf("bad --kwargs: %w", err)
		}
		if v.Tag != stepscript.VTMap {
			return nil, nil, fmt.Errorf("bad --kwargs: want a map, got %s", stepscript.FormatValue(v))
		}
		m := v.Data.(*stepscript.MapObject)
		kwargs = make(map[string]stepscript.Value, m.Len())
		for _, k := range m.Keys {
			kv, _ := m.Get(k)
			kwargs[k] = kv
		}
	}
	return args, kwargs, nil
}
