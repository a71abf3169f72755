// Package main provides the cvarshell CLI: an interactive line-editing
// front end and a batch mode over the embeddable CVar/command engine.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cvarshell/internal/bootstrap"
	"cvarshell/internal/builtin"
	"cvarshell/internal/command"
	"cvarshell/internal/configio"
	"cvarshell/internal/cvar"
	"cvarshell/internal/fileio"
	"cvarshell/internal/lineedit"
	"cvarshell/internal/logger"
	"cvarshell/internal/term"
)

var (
	logLevel string
	logFile  string
	testMode bool
	bootFile string
	bootEnv  string
	version  = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "cvarshell [+CMD ARGS ...]",
	Short: "cvarshell - an embeddable configuration-variable and command engine",
	Long: `cvarshell hosts a set of named, typed configuration variables and a
registry of commands, with a line-editing terminal front end and a
config-file round trip.

Startup arguments beyond the flags below follow the +CMD ARGS convention:
each "+" starts a new command. "set" and "reset" run immediately (in an
InitOnly override window); every other command is appended to the
command buffer and runs on the first drain once the shell starts.`,
	Run: runShell,
}

var batchCmd = &cobra.Command{
	Use:   "batch <script.cfg>",
	Short: "Execute a config script non-interactively",
	Args:  cobra.ExactArgs(1),
	Run:   runBatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("cvarshell v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode (no color, no clipboard)")
	rootCmd.PersistentFlags().StringVar(&bootFile, "bootstrap", "cvarshell.yaml", "Host bootstrap file (bucket count, case folding, default paths)")
	rootCmd.PersistentFlags().StringVar(&bootEnv, "env-file", ".env", "Optional .env file loaded before the bootstrap file")

	for _, name := range []string{"log-level", "log-file", "test-mode"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Flags().SetInterspersed(false)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// engine bundles the collaborators every entry point wires the same way.
type engine struct {
	sink     *logger.Sink
	cvars    *cvar.Manager
	commands *command.Registry
	buffer   *command.Buffer
	files    *fileio.AferoFileIo
	set      *builtin.Set
}

func newEngine(cfg bootstrap.Config) (*engine, error) {
	sink := &logger.Sink{}
	cvars := cvar.NewManager(cvar.ManagerOptions{Sink: sink, Buckets: cfg.Buckets, CaseInsensitive: cfg.CaseInsensitive})
	commands := command.NewRegistry(command.RegistryOptions{Buckets: cfg.Buckets, CaseInsensitive: cfg.CaseInsensitive, CVars: cvars, Sink: sink})
	buffer := command.NewBuffer(commands, cvars, sink)
	files := fileio.New(nil)

	set := &builtin.Set{CVars: cvars, Commands: commands, Buffer: buffer, Files: files}
	if err := set.Register(); err != nil {
		return nil, err
	}
	return &engine{sink: sink, cvars: cvars, commands: commands, buffer: buffer, files: files, set: set}, nil
}

// runStartupArgs implements the +CMD ARGS ... surface: set/reset run
// immediately under an InitOnly override window, everything else queues
// onto the buffer for the first drain.
func (e *engine) runStartupArgs(args []string) {
	for _, group := range splitPlusGroups(args) {
		if len(group) == 0 {
			continue
		}
		name := group[0]
		line := strings.Join(group, " ")
		if name == "set" || name == "reset" {
			e.cvars.OpenOverride(false, true)
			if err := e.buffer.ExecImmediate(line, &command.ExecContext{Commands: e.commands, CVars: e.cvars}); err != nil {
				e.sink.Error("%s", err.Error())
			}
			e.cvars.CloseOverride()
			continue
		}
		if err := e.buffer.ExecAppend(line); err != nil {
			e.sink.Error("%s", err.Error())
		}
	}
}

func splitPlusGroups(args []string) [][]string {
	var groups [][]string
	var current []string
	for _, a := range args {
		if strings.HasPrefix(a, "+") {
			if len(current) > 0 {
				groups = append(groups, current)
			}
			current = []string{strings.TrimPrefix(a, "+")}
			continue
		}
		current = append(current, a)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func runShell(_ *cobra.Command, args []string) {
	shellLog := logger.NewStyledLogger("shell")
	shellLog.Info("starting cvarshell", "version", version)

	cfg, err := bootstrap.Load(bootFile, bootEnv)
	if err != nil {
		logger.Fatal("failed to load bootstrap config", "error", err)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		logger.Fatal("failed to initialize engine", "error", err)
	}
	eng.runStartupArgs(args)

	t, err := term.New(term.Options{NoColor: testMode})
	if err != nil {
		logger.Fatal("failed to initialize terminal", "error", err)
	}
	defer t.Close()

	history := lineedit.NewHistory(cfg.HistoryCapacity)
	_ = history.Load(eng.files, cfg.HistFile)

	ed := lineedit.NewEditor(t, eng.cvars, eng.commands, eng.buffer, history)
	ed.Files = eng.files
	ed.Prompt = cfg.Prompt

	ctx := &command.ExecContext{Term: t, Commands: eng.commands, CVars: eng.cvars}
	if _, err := eng.buffer.Drain(command.ExecAll, ctx); err != nil {
		eng.sink.Error("%s", err.Error())
	}
	ed.Update()

	for !ed.ShouldQuit() {
		if !t.HasInput() {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		key, ok := t.GetInput()
		if !ok {
			continue
		}
		ed.HandleKey(key)
		if _, err := eng.buffer.Drain(command.ExecAll, ctx); err != nil {
			eng.sink.Error("%s", err.Error())
		}
		ed.Update()
	}

	_ = history.Save(eng.files, cfg.HistFile)
	shellLog.Info("shell session ended")
}

func runBatch(_ *cobra.Command, args []string) {
	scriptPath := args[0]
	batchLog := logger.NewStyledLogger("batch")
	batchLog.Info("running cvarshell batch", "version", version, "script", scriptPath)

	cfg, err := bootstrap.Load(bootFile, bootEnv)
	if err != nil {
		logger.Fatal("failed to load bootstrap config", "error", err)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		logger.Fatal("failed to initialize engine", "error", err)
	}

	if _, err := configio.Reload(eng.files, scriptPath, eng.cvars, eng.buffer, configio.ReloadOptions{Force: true}); err != nil {
		batchLog.Fatal("batch execution failed", "error", err)
	}

	ctx := &command.ExecContext{Commands: eng.commands, CVars: eng.cvars}
	if _, err := eng.buffer.Drain(command.ExecAll, ctx); err != nil {
		batchLog.Fatal("batch execution failed", "error", err)
	}

	batchLog.Info("batch script executed successfully", "script", scriptPath)
}
