package cmd

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/shell"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgPath    string
	verbose    bool
	commandStr string

	exitStatus int
)

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return config.DefaultDirName
	}
	return filepath.Join(home, config.DefaultDirName)
}

func loadConfig() (*config.Configuration, error) {
	return config.Load(afero.NewOsFs(), cfgPath)
}

func diagnostics(w io.Writer) *log.Logger {
	if !verbose {
		w = io.Discard
	}
	return log.New(w, "[minish] ", 0)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minish",
	Short: "A minimal interactive shell",
	Long: `A minimal interactive shell with pipelines, output redirection and
command name completion.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		status, err := runShell(cmd)
		exitStatus = status
		return err
	},
}

func runShell(cmd *cobra.Command) (int, error) {
	diag := diagnostics(cmd.ErrOrStderr())

	cfg, err := loadConfig()
	if err != nil {
		return 1, err
	}
	diag.Printf("Using configuration from %s\n", cfgPath)

	envs, err := cfg.ReadEnvFiles()
	if err != nil {
		return 1, err
	}
	for k, v := range envs {
		if _, ok := os.LookupEnv(k); !ok {
			os.Setenv(k, v)
		}
	}

	opts := shell.Options{
		Stdin:           cmd.InOrStdin(),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
		Fs:              afero.NewOsFs(),
		Prompt:          colorPrompt(cfg),
		HistoryLimit:    cfg.HistoryLimit,
		Bell:            cfg.Bell,
		SuggestCommands: cfg.SuggestCommands,
		Log:             diag,
	}

	if cfg.EventLog != "" {
		logFd, err := cfg.OpenEventLog()
		if err != nil {
			return 1, err
		}
		defer logFd.Close()
		opts.Events = logger.NewJsonLinesLogRecorder(logFd).NewSession()
		diag.Printf("Logging events to %s\n", logFd.Name())
	}

	if commandStr != "" {
		return shell.New(opts).RunCommand(commandStr), nil
	}

	home, _ := os.UserHomeDir()
	opts.HistoryFile = cfg.HistoryPath(os.Getenv, home)
	diag.Printf("History file: %q\n", opts.HistoryFile)

	// Commands read os.Stdin directly, the editor reads through a wrapper it
	// stops using while they run.
	var editorIn io.Reader = os.Stdin
	if term.IsTerminal(int(os.Stdin.Fd())) {
		editorIn = shell.NewPausableStdin(os.Stdin)
	}

	sh := shell.New(opts)
	rl, err := sh.NewReadline(shell.TerminalConfig{
		Stdin:      editorIn,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		IsTerminal: stdioIsTerminal,
	})
	if err != nil {
		return 1, err
	}
	defer rl.Close()

	return sh.Run(rl), nil
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// colorPrompt styles the configured prompt.
func colorPrompt(cfg *config.Configuration) string {
	c := color.New(color.FgGreen, color.Bold)
	switch cfg.Color {
	case config.ColorAlways:
		c.EnableColor()
	case config.ColorNever:
		c.DisableColor()
	default:
		if !stdioIsTerminal() {
			c.DisableColor()
		}
	}
	return c.Sprint(cfg.Prompt)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "configuration directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostics to stderr")
	rootCmd.Flags().StringVarP(&commandStr, "command", "c", "", "run a single line and exit with its status")
}
