// Package cli implements the pocket-madlibs command line on cobra. Running
// without a command starts the terminal UI.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dpshade/pocket-madlibs/internal/config"
	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/logging"
	"github.com/dpshade/pocket-madlibs/internal/service"
)

// Version is set at build time
var Version = "0.1.0"

// CLI holds the state shared by all commands of one invocation
type CLI struct {
	viper      *viper.Viper
	configFile string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	service *service.Service

	in  *bufio.Reader
	out io.Writer
	err io.Writer
}

// New creates a CLI reading from in and writing to out and errOut
func New(in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{
		viper: config.NewViper(),
		in:    bufio.NewReader(in),
		out:   out,
		err:   errOut,
	}
}

// Execute runs the command line with os.Args and returns the process exit code
func Execute() int {
	c := New(os.Stdin, os.Stdout, os.Stderr)
	if err := c.Run(os.Args[1:]); err != nil {
		c.printError(err)
		return 1
	}
	return 0
}

// Run executes one command line and releases everything it opened
func (c *CLI) Run(args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.Execute()
	if closeErr := c.teardown(); err == nil {
		err = closeErr
	}
	return err
}

// printError reports a failed command. Errors that are not AppErrors carry
// their own message, usually from flag parsing.
func (c *CLI) printError(err error) {
	handler := apperrors.NewCLIErrorHandler(c.verbose, c.logger)
	if !apperrors.IsAppError(err) {
		fmt.Fprintf(c.err, "❌ ERROR: %v\n", err)
		return
	}
	handler.HandleError(err)
	fmt.Fprintln(c.err, handler.FormatError(err))
}

// RootCommand builds the command tree
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pocket-madlibs",
		Short: "Fill in the blanks and read your story",
		Long: `pocket-madlibs is a Mad Libs game for the terminal and the browser.

Pick a story, fill in the missing words, then read the result with your
words dropped in. Answers are saved locally so you can come back later.

Run without a command to start the interactive interface.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.err)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default: <data-dir>/config.yaml)")
	flags.String("data-dir", "", "data directory (default: ~/.pocket-madlibs, env POCKET_MADLIBS_DIR)")
	flags.String("backend", "", "answer storage: file, sqlite or memory")
	flags.String("templates-dir", "", "directory of extra .md templates")
	flags.String("templates-file", "", "extra JSON template dataset")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr and show error details")

	_ = c.viper.BindPFlag(config.KeyDataDir, flags.Lookup("data-dir"))
	_ = c.viper.BindPFlag(config.KeyBackend, flags.Lookup("backend"))
	_ = c.viper.BindPFlag(config.KeyTemplatesDir, flags.Lookup("templates-dir"))
	_ = c.viper.BindPFlag(config.KeyTemplatesFile, flags.Lookup("templates-file"))
	_ = c.viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		c.listCommand(),
		c.searchCommand(),
		c.showCommand(),
		c.playCommand(),
		c.readCommand(),
		c.resetCommand(),
		c.validateCommand(),
		c.serveCommand(),
		c.tuiCommand(),
		c.versionCommand(),
	)
	return root
}

// setup loads configuration, the logger and the service before a command runs
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		c.logger = zap.NewNop()
		return nil
	}

	cfg, err := config.Load(c.viper, c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	// The TUI owns the terminal, so only the explicit commands may log to it
	opts := logging.Options{Dir: cfg.LogDir(), Level: cfg.LogLevel}
	if (c.verbose && !isTUI(cmd)) || cmd.Name() == "serve" {
		opts.Console = true
		if c.verbose {
			opts.Level = "debug"
		}
	}
	logger, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.logger = logger

	if cmd.Name() == "validate" {
		return nil
	}

	svc, err := service.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	c.service = svc
	return nil
}

func isTUI(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

// teardown releases the service; safe to call more than once
func (c *CLI) teardown() error {
	var err error
	if c.service != nil {
		err = c.service.Close()
		c.service = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	return err
}

// confirm asks a yes/no question on the command input, defaulting to no
func (c *CLI) confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	answer, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
