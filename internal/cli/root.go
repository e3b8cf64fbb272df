package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// errDiagnosticsFound makes the process exit 1 without printing anything
// beyond the diagnostics themselves.
var errDiagnosticsFound = errors.New("errors found")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cxgraph",
	Short: "cxgraph - inspect C translation units",
	Long: `cxgraph parses C source files and exposes what a compiler front end knows
about them: the cursor tree, types and layouts, diagnostics with fix-its,
tokens, code completion and cross-file symbol references.

Project settings are read from .cxgraph/config.yml and CXGRAPH_* environment
variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnosticsFound) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .cxgraph/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig applies the machine-wide engine settings from ~/.cxgraph.
func initConfig() {
	if !viper.GetBool("verbose") {
		log.SetFlags(0)
	}

	global, err := config.LoadGlobalConfig()
	if err != nil {
		log.Printf("Warning: failed to load global config: %v", err)
		return
	}
	clang.ToggleCrashRecovery(global.Engine.CrashRecovery)
	invocationDir = global.Engine.InvocationDir
}

// invocationDir receives the command line of faulting parses.
var invocationDir string

// loadProjectConfig loads the project configuration rooted at the
// working directory, or the file named by --config.
func loadProjectConfig() (*config.Config, string, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}

	var loader config.Loader
	if file := viper.GetString("config"); file != "" {
		loader = config.NewFileLoader(rootDir, file)
	} else {
		loader = config.NewLoader(rootDir)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if viper.GetBool("verbose") {
		log.Printf("Compiler arguments: %v", cfg.CompilerArgs())
	}
	return cfg, rootDir, nil
}

// newIndex creates an index configured from cfg.
func newIndex(cfg *config.Config) (*clang.Index, error) {
	ix, err := clang.NewIndex(cfg.IndexOptions()...)
	if err != nil {
		return nil, err
	}
	ix.SetInvocationEmissionPath(invocationDir)
	return ix, nil
}

// parseFile parses source with the configured arguments followed by
// extra, which come from the command line after "--".
func parseFile(ix *clang.Index, cfg *config.Config, source string, extra []string) (*clang.TranslationUnit, error) {
	flags, err := cfg.ParseFlags()
	if err != nil {
		return nil, err
	}
	args := append(cfg.CompilerArgs(), extra...)
	return ix.Parse(source, args, nil, flags)
}

// splitArgs separates positional arguments from compiler arguments
// given after "--".
func splitArgs(cmd *cobra.Command, args []string) (positional, compiler []string) {
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		return args[:at], args[at:]
	}
	return args, nil
}
