package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/tansive/spore/internal/common/logtrace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Global flags
	jsonOutput bool
	configFile string
	specFlag   string
	logLevel   string
)

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var keyLabel = color.New(color.FgCyan)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spore [command] [flags]",
	Short: "Spore CLI - call HTTP APIs described by a spec file",
	Long: `Spore CLI calls the methods of an HTTP API described by a spec file.
The spec lists the base URL of the API and, for each method, its HTTP verb,
its path template and its required parameters. Requests can be signed with
Weborama application keys.

Examples:
  # List the methods of the configured spec
  spore methods

  # Call a method
  spore call ping id=7

  # Call a method of another spec and keep part of the answer
  spore --spec ./api.yaml call datamining_file_list month=2019-02 --select list.#.file_path

  # Run a batch of calls
  spore run -f calls.yaml`,
	PersistentPreRun: preRunHandlePersistents,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	// Set up persistent flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().StringVarP(&specFlag, "spec", "s", "", "Path or URL of a spec file, overrides the config")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")

	// Add commands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		if jsonOutput {
			kv := map[string]string{
				"error": err.Error(),
			}
			printJSON(kv)
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents handles persistent flags and configuration loading before command execution
func preRunHandlePersistents(cmd *cobra.Command, args []string) {
	logtrace.InitLogger(logLevel, !jsonOutput)

	if configFile == "" {
		var err error
		configFile, err = GetDefaultConfigPath()
		if err != nil {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	skipConfig := false
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" || c.Name() == "sign" {
			skipConfig = true
			break
		}
	}
	if skipConfig {
		return
	}

	if err := LoadConfig(configFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("%s\n", err.Error())
			os.Exit(1)
		}
		if specFlag == "" {
			fmt.Println("Spore config file not found. Configure spore with \"spore config --spec <file>\" or pass --spec.")
			os.Exit(1)
		}
		config = &Config{}
	}
	if specFlag != "" {
		config.Spec = specFlag
		config.OpenAPI = ""
	}
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of spore",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := GetDefaultConfigPath()
			if err != nil {
				configPath = "unknown"
			}

			if jsonOutput {
				kv := map[string]string{
					"version":     getCLIVersion(),
					"config_file": configPath,
				}
				printJSON(kv)
			} else {
				cmd.Printf("spore CLI %s\n", getCLIVersion())
				cmd.Printf("Config file: %s\n", configPath)
			}
		},
	}
}

// printJSON prints the given value as indented JSON to stdout
func printJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
