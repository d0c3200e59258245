package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
)

var (
	runFile            string
	runContinueOnError bool
)

// runCmd executes the calls of a batch file with one client.
var runCmd = &cobra.Command{
	Use:   "run -f FILE [flags]",
	Short: "Run the calls listed in a YAML batch file",
	Long: `Run the calls listed in a multi-document YAML file, in order, with a single
client. Each document names a method, its args and an optional gjson select.
Values may use {{ .ENV.NAME }} templates.

Example file:
  method: datamining_file_list
  args:
    month: 2019-02
  select: list.#.file_path
  ---
  method: ping
  args:
    id: 7

Example:
  spore run -f calls.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		calls, err := ParseBatchFile(runFile)
		if err != nil {
			return err
		}
		client, err := newClient(cmd.Context(), GetConfig())
		if err != nil {
			return err
		}

		results := "[]"
		failed := 0
		for i, call := range calls {
			resp, err := client.InvokeOrdered(cmd.Context(), call.Method, call.Args)
			if err != nil {
				failed++
				log.Ctx(cmd.Context()).Debug().Err(err).Str("method", call.Method).Msg("batch call failed")
				if jsonOutput {
					results, _ = sjson.Set(results, "-1", map[string]any{"method": call.Method, "error": err.Error()})
				} else {
					errorLabel.Printf("%d. %s: %v\n", i+1, call.Method, err)
				}
				if !runContinueOnError {
					break
				}
				continue
			}

			if jsonOutput {
				entry, err := responseEnvelope(resp)
				if err != nil {
					return err
				}
				entry, _ = sjson.Set(entry, "method", call.Method)
				results, _ = sjson.SetRaw(results, "-1", entry)
				continue
			}
			keyLabel.Printf("%d. %s\n", i+1, call.Method)
			if err := printResponse(resp, call.Select); err != nil {
				return err
			}
		}

		if jsonOutput {
			printJSON(jsonRaw(results))
		}
		if failed > 0 {
			if jsonOutput {
				return ErrAlreadyHandled
			}
			return fmt.Errorf("%d of %d calls failed", failed, len(calls))
		}
		return nil
	},
}

// jsonRaw marshals as the JSON text it holds.
type jsonRaw string

func (r jsonRaw) MarshalJSON() ([]byte, error) {
	return []byte(r), nil
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "filename", "f", "", "Batch file to run")
	runCmd.Flags().BoolVar(&runContinueOnError, "continue-on-error", false, "Keep going after a failed call")
	runCmd.MarkFlagRequired("filename")
	rootCmd.AddCommand(runCmd)
}
