package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// methodsCmd represents the methods command
var methodsCmd = &cobra.Command{
	Use:   "methods [flags]",
	Short: "List the methods of the spec",
	Long: `List the methods of the spec with their verb, path and required parameters.

Examples:
  spore methods
  spore --spec ./api.yaml methods -j`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context(), GetConfig())
		if err != nil {
			return err
		}
		sp := client.Spec()

		if jsonOutput {
			methods := make([]map[string]any, 0, len(sp.Methods))
			for _, name := range client.Methods() {
				m, _ := sp.Method(name)
				methods = append(methods, map[string]any{
					"name":            name,
					"method":          m.Verb(),
					"path":            m.Path,
					"required_params": m.RequiredParams,
					"optional_params": m.OptionalParams,
					"description":     m.Description,
				})
			}
			printJSON(map[string]any{
				"name":     sp.Name,
				"base_url": client.BaseURL(),
				"methods":  methods,
			})
			return nil
		}

		title := sp.Name
		if title == "" {
			title = "methods"
		}
		fmt.Printf("%s (%s):\n", cases.Title(language.English).String(title), client.BaseURL())
		for _, name := range client.Methods() {
			m, _ := sp.Method(name)
			keyLabel.Printf("  %s", name)
			fmt.Printf("  %s %s", m.Verb(), m.Path)
			if len(m.RequiredParams) > 0 {
				fmt.Printf("  [%s]", strings.Join(m.RequiredParams, ", "))
			}
			fmt.Println()
			if m.Description != "" {
				fmt.Printf("      %s\n", m.Description)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}
