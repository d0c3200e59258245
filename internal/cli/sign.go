package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tansive/spore/internal/common/schemavalidator"
	"github.com/tansive/spore/pkg/spore/middleware"
	"github.com/tansive/spore/pkg/spore/request"
)

var (
	signPrivateKey    string
	signShowCanonical bool
)

// signCmd computes a Weborama signature without sending anything.
var signCmd = &cobra.Command{
	Use:   "sign VERB URL_PATH [key=value ...] [flags]",
	Short: "Compute the Weborama signature of a request",
	Long: `Compute the signature the server expects for a request. URL_PATH is the
path after the base URL, with placeholders already substituted. The private
key is read from --private-key or from SPORE_PRIVATE_KEY.

Examples:
  spore sign GET /x a=1 b=2 --private-key k
  SPORE_PRIVATE_KEY=k spore sign post /users/3/items name=bob --show-canonical`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := signPrivateKey
		if key == "" {
			key = os.Getenv("SPORE_PRIVATE_KEY")
		}
		canonical, signature, err := signRequest(args[0], args[1], args[2:], key)
		if err != nil {
			return err
		}
		if jsonOutput {
			kv := map[string]string{"signature": signature}
			if signShowCanonical {
				kv["canonical"] = canonical
			}
			printJSON(kv)
			return nil
		}
		if signShowCanonical {
			fmt.Printf("Canonical: %s\n", canonical)
		}
		fmt.Println(signature)
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signPrivateKey, "private-key", "", "Private key used for signing")
	signCmd.Flags().BoolVar(&signShowCanonical, "show-canonical", false, "Also print the signed string (contains the private key)")
	rootCmd.AddCommand(signCmd)
}

// signRequest builds the canonical string of a request and its signature.
func signRequest(verb, urlPath string, pairs []string, key string) (canonical, signature string, err error) {
	if err := schemavalidator.V().Var(verb, "httpVerb"); err != nil {
		return "", "", fmt.Errorf("invalid verb %q", verb)
	}
	if key == "" {
		return "", "", fmt.Errorf("no private key provided. Use --private-key or set SPORE_PRIVATE_KEY")
	}

	parsed, err := parseCallArgs("", pairs)
	if err != nil {
		return "", "", err
	}
	params := request.NewParams()
	var ferr error
	parsed.Each(func(k string, v any) {
		s, skip, err := request.FormatValue(v)
		if err != nil && ferr == nil {
			ferr = err
		}
		if !skip {
			params.Set(k, s)
		}
	})
	if ferr != nil {
		return "", "", ferr
	}

	canonical = middleware.CanonicalString(verb, urlPath, params, key)
	return canonical, middleware.Sign(canonical), nil
}
