package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/tansive/spore/pkg/spore"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// responseEnvelope renders a response as {"status", "headers", "body"}.
// JSON bodies are embedded as is, other bodies as strings.
func responseEnvelope(resp *spore.Response) (string, error) {
	out := "{}"
	var err error
	if out, err = sjson.Set(out, "status", resp.Status); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		// header names may contain dots, which sjson reads as path separators
		if out, err = sjson.Set(out, "headers."+escapePath(k), resp.Headers[k]); err != nil {
			return "", err
		}
	}

	switch {
	case len(resp.Raw) == 0:
		out, err = sjson.Set(out, "body", nil)
	case strings.EqualFold(resp.Format, spore.FormatJSON) && gjson.ValidBytes(resp.Raw):
		out, err = sjson.SetRaw(out, "body", string(resp.Raw))
	case resp.Body != nil && !isUnparsed(resp.Body):
		if s, ok := resp.Body.(string); ok {
			out, err = sjson.Set(out, "body", s)
		} else {
			out, err = sjson.Set(out, "body", resp.Body)
		}
	default:
		out, err = sjson.Set(out, "body", string(resp.Raw))
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

func isUnparsed(v any) bool {
	_, ok := v.(spore.Unparsed)
	return ok
}

func escapePath(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}

// selectBody runs a gjson query on the body of resp.
func selectBody(resp *spore.Response, path string) (string, error) {
	if !gjson.ValidBytes(resp.Raw) {
		return "", fmt.Errorf("--select needs a JSON body, got %d bytes of %s", len(resp.Raw), describeContent(resp.Raw))
	}
	res := resp.Get(path)
	if !res.Exists() {
		return "", fmt.Errorf("no value at %q", path)
	}
	if res.Type == gjson.String {
		return res.String(), nil
	}
	return res.Raw, nil
}

// describeContent names the type of a binary payload, or "text".
func describeContent(b []byte) string {
	kind, err := filetype.Match(b)
	if err != nil || kind == filetype.Unknown {
		return "text"
	}
	return kind.MIME.Value
}

// writeRaw writes the body to file, reporting its detected type.
func writeRaw(resp *spore.Response, file string) error {
	if err := os.WriteFile(file, resp.Raw, 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", file, err)
	}
	if jsonOutput {
		printJSON(map[string]any{
			"status": resp.Status,
			"file":   file,
			"bytes":  len(resp.Raw),
			"type":   describeContent(resp.Raw),
		})
		return nil
	}
	okLabel.Printf("✓ %d bytes (%s) written to %s\n", len(resp.Raw), describeContent(resp.Raw), file)
	return nil
}

// printResponse prints resp for humans or as a JSON envelope.
func printResponse(resp *spore.Response, selectPath string) error {
	if selectPath != "" {
		v, err := selectBody(resp, selectPath)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	}

	envelope, err := responseEnvelope(resp)
	if err != nil {
		return err
	}
	if jsonOutput {
		fmt.Println(string(gjson.Get(envelope, "@pretty").Raw))
		return nil
	}

	label := okLabel
	if resp.Status >= 400 {
		label = errorLabel
	}
	label.Printf("%d\n", resp.Status)
	body := gjson.Get(envelope, "body")
	if body.Type == gjson.JSON {
		fmt.Println(gjson.Get(body.Raw, "@pretty").Raw)
	} else {
		fmt.Println(body.String())
	}
	return nil
}
