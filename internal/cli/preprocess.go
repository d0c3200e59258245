package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

type TemplateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// ExpandEnv replaces {{ .ENV.VAR }} placeholders in config and batch files.
// Values come from the process environment, then from a .env file in dir
// for variables the environment does not define. An empty dir means the
// current working directory.
func ExpandEnv(input []byte, dir string) ([]byte, error) {
	if !bytes.Contains(input, []byte("{{")) {
		return input, nil
	}
	env, err := templateEnv(dir)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("config").Option("missingkey=error").Parse(string(input))
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}
	var output bytes.Buffer
	if err := tmpl.Execute(&output, TemplateContext{ENV: env}); err != nil {
		if matches := missingKeyRegex.FindStringSubmatch(err.Error()); len(matches) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", matches[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}
	return output.Bytes(), nil
}

func templateEnv(dir string) (map[string]string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	}
	env := map[string]string{}
	// .env never overrides the environment
	if dotenv, err := godotenv.Read(filepath.Join(dir, ".env")); err == nil {
		for k, v := range dotenv {
			env[k] = v
		}
	}
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}
