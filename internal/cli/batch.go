package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tansive/spore/pkg/spore/request"
	"gopkg.in/yaml.v3"
)

// BatchCall is one document of a batch file:
//
//	method: get_authentication_token
//	args:
//	  email: me@example.com
//	  password: "{{ .ENV.PASSWORD }}"
//	---
//	method: datamining_file_list
//	args:
//	  month: 2019-02
type BatchCall struct {
	Method string
	Args   *request.Args
	Select string
}

type batchDoc struct {
	Method string    `yaml:"method"`
	Args   yaml.Node `yaml:"args"`
	Select string    `yaml:"select"`
}

// ParseBatchFile reads a multi-document YAML batch file. Environment
// templates are expanded first, with .env looked up next to the file.
func ParseBatchFile(filename string) ([]BatchCall, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = replaceTabsWithSpaces(data)
	data, err = ExpandEnv(data, filepath.Dir(filename))
	if err != nil {
		return nil, err
	}
	return ParseBatch(data)
}

// ParseBatch decodes batch documents. Empty documents are skipped and args
// keep the order in which they are written.
func ParseBatch(data []byte) ([]BatchCall, error) {
	content := strings.TrimSpace(string(data))
	if len(content) == 0 || strings.Trim(content, "- \n\t") == "" {
		return []BatchCall{}, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var result []BatchCall
	for i := 1; ; i++ {
		var doc batchDoc
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		if doc.Method == "" && doc.Args.Kind == 0 {
			continue
		}
		if doc.Method == "" {
			return nil, fmt.Errorf("document %d: method is required", i)
		}
		args, err := argsFromNode(&doc.Args)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		result = append(result, BatchCall{Method: doc.Method, Args: args, Select: doc.Select})
	}
	return result, nil
}

func argsFromNode(n *yaml.Node) (*request.Args, error) {
	args := request.NewArgs()
	if n.Kind == 0 {
		return args, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("args must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		var value any
		if err := n.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("arg %s: %w", n.Content[i].Value, err)
		}
		args.Set(n.Content[i].Value, value)
	}
	return args, nil
}

func replaceTabsWithSpaces(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("\t"), []byte("  "))
}
