package spec

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog/log"
)

var (
	openAPIParamRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)
	nonWordRe      = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// LoadOpenAPI imports an OpenAPI 3 document from path. Each operation becomes
// a method named after its operationId, or <verb>_<path> when it has none.
// Path templates are rewritten from {id} to :id.
func LoadOpenAPI(ctx context.Context, path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSpecNotFound.Msg("openapi document not found: " + path).With("source", path)
		}
		return nil, ErrSpecNotFound.MsgErr("unable to read openapi document: "+path, err).With("source", path)
	}
	sp, err := ParseOpenAPI(ctx, data)
	if err != nil {
		return nil, err
	}
	sp.source = path
	log.Ctx(ctx).Debug().Str("source", path).Int("methods", len(sp.Methods)).Msg("openapi document imported")
	return sp, nil
}

// ParseOpenAPI converts OpenAPI 3 bytes (JSON or YAML) to a Spec.
func ParseOpenAPI(ctx context.Context, data []byte) (*Spec, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, ErrSpecShape.MsgErr("unable to decode openapi document", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, ErrSpecShape.MsgErr("invalid openapi document", err)
	}
	return fromOpenAPI(doc)
}

func fromOpenAPI(doc *openapi3.T) (*Spec, error) {
	sp := &Spec{Methods: map[string]MethodSpec{}}
	if doc.Info != nil {
		sp.Name = doc.Info.Title
		sp.Version = doc.Info.Version
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		sp.BaseURL = strings.TrimRight(doc.Servers[0].URL, "/")
	}

	if doc.Paths != nil {
		for p, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for verb, op := range item.Operations() {
				name := op.OperationID
				if name == "" {
					name = strings.ToLower(verb) + "_" + strings.Trim(nonWordRe.ReplaceAllString(p, "_"), "_")
				}
				sp.Methods[name] = MethodSpec{
					Method:         strings.ToUpper(verb),
					Path:           openAPIParamRe.ReplaceAllString(p, ":$1"),
					RequiredParams: requiredParams(item.Parameters, op.Parameters),
					OptionalParams: optionalParams(item.Parameters, op.Parameters),
					Description:    op.Summary,
					Authentication: op.Security != nil && len(*op.Security) > 0,
				}
			}
		}
	}
	if len(sp.Methods) == 0 {
		return nil, ErrSpecShape.Msg("no method has been defined in the openapi document")
	}
	return sp, nil
}

// mergeParams applies operation level parameters over path level ones.
func mergeParams(pathLevel, opLevel openapi3.Parameters) []*openapi3.Parameter {
	byKey := map[string]*openapi3.Parameter{}
	var order []string
	for _, list := range []openapi3.Parameters{pathLevel, opLevel} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			p := ref.Value
			if p.In != openapi3.ParameterInPath && p.In != openapi3.ParameterInQuery {
				continue
			}
			key := p.In + ":" + p.Name
			if _, seen := byKey[key]; !seen {
				order = append(order, key)
			}
			byKey[key] = p
		}
	}
	out := make([]*openapi3.Parameter, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func requiredParams(pathLevel, opLevel openapi3.Parameters) []string {
	var out []string
	for _, p := range mergeParams(pathLevel, opLevel) {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

func optionalParams(pathLevel, opLevel openapi3.Parameters) []string {
	var out []string
	for _, p := range mergeParams(pathLevel, opLevel) {
		if !p.Required {
			out = append(out, p.Name)
		}
	}
	sort.Strings(out)
	return out
}
