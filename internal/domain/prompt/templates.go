package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Templates holds the system messages sent to the chat backend, each already
// suffixed with the JSON schema of the expected reply.
type Templates struct {
	generation map[Mode]string
	revision   string
}

type templateDocument struct {
	Generation map[string]string `yaml:"generation"`
	Revision   string            `yaml:"revision"`
}

// LoadTemplates reads the template file at path, or the built-in templates
// when path is empty.
func LoadTemplates(path string) (*Templates, error) {
	data := defaultTemplates
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read prompt templates %q: %w", path, err)
		}
		data = raw
	}
	return ParseTemplates(data)
}

// ParseTemplates validates a YAML template document.
func ParseTemplates(data []byte) (*Templates, error) {
	var doc templateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}

	if strings.TrimSpace(doc.Revision) == "" {
		return nil, errors.New("prompt templates: revision template is empty")
	}

	generationSchema, err := replySchema(&generatedPrompt{})
	if err != nil {
		return nil, err
	}
	revisionSchema, err := replySchema(&RevisionResult{})
	if err != nil {
		return nil, err
	}

	t := &Templates{
		generation: make(map[Mode]string, len(doc.Generation)),
		revision:   withSchema(doc.Revision, revisionSchema),
	}
	for _, mode := range []Mode{ModeLong, ModeShort} {
		body := strings.TrimSpace(doc.Generation[string(mode)])
		if body == "" {
			return nil, fmt.Errorf("prompt templates: generation.%s template is empty", mode)
		}
		t.generation[mode] = withSchema(body, generationSchema)
	}
	return t, nil
}

// Generation returns the system message for a generation mode.
func (t *Templates) Generation(mode Mode) string {
	if msg, ok := t.generation[mode]; ok {
		return msg
	}
	return t.generation[ModeLong]
}

// Revision returns the system message for revisions.
func (t *Templates) Revision() string {
	return t.revision
}

func replySchema(v any) (string, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	schema := reflector.Reflect(v)
	schema.Version = ""
	raw, err := schema.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal reply schema: %w", err)
	}
	return string(raw), nil
}

func withSchema(template, schema string) string {
	return strings.TrimSpace(template) +
		"\n\nAnswer with one JSON object and nothing else. It must validate against this JSON schema:\n" +
		schema
}
