// Package jsondoc loads declarative panel documents from disk. Documents
// are YAML, which also accepts the JSON form unchanged.
package jsondoc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/apkaudio/openair/pkg/domain"
)

// document is the on-disk shape of a panel file.
type document struct {
	Panel []docNode `yaml:"panel"`
}

type docNode struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Path       string         `yaml:"path"`
	Properties map[string]any `yaml:"properties"`
	Children   []docNode      `yaml:"children"`
}

// Loader reads one panel document and implements ports.TreeLoader.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the document into the widget tree. Structural defects in the
// file itself fail the load; per-node configuration defects are left for
// the composition walk to report.
func (l *Loader) Load() ([]domain.Node, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read panel document: %w", err)
	}
	return Parse(data)
}

// Parse decodes a panel document from raw bytes.
func Parse(data []byte) ([]domain.Node, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse panel document: %w", err)
	}
	if len(doc.Panel) == 0 {
		return nil, fmt.Errorf("panel document has no nodes")
	}
	return convert(doc.Panel), nil
}

func convert(nodes []docNode) []domain.Node {
	out := make([]domain.Node, 0, len(nodes))
	for _, n := range nodes {
		node := domain.Node{
			Name:       n.Name,
			Type:       n.Type,
			Path:       n.Path,
			Properties: n.Properties,
			Children:   convert(n.Children),
		}
		if node.Name == "" {
			node.Name = node.Path
		}
		out = append(out, node)
	}
	return out
}
