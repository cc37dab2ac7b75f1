// Package validator checks a panel document for defects before it runs.
package validator

import (
	"fmt"
	"strings"

	"github.com/apkaudio/openair/pkg/domain"
	"github.com/apkaudio/openair/pkg/topic"
	"github.com/apkaudio/openair/pkg/widget"
)

// Issue is one defect found in the document.
type Issue struct {
	Path   string
	Type   string
	Reason string
}

// Report collects the outcome of a validation pass.
type Report struct {
	Controls int
	Issues   []Issue
}

// OK reports whether the document has no defects.
func (r *Report) OK() bool { return len(r.Issues) == 0 }

// Markdown renders the report for terminal display.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Panel validation\n\n")
	fmt.Fprintf(&b, "Controls found: **%d**\n\n", r.Controls)
	if r.OK() {
		b.WriteString("No defects found.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "## Defects (%d)\n\n", len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "- `%s` (%s): %s\n", issue.Path, issue.Type, issue.Reason)
	}
	return b.String()
}

// ValidateTree walks the document the same way composition does and
// reports every node that composition would skip.
func ValidateTree(nodes []domain.Node) *Report {
	r := &Report{}
	res := topic.NewResolver()
	seen := make(map[string]bool)
	walk(r, res, seen, "", nodes)
	return r
}

func walk(r *Report, res *topic.Resolver, seen map[string]bool, parentPath string, nodes []domain.Node) {
	for _, node := range nodes {
		fullPath := parentPath
		if node.Kind() != domain.KindGroup || node.Path != "" {
			resolved, err := res.Resolve(parentPath, node.Path)
			if err != nil {
				r.Issues = append(r.Issues, Issue{Path: topic.Join(parentPath, node.Path), Type: node.Type, Reason: err.Error()})
				continue
			}
			fullPath = resolved
		}

		if node.Kind() == domain.KindGroup {
			walk(r, res, seen, fullPath, node.Children)
			continue
		}

		if seen[fullPath] {
			r.Issues = append(r.Issues, Issue{Path: fullPath, Type: node.Type, Reason: "duplicate topic"})
			continue
		}
		seen[fullPath] = true
		r.Controls++

		if reason := checkProperties(node); reason != "" {
			r.Issues = append(r.Issues, Issue{Path: fullPath, Type: node.Type, Reason: reason})
		}
	}
}

func checkProperties(node domain.Node) string {
	switch node.Type {
	case domain.TypeKnob, domain.TypeFader, domain.TypeMeterKnob:
		var cfg widget.RangeConfig
		if err := widget.DecodeConfig(node.Properties, &cfg); err != nil {
			return err.Error()
		}
		return checkRange(cfg)
	case domain.TypeMultiFader:
		var cfg widget.MultiFaderConfig
		if err := widget.DecodeConfig(node.Properties, &cfg); err != nil {
			return err.Error()
		}
		// Channels <= 0 falls back to the composition default.
		return checkRange(cfg.RangeConfig)
	case domain.TypeActuator:
		var cfg widget.ActuatorConfig
		if err := widget.DecodeConfig(node.Properties, &cfg); err != nil {
			return err.Error()
		}
		// Duration <= 0 falls back to the composition default.
		return ""
	default:
		return fmt.Sprintf("unknown widget type %q", node.Type)
	}
}

func checkRange(cfg widget.RangeConfig) string {
	if cfg.Min == 0 && cfg.Max == 0 {
		// Composition defaults an unset range to 0..100.
		return ""
	}
	if cfg.Min > cfg.Max {
		return fmt.Sprintf("min %v exceeds max %v", cfg.Min, cfg.Max)
	}
	if cfg.Default < cfg.Min || cfg.Default > cfg.Max {
		return fmt.Sprintf("default %v outside range %v..%v", cfg.Default, cfg.Min, cfg.Max)
	}
	return ""
}
