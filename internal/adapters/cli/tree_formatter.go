package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/imperium/internal/domain/catalog"
	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// PrerequisiteNode is one item in a prerequisite tree
type PrerequisiteNode struct {
	Key   string
	Name  string
	Track shared.Track
	// RequiredLevel is the level the parent needs; 0 on the root
	RequiredLevel int
	// PerLocation marks structure requirements checked at the build location
	PerLocation bool
	// Missing marks a key the catalog does not define
	Missing bool
	// Cycle marks a key already on the path from the root
	Cycle    bool
	Children []*PrerequisiteNode
}

// BuildPrerequisiteTree expands the prerequisites of key recursively
func BuildPrerequisiteTree(cat catalog.Catalog, key string) (*PrerequisiteNode, error) {
	item, ok := cat.Item(key)
	if !ok {
		return nil, fmt.Errorf("unknown catalog item %q", key)
	}
	return expandNode(cat, item, 0, false, map[string]bool{}), nil
}

func expandNode(cat catalog.Catalog, item *catalog.Item, level int, perLocation bool, path map[string]bool) *PrerequisiteNode {
	node := &PrerequisiteNode{
		Key:           item.Key,
		Name:          item.Name,
		Track:         item.Track,
		RequiredLevel: level,
		PerLocation:   perLocation,
	}
	if path[item.Key] {
		node.Cycle = true
		return node
	}
	path[item.Key] = true
	defer delete(path, item.Key)

	add := func(reqs map[string]int, perLocation bool) {
		keys := make([]string, 0, len(reqs))
		for k := range reqs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			child, ok := cat.Item(k)
			if !ok {
				node.Children = append(node.Children, &PrerequisiteNode{
					Key: k, RequiredLevel: reqs[k], PerLocation: perLocation, Missing: true,
				})
				continue
			}
			node.Children = append(node.Children, expandNode(cat, child, reqs[k], perLocation, path))
		}
	}
	add(item.Prerequisites.Technologies, false)
	add(item.Prerequisites.Structures, true)

	return node
}

// TreeFormatter renders prerequisite trees
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// FormatTree renders a prerequisite tree with box-drawing connectors
func (f *TreeFormatter) FormatTree(root *PrerequisiteNode) string {
	if root == nil {
		return "(empty tree)"
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

func (f *TreeFormatter) formatNode(builder *strings.Builder, node *PrerequisiteNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	switch {
	case isRoot:
		linePrefix = ""
	case isLast:
		linePrefix = prefix + "└── "
	default:
		linePrefix = prefix + "├── "
	}

	builder.WriteString(linePrefix)
	builder.WriteString(f.describe(node))
	builder.WriteString("\n")

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i, child := range node.Children {
		f.formatNode(builder, child, childPrefix, i == len(node.Children)-1, false)
	}
}

func (f *TreeFormatter) describe(node *PrerequisiteNode) string {
	label := node.Key
	if node.Name != "" {
		label = fmt.Sprintf("%s (%s)", node.Name, node.Key)
	}
	label = f.colorize(label, colorCyan)

	var parts []string
	parts = append(parts, label)
	if node.RequiredLevel > 0 {
		parts = append(parts, fmt.Sprintf("level %d", node.RequiredLevel))
	}
	if node.Track != "" {
		parts = append(parts, f.colorize("["+node.Track.String()+"]", colorGray))
	}
	if node.PerLocation {
		parts = append(parts, f.colorize("at build location", colorGray))
	}
	if node.Missing {
		parts = append(parts, f.colorize("MISSING FROM CATALOG", colorRed))
	}
	if node.Cycle {
		parts = append(parts, f.colorize("CYCLE", colorYellow))
	}
	return strings.Join(parts, " ")
}

func (f *TreeFormatter) colorize(text, color string) string {
	if !f.useColors {
		return text
	}
	return color + text + colorReset
}
