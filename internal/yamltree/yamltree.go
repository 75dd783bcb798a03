// Package yamltree adapts a YAML document into the generic descr.Node
// tree every grammar component builds itself from. It is deliberately
// generic (a mapping node becomes a named child per key, a sequence node
// becomes a list of same-named children, a scalar becomes a leaf value)
// and carries no knowledge of paradigms, lexemes or any other grammar
// concept — those live entirely in the New()/Load*() constructors each
// package already exposes over descr.Node.
package yamltree

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/timarkh/uniparser-grammar-udm/internal/descr"
)

// Load reads path as YAML and converts its top-level mapping into one
// descr.Node per key.
func Load(path string) ([]*descr.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	return childrenOf(root), nil
}

func childrenOf(n *yaml.Node) []*descr.Node {
	switch n.Kind {
	case yaml.MappingNode:
		var out []*descr.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			val := n.Content[i+1]
			out = append(out, nodeFor(key.Value, val))
		}
		return out
	case yaml.SequenceNode:
		var out []*descr.Node
		for _, item := range n.Content {
			out = append(out, nodeFor("", item))
		}
		return out
	default:
		return nil
	}
}

func nodeFor(name string, val *yaml.Node) *descr.Node {
	node := &descr.Node{Name: name}
	switch val.Kind {
	case yaml.ScalarNode:
		node.Value = val.Value
	case yaml.MappingNode:
		node.Children = childrenOf(val)
	case yaml.SequenceNode:
		for _, item := range val.Content {
			if item.Kind == yaml.MappingNode {
				child := &descr.Node{Name: name, Children: childrenOf(item)}
				node.Children = append(node.Children, child)
			} else {
				node.Children = append(node.Children, &descr.Node{Name: name, Value: item.Value})
			}
		}
	}
	return node
}
