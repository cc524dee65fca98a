// Package frontmatter reads and patches the YAML block at the top of a
// markdown file. Patches go through yaml.Node so untouched keys keep their
// order and formatting.
package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var fencePattern = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(?:(.*?)\r?\n)?---[ \t]*(?:\r?\n|\z)`)

// Field is one key of a rendered front matter block.
type Field struct {
	Key   string
	Value any
}

// Split separates the front matter from the body. ok is false when data does
// not start with a front matter fence; body is then all of data.
func Split(data []byte) (fm []byte, body []byte, ok bool) {
	loc := fencePattern.FindSubmatchIndex(data)
	if loc == nil {
		return nil, data, false
	}
	if loc[2] >= 0 {
		fm = data[loc[2]:loc[3]]
	}
	return fm, data[loc[1]:], true
}

// Parse returns the properties in data's front matter with values normalised
// to bool, float64, string, []any, map[string]any or nil. A file without
// front matter has no properties.
func Parse(data []byte) (map[string]any, error) {
	fm, _, ok := Split(data)
	props := make(map[string]any)
	if !ok || len(bytes.TrimSpace(fm)) == 0 {
		return props, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(fm, &raw); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	for key, value := range raw {
		props[key] = Normalize(value)
	}
	return props, nil
}

// Normalize converts decoded YAML values to the property value shapes used
// across the board.
func Normalize(value any) any {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	}
	return value
}

// Render builds a front matter block from fields in order. Nil values are
// skipped.
func Render(fields []Field) ([]byte, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range fields {
		if f.Value == nil {
			continue
		}
		if err := setKey(mapping, f.Key, f.Value); err != nil {
			return nil, err
		}
	}
	return fence(mapping)
}

// SetProperty writes name = value into data's front matter and returns the
// new file content. A nil value removes the key. Front matter is created when
// the file has none; the body is never touched.
func SetProperty(data []byte, name string, value any) ([]byte, error) {
	fm, body, ok := Split(data)
	if !ok {
		body = data
	}

	mapping, err := mappingNode(fm)
	if err != nil {
		return nil, err
	}

	if value == nil {
		removeKey(mapping, name)
	} else if err := setKey(mapping, name, value); err != nil {
		return nil, err
	}

	head, err := fence(mapping)
	if err != nil {
		return nil, err
	}
	return append(head, body...), nil
}

func mappingNode(fm []byte) (*yaml.Node, error) {
	empty := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if len(bytes.TrimSpace(fm)) == 0 {
		return empty, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(fm, &doc); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return empty, nil
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("front matter is not a mapping")
	}
	return mapping, nil
}

func setKey(mapping *yaml.Node, key string, value any) error {
	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = &node
			return nil
		}
	}

	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&node,
	)
	return nil
}

func removeKey(mapping *yaml.Node, key string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content = append(mapping.Content[:i], mapping.Content[i+2:]...)
			return
		}
	}
}

func fence(mapping *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	if len(mapping.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(mapping); err != nil {
			return nil, fmt.Errorf("encode front matter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode front matter: %w", err)
		}
	}
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}
