// Package yolo parses YOLO-format dataset configuration and annotation files.
package yolo

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the class schema and split layout declared by a dataset's
// data.yaml file.
type Config struct {
	Path  string
	Train string
	Val   string
	Test  string
	Names []string
}

// rawConfig keeps names as a yaml.Node because datasets in the wild declare
// them either as an ordered list or as an index-keyed map.
type rawConfig struct {
	Path  string    `yaml:"path"`
	Train string    `yaml:"train"`
	Val   string    `yaml:"val"`
	Test  string    `yaml:"test"`
	Names yaml.Node `yaml:"names"`
}

// ParseConfig decodes a YOLO data.yaml document. The names field may be a
// sequence of class names or a mapping from non-negative integer indices to
// names; sparse mappings are densified with empty-string placeholders so that
// class indices stay aligned.
func ParseConfig(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigFormatError{Message: "document is not a mapping", Cause: err}
	}

	names, err := parseNames(&raw.Names)
	if err != nil {
		return nil, err
	}

	return &Config{
		Path:  raw.Path,
		Train: raw.Train,
		Val:   raw.Val,
		Test:  raw.Test,
		Names: names,
	}, nil
}

func parseNames(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0, yaml.ScalarNode:
		if node.Kind == 0 || node.Tag == "!!null" {
			return nil, &ConfigFormatError{Message: "names field is missing"}
		}
		return nil, &ConfigFormatError{Message: "names must be a list or a map of class indices"}
	case yaml.SequenceNode:
		return namesFromSequence(node)
	case yaml.MappingNode:
		return namesFromMapping(node)
	default:
		return nil, &ConfigFormatError{Message: "names must be a list or a map of class indices"}
	}
}

func namesFromSequence(node *yaml.Node) ([]string, error) {
	if len(node.Content) == 0 {
		return nil, &ConfigFormatError{Message: "names list is empty"}
	}
	names := make([]string, 0, len(node.Content))
	for i, item := range node.Content {
		var name string
		if err := item.Decode(&name); err != nil {
			return nil, &ConfigFormatError{Message: fmt.Sprintf("class name at index %d is not a string", i), Cause: err}
		}
		if strings.TrimSpace(name) == "" {
			return nil, &ConfigFormatError{Message: fmt.Sprintf("class name at index %d is empty", i)}
		}
		names = append(names, name)
	}
	return names, nil
}

func namesFromMapping(node *yaml.Node) ([]string, error) {
	if len(node.Content) == 0 {
		return nil, &ConfigFormatError{Message: "names map is empty"}
	}

	byIndex := make(map[int]string, len(node.Content)/2)
	maxIndex := -1
	for i := 0; i < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]

		var index int
		if err := keyNode.Decode(&index); err != nil || keyNode.Tag != "!!int" {
			return nil, &ConfigFormatError{Message: fmt.Sprintf("names key %q is not an integer", keyNode.Value)}
		}
		if index < 0 {
			return nil, &ConfigFormatError{Message: fmt.Sprintf("names key %d is negative", index)}
		}

		var name string
		if err := valNode.Decode(&name); err != nil {
			return nil, &ConfigFormatError{Message: fmt.Sprintf("class name for index %d is not a string", index), Cause: err}
		}
		if strings.TrimSpace(name) == "" {
			return nil, &ConfigFormatError{Message: fmt.Sprintf("class name for index %d is empty", index)}
		}

		byIndex[index] = name
		if index > maxIndex {
			maxIndex = index
		}
	}

	// Gaps in a sparse map become placeholders so indices keep lining up.
	names := make([]string, maxIndex+1)
	for index, name := range byIndex {
		names[index] = name
	}
	return names, nil
}
