// Package seed loads initial store values from YAML files.
//
// A seed file is a mapping from key names to values:
//
//	count: 0
//	user:
//	  name: Ada
//	todos: [write, test]
package seed

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/bindstore/internal/errors"
	"github.com/vango-dev/bindstore/pkg/store"
)

// Load reads the seed file at path.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("C001").WithDetail(path).Wrap(err)
	}
	values, err := Decode(bytes.NewReader(data))
	if err != nil {
		rep := errors.FromError(err, "C001")
		if rep.Detail == "" {
			rep.Detail = path
		} else {
			rep.Detail = path + ": " + rep.Detail
		}
		return nil, rep
	}
	return values, nil
}

// Decode parses seed values from r. An empty document yields an empty map.
func Decode(r io.Reader) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return map[string]any{}, nil
		}
		return nil, errors.New("C001").Wrap(err)
	}
	if len(doc.Content) == 0 {
		return map[string]any{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("C001").
			WithDetail(fmt.Sprintf("line %d: top level is not a mapping", root.Line))
	}
	for i := 0; i < len(root.Content); i += 2 {
		k := root.Content[i]
		if k.Kind != yaml.ScalarNode || k.Value == "" {
			return nil, errors.New("C001").
				WithDetail(fmt.Sprintf("line %d: key names must be non-empty strings", k.Line))
		}
	}

	values := make(map[string]any, len(root.Content)/2)
	if err := root.Decode(&values); err != nil {
		return nil, errors.New("C001").Wrap(err)
	}
	return values, nil
}

// Apply writes values into s in key order, notifying consumers of each key.
func Apply(s *store.Store, values map[string]any) error {
	for _, k := range slices.Sorted(maps.Keys(values)) {
		if err := s.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}
