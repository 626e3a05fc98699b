package scope

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/scopexpr/lang"
)

// DefaultName is the name of a root container loaded without one.
const DefaultName = "root"

// definition is the YAML form of a container:
//
//	name: top
//	vars:
//	  gear: 4
//	  a: [[1, 2], [3, 4]]
//	private:
//	  gear: 0
//	children:
//	  comp:
//	    vars:
//	      y: 0.5
type definition struct {
	Vars     map[string]any         `yaml:"vars"`
	Private  map[string]any         `yaml:"private"`
	Children map[string]*definition `yaml:"children"`
	Name     string                 `yaml:"name"`
}

// Load reads a YAML container definition from r and builds the tree it
// describes. Options apply to the root; children inherit its logger.
func Load(ctx context.Context, r io.Reader, opts ...Option) (*Container, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	var def definition

	if err := yaml.NewDecoder(ra).DecodeContext(ctx, &def); err != nil {
		if errors.Is(err, io.EOF) {
			return New(DefaultName, opts...), nil
		}

		return nil, ErrDecode.Wrap(err)
	}

	name := def.Name
	if name == "" {
		name = DefaultName
	}

	root := New(name, opts...)

	if err := root.build(&def); err != nil {
		return nil, err
	}

	return root, nil
}

func (c *Container) build(def *definition) error {
	for _, name := range slices.Sorted(maps.Keys(def.Vars)) {
		if err := c.Declare(name, normalize(def.Vars[name])); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(def.Private)) {
		if err := c.Private(name, normalize(def.Private[name])); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(def.Children)) {
		child := New(name)

		if err := c.Add(child); err != nil {
			return err
		}

		sub := def.Children[name]
		if sub == nil {
			continue
		}

		if err := child.build(sub); err != nil {
			return wrapPath(err, child.Path())
		}
	}

	return nil
}

func wrapPath(err error, path string) error {
	if e, ok := err.(*lang.Error); ok {
		return e.With(slog.String("container", path))
	}

	return err
}

// normalize converts decoded YAML integers to int so that values loaded
// from a file combine with expression literals without mixed integer kinds.
func normalize(v any) any {
	switch val := v.(type) {
	case uint64:
		if val <= math.MaxInt {
			return int(val)
		}

	case int64:
		return int(val)

	case []any:
		for i, e := range val {
			val[i] = normalize(e)
		}

	case map[string]any:
		for k, e := range val {
			val[k] = normalize(e)
		}
	}

	return v
}
