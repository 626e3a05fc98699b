package scope

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ardnew/scopexpr/lang"
	"github.com/ardnew/scopexpr/log"
)

// Container is a named scope holding variables, callables and child
// containers. It implements [lang.Scope].
//
// Variables and callables are plain attributes: expressions evaluated in
// the container read them directly. Children are declared but are reached
// only through the accessors, so "sub.x" in an expression becomes a call
// to [Container.Get]. Private attributes are visible to expressions but are
// not declared, so a parent name of the same spelling takes precedence.
//
// All methods are safe for concurrent use.
type Container struct {
	mu       sync.RWMutex
	parent   *Container
	logger   log.Logger
	vars     map[string]any
	funcs    map[string]callable
	private  map[string]any
	children map[string]*Container
	name     string
}

var _ lang.Scope = (*Container)(nil)

// New returns an empty container.
func New(name string, opts ...Option) *Container {
	c := &Container{
		name:     name,
		vars:     map[string]any{},
		funcs:    map[string]callable{},
		private:  map[string]any{},
		children: map[string]*Container{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the name the container was created with.
func (c *Container) Name() string { return c.name }

// Path returns the dotted path of c from the root of its tree, or "" for
// the root itself.
func (c *Container) Path() string {
	var segs []string

	for p := c; p.parent != nil; p = p.parent {
		segs = append(segs, p.name)
	}

	slices.Reverse(segs)

	return strings.Join(segs, ".")
}

// Declare adds or replaces the variable name.
func (c *Container) Declare(name string, value any) error {
	if err := checkName(name); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.children[name]; ok {
		return duplicate(name)
	}

	delete(c.funcs, name)
	c.vars[name] = value

	return nil
}

// Private adds or replaces an attribute that is not declared.
func (c *Container) Private(name string, value any) error {
	if err := checkName(name); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.private[name] = value

	return nil
}

// Func declares fn as the callable name. fn must be a function; arguments
// are converted to its parameter types when it is called, and a trailing
// error result is returned as the call error.
func (c *Container) Func(name string, fn any) error {
	if err := checkName(name); err != nil {
		return err
	}

	f, err := newCallable(name, fn)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.children[name]; ok {
		return duplicate(name)
	}

	delete(c.vars, name)
	c.funcs[name] = f

	return nil
}

// Add declares child under its own name and makes c its parent.
func (c *Container) Add(child *Container) error {
	if err := checkName(child.name); err != nil {
		return err
	}

	if child == c || child.parent != nil && child.parent != c {
		return ErrDuplicate.
			Wrap(errors.New("container already has a parent")).
			With(slog.String("name", child.name))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.declared(child.name) {
		return duplicate(child.name)
	}

	child.parent = c
	if child.logger.Logger == nil {
		child.logger = c.logger
	}

	c.children[child.name] = child

	return nil
}

// Child returns the child container name.
func (c *Container) Child(name string) (*Container, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	child, ok := c.children[name]

	return child, ok
}

// Lookup returns the descendant container at the dotted path, or c itself
// for the empty path.
func (c *Container) Lookup(path string) (*Container, error) {
	cur := c

	if path == "" {
		return cur, nil
	}

	for seg := range strings.SplitSeq(path, ".") {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, notFound(path)
		}

		cur = next
	}

	return cur, nil
}

// Names returns the sorted names declared by c.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := slices.Collect(maps.Keys(c.vars))
	names = slices.AppendSeq(names, maps.Keys(c.funcs))
	names = slices.AppendSeq(names, maps.Keys(c.children))

	slices.Sort(names)

	return names
}

// Walk calls fn with the dotted path of every name reachable from c,
// descending into children, in sorted order.
func (c *Container) Walk(fn func(path string)) {
	c.walk("", fn)
}

func (c *Container) walk(prefix string, fn func(string)) {
	for _, name := range c.Names() {
		fn(prefix + name)

		if child, ok := c.Child(name); ok {
			child.walk(prefix+name+".", fn)
		}
	}
}

// Contains reports whether name is declared by c.
func (c *Container) Contains(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.declared(name)
}

func (c *Container) declared(name string) bool {
	if _, ok := c.vars[name]; ok {
		return true
	}

	if _, ok := c.funcs[name]; ok {
		return true
	}

	_, ok := c.children[name]

	return ok
}

// HasAttr reports whether name is a plain attribute of c.
func (c *Container) HasAttr(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.vars[name]; ok {
		return true
	}

	if _, ok := c.funcs[name]; ok {
		return true
	}

	_, ok := c.private[name]

	return ok
}

// Namespace returns a copy of the plain attributes of c.
func (c *Container) Namespace() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ns := make(map[string]any, len(c.vars)+len(c.funcs)+len(c.private))

	maps.Copy(ns, c.private)

	for name, f := range c.funcs {
		ns[name] = f.call
	}

	maps.Copy(ns, c.vars)

	return ns
}

// Parent returns the container c was added to, or nil at the root.
func (c *Container) Parent() lang.Scope {
	if c.parent == nil {
		return nil
	}

	return c.parent
}

// Warning logs msg at warn level with the path of c.
func (c *Container) Warning(msg string) {
	c.logger.Warn(msg, slog.String("scope", c.displayPath()))
}

func (c *Container) displayPath() string {
	if p := c.Path(); p != "" {
		return p
	}

	return c.name
}

// checkName rejects names an expression could not spell as one path
// segment.
func checkName(name string) error {
	if !validName(name) {
		return ErrDecode.
			Wrap(errors.New("invalid name " + strconv.Quote(name))).
			With(slog.String("name", name))
	}

	return nil
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, "__") {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}

func duplicate(name string) error {
	return ErrDuplicate.
		Wrap(errors.New(strconv.Quote(name))).
		With(slog.String("name", name))
}

func notFound(path string) error {
	return ErrNotFound.
		Wrap(errors.New(strconv.Quote(path))).
		With(slog.String("path", path))
}
