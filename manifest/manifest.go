// Package manifest wires a container from a YAML document.
//
// A manifest lists bindings, stored instances and contextual overrides:
//
//	bindings:
//	  - key: type:Transport
//	    to: type:SMTPTransport
//	  - key: type:SMTPTransport
//	    shared: true
//	  - key: mailer
//	    to: Mailer
//	instances:
//	  app.name: billing
//	contextual:
//	  - when: [Mailer]
//	    needs: host
//	    value: smtp.internal
//	  - when: [PhotoController]
//	    needs: type:Filesystem
//	    give: fs.local
//
// Keys are plain strings unless prefixed with "type:", in which case they
// name a type registered with Container.Define (by its type name or a Named
// alias) and stand for its type token.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/junioryono/ioc"
	"github.com/junioryono/ioc/internal/graph"
	"gopkg.in/yaml.v3"
)

// TypePrefix marks a key that names a defined type.
const TypePrefix = "type:"

// Manifest is the root structure of a manifest file.
type Manifest struct {
	Bindings   []Binding      `yaml:"bindings"`
	Instances  map[string]any `yaml:"instances"`
	Contextual []Contextual   `yaml:"contextual"`
}

// Binding registers Key. Without To the key is bound to itself.
type Binding struct {
	Key    string `yaml:"key"`
	To     string `yaml:"to"`
	Shared bool   `yaml:"shared"`
}

// Contextual overrides a dependency for the consumers in When. Needs is a
// parameter name or a "type:" key; exactly one of Give (a key) and Value is
// set.
type Contextual struct {
	When  []string `yaml:"when"`
	Needs string   `yaml:"needs"`
	Give  string   `yaml:"give"`
	Value any      `yaml:"value"`
}

// Kind labels the binding for diagnostics.
func (b Binding) Kind() string {
	if b.To == "" || b.To == b.Key {
		return "autowire"
	}
	return "alias"
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	m, err := Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// Decode reads a manifest. Unknown fields are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest without a container: required fields,
// duplicate keys and alias cycles. All problems are reported together.
func (m *Manifest) Validate() error {
	var errs []error

	seen := make(map[string]string)
	claim := func(key, where string) {
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%s: key %q is already declared by %s", where, key, prev))
			return
		}
		seen[key] = where
	}

	for i, b := range m.Bindings {
		where := fmt.Sprintf("bindings[%d]", i)
		if err := checkKey(b.Key); err != nil {
			errs = append(errs, fmt.Errorf("%s: key: %w", where, err))
			continue
		}
		if b.To != "" {
			if err := checkKey(b.To); err != nil {
				errs = append(errs, fmt.Errorf("%s: to: %w", where, err))
			}
		}
		claim(b.Key, where)
	}

	for _, key := range m.InstanceKeys() {
		where := fmt.Sprintf("instances[%s]", key)
		if err := checkKey(key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
			continue
		}
		claim(key, where)
	}

	for i, ctx := range m.Contextual {
		where := fmt.Sprintf("contextual[%d]", i)
		if len(ctx.When) == 0 {
			errs = append(errs, fmt.Errorf("%s: when: at least one consumer is required", where))
		}
		for _, consumer := range ctx.When {
			if err := checkKey(consumer); err != nil {
				errs = append(errs, fmt.Errorf("%s: when: %w", where, err))
			}
		}
		if err := checkKey(ctx.Needs); err != nil {
			errs = append(errs, fmt.Errorf("%s: needs: %w", where, err))
		}
		switch {
		case ctx.Give != "" && ctx.Value != nil:
			errs = append(errs, fmt.Errorf("%s: give and value are mutually exclusive", where))
		case ctx.Give == "" && ctx.Value == nil:
			errs = append(errs, fmt.Errorf("%s: one of give or value is required", where))
		case ctx.Give != "":
			if err := checkKey(ctx.Give); err != nil {
				errs = append(errs, fmt.Errorf("%s: give: %w", where, err))
			}
		}
	}

	if len(errs) == 0 {
		if _, err := m.Graph(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Graph builds the alias graph of the manifest. Each binding points at its
// target; a key aliased to itself is autowired and has no edge. A cycle
// is reported as graph.CircularDependencyError.
func (m *Manifest) Graph() (*graph.DependencyGraph, error) {
	g := graph.NewDependencyGraph()

	for _, key := range m.InstanceKeys() {
		if err := g.AddEntry(graph.Entry{Name: key, Kind: "instance", Shared: true}); err != nil {
			return nil, err
		}
	}

	for _, b := range m.Bindings {
		entry := graph.Entry{Name: b.Key, Kind: b.Kind(), Shared: b.Shared}
		if b.Kind() == "alias" {
			entry.Dependencies = []string{b.To}
		}
		if err := g.AddEntry(entry); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Apply validates the manifest and registers it with c: instances first,
// then bindings, then contextual overrides. Every key is parsed before
// anything is registered, so a manifest that fails leaves c untouched.
func (m *Manifest) Apply(c *ioc.Container) error {
	if err := m.Validate(); err != nil {
		return err
	}

	steps, err := m.plan(c)
	if err != nil {
		return err
	}

	for _, s := range steps {
		if err := s.apply(c); err != nil {
			return fmt.Errorf("%s: %w", s.label, err)
		}
	}

	return nil
}

// step is one registration with its keys already parsed.
type step struct {
	label string
	apply func(c *ioc.Container) error
}

func (m *Manifest) plan(c *ioc.Container) ([]step, error) {
	steps := make([]step, 0, len(m.Instances)+len(m.Bindings)+len(m.Contextual))

	for _, name := range m.InstanceKeys() {
		label := fmt.Sprintf("instances[%s]", name)
		key, err := ParseKey(c, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		value := m.Instances[name]
		steps = append(steps, step{label: label, apply: func(c *ioc.Container) error {
			return c.Instance(key, value)
		}})
	}

	for i, b := range m.Bindings {
		label := fmt.Sprintf("bindings[%d]", i)
		apply, err := planBinding(c, b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		steps = append(steps, step{label: label, apply: apply})
	}

	for i, ctx := range m.Contextual {
		label := fmt.Sprintf("contextual[%d]", i)
		apply, err := planContextual(c, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		steps = append(steps, step{label: label, apply: apply})
	}

	return steps, nil
}

func planBinding(c *ioc.Container, b Binding) (func(*ioc.Container) error, error) {
	key, err := ParseKey(c, b.Key)
	if err != nil {
		return nil, err
	}

	var opts []ioc.BindOption
	if b.Kind() == "alias" {
		target, err := ParseKey(c, b.To)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ioc.To(target))
	}
	if b.Shared {
		opts = append(opts, ioc.Shared())
	}

	return func(c *ioc.Container) error {
		return c.Bind(key, opts...)
	}, nil
}

func planContextual(c *ioc.Container, ctx Contextual) (func(*ioc.Container) error, error) {
	consumers := make([]ioc.Key, 0, len(ctx.When))
	for _, name := range ctx.When {
		consumer, err := ParseKey(c, name)
		if err != nil {
			return nil, err
		}
		consumers = append(consumers, consumer)
	}

	selector, err := ParseKey(c, ctx.Needs)
	if err != nil {
		return nil, err
	}

	if ctx.Give == "" {
		value := ctx.Value
		return func(c *ioc.Container) error {
			return c.When(consumers...).Needs(selector).GiveValue(value)
		}, nil
	}

	give, err := ParseKey(c, ctx.Give)
	if err != nil {
		return nil, err
	}
	return func(c *ioc.Container) error {
		return c.When(consumers...).Needs(selector).Give(give)
	}, nil
}

// ParseKey converts a manifest key. "type:Name" becomes the type token of
// the type c's introspector knows as Name; anything else stays a string.
func ParseKey(c *ioc.Container, s string) (ioc.Key, error) {
	name, ok := strings.CutPrefix(s, TypePrefix)
	if !ok {
		return s, nil
	}

	t, found := c.Introspector().Lookup(name)
	if !found {
		return nil, ioc.TypeNotFoundError{Key: name}
	}
	return t, nil
}

func checkKey(s string) error {
	switch {
	case s == "":
		return errors.New("must not be empty")
	case s == TypePrefix:
		return errors.New("type name is missing")
	}
	return nil
}

// InstanceKeys returns the instance keys in sorted order.
func (m *Manifest) InstanceKeys() []string {
	keys := make([]string, 0, len(m.Instances))
	for key := range m.Instances {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
