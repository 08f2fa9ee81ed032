// Package scenario runs declarative event bus scenarios from YAML or TOML files.
//
// A scenario declares owners with handlers, and a list of steps that post values or change registrations.
// Running it produces a [Trace] of recorded deliveries and faults that's stable enough to compare against golden files.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/BurntSushi/toml"
	"github.com/saylorsolutions/superbus/structures/set"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownFormat   = errors.New("unknown scenario format")
)

// Format is a scenario file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Handler kinds.
const (
	KindString = "string"
	KindInt    = "int"
	KindFloat  = "float"
	KindBool   = "bool"
	KindAny    = "any"
	KindDead   = "dead"
)

var kinds = []string{KindString, KindInt, KindFloat, KindBool, KindAny, KindDead}

// SelfTarget may be used as the target of an unregister action to refer to the handling owner.
const SelfTarget = "self"

type Scenario struct {
	Name   string  `yaml:"name" toml:"name"`
	Owners []Owner `yaml:"owners" toml:"owners"`
	Steps  []Step  `yaml:"steps" toml:"steps"`
}

// Owner is registered with all of its handlers before the first step, unless it's deferred.
type Owner struct {
	Name     string    `yaml:"name" toml:"name"`
	Deferred bool      `yaml:"deferred,omitempty" toml:"deferred,omitempty"`
	Handlers []Handler `yaml:"handlers" toml:"handlers"`
}

type Handler struct {
	// Kind is the type of value accepted by the handler.
	Kind     string `yaml:"kind" toml:"kind"`
	Priority int    `yaml:"priority,omitempty" toml:"priority,omitempty"`
	// When is an optional filter, one of gt:<number>, lt:<number>, or eq:<text>.
	When    string   `yaml:"when,omitempty" toml:"when,omitempty"`
	Actions []Action `yaml:"actions" toml:"actions"`
}

// Action is performed by a handler for each accepted value.
// Exactly one field must be set.
type Action struct {
	Record     bool   `yaml:"record,omitempty" toml:"record,omitempty"`
	Post       string `yaml:"post,omitempty" toml:"post,omitempty"`
	Fail       string `yaml:"fail,omitempty" toml:"fail,omitempty"`
	Panic      string `yaml:"panic,omitempty" toml:"panic,omitempty"`
	Unregister string `yaml:"unregister,omitempty" toml:"unregister,omitempty"`
}

func (a Action) fields() int {
	var set int
	if a.Record {
		set++
	}
	for _, val := range []string{a.Post, a.Fail, a.Panic, a.Unregister} {
		if val != "" {
			set++
		}
	}
	return set
}

// Step is one top level operation on the bus.
// Exactly one field must be set.
type Step struct {
	Post       string `yaml:"post,omitempty" toml:"post,omitempty"`
	Register   string `yaml:"register,omitempty" toml:"register,omitempty"`
	Unregister string `yaml:"unregister,omitempty" toml:"unregister,omitempty"`
}

func (s Step) String() string {
	switch {
	case s.Post != "":
		return "post " + s.Post
	case s.Register != "":
		return "register " + s.Register
	default:
		return "unregister " + s.Unregister
	}
}

// Load reads a scenario file, choosing the format by file extension.
func Load(path string) (*Scenario, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".toml":
		format = FormatTOML
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes and validates a scenario.
// Unknown fields are rejected in both formats.
func Parse(data []byte, format Format) (*Scenario, error) {
	var s Scenario
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse TOML: unknown keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownFormat, format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every reference, value, and filter in the scenario is usable.
func (s *Scenario) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
	}
	if s.Name == "" {
		return invalid("name is required")
	}
	if len(s.Steps) == 0 {
		return invalid("at least one step is required")
	}
	owners := set.New[string]()
	for _, owner := range s.Owners {
		if owner.Name == "" || owner.Name == SelfTarget {
			return invalid("owner name '%s' is not allowed", owner.Name)
		}
		if owners.Has(owner.Name) {
			return invalid("duplicate owner '%s'", owner.Name)
		}
		owners.Add(owner.Name)
	}
	for _, owner := range s.Owners {
		for i, handler := range owner.Handlers {
			where := fmt.Sprintf("owner '%s' handler %d", owner.Name, i)
			if !slices.Contains(kinds, handler.Kind) {
				return invalid("%s: unknown kind '%s'", where, handler.Kind)
			}
			if handler.When != "" {
				if _, err := parseFilter(handler.When); err != nil {
					return invalid("%s: %v", where, err)
				}
			}
			for j, action := range handler.Actions {
				if action.fields() != 1 {
					return invalid("%s action %d: exactly one action must be set", where, j)
				}
				if action.Post != "" {
					if _, err := parseValue(action.Post); err != nil {
						return invalid("%s action %d: %v", where, j, err)
					}
				}
				if action.Unregister != "" && action.Unregister != SelfTarget && !owners.Has(action.Unregister) {
					return invalid("%s action %d: unknown owner '%s'", where, j, action.Unregister)
				}
			}
		}
	}
	for i, step := range s.Steps {
		var set int
		for _, val := range []string{step.Post, step.Register, step.Unregister} {
			if val != "" {
				set++
			}
		}
		if set != 1 {
			return invalid("step %d: exactly one operation must be set", i+1)
		}
		switch {
		case step.Post != "":
			if _, err := parseValue(step.Post); err != nil {
				return invalid("step %d: %v", i+1, err)
			}
		case !owners.Has(step.Register + step.Unregister):
			return invalid("step %d: unknown owner '%s'", i+1, step.Register+step.Unregister)
		}
	}
	return nil
}
