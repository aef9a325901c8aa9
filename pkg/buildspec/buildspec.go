package buildspec

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/matzehuels/mvnbox/pkg/cache"
	"github.com/matzehuels/mvnbox/pkg/errors"
)

// Property is a single build property. A nil Value renders as a bare flag
// (-Dkey); a non-nil Value renders as -Dkey=value, even when empty.
type Property struct {
	Key   string
	Value *string
}

// String renders the property in its command-line form.
func (p Property) String() string {
	if p.Value == nil {
		return "-D" + p.Key
	}
	return "-D" + p.Key + "=" + *p.Value
}

// DefaultProperties are seeded into every spec created with [New].
// They disable checks and plugins that are irrelevant for an embedded build
// and make test execution single-forked and ordered by the file system.
var DefaultProperties = []Property{
	{Key: "master_sanityCheck_skip", Value: ptr("true")},
	{Key: "jacoco.skip", Value: ptr("true")},
	{Key: "forkCount", Value: ptr("1")},
	{Key: "surefire.runOrder", Value: ptr("filesystem")},
	{Key: "maven.gitcommitid.skip", Value: ptr("true")},
	{Key: "enforcer.skip", Value: ptr("true")},
}

// BuildSpec describes one build invocation.
//
// A BuildSpec is not safe for concurrent mutation. Once built it may be
// passed to any number of executions; executors never modify it.
type BuildSpec struct {
	workDir string
	goals   []string
	options []string
	props   []Property
	index   map[string]int
}

// New returns a spec pre-seeded with [DefaultProperties].
func New() *BuildSpec {
	s := NewBare()
	for _, p := range DefaultProperties {
		s.put(p.Key, p.Value)
	}
	return s
}

// NewBare returns a spec without any default properties.
func NewBare() *BuildSpec {
	return &BuildSpec{index: make(map[string]int)}
}

// SetWorkingDirectory sets the directory the build runs in.
func (s *BuildSpec) SetWorkingDirectory(dir string) error {
	dir = strings.TrimSpace(dir)
	if err := errors.ValidateDirectory(dir); err != nil {
		return err
	}
	s.workDir = dir
	return nil
}

// WorkingDirectory returns the working directory and whether it was set.
func (s *BuildSpec) WorkingDirectory() (string, bool) {
	return s.workDir, s.workDir != ""
}

// AddGoals appends goals, ignoring ones already present.
// All goals are validated before any is added.
func (s *BuildSpec) AddGoals(goals ...string) error {
	clean, err := tokens("goal", goals)
	if err != nil {
		return err
	}
	for _, g := range clean {
		if !slices.Contains(s.goals, g) {
			s.goals = append(s.goals, g)
		}
	}
	return nil
}

// AddOptions adds single-token options such as "B" or "U". A leading dash is
// stripped since rendering adds one.
func (s *BuildSpec) AddOptions(options ...string) error {
	trimmed := make([]string, len(options))
	for i, o := range options {
		trimmed[i] = strings.TrimPrefix(strings.TrimSpace(o), "-")
	}
	clean, err := tokens("option", trimmed)
	if err != nil {
		return err
	}
	for _, o := range clean {
		if !slices.Contains(s.options, o) {
			s.options = append(s.options, o)
		}
	}
	return nil
}

// SetProperty adds or overrides a property. A nil value declares the
// property without a value. Overriding keeps the original position.
func (s *BuildSpec) SetProperty(key string, value *string) error {
	key = strings.TrimSpace(key)
	if err := errors.ValidatePropertyKey(key); err != nil {
		return err
	}
	if value != nil {
		v := strings.TrimSpace(*value)
		value = &v
	}
	s.put(key, value)
	return nil
}

// SetPropertyValue is shorthand for SetProperty with a non-nil value.
func (s *BuildSpec) SetPropertyValue(key, value string) error {
	return s.SetProperty(key, &value)
}

// Property returns the property stored under key.
func (s *BuildSpec) Property(key string) (Property, bool) {
	i, ok := s.index[strings.TrimSpace(key)]
	if !ok {
		return Property{}, false
	}
	return s.props[i], true
}

// Goals returns a copy of the goals in insertion order.
func (s *BuildSpec) Goals() []string { return slices.Clone(s.goals) }

// Options returns a copy of the options in insertion order.
func (s *BuildSpec) Options() []string { return slices.Clone(s.options) }

// Properties returns a copy of the properties in insertion order.
func (s *BuildSpec) Properties() []Property { return slices.Clone(s.props) }

// Args renders the build spec as [goal...] [-option...] [-Dkey[=value]...].
func (s *BuildSpec) Args() []string {
	args := make([]string, 0, len(s.goals)+len(s.options)+len(s.props))
	args = append(args, s.goals...)
	for _, o := range s.options {
		args = append(args, "-"+o)
	}
	for _, p := range s.props {
		args = append(args, p.String())
	}
	return args
}

// Clone returns an independent copy of s.
func (s *BuildSpec) Clone() *BuildSpec {
	c := &BuildSpec{
		workDir: s.workDir,
		goals:   slices.Clone(s.goals),
		options: slices.Clone(s.options),
		props:   slices.Clone(s.props),
		index:   make(map[string]int, len(s.index)),
	}
	for k, v := range s.index {
		c.index[k] = v
	}
	return c
}

// Equal reports whether s and o describe the same invocation.
func (s *BuildSpec) Equal(o *BuildSpec) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.workDir != o.workDir || !slices.Equal(s.goals, o.goals) {
		return false
	}
	if !slices.Equal(sorted(s.options), sorted(o.options)) {
		return false
	}
	return slices.EqualFunc(s.props, o.props, func(a, b Property) bool {
		if a.Key != b.Key || (a.Value == nil) != (b.Value == nil) {
			return false
		}
		return a.Value == nil || *a.Value == *b.Value
	})
}

// Hash returns a stable digest of the build spec, consistent with Equal.
func (s *BuildSpec) Hash() string {
	type prop struct {
		K string  `json:"k"`
		V *string `json:"v"`
	}
	canon := struct {
		WorkDir string   `json:"dir"`
		Goals   []string `json:"goals"`
		Options []string `json:"options"`
		Props   []prop   `json:"props"`
	}{
		WorkDir: s.workDir,
		Goals:   s.goals,
		Options: sorted(s.options),
	}
	for _, p := range s.props {
		canon.Props = append(canon.Props, prop{K: p.Key, V: p.Value})
	}
	data, _ := json.Marshal(canon)
	return cache.Hash(data)
}

// String renders the build spec for logs.
func (s *BuildSpec) String() string {
	return s.workDir + ": " + strings.Join(s.Args(), " ")
}

func (s *BuildSpec) put(key string, value *string) {
	if i, ok := s.index[key]; ok {
		s.props[i].Value = value
		return
	}
	s.index[key] = len(s.props)
	s.props = append(s.props, Property{Key: key, Value: value})
}

func tokens(kind string, in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if err := errors.ValidateToken(kind, t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func sorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

func ptr(s string) *string { return &s }
