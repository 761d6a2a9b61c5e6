package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a decoded check file. Exactly one of Page (relative to the file),
// URL and HTML names the markup under test.
type File struct {
	Path      string            `yaml:"-"`
	Name      string            `yaml:"name"`
	Page      string            `yaml:"page"`
	URL       string            `yaml:"url"`
	HTML      string            `yaml:"html"`
	Headers   map[string]string `yaml:"headers"`
	WaitFor   *WaitFor          `yaml:"waitFor"`
	Before    []string          `yaml:"before"` // shell commands run before the page loads
	After     []string          `yaml:"after"`
	Variables map[string]any    `yaml:"variables"`
	Checks    []*Check          `yaml:"checks"`
}

// WaitFor polls URL until it answers Status. Durations are milliseconds.
type WaitFor struct {
	URL      string `yaml:"url"`
	Status   int    `yaml:"status"`
	Timeout  int    `yaml:"timeout"`
	Interval int    `yaml:"interval"`
}

type Check struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Only        bool     `yaml:"only"`
	Skip        string   `yaml:"skip"`
	Depends     []string `yaml:"depends"`
	Target      Target   `yaml:"target"`
	Actions     []Action `yaml:"actions"`
	Expect      []Step   `yaml:"expect"`
	Capture     string   `yaml:"capture"`
	Snapshot    bool     `yaml:"snapshot"` // compare the target's markup with __snapshots__
	Line        int      `yaml:"-"`
}

func (c *Check) UnmarshalYAML(value *yaml.Node) error {
	type plain Check
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Check(p)
	c.Line = value.Line
	return nil
}

// Target locates the subject of a check. At most one field is set. The zero
// Target means the body, Document the root html element and Missing a nil
// subject.
type Target struct {
	TestID   string `yaml:"testid"`
	XPath    string `yaml:"xpath"`
	Text     string `yaml:"text"`
	ID       string `yaml:"id"`
	Document bool   `yaml:"document"`
	Missing  bool   `yaml:"-"`
}

func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		switch value.Value {
		case "document":
			*t = Target{Document: true}
			return nil
		case "body":
			*t = Target{}
			return nil
		case "none":
			*t = Target{Missing: true}
			return nil
		}
		return fmt.Errorf("line %d: unknown target %q", value.Line, value.Value)
	}
	type plain Target
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*t = Target(p)
	return nil
}

func (t Target) String() string {
	switch {
	case t.Missing:
		return "none"
	case t.TestID != "":
		return "testid=" + t.TestID
	case t.XPath != "":
		return "xpath=" + t.XPath
	case t.Text != "":
		return fmt.Sprintf("text=%q", t.Text)
	case t.ID != "":
		return "#" + t.ID
	case t.Document:
		return "document"
	}
	return "body"
}

// IsTargetMap reports whether v, a decoded YAML map, names a target.
func IsTargetMap(v any) (Target, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return Target{}, false
	}
	for k, val := range m {
		s, _ := val.(string)
		switch k {
		case "testid":
			return Target{TestID: s}, s != ""
		case "xpath":
			return Target{XPath: s}, s != ""
		case "text":
			return Target{Text: s}, s != ""
		case "id":
			return Target{ID: s}, s != ""
		}
	}
	return Target{}, false
}

type ActionKind string

const (
	ActionFocus            ActionKind = "focus"
	ActionBlur             ActionKind = "blur"
	ActionClick            ActionKind = "click"
	ActionSetAttribute     ActionKind = "set-attribute"
	ActionRemoveAttribute  ActionKind = "remove-attribute"
	ActionSetValue         ActionKind = "set-value"
	ActionSetIndeterminate ActionKind = "set-indeterminate"
)

var actionKinds = map[ActionKind]bool{
	ActionFocus: true, ActionBlur: true, ActionClick: true, ActionSetAttribute: true,
	ActionRemoveAttribute: true, ActionSetValue: true, ActionSetIndeterminate: true,
}

// Action mutates the page before expectations run. Name is the attribute
// for the attribute actions; Value is the new value.
type Action struct {
	Kind  ActionKind
	Name  string
	Value any
	Line  int
}

func (a *Action) UnmarshalYAML(value *yaml.Node) error {
	a.Line = value.Line
	switch value.Kind {
	case yaml.ScalarNode:
		a.Kind = ActionKind(value.Value)
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: an action map has exactly one key", value.Line)
		}
		a.Kind = ActionKind(value.Content[0].Value)
		arg := value.Content[1]
		switch a.Kind {
		case ActionSetAttribute:
			var attr struct {
				Name  string `yaml:"name"`
				Value string `yaml:"value"`
			}
			if err := arg.Decode(&attr); err != nil {
				return fmt.Errorf("line %d: set-attribute: %w", arg.Line, err)
			}
			a.Name, a.Value = attr.Name, attr.Value
		case ActionRemoveAttribute:
			a.Name = arg.Value
		default:
			var v any
			if err := arg.Decode(&v); err != nil {
				return err
			}
			a.Value = v
		}
	default:
		return fmt.Errorf("line %d: an action is a name or a single-key map", value.Line)
	}
	if !actionKinds[a.Kind] {
		return fmt.Errorf("line %d: unknown action %q", value.Line, a.Kind)
	}
	return nil
}

// Step is one link group of an expectation chain: the properties of Path
// in order, then Method when it is set.
type Step struct {
	Path   []string
	Method string
	Args   []any
	Line   int
}

func (s Step) String() string {
	words := strings.Join(s.Path, ".")
	if s.Method == "" {
		return words
	}
	if words != "" {
		words += "."
	}
	return fmt.Sprintf("%s%s(%d args)", words, s.Method, len(s.Args))
}

func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	s.Line = value.Line
	switch value.Kind {
	case yaml.ScalarNode:
		s.Path = splitPath(value.Value)
		if len(s.Path) == 0 {
			return fmt.Errorf("line %d: empty step", value.Line)
		}
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: a method step has exactly one key", value.Line)
		}
		words := splitPath(value.Content[0].Value)
		if len(words) == 0 {
			return fmt.Errorf("line %d: empty step", value.Line)
		}
		s.Path, s.Method = words[:len(words)-1], words[len(words)-1]

		var arg any
		if err := value.Content[1].Decode(&arg); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		s.Args = stepArgs(arg)
		return nil
	}
	return fmt.Errorf("line %d: a step is a property path or a single-key method call", value.Line)
}

func stepArgs(arg any) []any {
	if arg == nil {
		return nil
	}
	if m, ok := arg.(map[string]any); ok && len(m) == 1 {
		if list, ok := m["args"].([]any); ok {
			return list
		}
	}
	return []any{arg}
}

func splitPath(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ".") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
