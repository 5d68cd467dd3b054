package lessons

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// PatternKind tells which matching strategy a Pattern uses.
type PatternKind int

const (
	// PatternLiteral matches an exact, case-sensitive substring.
	PatternLiteral PatternKind = iota + 1
	// PatternRegex matches a compiled regular expression anywhere in the text.
	PatternRegex
)

func (k PatternKind) String() string {
	switch k {
	case PatternLiteral:
		return "literal"
	case PatternRegex:
		return "regex"
	}
	return "unknown"
}

// Pattern is the expected shape of a lesson solution: either Literal(text)
// or Regex(compiled expression).
type Pattern struct {
	kind    PatternKind
	literal string
	source  string
	flags   string
	re      *regexp.Regexp
}

// Literal builds a substring pattern.
func Literal(text string) Pattern {
	return Pattern{kind: PatternLiteral, literal: text}
}

// Regex compiles expr. flags uses the one-letter convention of the lesson
// catalog: i (case-insensitive), m (multi-line), s (dot matches newline).
func Regex(expr, flags string) (Pattern, error) {
	prefix, err := goFlags(flags)
	if err != nil {
		return Pattern{}, err
	}
	re, err := regexp.Compile(prefix + expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid pattern %q: %w", expr, err)
	}
	return Pattern{kind: PatternRegex, source: expr, flags: flags, re: re}, nil
}

// MustRegex is like Regex but panics on error.
func MustRegex(expr, flags string) Pattern {
	p, err := Regex(expr, flags)
	if err != nil {
		panic(err)
	}
	return p
}

func goFlags(flags string) (string, error) {
	var b strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			b.WriteRune(f)
		case 'g':
			// global has no meaning for a single match test
		default:
			return "", fmt.Errorf("unsupported pattern flag %q", f)
		}
	}
	if b.Len() == 0 {
		return "", nil
	}
	return "(?" + b.String() + ")", nil
}

// Kind reports the matching strategy. The zero Pattern has kind 0.
func (p Pattern) Kind() PatternKind { return p.kind }

// IsZero reports whether p was never set.
func (p Pattern) IsZero() bool { return p.kind == 0 }

// Match reports whether code satisfies the pattern.
func (p Pattern) Match(code string) bool {
	switch p.kind {
	case PatternLiteral:
		return strings.Contains(code, p.literal)
	case PatternRegex:
		return p.re.MatchString(code)
	}
	return false
}

// String renders the pattern the way it is revealed to a stuck learner:
// literal text as-is, expressions as /source/flags.
func (p Pattern) String() string {
	switch p.kind {
	case PatternLiteral:
		return p.literal
	case PatternRegex:
		return "/" + p.source + "/" + p.flags
	}
	return ""
}

type patternDoc struct {
	Literal *string `yaml:"literal,omitempty" json:"literal,omitempty"`
	Regex   string  `yaml:"regex,omitempty" json:"regex,omitempty"`
	Flags   string  `yaml:"flags,omitempty" json:"flags,omitempty"`
}

func (p Pattern) doc() patternDoc {
	if p.kind == PatternLiteral {
		text := p.literal
		return patternDoc{Literal: &text}
	}
	return patternDoc{Regex: p.source, Flags: p.flags}
}

func fromDoc(d patternDoc) (Pattern, error) {
	switch {
	case d.Literal != nil && d.Regex != "":
		return Pattern{}, fmt.Errorf("pattern must be either literal or regex, not both")
	case d.Literal != nil:
		return Literal(*d.Literal), nil
	case d.Regex != "":
		return Regex(d.Regex, d.Flags)
	}
	return Pattern{}, fmt.Errorf("pattern must set literal or regex")
}

// UnmarshalYAML accepts {literal: text} or {regex: expr, flags: i}.
func (p *Pattern) UnmarshalYAML(value *yaml.Node) error {
	var d patternDoc
	if err := value.Decode(&d); err != nil {
		return err
	}
	parsed, err := fromDoc(d)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*p = parsed
	return nil
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.doc())
}

func (p *Pattern) UnmarshalJSON(data []byte) error {
	var d patternDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := fromDoc(d)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
