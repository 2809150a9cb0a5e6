package themeasset

import (
	"regexp"
	"strings"
)

// Outcome describes what Inject did
type Outcome int

const (
	Inserted Outcome = iota
	AlreadyPresent
	NoAnchor
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case AlreadyPresent:
		return "already_present"
	default:
		return "no_anchor"
	}
}

// Step is one insertion strategy. Apply returns the new text and true when its
// anchor matched, or false to let the next step try.
type Step struct {
	Name  string
	Apply func(text, insertion string) (string, bool)
}

// Result of patching a file
type Result struct {
	Text    string
	Outcome Outcome
	Step    string
}

// Patcher applies its steps in order; the first step that matches wins.
type Patcher struct {
	steps []Step
}

// NewPatcher creates a patcher from an ordered list of steps
func NewPatcher(steps ...Step) *Patcher {
	return &Patcher{steps: steps}
}

// Inject places the decorated directive into text. Blocks of the same kind left by
// another instance are dropped first. A directive already present, decorated for
// this instance or bare, is left alone.
func (p *Patcher) Inject(text string, d Directive) Result {
	base := RemoveStaleBlocks(text, d.Kind, d.InstanceID)
	decorated := d.Decorated()
	if strings.Contains(base, decorated) || ContainsBare(base, d.Tag) {
		return Result{Text: base, Outcome: AlreadyPresent}
	}
	for _, s := range p.steps {
		if out, ok := s.Apply(base, decorated); ok {
			return Result{Text: out, Outcome: Inserted, Step: s.Name}
		}
	}
	return Result{Text: base, Outcome: NoAnchor}
}

// Remove strips marker blocks of kind and any bare directives of kind, and
// reports whether the text changed.
func Remove(text string, kind Kind) (string, bool) {
	out := RemoveBare(RemoveBlocks(text, kind), BareDirectives(kind)...)
	return out, out != text
}

func insertAt(text string, pos int, insertion string) string {
	return text[:pos] + "\n" + insertion + "\n" + text[pos:]
}

// AfterLiteral inserts right after the first occurrence of anchor
func AfterLiteral(anchor string) Step {
	return Step{
		Name: "after:" + anchor,
		Apply: func(text, insertion string) (string, bool) {
			idx := strings.Index(text, anchor)
			if idx < 0 {
				return text, false
			}
			return insertAt(text, idx+len(anchor), insertion), true
		},
	}
}

// AfterPattern inserts right after the first match of re
func AfterPattern(name string, re *regexp.Regexp) Step {
	return Step{
		Name: name,
		Apply: func(text, insertion string) (string, bool) {
			loc := re.FindStringIndex(text)
			if loc == nil {
				return text, false
			}
			return insertAt(text, loc[1], insertion), true
		},
	}
}

// AfterElementWithClass inserts after the opening tag of the first element whose
// class attribute contains class.
func AfterElementWithClass(class string) Step {
	re := regexp.MustCompile(`(?i)<[a-z][a-z0-9-]*\s[^>]*?\bclass\s*=\s*["'][^"']*` +
		regexp.QuoteMeta(class) + `[^"']*["'][^>]*>`)
	return AfterPattern("class:"+class, re)
}

var closingBody = regexp.MustCompile(`(?i)</body\s*>`)

// BeforeClosingBody inserts before the last closing body tag, or appends at the
// end of the file. It always matches.
func BeforeClosingBody() Step {
	return Step{
		Name: "before:</body>",
		Apply: func(text, insertion string) (string, bool) {
			if locs := closingBody.FindAllStringIndex(text, -1); len(locs) > 0 {
				return insertAt(text, locs[len(locs)-1][0], insertion), true
			}
			return text + "\n" + insertion + "\n", true
		},
	}
}
