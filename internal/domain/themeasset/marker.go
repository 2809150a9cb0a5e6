// Package themeasset edits storefront theme source files. Every region the app
// inserts is wrapped in start/end markers carrying a kind and an instance id, so
// it can be found and removed later without touching merchant-authored content.
package themeasset

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies the feature a marker block belongs to
type Kind string

const (
	KindButton  Kind = "button"
	KindOverlay Kind = "overlay"
)

// MarkerNamespace prefixes every marker comment written into theme files.
const MarkerNamespace = "sif"

// Render directives inserted into theme files.
const (
	OverlayDirective = "{% render 'sif-ai-overlay' %}"
	ButtonDirective  = "{% render 'sif-ai-button' %}"
)

// Snippet asset keys owned by the app.
const (
	OverlaySnippetKey = "snippets/sif-ai-overlay.liquid"
	ButtonSnippetKey  = "snippets/sif-ai-button.liquid"
)

// LegacyButtonDirectives were written by earlier releases without markers.
var LegacyButtonDirectives = []string{
	ButtonDirective,
	"{% render 'sif-ai-button-debug-1' %}",
	"{% render 'sif-ai-button-debug-2' %}",
	"{% render 'sif-ai-button-debug-3' %}",
}

// LegacyButtonSnippetKeys are the button snippets earlier releases uploaded.
var LegacyButtonSnippetKeys = []string{
	ButtonSnippetKey,
	"snippets/sif-ai-button-debug-1.liquid",
	"snippets/sif-ai-button-debug-2.liquid",
	"snippets/sif-ai-button-debug-3.liquid",
}

// BareDirectives returns the undecorated directives recognized for a kind
func BareDirectives(kind Kind) []string {
	if kind == KindButton {
		return LegacyButtonDirectives
	}
	return []string{OverlayDirective}
}

var (
	startPattern = regexp.MustCompile(
		`(?is)<!--\s*` + MarkerNamespace + `:start[^>]*?type\s*=\s*([a-z0-9_-]+)(?:\s+instance\s*=\s*([^\s>]+))?[^>]*-->`)
	endPattern = regexp.MustCompile(
		`(?is)<!--\s*` + MarkerNamespace + `:end(?:[^>]*?type\s*=\s*([a-z0-9_-]+))?[^>]*-->`)
)

// Directive is a render directive bound to a kind and instance
type Directive struct {
	Tag        string
	Kind       Kind
	InstanceID string
}

// OverlayFor returns the overlay directive for an instance
func OverlayFor(instanceID string) Directive {
	return Directive{Tag: OverlayDirective, Kind: KindOverlay, InstanceID: instanceID}
}

// Decorated wraps the tag in start/end markers
func (d Directive) Decorated() string {
	return fmt.Sprintf("<!-- %s:start type=%s instance=%s -->\n%s\n<!-- %s:end type=%s -->",
		MarkerNamespace, d.Kind, d.InstanceID, d.Tag, MarkerNamespace, d.Kind)
}

// Block is a marker block located in a file
type Block struct {
	Kind       Kind
	InstanceID string
	Start      int
	End        int
}

// FindBlocks returns all marker blocks in text, in order. A block runs from a
// start marker to the nearest end marker of the same kind before the next start
// marker; start markers without one are skipped. Each block also covers the
// newline pair insertion adds around it.
func FindBlocks(text string) []Block {
	starts := startPattern.FindAllStringSubmatchIndex(text, -1)
	if len(starts) == 0 {
		return nil
	}
	ends := endPattern.FindAllStringSubmatchIndex(text, -1)

	var blocks []Block
	prevEnd := 0
	for i, s := range starts {
		limit := len(text)
		if i+1 < len(starts) {
			limit = starts[i+1][0]
		}
		kind := Kind(strings.ToLower(text[s[2]:s[3]]))
		end := -1
		for _, e := range ends {
			if e[0] < s[1] {
				continue
			}
			if e[1] > limit {
				break
			}
			if e[2] < 0 || Kind(strings.ToLower(text[e[2]:e[3]])) == kind {
				end = e[1]
				break
			}
		}
		if end < 0 {
			continue
		}

		b := Block{Kind: kind, Start: s[0], End: end}
		if s[4] >= 0 {
			b.InstanceID = text[s[4]:s[5]]
		}
		if b.Start > prevEnd && text[b.Start-1] == '\n' {
			b.Start--
		}
		if b.End < len(text) && text[b.End] == '\n' {
			b.End++
		}
		prevEnd = b.End
		blocks = append(blocks, b)
	}
	return blocks
}

// RemoveBlocks deletes marker blocks whose kind is one of kinds. With no kinds
// every block is removed.
func RemoveBlocks(text string, kinds ...Kind) string {
	return removeBlocksWhere(text, func(b Block) bool {
		return matchesKind(b.Kind, kinds)
	})
}

// RemoveStaleBlocks deletes blocks of kind that belong to a different instance
func RemoveStaleBlocks(text string, kind Kind, instanceID string) string {
	return removeBlocksWhere(text, func(b Block) bool {
		return b.Kind == kind && b.InstanceID != instanceID
	})
}

func removeBlocksWhere(text string, match func(Block) bool) string {
	blocks := FindBlocks(text)
	if len(blocks) == 0 {
		return text
	}
	var sb strings.Builder
	last := 0
	for _, b := range blocks {
		if !match(b) {
			continue
		}
		sb.WriteString(text[last:b.Start])
		last = b.End
	}
	if last == 0 {
		return text
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func matchesKind(k Kind, kinds []Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// RemoveBare strips undecorated occurrences of the given directives. A directive
// that sits on its own line keeps one of its surrounding newlines.
func RemoveBare(text string, directives ...string) string {
	for _, d := range directives {
		if !strings.Contains(text, d) {
			continue
		}
		text = strings.ReplaceAll(text, "\n"+d+"\n", "\n")
		text = strings.ReplaceAll(text, d, "")
	}
	return text
}

// ContainsBare reports whether a directive appears outside any marker block
func ContainsBare(text, directive string) bool {
	return strings.Contains(RemoveBlocks(text), directive)
}
