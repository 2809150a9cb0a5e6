package themeasset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"sif-shopify-layer/internal/domain"
)

// App block written into product templates.
const (
	AppBlockID     = "sif_ai_button_block_app"
	AppBlockHandle = "sif-ai-widget::sif-ai-button"
)

// DefaultProductTemplateKey is used when the theme lists no product template.
const DefaultProductTemplateKey = "templates/product.json"

var productTemplate = regexp.MustCompile(`^templates/product(\.[^/]+)?\.json$`)

// IsProductTemplate reports whether key is a product page template
func IsProductTemplate(key string) bool {
	return productTemplate.MatchString(key)
}

// ProductTemplateKey returns the default product template when the theme lists it,
// else the first alternate product template in the listing.
func ProductTemplateKey(listed []string) string {
	first := ""
	for _, k := range listed {
		if k == DefaultProductTemplateKey {
			return k
		}
		if first == "" && productTemplate.MatchString(k) {
			first = k
		}
	}
	if first == "" {
		return DefaultProductTemplateKey
	}
	return first
}

type templateDoc struct {
	header string
	data   map[string]any
}

// parseTemplate splits the generated comment header some themes prepend from the JSON body.
func parseTemplate(raw string) (*templateDoc, error) {
	t := &templateDoc{data: map[string]any{}}
	body := raw
	trimmed := strings.TrimLeft(raw, " \t\r\n")
	if strings.HasPrefix(trimmed, "/*") {
		end := strings.Index(trimmed, "*/")
		if end < 0 {
			return nil, fmt.Errorf("unterminated template header")
		}
		cut := len(raw) - len(trimmed) + end + 2
		t.header = raw[:cut]
		body = raw[cut:]
	}
	if strings.TrimSpace(body) == "" {
		return t, nil
	}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&t.data); err != nil {
		return nil, fmt.Errorf("failed to parse template json: %w", err)
	}
	if t.data == nil {
		t.data = map[string]any{}
	}
	return t, nil
}

func (t *templateDoc) encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.data); err != nil {
		return "", err
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	if t.header != "" {
		return t.header + "\n" + out, nil
	}
	return out, nil
}

func (t *templateDoc) sections() map[string]any {
	s, ok := t.data["sections"].(map[string]any)
	if !ok {
		s = map[string]any{}
		t.data["sections"] = s
	}
	return s
}

// productSection finds the section that renders the product, preferring
// product-information over main-product. Missing sections are created when create is set.
func (t *templateDoc) productSection(create bool) map[string]any {
	sections := t.sections()
	for _, want := range []string{"product-information", "main-product"} {
		for _, key := range slices.Sorted(maps.Keys(sections)) {
			sec, ok := sections[key].(map[string]any)
			if !ok {
				continue
			}
			if typ, _ := sec["type"].(string); strings.EqualFold(typ, want) {
				return sec
			}
		}
	}
	if !create {
		return nil
	}
	sec := map[string]any{"type": "product-information", "blocks": map[string]any{}, "block_order": []any{}}
	sections["main"] = sec
	return sec
}

func sectionBlocks(sec map[string]any) (map[string]any, []string) {
	blocks, ok := sec["blocks"].(map[string]any)
	if !ok {
		blocks = map[string]any{}
		sec["blocks"] = blocks
	}
	var order []string
	if raw, ok := sec["block_order"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				order = append(order, s)
			}
		}
	}
	return blocks, order
}

func setOrder(sec map[string]any, order []string) {
	out := make([]any, len(order))
	for i, s := range order {
		out[i] = s
	}
	sec["block_order"] = out
}

func blockType(blocks map[string]any, id string) string {
	b, _ := blocks[id].(map[string]any)
	typ, _ := b["type"].(string)
	return strings.ToLower(typ)
}

// InsertAppBlock places the button app block into a product template, after the
// first group block and never after the first divider. It reports whether the
// template changed. Templates that fail to parse are returned as errors, never rewritten.
func InsertAppBlock(raw, instanceID, label string) (string, bool, error) {
	t, err := parseTemplate(raw)
	if err != nil {
		return raw, false, err
	}
	before, err := t.encode()
	if err != nil {
		return raw, false, err
	}
	if label == "" {
		label = domain.DefaultAppBlockLabel
	}

	sec := t.productSection(true)
	blocks, order := sectionBlocks(sec)
	blocks[AppBlockID] = map[string]any{
		"type": "app_block",
		"id":   AppBlockHandle,
		"settings": map[string]any{
			"button_label": label,
			"instance_id":  instanceID,
		},
	}

	order = without(order, AppBlockID)
	insertIdx := 0
	for i, id := range order {
		if blockType(blocks, id) == "group" {
			insertIdx = i + 1
			break
		}
	}
	for i, id := range order {
		if blockType(blocks, id) == "_divider" {
			if insertIdx > i {
				insertIdx = i
			}
			break
		}
	}
	order = slices.Insert(order, insertIdx, AppBlockID)
	setOrder(sec, order)

	after, err := t.encode()
	if err != nil {
		return raw, false, err
	}
	if after == before {
		return raw, false, nil
	}
	return after, true, nil
}

// RemoveAppBlock deletes the button app block from a product template
func RemoveAppBlock(raw string) (string, bool, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, false, nil
	}
	t, err := parseTemplate(raw)
	if err != nil {
		return raw, false, err
	}
	changed := false
	for _, v := range t.sections() {
		sec, ok := v.(map[string]any)
		if !ok {
			continue
		}
		blocks, order := sectionBlocks(sec)
		if _, ok := blocks[AppBlockID]; ok {
			delete(blocks, AppBlockID)
			changed = true
		}
		if trimmed := without(order, AppBlockID); len(trimmed) != len(order) {
			setOrder(sec, trimmed)
			changed = true
		}
	}
	if !changed {
		return raw, false, nil
	}
	out, err := t.encode()
	if err != nil {
		return raw, false, err
	}
	return out, true, nil
}

func without(order []string, id string) []string {
	out := order[:0:0]
	for _, s := range order {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}
