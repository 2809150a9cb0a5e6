package themeasset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const mediaSnippet = `{%- liquid
  assign media = product.featured_media
-%}
<div class="product-media-container media-type-image" style="--ratio: 1">
  {{ media | image_url: width: 1200 | image_tag }}
</div>
`

func TestInjectAfterAnchor(t *testing.T) {
	d := OverlayFor("inst-1")
	res := ProductMediaPatcher().Inject(mediaSnippet, d)

	assert.Equal(t, Inserted, res.Outcome)
	assert.Equal(t, "product-media-container", res.Step)
	anchor := `<div class="product-media-container media-type-image" style="--ratio: 1">`
	assert.Contains(t, res.Text, anchor+"\n"+d.Decorated()+"\n")
	assert.Equal(t, 1, strings.Count(res.Text, d.Decorated()))
}

func TestInjectAnchorPriority(t *testing.T) {
	section := `<section>
<div class="product__media-wrapper">
{% render 'product-media' %}
</div>
</section>`
	res := ProductSectionPatcher().Inject(section, OverlayFor("i"))

	assert.Equal(t, Inserted, res.Outcome)
	assert.Equal(t, "after:{% render 'product-media' %}", res.Step)
	assert.Contains(t, res.Text, "{% render 'product-media' %}\n<!-- sif:start")
}

func TestInjectClassAnchor(t *testing.T) {
	section := `<section>
  <media-gallery id="g" class="product__media-wrapper" data-x>
  </media-gallery>
</section>`
	res := ProductSectionPatcher().Inject(section, OverlayFor("i"))

	assert.Equal(t, "class:product__media", res.Step)
	assert.Contains(t, res.Text, `data-x>`+"\n<!-- sif:start")
}

func TestInjectFallback(t *testing.T) {
	d := OverlayFor("i")

	t.Run("before closing body", func(t *testing.T) {
		res := ProductSectionPatcher().Inject("<html><body><p>x</p></body></html>", d)
		assert.Equal(t, Inserted, res.Outcome)
		assert.Equal(t, "<html><body><p>x</p>\n"+d.Decorated()+"\n</body></html>", res.Text)
	})

	t.Run("append when no body", func(t *testing.T) {
		res := ProductSectionPatcher().Inject("<p>x</p>", d)
		assert.Equal(t, "<p>x</p>\n"+d.Decorated()+"\n", res.Text)
	})

	t.Run("last body tag wins", func(t *testing.T) {
		res := ProductSectionPatcher().Inject("<!-- </body> -->\n</BODY>", d)
		assert.True(t, strings.HasSuffix(res.Text, d.Decorated()+"\n</BODY>"))
	})
}

func TestInjectNoAnchor(t *testing.T) {
	p := NewPatcher(AfterLiteral("missing"))
	res := p.Inject("content", OverlayFor("i"))
	assert.Equal(t, NoAnchor, res.Outcome)
	assert.Equal(t, "content", res.Text)
}

func TestInjectAlreadyPresent(t *testing.T) {
	d := OverlayFor("i")

	t.Run("decorated", func(t *testing.T) {
		first := ProductMediaPatcher().Inject(mediaSnippet, d)
		second := ProductMediaPatcher().Inject(first.Text, d)
		assert.Equal(t, AlreadyPresent, second.Outcome)
		assert.Equal(t, first.Text, second.Text)
	})

	t.Run("bare legacy directive", func(t *testing.T) {
		text := "<div>{% render 'sif-ai-overlay' %}</div>"
		res := ProductMediaPatcher().Inject(text, d)
		assert.Equal(t, AlreadyPresent, res.Outcome)
		assert.Equal(t, text, res.Text)
	})
}

func TestInjectReplacesOtherInstance(t *testing.T) {
	old := ProductMediaPatcher().Inject(mediaSnippet, OverlayFor("old")).Text
	res := ProductMediaPatcher().Inject(old, OverlayFor("new"))

	assert.Equal(t, Inserted, res.Outcome)
	assert.NotContains(t, res.Text, "instance=old")
	assert.Equal(t, ProductMediaPatcher().Inject(mediaSnippet, OverlayFor("new")).Text, res.Text)
}

func TestInjectRemoveRoundTrip(t *testing.T) {
	files := []string{
		mediaSnippet,
		"<html><body>\n<main></main>\n</body></html>\n",
		"{% schema %}{}{% endschema %}",
		"",
	}
	for _, f := range files {
		injected := ProductSectionPatcher().Inject(f, OverlayFor("x"))
		assert.Equal(t, Inserted, injected.Outcome)

		out, changed := Remove(injected.Text, KindOverlay)
		assert.True(t, changed)
		assert.Equal(t, f, out)
	}
}

func TestRemoveWithUnterminatedMarker(t *testing.T) {
	f := "A\n<!-- sif:start type=button instance=b1 -->\n{% render 'sif-ai-button' %}\nB"

	injected := ProductSectionPatcher().Inject(f, OverlayFor("i1"))
	assert.Equal(t, Inserted, injected.Outcome)

	out, changed := Remove(injected.Text, KindOverlay)
	assert.True(t, changed)
	assert.Equal(t, f, out)
	assert.NotContains(t, out, "type=overlay")
}

func TestRemoveKeepsOtherKind(t *testing.T) {
	button := Directive{Tag: ButtonDirective, Kind: KindButton, InstanceID: "b"}
	withButton := NewPatcher(BeforeClosingBody()).Inject("<body></body>", button).Text
	both := ProductSectionPatcher().Inject(withButton, OverlayFor("o")).Text

	out, changed := Remove(both, KindOverlay)
	assert.True(t, changed)
	assert.Equal(t, withButton, out)
	assert.Contains(t, out, button.Decorated())
}

func TestRemoveUnchanged(t *testing.T) {
	out, changed := Remove("<body></body>", KindOverlay)
	assert.False(t, changed)
	assert.Equal(t, "<body></body>", out)
}
