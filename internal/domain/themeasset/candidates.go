package themeasset

import (
	"regexp"
	"strings"
)

// Theme files the overlay is placed into.
const (
	ProductMediaSnippetKey = "snippets/product-media.liquid"
	ThemeLayoutKey         = "layout/theme.liquid"
)

// ProductSectionKeys are the section files tried before any listed section.
var ProductSectionKeys = []string{
	"sections/product-information.liquid",
	"sections/main-product.liquid",
	"sections/product.liquid",
	"sections/product-media-gallery.liquid",
}

// productDetailsKeys are block and snippet files some themes render product details from.
var productDetailsKeys = []string{
	"blocks/_product-details.liquid",
	"blocks/product-details.liquid",
	"snippets/_product-details.liquid",
	"snippets/product-details.liquid",
}

var (
	productMediaContainer = regexp.MustCompile(`(?i)<div[^>]*class=["'][^"'>]*product-media[^"'>]*["'][^>]*>`)
	productName           = regexp.MustCompile(`(?i)product`)
	nonProductSection     = regexp.MustCompile(`(?i)card|grid|collection|recommend|list|featured-product`)

	removeSectionName = regexp.MustCompile(`(?i)product-information|main-product|product\.liquid`)
	removeBlockName   = regexp.MustCompile(`(?i)product|details|buy-buttons|price`)
	removeSnippetName = regexp.MustCompile(`(?i)product-media|product|price|buy-buttons`)
)

// ProductMediaPatcher places the overlay inside the product media container of the
// media snippet, falling back to the end of the file.
func ProductMediaPatcher() *Patcher {
	return NewPatcher(
		AfterPattern("product-media-container", productMediaContainer),
		BeforeClosingBody(),
	)
}

// ProductSectionPatcher places the overlay next to the media render call of a
// product section.
func ProductSectionPatcher() *Patcher {
	return NewPatcher(
		AfterLiteral("{%- render 'product-media' %}"),
		AfterLiteral("{% render 'product-media' %}"),
		AfterElementWithClass("product-media-gallery"),
		AfterElementWithClass("product__media"),
		BeforeClosingBody(),
	)
}

// IsProductPageSection reports whether key looks like the main product section
// rather than a card, grid or recommendation section.
func IsProductPageSection(key string) bool {
	if !strings.HasPrefix(key, "sections/") || !strings.HasSuffix(key, ".liquid") {
		return false
	}
	return productName.MatchString(key) && !nonProductSection.MatchString(key)
}

// ProductSectionCandidates returns the curated sections followed by listed product
// sections, in scan order and without duplicates.
func ProductSectionCandidates(listed []string) []string {
	keys := newKeySet(ProductSectionKeys...)
	for _, k := range listed {
		if IsProductPageSection(k) {
			keys.add(k)
		}
	}
	return keys.list
}

// OverlayCleanupKeys returns every file an overlay placement may have touched.
func OverlayCleanupKeys(listed []string) []string {
	keys := newKeySet(ProductMediaSnippetKey)
	keys.add(ProductSectionKeys...)
	keys.add(ThemeLayoutKey)
	for _, k := range listed {
		if IsProductPageSection(k) {
			keys.add(k)
		}
	}
	return keys.list
}

// ThemeRemoveKeys returns the wider set scanned when removing every placement,
// covering files written by earlier releases.
func ThemeRemoveKeys(listed []string) []string {
	keys := newKeySet(productDetailsKeys...)
	keys.add(ProductSectionKeys...)
	keys.add(ProductMediaSnippetKey, ThemeLayoutKey)
	for _, k := range listed {
		if !strings.HasSuffix(k, ".liquid") {
			continue
		}
		switch {
		case strings.HasPrefix(k, "sections/") && removeSectionName.MatchString(k):
			keys.add(k)
		case strings.HasPrefix(k, "blocks/") && removeBlockName.MatchString(k):
			keys.add(k)
		case strings.HasPrefix(k, "snippets/") && removeSnippetName.MatchString(k):
			keys.add(k)
		}
	}
	return keys.list
}

type keySet struct {
	seen map[string]bool
	list []string
}

func newKeySet(keys ...string) *keySet {
	s := &keySet{seen: make(map[string]bool)}
	s.add(keys...)
	return s
}

func (s *keySet) add(keys ...string) {
	for _, k := range keys {
		if !s.seen[k] {
			s.seen[k] = true
			s.list = append(s.list, k)
		}
	}
}
