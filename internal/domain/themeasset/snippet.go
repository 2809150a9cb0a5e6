package themeasset

import (
	"bytes"
	"html"
	"text/template"

	"sif-shopify-layer/internal/domain"
)

var positionStyles = map[string]string{
	"top-left":      "top:8px;left:8px;",
	"top-right":     "top:8px;right:8px;",
	"top-center":    "top:8px;left:50%;transform:translateX(-50%);",
	"bottom-left":   "bottom:8px;left:8px;",
	"bottom-right":  "bottom:8px;right:8px;",
	"bottom-center": "bottom:8px;left:50%;transform:translateX(-50%);",
	"center":        "top:50%;left:50%;transform:translate(-50%,-50%);",
}

// PositionStyle returns the inline CSS for an overlay position, defaulting to bottom-right
func PositionStyle(position string) string {
	if s, ok := positionStyles[position]; ok {
		return s
	}
	return positionStyles[domain.DefaultOverlayPosition]
}

// Liquid uses {{ }} so the template switches to [[ ]].
var overlaySnippet = template.Must(template.New("overlay").Delims("[[", "]]").Funcs(template.FuncMap{
	"attr": html.EscapeString,
}).Parse(`<link rel="stylesheet" href="{{ 'sif-widget.css' | asset_url }}">
<script src="{{ 'sif-widget.js' | asset_url }}" defer></script>
<div id="sif-ai-overlay" class="sif-ai-overlay" data-sif-instance-id="[[ attr .InstanceID ]]" data-sif-shop="{{ shop.permanent_domain | default: shop.domain }}" data-sif-product-id="{{ product.id }}" data-sif-overlay-text="[[ attr .Text ]]" data-sif-overlay-bg="[[ attr .Bg ]]" data-sif-overlay-color="[[ attr .Color ]]" style="position:absolute;[[ .Position ]]background:[[ attr .Bg ]];color:[[ attr .Color ]];padding:6px 10px;border-radius:6px;cursor:pointer;z-index:2147483647">[[ attr .Text ]]</div>
<script>
(function(){
  if (window.SIF_OVERLAY_INIT) return;
  window.SIF_OVERLAY_INIT = true;
  function bind(el){
    if (!el || el.__sif_bound) return;
    el.__sif_bound = true;
    var instanceId = el.getAttribute('data-sif-instance-id');
    if (!instanceId) return;
    var parent = el.parentElement;
    if (parent && window.getComputedStyle(parent).position === 'static') parent.style.position = 'relative';
    el.addEventListener('click', function(e){
      e.preventDefault();
      e.stopPropagation();
      var shop = el.getAttribute('data-sif-shop') || (window.Shopify && window.Shopify.shop) || window.location.hostname;
      var detail = { instanceId: instanceId, shop: shop, productId: el.getAttribute('data-sif-product-id') || '' };
      if (window.SIF && typeof window.SIF.open === 'function') { window.SIF.open(detail); return; }
      document.dispatchEvent(new CustomEvent('sif:open', { detail: detail }));
    });
  }
  function scan(){ document.querySelectorAll('.sif-ai-overlay').forEach(bind); }
  if (document.readyState === 'loading') document.addEventListener('DOMContentLoaded', scan); else scan();
  new MutationObserver(scan).observe(document.documentElement, { childList: true, subtree: true });
})();
</script>
`))

// RenderOverlaySnippet builds the shared overlay snippet for an instance. Missing
// styling falls back to the defaults.
func RenderOverlaySnippet(instanceID string, cfg *domain.OverlayConfig) (string, error) {
	c := domain.DefaultOverlayConfig()
	if cfg != nil {
		if cfg.Text != "" {
			c.Text = cfg.Text
		}
		if cfg.Bg != "" {
			c.Bg = cfg.Bg
		}
		if cfg.Color != "" {
			c.Color = cfg.Color
		}
		if cfg.Position != "" {
			c.Position = cfg.Position
		}
	}
	var buf bytes.Buffer
	err := overlaySnippet.Execute(&buf, struct {
		InstanceID, Text, Bg, Color, Position string
	}{instanceID, c.Text, c.Bg, c.Color, PositionStyle(c.Position)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
