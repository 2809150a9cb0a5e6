package middleware

import "net/http"

// SecurityHeadersMiddleware sets response headers for pages rendered inside the
// store admin. frameAncestors is the CSP frame-ancestors source list.
func SecurityHeadersMiddleware(frameAncestors string) func(http.Handler) http.Handler {
	if frameAncestors == "" {
		frameAncestors = "https://admin.shopify.com https://*.myshopify.com"
	}
	csp := "frame-ancestors " + frameAncestors
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}
