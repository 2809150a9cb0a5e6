package domain

// Theme is a storefront theme
type Theme struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ThemeRoleMain is the role of the published theme
const ThemeRoleMain = "main"

// ScriptTag is a platform-registered storefront script
type ScriptTag struct {
	ID           uint64 `json:"id"`
	Src          string `json:"src"`
	Event        string `json:"event"`
	DisplayScope string `json:"display_scope"`
}

// ResolveTheme picks the explicitly requested theme when it exists, else the main theme
func ResolveTheme(themes []Theme, requested uint64) (uint64, bool) {
	if requested != 0 {
		for _, t := range themes {
			if t.ID == requested {
				return t.ID, true
			}
		}
	}
	for _, t := range themes {
		if t.Role == ThemeRoleMain {
			return t.ID, true
		}
	}
	return 0, false
}
