package domain

// Theme is the resolved color palette threaded explicitly from the
// composition engine into each widget at construction time. There is no
// ambient theme lookup.
type Theme struct {
	Background string
	Foreground string
	Accent     string
	Secondary  string
	Track      string
	Handle     string
	Tick       string
}

// DarkTheme is the default instrumentation palette.
func DarkTheme() Theme {
	return Theme{
		Background: "#2b2b2b",
		Foreground: "#dcdcdc",
		Accent:     "#33a1fd",
		Secondary:  "#444444",
		Track:      "#444444",
		Handle:     "#dcdcdc",
		Tick:       "#9a9a9a",
	}
}

// LightTheme is the alternate palette for bright environments.
func LightTheme() Theme {
	return Theme{
		Background: "#f4f4f4",
		Foreground: "#1c1c1c",
		Accent:     "#0b6bcb",
		Secondary:  "#c8c8c8",
		Track:      "#c8c8c8",
		Handle:     "#1c1c1c",
		Tick:       "#6a6a6a",
	}
}

// ThemeByName resolves a named palette, falling back to dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}
