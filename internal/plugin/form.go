package plugin

// Component is a node in the declarative UI tree a plugin returns from Form
// and Page. The host's frontend renders these as Vuetify components; the
// plugin never touches the UI runtime itself.
type Component struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props,omitempty"`
	Text      string         `json:"text,omitempty"`
	Content   []Component    `json:"content,omitempty"`
}

// Row wraps columns in a VRow.
func Row(cols ...Component) Component {
	return Component{Component: "VRow", Content: cols}
}

// Col wraps content in a VCol spanning the given widths.
func Col(props map[string]any, content ...Component) Component {
	return Component{Component: "VCol", Props: props, Content: content}
}

// Switch builds a boolean toggle bound to model.
func Switch(model, label string) Component {
	return Component{
		Component: "VSwitch",
		Props: map[string]any{
			"model": model,
			"label": label,
		},
	}
}

// TextField builds a text input bound to model.
func TextField(model, label, placeholder string) Component {
	props := map[string]any{
		"model": model,
		"label": label,
	}
	if placeholder != "" {
		props["placeholder"] = placeholder
	}
	return Component{Component: "VTextField", Props: props}
}

// CronField builds a cron expression input bound to model.
func CronField(model, label, placeholder string) Component {
	props := map[string]any{
		"model": model,
		"label": label,
	}
	if placeholder != "" {
		props["placeholder"] = placeholder
	}
	return Component{Component: "VCronField", Props: props}
}

// Alert builds an informational banner.
func Alert(text string) Component {
	return Component{
		Component: "VAlert",
		Props: map[string]any{
			"type":    "info",
			"variant": "tonal",
			"text":    text,
		},
	}
}

// Form wraps rows in a VForm root.
func Form(rows ...Component) []Component {
	return []Component{{Component: "VForm", Content: rows}}
}
