package jackett

import (
	"context"

	"github.com/bridgearr/bridgearr/internal/plugin"
)

// Form implements plugin.Plugin.
func (p *Plugin) Form() ([]plugin.Component, map[string]any) {
	form := plugin.Form(
		plugin.Row(
			plugin.Col(cols(4), plugin.Switch("enabled", "Enable")),
			plugin.Col(cols(4), plugin.Switch("onlyonce", "Run once now")),
			plugin.Col(cols(4), plugin.Switch("english_only", "English keywords only")),
		),
		plugin.Row(
			plugin.Col(cols(6), plugin.TextField("host", "Jackett address", "http://127.0.0.1:9117")),
			plugin.Col(cols(6), plugin.TextField("api_key", "API key", "")),
		),
		plugin.Row(
			plugin.Col(cols(6), plugin.CronField("cron", "Sync schedule", defaultCron)),
		),
		plugin.Row(
			plugin.Col(cols(12), plugin.Alert(
				"Indexers configured in Jackett are registered as sites named Jackett-<indexer>. "+
					"Sites stay registered when the plugin is disabled.")),
		),
	)

	defaults := map[string]any{
		"enabled":      false,
		"onlyonce":     false,
		"english_only": false,
		"host":         "",
		"api_key":      "",
		"cron":         defaultCron,
	}
	return form, defaults
}

// Page implements plugin.Plugin, showing the currently registered sites.
func (p *Plugin) Page() []plugin.Component {
	registered, err := p.registry.ListByPlugin(context.Background(), PluginID)
	if err != nil || len(registered) == 0 {
		return []plugin.Component{plugin.Alert("No indexers registered yet. Configure Jackett and run a sync.")}
	}

	rows := make([]plugin.Component, 0, len(registered))
	for _, site := range registered {
		kind := "private"
		if site.Public {
			kind = "public"
		}
		rows = append(rows, plugin.Component{
			Component: "tr",
			Content: []plugin.Component{
				{Component: "td", Text: site.Name},
				{Component: "td", Text: site.IndexerID},
				{Component: "td", Text: kind},
			},
		})
	}

	return []plugin.Component{{
		Component: "VTable",
		Props:     map[string]any{"hover": true},
		Content: []plugin.Component{
			{Component: "thead", Content: []plugin.Component{{
				Component: "tr",
				Content: []plugin.Component{
					{Component: "th", Text: "Site"},
					{Component: "th", Text: "Indexer ID"},
					{Component: "th", Text: "Type"},
				},
			}}},
			{Component: "tbody", Content: rows},
		},
	}}
}

func cols(md int) map[string]any {
	return map[string]any{"cols": 12, "md": md}
}
