package prowlarr

import (
	"context"

	"github.com/bridgearr/bridgearr/internal/plugin"
)

// Form implements plugin.Plugin.
func (p *Plugin) Form() ([]plugin.Component, map[string]any) {
	form := plugin.Form(
		plugin.Row(
			plugin.Col(cols(6), plugin.Switch("enabled", "Enable")),
			plugin.Col(cols(6), plugin.Switch("onlyonce", "Run once now")),
		),
		plugin.Row(
			plugin.Col(cols(6), plugin.TextField("host", "Prowlarr address", "http://127.0.0.1:9696")),
			plugin.Col(cols(6), plugin.TextField("api_key", "API key", "")),
		),
		plugin.Row(
			plugin.Col(cols(6), plugin.CronField("cron", "Sync schedule", defaultCron)),
		),
		plugin.Row(
			plugin.Col(cols(12), plugin.Alert(
				"Enabled indexers in Prowlarr are registered as sites named Prowlarr-<indexer>. "+
					"Sites stay registered when the plugin is disabled.")),
		),
	)

	defaults := map[string]any{
		"enabled":  false,
		"onlyonce": false,
		"host":     "",
		"api_key":  "",
		"cron":     defaultCron,
	}
	return form, defaults
}

// Page implements plugin.Plugin, showing the currently registered sites.
func (p *Plugin) Page() []plugin.Component {
	registered, err := p.registry.ListByPlugin(context.Background(), PluginID)
	if err != nil || len(registered) == 0 {
		return []plugin.Component{plugin.Alert("No indexers registered yet. Configure Prowlarr and run a sync.")}
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
