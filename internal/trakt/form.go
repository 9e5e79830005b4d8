package trakt

import (
	"fmt"
	"time"

	"github.com/bridgearr/bridgearr/internal/plugin"
)

// Form implements plugin.Plugin.
func (p *Plugin) Form() ([]plugin.Component, map[string]any) {
	form := plugin.Form(
		plugin.Row(
			plugin.Col(cols(3), plugin.Switch("enabled", "Enable")),
			plugin.Col(cols(3), plugin.Switch("notify", "Send notification")),
			plugin.Col(cols(3), plugin.Switch("onlyonce", "Run once now")),
			plugin.Col(cols(3), plugin.Switch("auto_download", "Search on add")),
		),
		plugin.Row(
			plugin.Col(cols(6), plugin.TextField("client_id", "Trakt client ID", "")),
			plugin.Col(cols(6), plugin.TextField("client_secret", "Trakt client secret", "")),
		),
		plugin.Row(
			plugin.Col(cols(6), plugin.TextField("refresh_token", "Refresh token", "")),
			plugin.Col(cols(6), plugin.CronField("cron", "Sync schedule", defaultCron)),
		),
		plugin.Row(
			plugin.Col(cols(12), plugin.Alert(
				"Create an API app at trakt.tv/oauth/applications and authorize it with the "+
					"device flow to obtain a refresh token. The access token is managed automatically.")),
		),
	)

	defaults := map[string]any{
		"enabled":       false,
		"notify":        false,
		"onlyonce":      false,
		"auto_download": false,
		"client_id":     "",
		"client_secret": "",
		"refresh_token": "",
		"cron":          defaultCron,
	}
	return form, defaults
}

// Page implements plugin.Plugin, showing the last sync outcome.
func (p *Plugin) Page() []plugin.Component {
	lastRun, stats := p.LastRun()
	if stats == nil {
		return []plugin.Component{plugin.Alert("No sync has run yet.")}
	}

	return []plugin.Component{
		plugin.Alert(fmt.Sprintf("Last sync %s: %s",
			lastRun.Format(time.RFC3339), stats.summary())),
	}
}

func cols(md int) map[string]any {
	return map[string]any{"cols": 12, "md": md}
}
