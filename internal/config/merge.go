package config

// applyDefaults fills every unset field of s from DefaultSettings. Lists
// are replaced as a whole, never merged entry by entry, so a configured
// fallback_paths list is the complete search order.
func applyDefaults(s *Settings) {
	d := DefaultSettings()

	setString(&s.Elevation.Mode, d.Elevation.Mode)
	setString(&s.Elevation.Command, d.Elevation.Command)

	setString(&s.API.BaseURL, d.API.BaseURL)
	setString(&s.API.Timeout, d.API.Timeout)

	setString(&s.DaemonConfig.DefaultPath, d.DaemonConfig.DefaultPath)
	setList(&s.DaemonConfig.FallbackPaths, d.DaemonConfig.FallbackPaths)
	setString(&s.DaemonConfig.ModuleRoot, d.DaemonConfig.ModuleRoot)
	setString(&s.DaemonConfig.ModuleMatch, d.DaemonConfig.ModuleMatch)
	setString(&s.DaemonConfig.ConfigRelPath, d.DaemonConfig.ConfigRelPath)

	setList(&s.Tools.HTTPClients, d.Tools.HTTPClients)
	setList(&s.Tools.Base64Decoders, d.Tools.Base64Decoders)

	setString(&s.Log.Level, d.Log.Level)

	setString(&s.Serve.Listen, d.Serve.Listen)
	setString(&s.Serve.RequestTimeout, d.Serve.RequestTimeout)
}

func setString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

func setList(field *[]string, def []string) {
	if len(*field) == 0 {
		*field = append([]string(nil), def...)
	}
}
