package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// SettingsFileName is looked up next to the manifest when no settings file
// is named explicitly.
const SettingsFileName = "assetpipe.toml"

// Settings is the on-disk form of the optional settings file. Unset fields
// leave the corresponding Config field alone.
//
//	log_level = "debug"
//	mount = "game"
//
//	[cache]
//	threshold = "2ms"
//	disabled = false
type Settings struct {
	LogLevel  *string `toml:"log_level"`
	LogFormat *string `toml:"log_format"`
	Mount     *string `toml:"mount"`
	Out       *string `toml:"out"`
	PluginDir *string `toml:"plugin_dir"`

	Cache struct {
		Threshold *Duration `toml:"threshold"`
		Disabled  *bool     `toml:"disabled"`
	} `toml:"cache"`

	Package struct {
		DisableCompression *bool   `toml:"disable_compression"`
		UploadURL          *string `toml:"upload_url"`
	} `toml:"package"`

	Watch struct {
		Debounce  *Duration `toml:"debounce"`
		NotifyURL *string   `toml:"notify_url"`
	} `toml:"watch"`

	HealthcheckPort *int `toml:"healthcheck_port"`
}

// Duration reads a TOML string such as "500us" as a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// LoadSettings decodes the settings file at path. Unknown keys are an error.
// Relative paths in the file are resolved against its directory.
func LoadSettings(path string) (*Settings, error) {
	var s Settings
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file '%s': %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("settings file '%s': unknown key %q", path, undecoded[0].String())
	}
	for _, p := range []*string{s.Out, s.PluginDir} {
		if p != nil && *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(filepath.Dir(path), *p)
		}
	}
	return &s, nil
}

// FindSettings returns the settings file that applies to target, a manifest
// file, package or directory. It returns "" when there is none.
func FindSettings(target string) string {
	dir := target
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		dir = filepath.Dir(target)
	}
	candidate := filepath.Join(dir, SettingsFileName)
	if info, err := os.Stat(candidate); err != nil || info.IsDir() {
		return ""
	}
	return candidate
}

// ApplyTo copies every set field into cfg unless explicit reports that the
// matching command-line flag was given.
func (s *Settings) ApplyTo(cfg *Config, explicit func(flag string) bool) {
	setString := func(flag string, dst *string, v *string) {
		if v != nil && !explicit(flag) {
			*dst = *v
		}
	}
	setBool := func(flag string, dst *bool, v *bool) {
		if v != nil && !explicit(flag) {
			*dst = *v
		}
	}
	setDuration := func(flag string, dst *time.Duration, v *Duration) {
		if v != nil && !explicit(flag) {
			*dst = v.Duration
		}
	}

	setString("log-level", &cfg.LogLevel, s.LogLevel)
	setString("log-format", &cfg.LogFormat, s.LogFormat)
	setString("mount", &cfg.Mount, s.Mount)
	setString("out", &cfg.Out, s.Out)
	setString("plugin-dir", &cfg.PluginDir, s.PluginDir)
	setDuration("cache-threshold", &cfg.CacheThreshold, s.Cache.Threshold)
	setBool("no-cache", &cfg.DisableCache, s.Cache.Disabled)
	setBool("no-compress", &cfg.DisableCompression, s.Package.DisableCompression)
	setDuration("debounce", &cfg.Debounce, s.Watch.Debounce)
	setString("notify-url", &cfg.NotifyURL, s.Watch.NotifyURL)
	if cfg.Command == CommandPack {
		setString("upload", &cfg.UploadURL, s.Package.UploadURL)
	}
	if s.HealthcheckPort != nil && !explicit("healthcheck-port") {
		cfg.HealthcheckPort = *s.HealthcheckPort
	}
}
