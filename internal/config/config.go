// Package config reads the collaborator settings of the sound map: where
// records are stored, where clips are uploaded and how the map starts.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/spf13/viper"

	"github.com/joeblew999/plat-soundmap/internal/cache"
	"github.com/joeblew999/plat-soundmap/internal/gesture"
	"github.com/joeblew999/plat-soundmap/internal/surface"
)

// FileName is the config file name searched for when no path is given.
const FileName = "soundmap"

// EnvPrefix prefixes environment overrides, e.g. SOUNDMAP_SHEET_URL.
const EnvPrefix = "SOUNDMAP"

// SheetConfig locates the record store.
type SheetConfig struct {
	URL string `mapstructure:"url" json:"url"`
}

// MediaConfig locates the clip upload API.
type MediaConfig struct {
	Endpoint     string `mapstructure:"endpoint" json:"endpoint"`
	CloudName    string `mapstructure:"cloudName" json:"cloudName"`
	UploadPreset string `mapstructure:"uploadPreset" json:"uploadPreset"`
}

// MapConfig is the starting view.
type MapConfig struct {
	Center  []float64 `mapstructure:"center" json:"center"` // lat, lng
	Zoom    float64   `mapstructure:"zoom" json:"zoom"`
	Basemap string    `mapstructure:"basemap" json:"basemap"`
}

// GestureConfig holds the long-press thresholds.
type GestureConfig struct {
	HoldMs      int     `mapstructure:"holdMs" json:"holdMs"`
	TolerancePx float64 `mapstructure:"tolerancePx" json:"tolerancePx"`
}

// CacheConfig names the local cache slot.
type CacheConfig struct {
	Key string `mapstructure:"key" json:"key"`
}

// Settings is the whole config file.
type Settings struct {
	Sheet   SheetConfig   `mapstructure:"sheet" json:"sheet"`
	Media   MediaConfig   `mapstructure:"media" json:"media"`
	Map     MapConfig     `mapstructure:"map" json:"map"`
	Gesture GestureConfig `mapstructure:"gesture" json:"gesture"`
	Cache   CacheConfig   `mapstructure:"cache" json:"cache"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sheet.url", "")

	v.SetDefault("media.endpoint", "https://api.cloudinary.com/v1_1")
	v.SetDefault("media.cloudName", "")
	v.SetDefault("media.uploadPreset", "")

	v.SetDefault("map.center", []float64{45.815, 15.981})
	v.SetDefault("map.zoom", 13)
	v.SetDefault("map.basemap", string(surface.DefaultBasemap))

	v.SetDefault("gesture.holdMs", int(gesture.DefaultHold/time.Millisecond))
	v.SetDefault("gesture.tolerancePx", gesture.DefaultTolerance)

	v.SetDefault("cache.key", cache.MarkersKey)
}

// Load reads settings from path. An empty path searches the working
// directory for soundmap.{yaml,json,toml}; a missing file leaves the
// defaults. Environment variables override both.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the values that would otherwise fail later.
func (s Settings) Validate() error {
	if len(s.Map.Center) != 2 {
		return fmt.Errorf("map.center: want [lat, lng], got %v", s.Map.Center)
	}
	if _, err := surface.ParseBasemap(s.Map.Basemap); err != nil {
		return fmt.Errorf("map.basemap: %w", err)
	}
	if s.Gesture.HoldMs < 0 || s.Gesture.TolerancePx < 0 {
		return fmt.Errorf("gesture thresholds must not be negative")
	}
	return nil
}

// GestureThresholds returns the recognizer thresholds.
func (s Settings) GestureThresholds() gesture.Config {
	return gesture.Config{
		Hold:      time.Duration(s.Gesture.HoldMs) * time.Millisecond,
		Tolerance: s.Gesture.TolerancePx,
	}
}

// Viewport returns the starting view. Its pixel size is unknown until the
// browser reports it.
func (s Settings) Viewport() surface.Viewport {
	return surface.Viewport{
		Center: orb.Point{s.Map.Center[1], s.Map.Center[0]},
		Zoom:   s.Map.Zoom,
	}
}

// Basemap returns the starting basemap.
func (s Settings) Basemap() surface.Basemap {
	b, err := surface.ParseBasemap(s.Map.Basemap)
	if err != nil {
		return surface.DefaultBasemap
	}
	return b
}
