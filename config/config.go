// Package config loads the simulation parameters shared with the server and
// the client's connection settings.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Sim SimConfig `mapstructure:"sim"`
	Net NetConfig `mapstructure:"net"`
}

// SimConfig mirrors the server's shared constants. Distances are in pixels,
// speeds in pixels per tick.
type SimConfig struct {
	TickRate          float64 `mapstructure:"tick_rate"`
	TileSize          float64 `mapstructure:"tile_size"`
	PlayerSpeed       float64 `mapstructure:"player_speed"`
	PlayerRadius      float64 `mapstructure:"player_radius"`
	LaserSpeed        float64 `mapstructure:"laser_speed"`
	BouncySpeed       float64 `mapstructure:"bouncy_speed"`
	LaserTimeTicks    uint32  `mapstructure:"laser_time_ticks"`
	LaserTrailLength  float64 `mapstructure:"laser_trail_length"`
	BouncyTrailLength float64 `mapstructure:"bouncy_trail_length"`
	MaxBounces        int     `mapstructure:"max_bounces"`
	MaxLaserEnergy    int     `mapstructure:"max_laser_energy"`
	MaxBouncyEnergy   int     `mapstructure:"max_bouncy_energy"`
	LaserEnergyCost   int     `mapstructure:"laser_energy_cost"`
	BouncyEnergyCost  int     `mapstructure:"bouncy_energy_cost"`
	InputBufferSize   int     `mapstructure:"input_buffer_size"`
	DirBufferSize     int     `mapstructure:"dir_buffer_size"`
	HistorySize       int     `mapstructure:"history_size"`
}

type NetConfig struct {
	ServerURL      string  `mapstructure:"server_url"`
	Token          string  `mapstructure:"token"`
	DelayMs        int     `mapstructure:"delay_ms"`
	JitterMs       int     `mapstructure:"jitter_ms"`
	ThrottleFactor float64 `mapstructure:"throttle_factor"`
	InboxSize      int     `mapstructure:"inbox_size"`
}

// Defaults returns the parameters the server ships with.
func Defaults() Config {
	return Config{
		Sim: SimConfig{
			TickRate:          30,
			TileSize:          32,
			PlayerSpeed:       2,
			PlayerRadius:      32,
			LaserSpeed:        6,
			BouncySpeed:       9,
			LaserTimeTicks:    60,
			LaserTrailLength:  64,
			BouncyTrailLength: 96,
			MaxBounces:        8,
			MaxLaserEnergy:    70,
			MaxBouncyEnergy:   120,
			LaserEnergyCost:   10,
			BouncyEnergyCost:  30,
			InputBufferSize:   30,
			DirBufferSize:     5,
			HistorySize:       64,
		},
		Net: NetConfig{
			ServerURL:      "ws://localhost:8000/ws",
			ThrottleFactor: 1.1,
			InboxSize:      256,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("sim.tick_rate", d.Sim.TickRate)
	v.SetDefault("sim.tile_size", d.Sim.TileSize)
	v.SetDefault("sim.player_speed", d.Sim.PlayerSpeed)
	v.SetDefault("sim.player_radius", d.Sim.PlayerRadius)
	v.SetDefault("sim.laser_speed", d.Sim.LaserSpeed)
	v.SetDefault("sim.bouncy_speed", d.Sim.BouncySpeed)
	v.SetDefault("sim.laser_time_ticks", d.Sim.LaserTimeTicks)
	v.SetDefault("sim.laser_trail_length", d.Sim.LaserTrailLength)
	v.SetDefault("sim.bouncy_trail_length", d.Sim.BouncyTrailLength)
	v.SetDefault("sim.max_bounces", d.Sim.MaxBounces)
	v.SetDefault("sim.max_laser_energy", d.Sim.MaxLaserEnergy)
	v.SetDefault("sim.max_bouncy_energy", d.Sim.MaxBouncyEnergy)
	v.SetDefault("sim.laser_energy_cost", d.Sim.LaserEnergyCost)
	v.SetDefault("sim.bouncy_energy_cost", d.Sim.BouncyEnergyCost)
	v.SetDefault("sim.input_buffer_size", d.Sim.InputBufferSize)
	v.SetDefault("sim.dir_buffer_size", d.Sim.DirBufferSize)
	v.SetDefault("sim.history_size", d.Sim.HistorySize)
	v.SetDefault("net.server_url", d.Net.ServerURL)
	v.SetDefault("net.token", d.Net.Token)
	v.SetDefault("net.delay_ms", d.Net.DelayMs)
	v.SetDefault("net.jitter_ms", d.Net.JitterMs)
	v.SetDefault("net.throttle_factor", d.Net.ThrottleFactor)
	v.SetDefault("net.inbox_size", d.Net.InboxSize)
}

// Load reads defaults, then the optional file at path, then ARENA_*
// environment overrides such as ARENA_SIM_TICK_RATE.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("arena")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		log.Printf("config loaded from %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects parameters the simulation cannot run with.
func (c Config) Validate() error {
	s := c.Sim
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("sim.%s must be positive, got %v", name, v))
		}
	}
	positive("tick_rate", s.TickRate)
	positive("tile_size", s.TileSize)
	positive("player_speed", s.PlayerSpeed)
	positive("player_radius", s.PlayerRadius)
	positive("laser_speed", s.LaserSpeed)
	positive("bouncy_speed", s.BouncySpeed)
	positive("input_buffer_size", float64(s.InputBufferSize))
	positive("dir_buffer_size", float64(s.DirBufferSize))
	positive("history_size", float64(s.HistorySize))
	if s.MaxBounces < 0 {
		errs = append(errs, fmt.Errorf("sim.max_bounces must not be negative, got %d", s.MaxBounces))
	}
	if s.LaserEnergyCost > s.MaxLaserEnergy || s.BouncyEnergyCost > s.MaxBouncyEnergy {
		errs = append(errs, errors.New("sim: energy cost exceeds its maximum"))
	}
	if c.Net.ThrottleFactor < 1 {
		errs = append(errs, fmt.Errorf("net.throttle_factor must be at least 1, got %v", c.Net.ThrottleFactor))
	}
	if c.Net.InboxSize <= 0 {
		errs = append(errs, fmt.Errorf("net.inbox_size must be positive, got %d", c.Net.InboxSize))
	}
	return errors.Join(errs...)
}

// TrailLength returns how long the drawn trail of a laser kind is.
func (s SimConfig) TrailLength(bouncy bool) float64 {
	if bouncy {
		return s.BouncyTrailLength
	}
	return s.LaserTrailLength
}
