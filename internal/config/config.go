package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ROBOT_DASHBOARD_DB_PATH.
const EnvPrefix = "ROBOT_DASHBOARD"

// Config is the full application configuration read from configs/config.yml.
type Config struct {
	Port      string         `mapstructure:"port"`
	LogLevel  string         `mapstructure:"log_level"`
	LogFormat string         `mapstructure:"log_format"` // console or json
	DB        DBConfig       `mapstructure:"db"`
	Server    ServerConfig   `mapstructure:"server"`
	Auth      AuthConfig     `mapstructure:"auth"`
	CORS      CORSConfig     `mapstructure:"cors"`
	Executor  ExecutorConfig `mapstructure:"executor"`
	Bridge    BridgeConfig   `mapstructure:"bridge"`
	Robot     RobotConfig    `mapstructure:"robot"`
	Monitor   MonitorConfig  `mapstructure:"monitor"`
	Pairing   PairingConfig  `mapstructure:"pairing"`
	Terminal  TerminalConfig `mapstructure:"terminal"`
	Video     VideoConfig    `mapstructure:"video"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// ExecutorConfig controls how /api/ros2 runs commands on the host.
type ExecutorConfig struct {
	Shell     string        `mapstructure:"shell"`
	WaitDelay time.Duration `mapstructure:"wait_delay"`
	// AllowedPrograms restricts the first word of raw commands. Empty means unrestricted.
	AllowedPrograms []string `mapstructure:"allowed_programs"`
}

// BridgeConfig tells the command client where the /api/ros2 endpoint lives.
type BridgeConfig struct {
	URL  string `mapstructure:"url"`
	Path string `mapstructure:"path"`
}

type RobotConfig struct {
	Tool         string `mapstructure:"tool"`
	PingHost     string `mapstructure:"ping_host"` // fmt pattern with one %d, empty disables ping
	CmdVelTopic  string `mapstructure:"cmd_vel_topic"`
	BatteryTopic string `mapstructure:"battery_topic"`
}

type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type PairingConfig struct {
	StepDelay time.Duration `mapstructure:"step_delay"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type TerminalConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type VideoConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Topic      string        `mapstructure:"topic"`
	StartDelay time.Duration `mapstructure:"start_delay"`
	StopDelay  time.Duration `mapstructure:"stop_delay"`
}

var defaults = map[string]any{
	"port":                       "8000",
	"log_level":                  "info",
	"log_format":                 "console",
	"db.path":                    "app.db",
	"server.read_header_timeout": 10 * time.Second,
	"server.write_timeout":       time.Duration(0),
	"server.idle_timeout":        60 * time.Second,
	"auth.signing_key":           "change-me",
	"auth.token_ttl":             time.Hour,
	"cors.allow_origins":         []string{"http://localhost:3000"},
	"executor.shell":             "/bin/sh",
	"executor.wait_delay":        2 * time.Second,
	"executor.allowed_programs":  []string{},
	"bridge.url":                 "http://127.0.0.1:8000",
	"bridge.path":                "/api/ros2",
	"robot.tool":                 "waffle",
	"robot.ping_host":            "",
	"robot.cmd_vel_topic":        "/cmd_vel",
	"robot.battery_topic":        "/battery_state",
	"monitor.interval":           5 * time.Second,
	"pairing.step_delay":         2 * time.Second,
	"pairing.timeout":            2 * time.Minute,
	"terminal.timeout":           10 * time.Second,
	"video.base_url":             "http://localhost:8080",
	"video.topic":                "/camera/color/image_raw",
	"video.start_delay":          1500 * time.Millisecond,
	"video.stop_delay":           500 * time.Millisecond,
}

// Load reads configuration from path (or configs/config.yml when path is empty),
// applies defaults and ROBOT_DASHBOARD_* environment overrides.
// A missing config file is not an error; defaults are used instead.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Robot.Tool) == "" {
		return errors.New("robot.tool must not be empty")
	}
	if strings.TrimSpace(c.Executor.Shell) == "" {
		return errors.New("executor.shell must not be empty")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %s", c.Monitor.Interval)
	}
	if c.Pairing.Timeout <= 0 {
		return fmt.Errorf("pairing.timeout must be positive, got %s", c.Pairing.Timeout)
	}
	return nil
}
