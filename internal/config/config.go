package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	Secret     string        `mapstructure:"secret"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	TypingRate int           `mapstructure:"typing_rate"`

	Database DatabaseConfig `mapstructure:"database"`
	WebRTC   WebRTCConfig   `mapstructure:"webrtc"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type WebRTCConfig struct {
	ListenIP    string `mapstructure:"listen_ip"`
	AnnouncedIP string `mapstructure:"announced_ip"`
	RtcMinPort  uint16 `mapstructure:"rtc_min_port"`
	RtcMaxPort  uint16 `mapstructure:"rtc_max_port"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("typing_rate", 10)
	v.SetDefault("webrtc.listen_ip", "0.0.0.0")
	v.SetDefault("webrtc.rtc_min_port", 20000)
	v.SetDefault("webrtc.rtc_max_port", 29999)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
