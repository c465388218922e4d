package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	RPCAddress      string        `mapstructure:"rpc_address"`
	GRPCAddress     string        `mapstructure:"grpc_address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPAddress is the listen address of the websocket gateway.
func (c ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type GameConfig struct {
	TugLimit         int           `mapstructure:"tug_limit"`
	TugStep          int           `mapstructure:"tug_step"`
	QuestionDuration time.Duration `mapstructure:"question_duration"`
	StartDelay       time.Duration `mapstructure:"start_delay"`
	TimerResolution  time.Duration `mapstructure:"timer_resolution"`
}

type DatabaseConfig struct {
	// Driver selects the match history backend: "" disables it, "gorm" or "postgres".
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.rpc_address", "")
	v.SetDefault("server.grpc_address", "")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("game.tug_limit", 50)
	v.SetDefault("game.tug_step", 10)
	v.SetDefault("game.question_duration", 10*time.Second)
	v.SetDefault("game.start_delay", 3*time.Second)
	v.SetDefault("game.timer_resolution", 50*time.Millisecond)

	v.SetDefault("database.driver", "")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "tugofwar")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
}

// LoadConfig reads .env, then config.yaml from path, then the environment.
// Both files are optional; PORT overrides server.port and every other key can
// be set as TUG_<SECTION>_<KEY>.
func LoadConfig(path string) (config *Config, err error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("tug")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err = v.BindEnv("server.port", "PORT", "TUG_SERVER_PORT"); err != nil {
		return nil, err
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	g := c.Game
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	case g.TugLimit <= 0:
		return fmt.Errorf("game.tug_limit must be positive, got %d", g.TugLimit)
	case g.TugStep <= 0:
		return fmt.Errorf("game.tug_step must be positive, got %d", g.TugStep)
	case g.QuestionDuration <= 0:
		return fmt.Errorf("game.question_duration must be positive, got %v", g.QuestionDuration)
	case g.StartDelay < 0:
		return fmt.Errorf("game.start_delay must not be negative, got %v", g.StartDelay)
	case g.TimerResolution <= 0:
		return fmt.Errorf("game.timer_resolution must be positive, got %v", g.TimerResolution)
	}
	switch c.Database.Driver {
	case "", "gorm", "postgres":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}
