package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config 进程配置，来自环境变量（可由 .env 提供）
type Config struct {
	Host           string   `env:"HOST" envDefault:"0.0.0.0"`
	Port           int      `env:"PORT" envDefault:"3000"`
	StaticDir      string   `env:"STATIC_DIR" envDefault:"web"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	LogFile   string `env:"LOG_FILE" envDefault:"app.log"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogStdout bool   `env:"LOG_STDOUT" envDefault:"true"`

	SpinInterval  time.Duration `env:"SPIN_INTERVAL" envDefault:"30s"`
	BettingCutoff time.Duration `env:"BETTING_CUTOFF" envDefault:"2s"`
	ResolveTick   time.Duration `env:"RESOLVE_TICK" envDefault:"500ms"`
	DealDelay     time.Duration `env:"DEAL_DELAY" envDefault:"200ms"`
	StartingChips int           `env:"STARTING_CHIPS" envDefault:"10000"`
	RNGSeed       uint64        `env:"RNG_SEED" envDefault:"0"`
}

// Addr 监听地址
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load 读取 .env（不存在不报错）并解析环境变量
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}
	return Parse(env.Options{})
}

// Parse 解析环境变量并校验
func Parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查时长与数值的合法性
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.SpinInterval <= 0 || c.ResolveTick <= 0 || c.DealDelay <= 0 {
		errs = append(errs, errors.New("SPIN_INTERVAL, RESOLVE_TICK and DEAL_DELAY must be positive"))
	}
	if c.BettingCutoff <= 0 || c.BettingCutoff >= c.SpinInterval {
		errs = append(errs, fmt.Errorf("BETTING_CUTOFF %s must be in (0, SPIN_INTERVAL)", c.BettingCutoff))
	}
	if c.StartingChips <= 0 {
		errs = append(errs, fmt.Errorf("STARTING_CHIPS must be positive: %d", c.StartingChips))
	}
	return errors.Join(errs...)
}
