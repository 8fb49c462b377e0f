package config

import (
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-catalog/pkg/kafka"
	"github.com/Astemirdum/library-catalog/pkg/logger"
	"github.com/Astemirdum/library-catalog/pkg/store"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LIBRARY_HTTP_PORT" default:"5000"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Catalog struct {
	LoanPeriod time.Duration `yaml:"loanPeriod" envconfig:"LIBRARY_LOAN_PERIOD" default:"336h"`
	// Seed inserts demonstration data when the books table is empty.
	Seed bool `yaml:"seed" envconfig:"LIBRARY_SEED" default:"true"`
	// WebDir is served at / when set.
	WebDir string `yaml:"webDir" envconfig:"LIBRARY_WEB_DIR"`
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database store.Config `yaml:"db"`
	Kafka    kafka.Config `yaml:"kafka"`
	Catalog  Catalog      `yaml:"catalog"`
	Log      logger.Log   `yaml:"log"`
}

func (c Catalog) LoanDays() int {
	days := int(c.LoanPeriod / (24 * time.Hour))
	if days < 1 {
		return 14
	}
	return days
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options set values the
// environment does not override.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
	})

	return cfg
}
