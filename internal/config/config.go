package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "SALON_"

type Application struct {
	Server    Server                  `koanf:"server"`
	Frontend  Frontend                `koanf:"frontend"`
	Database  Database                `koanf:"db"`
	Calendar  Calendar                `koanf:"calendar"`
	Telemetry Telemetry               `koanf:"telemetry"`
	Services  map[string]SalonService `koanf:"services"`
}

type Server struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"readtimeout"`
	WriteTimeout    time.Duration `koanf:"writetimeout"`
	IdleTimeout     time.Duration `koanf:"idletimeout"`
	RequestTimeout  time.Duration `koanf:"requesttimeout"`
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout"`
}

type Frontend struct {
	Enabled  bool   `koanf:"enabled"`
	Currency string `koanf:"currency"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Calendar struct {
	// IncludeCancelled controls whether cancelled appointments still mark a day as booked.
	IncludeCancelled bool `koanf:"includecancelled"`
}

type Telemetry struct {
	Enabled      bool    `koanf:"enabled"`
	ServiceName  string  `koanf:"servicename"`
	OTLPEndpoint string  `koanf:"otlpendpoint"`
	SampleRatio  float64 `koanf:"sampleratio"`
}

// SalonService overrides or extends an entry of the built-in service catalog.
type SalonService struct {
	Name  string  `koanf:"name"`
	Price float64 `koanf:"price"`
	Emoji string  `koanf:"emoji"`
}

func Defaults() Application {
	return Application{
		Server: Server{
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Frontend: Frontend{
			Enabled:  true,
			Currency: "₹",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "salon",
			Pass:   "",
			Name:   "salon",
			Schema: "salon",
		},
		Calendar: Calendar{
			IncludeCancelled: true,
		},
		Telemetry: Telemetry{
			Enabled:      false,
			ServiceName:  "salon-admin",
			OTLPEndpoint: "localhost:4317",
			SampleRatio:  1,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
