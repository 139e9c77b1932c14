package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"dutch-verb-trainer/internal/domain"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path" env:"SQLITE_PATH"`
	} `yaml:"sqlite"`
	Session struct {
		Key string `yaml:"key" env:"SESSION_KEY"`
	} `yaml:"session"`
	Quiz struct {
		Questions    int  `yaml:"questions" env:"QUIZ_QUESTIONS"`
		MaxQuestions int  `yaml:"maxQuestions" env:"QUIZ_MAX_QUESTIONS"`
		Tenses       List `yaml:"tenses" env:"QUIZ_TENSES"`
		Persons      List `yaml:"persons" env:"QUIZ_PERSONS"`
	} `yaml:"quiz"`
	Catalogue struct {
		Path string `yaml:"path" env:"CATALOGUE_PATH"`
		TTL  string `yaml:"ttl" env:"CATALOGUE_TTL"`
	} `yaml:"catalogue"`
}

// Load reads YAML config from path, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// List is a configured list that remembers whether it was given at all, so
// an omitted key and an explicit empty list stay distinguishable.
type List struct {
	Values []string
	Set    bool
}

// NewList returns a list marked as configured.
func NewList(values ...string) List {
	return List{Values: values, Set: true}
}

// UnmarshalYAML marks the list as set unless the value is null.
func (l *List) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*l = List{}
		return nil
	}
	var values []string
	if err := node.Decode(&values); err != nil {
		return err
	}
	*l = NewList(values...)
	return nil
}

// UnmarshalText reads a comma-separated environment value.
func (l *List) UnmarshalText(text []byte) error {
	values := []string{}
	for _, v := range strings.Split(string(text), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	*l = NewList(values...)
	return nil
}

// Selection converts the configured tenses and persons. An omitted list means
// the full grid; an explicit empty list or an unknown value is an error.
func (c Config) Selection() (domain.Selection, error) {
	tenses := domain.Tenses
	if c.Quiz.Tenses.Set {
		tenses = []domain.Tense{}
		for _, raw := range c.Quiz.Tenses.Values {
			t, err := domain.ParseTense(raw)
			if err != nil {
				return domain.Selection{}, err
			}
			tenses = append(tenses, t)
		}
	}
	persons := domain.Persons
	if c.Quiz.Persons.Set {
		persons = []domain.Person{}
		for _, raw := range c.Quiz.Persons.Values {
			p, err := domain.ParsePerson(raw)
			if err != nil {
				return domain.Selection{}, err
			}
			persons = append(persons, p)
		}
	}
	return domain.NewSelection(tenses, persons)
}
