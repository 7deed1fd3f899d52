package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	tender "procurement-core/internal/tender/domain"
)

// StandStill overrides the per-variant stand-still lengths in days.
type StandStill struct {
	NegotiationDays      int `yaml:"negotiation_days"`
	NegotiationQuickDays int `yaml:"negotiation_quick_days"`
}

// Config defines service configuration.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	DatabaseURL string `yaml:"database_url"`
	JWTSecret   string `yaml:"jwt_secret"`

	// AcceleratorDivisor shortens stand-still periods for sandbox runs.
	AcceleratorDivisor int `yaml:"accelerator_divisor"`

	// AmountNetTolerance is the allowed fractional gap between contract
	// amount and amountNet.
	AmountNetTolerance float64 `yaml:"amount_net_tolerance"`

	StandStill StandStill `yaml:"stand_still"`
}

// Load reads config from yaml (PROCUREMENT_CONFIG) with env fallbacks.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:         getenvDefault("PROCUREMENT_LISTEN_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("PROCUREMENT_JWT_SECRET"),
		AcceleratorDivisor: getenvIntDefault("PROCUREMENT_ACCELERATOR", 0),
		AmountNetTolerance: 0.20,
		StandStill: StandStill{
			NegotiationDays:      10,
			NegotiationQuickDays: 5,
		},
	}

	if path := os.Getenv("PROCUREMENT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: database url required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

// Variants builds the procedure variant table from the configuration.
func (c Config) Variants() map[string]tender.ProcedureVariant {
	reporting := tender.Reporting()
	negotiation := tender.Negotiation()
	quick := tender.NegotiationQuick()

	if c.StandStill.NegotiationDays > 0 {
		negotiation.StandStillDays = c.StandStill.NegotiationDays
	}
	if c.StandStill.NegotiationQuickDays > 0 {
		quick.StandStillDays = c.StandStill.NegotiationQuickDays
	}
	for _, v := range []*tender.ProcedureVariant{&reporting, &negotiation, &quick} {
		if c.AmountNetTolerance > 0 {
			v.AmountNetTolerance = c.AmountNetTolerance
		}
		v.AcceleratorDivisor = c.AcceleratorDivisor
	}
	return map[string]tender.ProcedureVariant{
		reporting.Name:   reporting,
		negotiation.Name: negotiation,
		quick.Name:       quick,
	}
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
