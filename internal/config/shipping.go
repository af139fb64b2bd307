package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ShippingConfig describes delivery pricing for a storefront: per-method base
// fees, the free-shipping threshold, and the outlying-islands surcharge.
// Amounts are whole display-currency units (HKD).
type ShippingConfig struct {
	FreeShippingThreshold int64            `mapstructure:"freeShippingThreshold" json:"freeShippingThreshold"`
	BaseFees              map[string]int64 `mapstructure:"baseFees" json:"baseFees"`
	IslandSurcharge       int64            `mapstructure:"islandSurcharge" json:"islandSurcharge"`
	Regions               []string         `mapstructure:"regions" json:"regions"`
}

// DeliveryMethod values accepted by the checkout surface.
const (
	DeliveryMethodHome   = "home"
	DeliveryMethodLocker = "locker"
)

// RegionOutlyingIslands is the only region carrying a home-delivery surcharge.
const RegionOutlyingIslands = "outlying islands"

func DefaultShippingConfig() ShippingConfig {
	return ShippingConfig{
		FreeShippingThreshold: 600,
		BaseFees: map[string]int64{
			DeliveryMethodHome:   40,
			DeliveryMethodLocker: 30,
		},
		IslandSurcharge: 20,
		Regions: []string{
			"hong kong island",
			"kowloon",
			"new territories",
			RegionOutlyingIslands,
		},
	}
}

// KnownRegion reports whether region is one of the configured HK regions.
func (c ShippingConfig) KnownRegion(region string) bool {
	region = strings.ToLower(strings.TrimSpace(region))
	for _, r := range c.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// BaseFee returns the configured base fee for a delivery method.
func (c ShippingConfig) BaseFee(method string) (int64, bool) {
	fee, ok := c.BaseFees[strings.ToLower(strings.TrimSpace(method))]
	return fee, ok
}

// ShippingConfigHolder exposes the current shipping config with hot reload.
type ShippingConfigHolder struct {
	current atomic.Value // holds ShippingConfig
}

func NewShippingConfigHolder(log *zap.Logger) (*ShippingConfigHolder, error) {
	log = log.Named("config.shipping")
	v := viper.New()

	v.SetConfigName("shipping")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/linkshop/config")
	v.AddConfigPath("/etc/linkshop")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LINKSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultShippingConfig()
		v.SetDefault("shipping.freeShippingThreshold", defaults.FreeShippingThreshold)
		v.SetDefault("shipping.baseFees", defaults.BaseFees)
		v.SetDefault("shipping.islandSurcharge", defaults.IslandSurcharge)
		v.SetDefault("shipping.regions", defaults.Regions)
	}

	var cfg ShippingConfig
	if err := v.UnmarshalKey("shipping", &cfg); err != nil {
		return nil, err
	}
	if err := validateShippingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ShippingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(event fsnotify.Event) {
		var next ShippingConfig
		if err := v.UnmarshalKey("shipping", &next); err != nil {
			log.Error("shipping config reload failed", zap.String("file", event.Name), zap.Error(err))
			return
		}
		if err := validateShippingConfig(next); err != nil {
			log.Warn("shipping config reload rejected", zap.String("file", event.Name), zap.Error(err))
			return
		}
		holder.current.Store(next)
		log.Info("shipping config reloaded", zap.String("file", event.Name))
	})

	return holder, nil
}

// Current returns the active shipping config.
func (h *ShippingConfigHolder) Current() ShippingConfig {
	if h == nil {
		return DefaultShippingConfig()
	}
	cfg, ok := h.current.Load().(ShippingConfig)
	if !ok {
		return DefaultShippingConfig()
	}
	return cfg
}

func validateShippingConfig(cfg ShippingConfig) error {
	if cfg.FreeShippingThreshold < 0 {
		return errors.New("freeShippingThreshold must not be negative")
	}
	if cfg.IslandSurcharge < 0 {
		return errors.New("islandSurcharge must not be negative")
	}
	if len(cfg.BaseFees) == 0 {
		return errors.New("baseFees must not be empty")
	}
	for method, fee := range cfg.BaseFees {
		if fee < 0 {
			return errors.New("base fee for " + method + " must not be negative")
		}
	}
	if len(cfg.Regions) == 0 {
		return errors.New("regions must not be empty")
	}
	return nil
}
