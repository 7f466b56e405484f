package store

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// rawMaterial reads a material entry in either the current shape (brands
// map) or the legacy flat shape (price_per_kg on the material itself).
type rawMaterial struct {
	HourlyRate *float64                    `json:"hourly_rate"`
	PricePerKg *float64                    `json:"price_per_kg"`
	Brands     map[string]model.BrandPrice `json:"brands"`
}

// LoadConfig reads config.json merged over the defaults. Legacy entries
// that carry a flat price_per_kg are migrated to the brand-map shape, the
// brand maps are synced against the brand inventory, and a migrated config
// is written back. A missing file yields the defaults; a corrupt file is
// logged and replaced by the defaults rather than failing startup.
func (s *Store) LoadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()

	data, err := os.ReadFile(s.path(configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var rawDoc struct {
		Materials map[string]rawMaterial `json:"materials"`
	}
	if err := json.Unmarshal(data, &rawDoc); err != nil {
		s.log.Warn("config unreadable, falling back to defaults", zap.Error(err))
		return model.DefaultConfig(), nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.log.Warn("config unreadable, falling back to defaults", zap.Error(err))
		return model.DefaultConfig(), nil
	}

	migrated := false
	for name, raw := range rawDoc.Materials {
		if raw.PricePerKg != nil && raw.Brands == nil {
			// Legacy flat shape: keep the hourly rate, drop the global
			// per-kg price. Brand prices come back via the inventory sync.
			hourly := 5.0
			if raw.HourlyRate != nil {
				hourly = *raw.HourlyRate
			}
			cfg.Materials[name] = model.MaterialRates{
				HourlyRate: hourly,
				Brands:     map[string]model.BrandPrice{},
			}
			migrated = true
		}
	}

	if err := s.syncConfigBrands(&cfg); err != nil {
		s.log.Warn("brand sync failed", zap.Error(err))
	}

	if migrated {
		if err := s.SaveConfig(cfg); err != nil {
			return cfg, err
		}
		s.log.Info("config migrated to brand-map shape")
	}
	return cfg, nil
}

// syncConfigBrands aligns every material's brand map with the brand
// inventory: brands deleted from inventory disappear, brands missing from
// the config appear priced at zero.
func (s *Store) syncConfigBrands(cfg *model.Config) error {
	brands, err := s.loadBrands()
	if err != nil {
		return err
	}
	inventory := make(map[string]bool, len(brands))
	for _, b := range brands {
		inventory[model.ToUpper(b.Name)] = true
	}

	for name, rates := range cfg.Materials {
		if rates.Brands == nil {
			rates.Brands = map[string]model.BrandPrice{}
		}
		for brand := range rates.Brands {
			if !inventory[model.ToUpper(brand)] {
				delete(rates.Brands, brand)
			}
		}
		for _, b := range brands {
			if _, _, ok := rates.BrandPricePerKg(b.Name); !ok {
				rates.Brands[b.Name] = model.BrandPrice{PricePerKg: 0.0}
			}
		}
		cfg.Materials[name] = rates
	}
	return nil
}

// SaveConfig writes the configuration document.
func (s *Store) SaveConfig(cfg model.Config) error {
	return s.writeDoc(configFile, cfg)
}
