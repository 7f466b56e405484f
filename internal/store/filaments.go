package store

import (
	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// Filaments returns all filament spools.
func (s *Store) Filaments() ([]model.Filament, error) {
	return s.loadFilaments()
}

// FilamentByID returns the filament with the given ID.
func (s *Store) FilamentByID(id string) (model.Filament, error) {
	filaments, err := s.loadFilaments()
	if err != nil {
		return model.Filament{}, err
	}
	for _, f := range filaments {
		if f.ID == id {
			return f, nil
		}
	}
	return model.Filament{}, ErrFilamentNotFound
}

// netWeight converts a declared spool weight into net grams. When the weight
// was measured with the spool on, the brand's tare is subtracted and must
// leave a positive remainder.
func (s *Store) netWeight(brand string, weightG int, withoutSpool bool) (net, spool int, err error) {
	if withoutSpool {
		return weightG, 0, nil
	}
	spool = s.SpoolWeight(brand)
	net = weightG - spool
	if net <= 0 {
		return 0, 0, &InvalidNetWeightError{GrossG: weightG, SpoolG: spool, Brand: model.ToUpper(brand)}
	}
	return net, spool, nil
}

// AddFilament creates a spool. weightG is gross (with spool) unless
// withoutSpool is set, in which case it is taken as net.
func (s *Store) AddFilament(color, brand, materialType string, weightG int, withoutSpool bool) (model.Filament, error) {
	net, spool, err := s.netWeight(brand, weightG, withoutSpool)
	if err != nil {
		return model.Filament{}, err
	}
	filament := model.NewFilament(color, brand, materialType, net, spool)
	filaments, err := s.loadFilaments()
	if err != nil {
		return model.Filament{}, err
	}
	filaments = append(filaments, filament)
	if err := s.saveFilaments(filaments); err != nil {
		return model.Filament{}, err
	}
	s.log.Info("filament added",
		zap.String("brand", filament.Brand),
		zap.String("type", filament.Type),
		zap.Int("net_weight_g", net))
	return filament, nil
}

// UpdateFilament edits a spool's attributes. The current weight shifts by
// the change in initial weight, floored at zero, so consumption history
// stays reflected after the edit.
func (s *Store) UpdateFilament(id, color, brand, materialType string, weightG int, withoutSpool bool) error {
	filaments, err := s.loadFilaments()
	if err != nil {
		return err
	}
	idx := -1
	for i, f := range filaments {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrFilamentNotFound
	}

	net, spool, err := s.netWeight(brand, weightG, withoutSpool)
	if err != nil {
		return err
	}

	old := filaments[idx]
	current := old.CurrentWeight + (net - old.InitialWeight)
	if current < 0 {
		current = 0
	}

	filaments[idx].Color = color
	filaments[idx].Brand = model.ToUpper(brand)
	filaments[idx].Type = model.ToUpper(materialType)
	filaments[idx].InitialWeight = net
	filaments[idx].CurrentWeight = current
	filaments[idx].SpoolWeight = spool

	if err := s.saveFilaments(filaments); err != nil {
		return err
	}
	s.log.Info("filament updated", zap.String("id", id), zap.Int("current_weight_g", current))
	return nil
}

// DeleteFilament removes a spool. It reports false when the ID is unknown.
func (s *Store) DeleteFilament(id string) (bool, error) {
	filaments, err := s.loadFilaments()
	if err != nil {
		return false, err
	}
	kept := filaments[:0]
	for _, f := range filaments {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(filaments) {
		return false, nil
	}
	if err := s.saveFilaments(kept); err != nil {
		return false, err
	}
	s.log.Info("filament deleted", zap.String("id", id))
	return true, nil
}
