package store

import (
	"time"

	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// Brands returns all brands.
func (s *Store) Brands() ([]model.Brand, error) {
	return s.loadBrands()
}

// BrandNames returns the names of all brands, in storage order.
func (s *Store) BrandNames() ([]string, error) {
	brands, err := s.loadBrands()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(brands))
	for _, b := range brands {
		names = append(names, b.Name)
	}
	return names, nil
}

// BrandByID returns the brand with the given ID.
func (s *Store) BrandByID(id string) (model.Brand, error) {
	brands, err := s.loadBrands()
	if err != nil {
		return model.Brand{}, err
	}
	for _, b := range brands {
		if b.ID == id {
			return b, nil
		}
	}
	return model.Brand{}, ErrBrandNotFound
}

// SpoolWeight returns the tare weight in grams for a brand name, or the
// default when the brand is unknown.
func (s *Store) SpoolWeight(brandName string) int {
	brands, err := s.loadBrands()
	if err != nil {
		return model.DefaultSpoolWeightG
	}
	want := model.ToUpper(brandName)
	for _, b := range brands {
		if b.Name == want {
			return b.SpoolWeight
		}
	}
	return model.DefaultSpoolWeightG
}

// AddBrand creates a brand. Names are stored upper-cased and must be unique
// case-insensitively.
func (s *Store) AddBrand(name string, spoolWeightG int) (model.Brand, error) {
	brands, err := s.loadBrands()
	if err != nil {
		return model.Brand{}, err
	}
	want := model.ToUpper(name)
	for _, b := range brands {
		if model.ToUpper(b.Name) == want {
			return model.Brand{}, ErrBrandExists
		}
	}
	brand := model.NewBrand(name, spoolWeightG)
	brands = append(brands, brand)
	if err := s.saveBrands(brands); err != nil {
		return model.Brand{}, err
	}
	s.log.Info("brand added", zap.String("name", brand.Name), zap.Int("spool_weight_g", spoolWeightG))
	return brand, nil
}

// UpdateBrand renames a brand and/or changes its spool weight. The new name
// must not collide with another brand.
func (s *Store) UpdateBrand(id, name string, spoolWeightG int) error {
	brands, err := s.loadBrands()
	if err != nil {
		return err
	}
	idx := -1
	for i, b := range brands {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrBrandNotFound
	}
	want := model.ToUpper(name)
	for i, b := range brands {
		if i != idx && model.ToUpper(b.Name) == want {
			return ErrBrandExists
		}
	}
	brands[idx].Name = want
	brands[idx].SpoolWeight = spoolWeightG
	brands[idx].UpdatedAt = time.Now().Format(time.RFC3339)
	if err := s.saveBrands(brands); err != nil {
		return err
	}
	s.log.Info("brand updated", zap.String("id", id), zap.String("name", want))
	return nil
}

// DeleteBrand removes a brand. It fails with ErrBrandInUse while any
// filament still references the brand by name.
func (s *Store) DeleteBrand(id string) error {
	brands, err := s.loadBrands()
	if err != nil {
		return err
	}
	idx := -1
	for i, b := range brands {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrBrandNotFound
	}
	name := model.ToUpper(brands[idx].Name)

	filaments, err := s.loadFilaments()
	if err != nil {
		return err
	}
	for _, f := range filaments {
		if model.ToUpper(f.Brand) == name {
			return ErrBrandInUse
		}
	}

	brands = append(brands[:idx], brands[idx+1:]...)
	if err := s.saveBrands(brands); err != nil {
		return err
	}
	s.log.Info("brand deleted", zap.String("name", name))
	return nil
}
