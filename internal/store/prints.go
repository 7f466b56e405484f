package store

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// Consume subtracts grams from a filament's current weight. The check and
// the write happen in one call; on error the filament is unchanged.
func (s *Store) Consume(filamentID string, grams int) error {
	filaments, err := s.loadFilaments()
	if err != nil {
		return err
	}
	for i, f := range filaments {
		if f.ID != filamentID {
			continue
		}
		if f.CurrentWeight < grams {
			return &InsufficientWeightError{AvailableG: f.CurrentWeight, RequestedG: grams}
		}
		filaments[i].CurrentWeight -= grams
		return s.saveFilaments(filaments)
	}
	return ErrFilamentNotFound
}

// restore adds grams back to a filament. Restoration has no upper bound: a
// spool edited down since the print may end up above its initial weight.
func (s *Store) restore(filamentID string, grams int) error {
	filaments, err := s.loadFilaments()
	if err != nil {
		return err
	}
	for i, f := range filaments {
		if f.ID == filamentID {
			filaments[i].CurrentWeight += grams
			return s.saveFilaments(filaments)
		}
	}
	return ErrFilamentNotFound
}

// RecordPrint consumes filament and appends a history record. This is the
// only path that decreases inventory weight.
func (s *Store) RecordPrint(filamentID, printName string, weightUsedG int, price *float64, gcodeFile *string) (model.PrintRecord, error) {
	if err := s.Consume(filamentID, weightUsedG); err != nil {
		return model.PrintRecord{}, err
	}
	record := model.NewPrintRecord(filamentID, printName, weightUsedG, price, gcodeFile)
	prints, err := s.loadPrints()
	if err != nil {
		return model.PrintRecord{}, err
	}
	prints = append(prints, record)
	if err := s.savePrints(prints); err != nil {
		return model.PrintRecord{}, err
	}
	s.log.Info("print recorded",
		zap.String("filament_id", filamentID),
		zap.String("name", printName),
		zap.Int("weight_used_g", weightUsedG))
	return record, nil
}

// PrintByID returns the print record with the given ID.
func (s *Store) PrintByID(id string) (model.PrintRecord, error) {
	prints, err := s.loadPrints()
	if err != nil {
		return model.PrintRecord{}, err
	}
	for _, p := range prints {
		if p.ID == id {
			return p, nil
		}
	}
	return model.PrintRecord{}, ErrPrintNotFound
}

// Prints returns all print records, newest first.
func (s *Store) Prints() ([]model.PrintRecord, error) {
	prints, err := s.loadPrints()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(prints)
	return prints, nil
}

// FilamentHistory returns the print records of one filament, newest first.
func (s *Store) FilamentHistory(filamentID string) ([]model.PrintRecord, error) {
	prints, err := s.loadPrints()
	if err != nil {
		return nil, err
	}
	var history []model.PrintRecord
	for _, p := range prints {
		if p.FilamentID == filamentID {
			history = append(history, p)
		}
	}
	sortNewestFirst(history)
	return history, nil
}

func sortNewestFirst(prints []model.PrintRecord) {
	sort.SliceStable(prints, func(i, j int) bool {
		return prints[i].Timestamp > prints[j].Timestamp
	})
}

// DeletePrint removes a history record, optionally restoring the consumed
// grams to the filament. It reports false when the ID is unknown.
func (s *Store) DeletePrint(printID string, restoreWeight bool) (bool, error) {
	prints, err := s.loadPrints()
	if err != nil {
		return false, err
	}
	idx := -1
	for i, p := range prints {
		if p.ID == printID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	record := prints[idx]
	if restoreWeight && record.FilamentID != "" && record.WeightUsed > 0 {
		// Ignore a missing filament: the spool may have been deleted since.
		if err := s.restore(record.FilamentID, record.WeightUsed); err != nil && err != ErrFilamentNotFound {
			return false, err
		}
	}

	prints = append(prints[:idx], prints[idx+1:]...)
	if err := s.savePrints(prints); err != nil {
		return false, err
	}
	s.log.Info("print deleted", zap.String("id", printID), zap.Bool("restored", restoreWeight))
	return true, nil
}

// UpdatePrintOptions carries the fields of an edit; nil fields keep the
// record's current value.
type UpdatePrintOptions struct {
	PrintName  *string
	FilamentID *string
	WeightUsed *int
	Price      *float64
}

// UpdatePrint edits a history record. When the filament or the weight
// changes, the old consumption is reversed first, the new one validated
// against the restored balance, and the restoration rolled back if the new
// consumption cannot be applied, so a returned error leaves the inventory
// exactly as it was.
func (s *Store) UpdatePrint(printID string, opts UpdatePrintOptions) error {
	prints, err := s.loadPrints()
	if err != nil {
		return err
	}
	idx := -1
	for i, p := range prints {
		if p.ID == printID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPrintNotFound
	}

	old := prints[idx]
	newFilamentID := old.FilamentID
	if opts.FilamentID != nil {
		newFilamentID = *opts.FilamentID
	}
	newWeight := old.WeightUsed
	if opts.WeightUsed != nil {
		newWeight = *opts.WeightUsed
	}

	if newFilamentID != old.FilamentID || newWeight != old.WeightUsed {
		restored := false
		if old.FilamentID != "" && old.WeightUsed > 0 {
			if err := s.restore(old.FilamentID, old.WeightUsed); err != nil && err != ErrFilamentNotFound {
				return err
			} else if err == nil {
				restored = true
			}
		}
		rollback := func() {
			if restored {
				// Undo the restoration so the inventory matches the
				// still-unchanged record.
				if err := s.Consume(old.FilamentID, old.WeightUsed); err != nil {
					s.log.Warn("print edit rollback failed, inventory may be inconsistent",
						zap.String("print_id", printID),
						zap.String("filament_id", old.FilamentID),
						zap.Int("weight_g", old.WeightUsed),
						zap.Error(err))
				}
			}
		}

		if err := s.Consume(newFilamentID, newWeight); err != nil {
			rollback()
			return err
		}
	}

	if opts.PrintName != nil {
		prints[idx].PrintName = *opts.PrintName
	}
	prints[idx].FilamentID = newFilamentID
	prints[idx].WeightUsed = newWeight
	if opts.Price != nil {
		prints[idx].Price = opts.Price
	}

	if err := s.savePrints(prints); err != nil {
		return err
	}
	s.log.Info("print updated", zap.String("id", printID))
	return nil
}
