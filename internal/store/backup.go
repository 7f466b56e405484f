package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// BackupData is the top-level structure for import/export of all
// application data in one JSON file.
type BackupData struct {
	Version   string              `json:"version"`
	CreatedAt string              `json:"created_at"`
	Brands    []model.Brand       `json:"brands"`
	Filaments []model.Filament    `json:"filaments"`
	Prints    []model.PrintRecord `json:"prints"`
	Config    model.Config        `json:"config"`
}

// ExportAllData writes every document the store holds to a single backup
// file at the specified path.
func (s *Store) ExportAllData(exportPath string) error {
	brands, err := s.loadBrands()
	if err != nil {
		return err
	}
	filaments, err := s.loadFilaments()
	if err != nil {
		return err
	}
	prints, err := s.loadPrints()
	if err != nil {
		return err
	}
	cfg, err := s.LoadConfig()
	if err != nil {
		return err
	}

	backup := BackupData{
		Version:   "1.0.0",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Brands:    brands,
		Filaments: filaments,
		Prints:    prints,
		Config:    cfg,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	s.log.Info("data exported", zap.String("path", exportPath))
	return nil
}

// ImportAllData reads a backup file and replaces every document with its
// contents. The caller should reload any cached state afterwards.
func (s *Store) ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}

	if err := s.saveBrands(backup.Brands); err != nil {
		return BackupData{}, err
	}
	if err := s.saveFilaments(backup.Filaments); err != nil {
		return BackupData{}, err
	}
	if err := s.savePrints(backup.Prints); err != nil {
		return BackupData{}, err
	}
	if err := s.SaveConfig(backup.Config); err != nil {
		return BackupData{}, err
	}
	s.log.Info("data imported", zap.String("path", importPath))
	return backup, nil
}
