package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

const (
	brandsFile    = "brands.json"
	filamentsFile = "filaments.json"
	printsFile    = "prints.json"
	configFile    = "config.json"
)

// Store persists brands, filaments, print history and configuration as JSON
// documents under a data directory. Every method is a whole-call
// read-modify-write against the documents; there is no in-memory cache, so a
// Store can be recreated over the same directory at any time.
type Store struct {
	dir string
	log *zap.Logger
}

// DefaultDir returns the default data directory, ~/.printmanager.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".printmanager"), nil
}

// Open prepares a Store over the given directory, creating it if needed.
// A nil logger disables logging.
func Open(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, log: log}, nil
}

// Dir returns the data directory the store operates on.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readDoc unmarshals a JSON document into v. A missing file leaves v at its
// zero value, so first runs start from empty documents.
func (s *Store) readDoc(name string, v interface{}) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) writeDoc(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return err
	}
	s.log.Debug("document saved", zap.String("file", name))
	return nil
}

type brandsDoc struct {
	Brands []model.Brand `json:"brands"`
}

type filamentsDoc struct {
	Filaments []model.Filament `json:"filaments"`
}

type printsDoc struct {
	Prints []model.PrintRecord `json:"prints"`
}

func (s *Store) loadBrands() ([]model.Brand, error) {
	var doc brandsDoc
	if err := s.readDoc(brandsFile, &doc); err != nil {
		return nil, err
	}
	return doc.Brands, nil
}

func (s *Store) saveBrands(brands []model.Brand) error {
	return s.writeDoc(brandsFile, brandsDoc{Brands: brands})
}

func (s *Store) loadFilaments() ([]model.Filament, error) {
	var doc filamentsDoc
	if err := s.readDoc(filamentsFile, &doc); err != nil {
		return nil, err
	}
	return doc.Filaments, nil
}

func (s *Store) saveFilaments(filaments []model.Filament) error {
	return s.writeDoc(filamentsFile, filamentsDoc{Filaments: filaments})
}

func (s *Store) loadPrints() ([]model.PrintRecord, error) {
	var doc printsDoc
	if err := s.readDoc(printsFile, &doc); err != nil {
		return nil, err
	}
	return doc.Prints, nil
}

func (s *Store) savePrints(prints []model.PrintRecord) error {
	return s.writeDoc(printsFile, printsDoc{Prints: prints})
}
