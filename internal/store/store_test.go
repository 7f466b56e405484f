package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

// ─── Brand Tests ───

func TestAddBrandUppercasesName(t *testing.T) {
	s := newTestStore(t)
	brand, err := s.AddBrand("prusament", 220)
	require.NoError(t, err)
	assert.Equal(t, "PRUSAMENT", brand.Name)
	assert.Equal(t, 220, brand.SpoolWeight)
	assert.NotEmpty(t, brand.ID)
}

func TestAddBrandDuplicateCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddBrand("ESUN", 200)
	require.NoError(t, err)
	_, err = s.AddBrand("eSun", 180)
	assert.ErrorIs(t, err, ErrBrandExists)
}

func TestUpdateBrandRenameCollision(t *testing.T) {
	s := newTestStore(t)
	a, err := s.AddBrand("ESUN", 200)
	require.NoError(t, err)
	_, err = s.AddBrand("DEVIL", 230)
	require.NoError(t, err)

	err = s.UpdateBrand(a.ID, "devil", 200)
	assert.ErrorIs(t, err, ErrBrandExists)

	require.NoError(t, s.UpdateBrand(a.ID, "esun pla+", 210))
	got, err := s.BrandByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "ESUN PLA+", got.Name)
	assert.Equal(t, 210, got.SpoolWeight)
}

func TestDeleteBrandInUse(t *testing.T) {
	s := newTestStore(t)
	brand, err := s.AddBrand("ESUN", 200)
	require.NoError(t, err)
	_, err = s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)

	err = s.DeleteBrand(brand.ID)
	assert.ErrorIs(t, err, ErrBrandInUse)

	// Removing the filament unblocks the delete.
	filaments, err := s.Filaments()
	require.NoError(t, err)
	_, err = s.DeleteFilament(filaments[0].ID)
	require.NoError(t, err)
	assert.NoError(t, s.DeleteBrand(brand.ID))
}

func TestSpoolWeightDefault(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, model.DefaultSpoolWeightG, s.SpoolWeight("UNKNOWN"))

	_, err := s.AddBrand("ESUN", 216)
	require.NoError(t, err)
	assert.Equal(t, 216, s.SpoolWeight("esun"))
}

// ─── Filament Tests ───

func TestAddFilamentGrossWeight(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddBrand("ESUN", 200)
	require.NoError(t, err)

	f, err := s.AddFilament("#00FF00", "esun", "pla", 1200, false)
	require.NoError(t, err)
	assert.Equal(t, "ESUN", f.Brand)
	assert.Equal(t, "PLA", f.Type)
	assert.Equal(t, 1000, f.InitialWeight)
	assert.Equal(t, 1000, f.CurrentWeight)
	assert.Equal(t, 200, f.SpoolWeight)
}

func TestAddFilamentNetWeight(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#0000FF", "ESUN", "PETG", 750, true)
	require.NoError(t, err)
	assert.Equal(t, 750, f.InitialWeight)
	assert.Equal(t, 0, f.SpoolWeight)
}

func TestAddFilamentInvalidNetWeight(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddBrand("ESUN", 200)
	require.NoError(t, err)

	_, err = s.AddFilament("#000000", "ESUN", "PLA", 150, false)
	var invalid *InvalidNetWeightError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 150, invalid.GrossG)
	assert.Equal(t, 200, invalid.SpoolG)
	assert.Equal(t, "ESUN", invalid.Brand)
}

func TestUpdateFilamentShiftsCurrentWeight(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FFFFFF", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	require.NoError(t, s.Consume(f.ID, 300)) // current 700

	// Raising the initial weight by 200 raises the current weight too.
	require.NoError(t, s.UpdateFilament(f.ID, "#FFFFFF", "ESUN", "PLA", 1200, true))
	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200, got.InitialWeight)
	assert.Equal(t, 900, got.CurrentWeight)

	// Dropping it far below consumption floors the current weight at zero.
	require.NoError(t, s.UpdateFilament(f.ID, "#FFFFFF", "ESUN", "PLA", 100, true))
	got, err = s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentWeight)
}

func TestDeleteFilamentUnknown(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.DeleteFilament("no-such-id")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ─── Ledger Tests ───

func TestConsumeInsufficientLeavesFilamentUnchanged(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 100, true)
	require.NoError(t, err)

	err = s.Consume(f.ID, 150)
	var insufficient *InsufficientWeightError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 100, insufficient.AvailableG)
	assert.Equal(t, 150, insufficient.RequestedG)

	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.CurrentWeight)
}

func TestConsumeUnknownFilament(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Consume("no-such-id", 10), ErrFilamentNotFound)
}

func TestRecordPrintConsumesAndAppends(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)

	price := 30.07
	gcode := "benchy.gcode"
	record, err := s.RecordPrint(f.ID, "Benchy", 36, &price, &gcode)
	require.NoError(t, err)
	assert.Equal(t, f.ID, record.FilamentID)
	assert.Equal(t, 36, record.WeightUsed)
	require.NotNil(t, record.Price)
	assert.Equal(t, 30.07, *record.Price)

	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 964, got.CurrentWeight)

	history, err := s.FilamentHistory(f.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Benchy", history[0].PrintName)
}

func TestRecordPrintInsufficientRecordsNothing(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 20, true)
	require.NoError(t, err)

	_, err = s.RecordPrint(f.ID, "Too Big", 50, nil, nil)
	var insufficient *InsufficientWeightError
	require.ErrorAs(t, err, &insufficient)

	prints, err := s.Prints()
	require.NoError(t, err)
	assert.Empty(t, prints)
}

func TestDeletePrintRestoresWeight(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(f.ID, "Benchy", 100, nil, nil)
	require.NoError(t, err)

	ok, err := s.DeletePrint(record.ID, true)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, got.CurrentWeight)

	prints, err := s.Prints()
	require.NoError(t, err)
	assert.Empty(t, prints)
}

func TestDeletePrintWithoutRestore(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(f.ID, "Benchy", 100, nil, nil)
	require.NoError(t, err)

	ok, err := s.DeletePrint(record.ID, false)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 900, got.CurrentWeight)
}

func TestDeletePrintUnknown(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.DeletePrint("no-such-id", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletePrintDeletedFilament(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(f.ID, "Benchy", 100, nil, nil)
	require.NoError(t, err)

	_, err = s.DeleteFilament(f.ID)
	require.NoError(t, err)

	// Restoration targets a gone spool; the delete still succeeds.
	ok, err := s.DeletePrint(record.ID, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRestoreMayExceedInitialWeight(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(f.ID, "Benchy", 400, nil, nil)
	require.NoError(t, err)

	// The spool was re-weighed down after the print.
	require.NoError(t, s.UpdateFilament(f.ID, "#FF0000", "ESUN", "PLA", 500, true))

	ok, err := s.DeletePrint(record.ID, true)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, got.CurrentWeight)
}

// ─── Print Edit Tests ───

func TestUpdatePrintSameFilamentWeightChange(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(f.ID, "Benchy", 100, nil, nil)
	require.NoError(t, err)

	weight := 250
	require.NoError(t, s.UpdatePrint(record.ID, UpdatePrintOptions{WeightUsed: &weight}))

	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 750, got.CurrentWeight)

	updated, err := s.PrintByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, updated.WeightUsed)
}

func TestUpdatePrintWeightUsesRestoredBalance(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 100, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(f.ID, "Benchy", 90, nil, nil)
	require.NoError(t, err)

	// Only 10 g remain, but the edit first gives the 90 g back, so a new
	// weight of 95 g fits.
	weight := 95
	require.NoError(t, s.UpdatePrint(record.ID, UpdatePrintOptions{WeightUsed: &weight}))

	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.CurrentWeight)
}

func TestUpdatePrintRollbackOnInsufficientWeight(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 100, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(f.ID, "Benchy", 90, nil, nil)
	require.NoError(t, err)

	weight := 150
	err = s.UpdatePrint(record.ID, UpdatePrintOptions{WeightUsed: &weight})
	var insufficient *InsufficientWeightError
	require.ErrorAs(t, err, &insufficient)

	// The failed edit left both the record and the inventory untouched.
	got, err := s.FilamentByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.CurrentWeight)
	unchanged, err := s.PrintByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, unchanged.WeightUsed)
}

func TestUpdatePrintRollbackOnOtherFilamentInsufficient(t *testing.T) {
	s := newTestStore(t)
	a, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	b, err := s.AddFilament("#00FF00", "DEVIL", "PETG", 50, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(a.ID, "Benchy", 100, nil, nil)
	require.NoError(t, err)

	// Moving the record to a spool that cannot cover the grams fails and
	// must leave both spools and the record as they were.
	err = s.UpdatePrint(record.ID, UpdatePrintOptions{FilamentID: &b.ID})
	var insufficient *InsufficientWeightError
	require.ErrorAs(t, err, &insufficient)

	gotA, err := s.FilamentByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 900, gotA.CurrentWeight)
	gotB, err := s.FilamentByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, gotB.CurrentWeight)
	unchanged, err := s.PrintByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, unchanged.FilamentID)
	assert.Equal(t, 100, unchanged.WeightUsed)
}

func TestUpdatePrintMoveToOtherFilament(t *testing.T) {
	s := newTestStore(t)
	a, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	b, err := s.AddFilament("#00FF00", "DEVIL", "PETG", 500, true)
	require.NoError(t, err)
	record, err := s.RecordPrint(a.ID, "Benchy", 100, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.UpdatePrint(record.ID, UpdatePrintOptions{FilamentID: &b.ID}))

	gotA, err := s.FilamentByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000, gotA.CurrentWeight)
	gotB, err := s.FilamentByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 400, gotB.CurrentWeight)
}

func TestUpdatePrintUnknown(t *testing.T) {
	s := newTestStore(t)
	name := "x"
	assert.ErrorIs(t, s.UpdatePrint("no-such-id", UpdatePrintOptions{PrintName: &name}), ErrPrintNotFound)
}

func TestPrintsSortedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	f, err := s.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)

	first, err := s.RecordPrint(f.ID, "First", 10, nil, nil)
	require.NoError(t, err)
	second, err := s.RecordPrint(f.ID, "Second", 10, nil, nil)
	require.NoError(t, err)

	prints, err := s.Prints()
	require.NoError(t, err)
	require.Len(t, prints, 2)
	// Same-second timestamps keep insertion order stable, newest first
	// otherwise.
	if prints[0].Timestamp != prints[1].Timestamp {
		assert.Equal(t, second.ID, prints[0].ID)
		assert.Equal(t, first.ID, prints[1].ID)
	}
}

// ─── Config Tests ───

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	s := newTestStore(t)
	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 23.0, cfg.Pricing.VATPercent)
	rates, ok := cfg.Material("PLA")
	require.True(t, ok)
	assert.Equal(t, 5.0, rates.HourlyRate)
}

func TestLoadConfigCorruptFileYieldsDefaults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, writeRaw(s, configFile, "{not json"))
	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Pricing.MarginPercent)
}

func TestLoadConfigMigratesLegacyFlatShape(t *testing.T) {
	s := newTestStore(t)
	legacy := `{
	  "materials": {
	    "PLA": {"hourly_rate": 4.5, "price_per_kg": 80.0}
	  }
	}`
	require.NoError(t, writeRaw(s, configFile, legacy))

	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	rates, ok := cfg.Material("PLA")
	require.True(t, ok)
	assert.Equal(t, 4.5, rates.HourlyRate)
	assert.Empty(t, rates.Brands, "flat per-kg price is dropped in migration")

	// The migrated shape was written back: reloading keeps it.
	cfg2, err := s.LoadConfig()
	require.NoError(t, err)
	rates2, _ := cfg2.Material("PLA")
	assert.Equal(t, 4.5, rates2.HourlyRate)
}

func TestLoadConfigSyncsBrands(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddBrand("ESUN", 200)
	require.NoError(t, err)

	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	rates, ok := cfg.Material("PLA")
	require.True(t, ok)
	price, _, ok := rates.BrandPricePerKg("ESUN")
	require.True(t, ok, "inventory brand should appear in every material")
	assert.Equal(t, 0.0, price)

	// Price it, save, then delete the brand: the entry disappears on reload.
	rates.Brands["ESUN"] = model.BrandPrice{PricePerKg: 85.0}
	cfg.Materials["PLA"] = rates
	require.NoError(t, s.SaveConfig(cfg))

	brands, err := s.Brands()
	require.NoError(t, err)
	require.NoError(t, s.DeleteBrand(brands[0].ID))

	cfg, err = s.LoadConfig()
	require.NoError(t, err)
	rates, _ = cfg.Material("PLA")
	_, _, ok = rates.BrandPricePerKg("ESUN")
	assert.False(t, ok)
}

func TestSaveConfigRoundtrip(t *testing.T) {
	s := newTestStore(t)
	cfg := model.DefaultConfig()
	cfg.Pricing.MinPrice = 50.0
	cfg.Preferences.Currency = "EUR"
	require.NoError(t, s.SaveConfig(cfg))

	got, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Pricing.MinPrice)
	assert.Equal(t, "EUR", got.Preferences.Currency)
}

// ─── Backup Tests ───

func TestBackupRoundtrip(t *testing.T) {
	src := newTestStore(t)
	_, err := src.AddBrand("ESUN", 200)
	require.NoError(t, err)
	f, err := src.AddFilament("#FF0000", "ESUN", "PLA", 1000, true)
	require.NoError(t, err)
	_, err = src.RecordPrint(f.ID, "Benchy", 36, nil, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, src.ExportAllData(path))

	dst := newTestStore(t)
	backup, err := dst.ImportAllData(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", backup.Version)

	filaments, err := dst.Filaments()
	require.NoError(t, err)
	require.Len(t, filaments, 1)
	assert.Equal(t, 964, filaments[0].CurrentWeight)

	prints, err := dst.Prints()
	require.NoError(t, err)
	require.Len(t, prints, 1)
	assert.Equal(t, "Benchy", prints[0].PrintName)
}

func TestImportAllDataRejectsMissingVersion(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, writeRawPath(path, `{"brands": []}`))
	_, err := s.ImportAllData(path)
	require.Error(t, err)
}

func writeRaw(s *Store, name, content string) error {
	return writeRawPath(s.path(name), content)
}

func writeRawPath(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
