package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/export"
	"github.com/Knopersikcuo/printmanager/internal/importer"
	"github.com/Knopersikcuo/printmanager/internal/model"
	"github.com/Knopersikcuo/printmanager/internal/quote"
	"github.com/Knopersikcuo/printmanager/internal/store"
)

// App holds all application state and UI references.
type App struct {
	window fyne.Window
	store  *store.Store
	orch   *quote.Orchestrator
	log    *zap.Logger

	cfg  model.Config
	disp model.DisplayContext
	tabs *container.AppTabs

	// Calculator state
	filaments        []model.Filament
	filamentSelect   *widget.Select
	availableLabel   *widget.Label
	gcodePaths       []string
	gcodeContainer   *fyne.Container
	weightEntry      *widget.Entry
	timeEntry        *widget.Entry
	copiesEntry      *widget.Entry
	postprocessEntry *widget.Entry
	energyLabel      *widget.Label
	resultLabels     map[string]*widget.Label

	selectedFilament *model.Filament
	multicolor       []quote.Selection
	lastBreakdown    *model.PriceBreakdown

	// Inventory and history containers for dynamic refresh
	filamentsContainer *fyne.Container
	brandsContainer    *fyne.Container
	historyContainer   *fyne.Container
}

// NewApp creates the application state over an opened store.
func NewApp(window fyne.Window, st *store.Store, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := st.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &App{
		window:       window,
		store:        st,
		orch:         quote.New(st, log),
		log:          log,
		cfg:          cfg,
		disp:         model.NewDisplayContext(cfg.Preferences.Currency),
		resultLabels: map[string]*widget.Label{},
	}, nil
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Import Filaments from CSV...", func() {
			a.importFilamentsCSV()
		}),
		fyne.NewMenuItem("Import Filaments from Excel...", func() {
			a.importFilamentsExcel()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Spool Labels...", func() {
			a.exportSpoolLabels()
		}),
		fyne.NewMenuItem("Export History to Excel...", func() {
			a.exportHistoryXLSX()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Backup All Data...", func() {
			a.exportBackup()
		}),
		fyne.NewMenuItem("Restore from Backup...", func() {
			a.importBackup()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.window.Close()
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			a.showAboutDialog()
		}),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About PrintManager",
		"PrintManager — 3D Print Shop Manager\n\n"+
			"A cross-platform desktop application for pricing\n"+
			"3D prints and tracking filament inventory.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	calculatorTab := container.NewTabItem("Calculator", a.buildCalculatorPanel())
	inventoryTab := container.NewTabItem("Inventory", a.buildInventoryPanel())
	historyTab := container.NewTabItem("History", a.buildHistoryPanel())
	settingsTab := container.NewTabItem("Settings", a.buildSettingsPanel())

	a.tabs = container.NewAppTabs(calculatorTab, inventoryTab, historyTab, settingsTab)
	a.tabs.SetTabLocation(container.TabLocationTop)

	return a.tabs
}

// reloadConfig re-reads the rate table and display currency after settings
// or inventory changes.
func (a *App) reloadConfig() {
	cfg, err := a.store.LoadConfig()
	if err != nil {
		a.log.Warn("config reload failed", zap.Error(err))
		return
	}
	a.cfg = cfg
	a.disp = model.NewDisplayContext(cfg.Preferences.Currency)
}

// ─── Import / Export ───────────────────────────────────────

func (a *App) importFilamentsCSV() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		result := importer.ImportCSV(reader.URI().Path())
		a.handleImportResult(result)
	}, a.window)
}

func (a *App) importFilamentsExcel() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		result := importer.ImportExcel(reader.URI().Path())
		a.handleImportResult(result)
	}, a.window)
}

func (a *App) handleImportResult(result importer.ImportResult) {
	if len(result.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(result.Errors, "\n")
		dialog.ShowError(fmt.Errorf("%s", errorMsg), a.window)
	}
	if len(result.Warnings) > 0 {
		a.log.Warn("import warnings", zap.Strings("warnings", result.Warnings))
	}

	added := 0
	for _, spool := range result.Spools {
		if _, err := a.store.AddFilament(spool.Color, spool.Brand, spool.Type, spool.WeightG, spool.WithoutSpool); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		added++
	}

	if added > 0 {
		a.reloadConfig()
		a.refreshFilamentsList()
		a.refreshCalculatorFilaments()

		msg := fmt.Sprintf("Successfully imported %d spools.", added)
		if skipped := len(result.Spools) - added + len(result.Errors); skipped > 0 {
			msg += fmt.Sprintf("\n\nHowever, %d rows had errors and were skipped.", skipped)
		}
		dialog.ShowInformation("Import Complete", msg, a.window)
	}
}

func (a *App) exportSpoolLabels() {
	filaments, err := a.store.Filaments()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := export.ExportSpoolLabels(path, filaments); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete",
			fmt.Sprintf("Labels saved to %s", path), a.window)
	}, a.window)
}

func (a *App) exportHistoryXLSX() {
	prints, err := a.store.Prints()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	filaments, err := a.store.Filaments()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := export.ExportHistoryXLSX(path, prints, filaments, a.disp); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete",
			fmt.Sprintf("History saved to %s", path), a.window)
	}, a.window)
}

func (a *App) exportBackup() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := a.store.ExportAllData(path); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Backup Complete",
			fmt.Sprintf("All data saved to %s", path), a.window)
	}, a.window)
}

func (a *App) importBackup() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		dialog.ShowConfirm("Restore from Backup",
			"Restoring replaces all current brands, filaments, history and settings. Continue?",
			func(ok bool) {
				if !ok {
					return
				}
				if _, err := a.store.ImportAllData(path); err != nil {
					dialog.ShowError(err, a.window)
					return
				}
				a.reloadConfig()
				a.refreshFilamentsList()
				a.refreshBrandsList()
				a.refreshHistoryList()
				a.refreshCalculatorFilaments()
				dialog.ShowInformation("Restore Complete", "All data restored.", a.window)
			}, a.window)
	}, a.window)
}

// ─── Entry helpers ─────────────────────────────────────────

func parseFloatEntry(e *widget.Entry) (float64, error) {
	text := strings.ReplaceAll(strings.TrimSpace(e.Text), ",", ".")
	if text == "" {
		return 0, fmt.Errorf("value is empty")
	}
	return strconv.ParseFloat(text, 64)
}

func parseIntEntry(e *widget.Entry) (int, error) {
	text := strings.TrimSpace(e.Text)
	if text == "" {
		return 0, fmt.Errorf("value is empty")
	}
	return strconv.Atoi(text)
}
