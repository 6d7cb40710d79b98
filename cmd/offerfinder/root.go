package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/bootstrap"
	"github.com/sngm3741/offer-finder/api/internal/catalog"
	"github.com/sngm3741/offer-finder/api/internal/config"
	"github.com/sngm3741/offer-finder/api/internal/geo"
	"github.com/sngm3741/offer-finder/api/internal/logging"
	"github.com/sngm3741/offer-finder/api/internal/prefs"
)

// app carries what the subcommands share. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	configPath string
	companyID  string
	verbose    bool

	logger  *zap.Logger
	cfg     config.Config
	backend *bootstrap.Backend
	kv      *prefs.SQLiteKV
	catalog *catalog.Container
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "offerfinder",
		Short: "Browse a company's stores and offers",
		Long: `offerfinder loads a company's store dataset and prints the same views the
offer screens show: filtered stores, online offers, nearby offers and the
filter facets. Output is JSON.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.companyID, "company", "", "company id whose dataset to load")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "optional YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStoresCmd(a),
		newChannelCmd(a),
		newNearbyCmd(a),
		newFacetsCmd(a),
		newPrefsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := logging.New(a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	backend, err := bootstrap.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	a.backend = backend

	kv, err := prefs.OpenSQLiteKV(cfg.PrefsPath)
	if err != nil {
		return err
	}
	a.kv = kv
	return nil
}

// teardown releases whatever setup acquired. It runs whether or not the
// command failed.
func (a *app) teardown() error {
	if a.catalog != nil {
		a.catalog.Close()
		a.catalog = nil
	}
	var errs []error
	if a.kv != nil {
		errs = append(errs, a.kv.Close())
		a.kv = nil
	}
	if a.backend != nil {
		errs = append(errs, a.backend.Close(context.Background()))
		a.backend = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

// newCatalog builds the container with persisted preferences restored. A
// locator passed in replaces the configured default position.
func (a *app) newCatalog(locator geo.Locator) *catalog.Container {
	if locator == nil && a.cfg.HasDefaultLocation() {
		locator = geo.StaticLocator{Lat: *a.cfg.DefaultLat, Lng: *a.cfg.DefaultLng}
	}

	opts := []catalog.Option{
		catalog.WithLogger(a.logger),
		catalog.WithPreferenceStore(a.kv),
	}
	if locator != nil {
		opts = append(opts, catalog.WithLocator(locator))
	}
	c := catalog.New(a.backend.Source, opts...)

	if err := c.LoadUserPreferences(); err != nil {
		a.logger.Warn("using default preferences", zap.Error(err))
	}
	a.catalog = c
	return c
}

// loadCompany creates the container and loads the --company dataset.
func (a *app) loadCompany(ctx context.Context) (*catalog.Container, error) {
	c := a.newCatalog(nil)
	if err := c.LoadStores(ctx, a.companyID); err != nil {
		return nil, fmt.Errorf("load stores: %w", err)
	}
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
