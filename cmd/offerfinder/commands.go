package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
	"github.com/sngm3741/offer-finder/api/internal/export"
	"github.com/sngm3741/offer-finder/api/internal/geo"
)

type storeListOutput struct {
	Count  int            `json:"count"`
	Stores []domain.Store `json:"stores"`
}

type offerListOutput struct {
	Count  int                `json:"count"`
	Offers []domain.OfferView `json:"offers"`
}

type facetsOutput struct {
	Regions           []string `json:"regions"`
	Categories        []string `json:"categories"`
	OfferTypes        []string `json:"offerTypes"`
	ChannelCategories []string `json:"channelCategories"`
}

// offerGates are the flags shared by channel and nearby.
type offerGates struct {
	employeeOnly bool
	community    bool
}

func (g *offerGates) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&g.employeeOnly, "employee-only", false, "only employee offers")
	cmd.Flags().BoolVar(&g.community, "community", false, "only community recommended or featured offers")
}

func (g offerGates) patch() domain.FilterPatch {
	return domain.FilterPatch{
		EmployeeOnly:         domain.BoolPtr(g.employeeOnly),
		CommunityRecommended: domain.BoolPtr(g.community),
	}
}

func newStoresCmd(a *app) *cobra.Command {
	var filters domain.Filters
	var query string

	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List stores matching the filters and search query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCompany(cmd.Context())
			if err != nil {
				return err
			}
			c.SetFilters(domain.FilterPatch{
				Region:    domain.StringPtr(filters.Region),
				Category:  domain.StringPtr(filters.Category),
				OfferType: domain.StringPtr(filters.OfferType),
			})
			c.SetSearchQuery(query)

			stores := c.FilteredStores()
			return printJSON(cmd.OutOrStdout(), storeListOutput{Count: len(stores), Stores: stores})
		},
	}
	cmd.Flags().StringVar(&filters.Region, "region", "", "exact region")
	cmd.Flags().StringVar(&filters.Category, "category", "", "exact category")
	cmd.Flags().StringVar(&filters.OfferType, "offer-type", "", "stores with at least one offer of this type")
	cmd.Flags().StringVarP(&query, "query", "q", "", "fuzzy search over names, addresses, categories and offers")
	return cmd
}

func newChannelCmd(a *app) *cobra.Command {
	var gates offerGates
	var category string

	cmd := &cobra.Command{
		Use:   "channel",
		Short: "List offers of online stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCompany(cmd.Context())
			if err != nil {
				return err
			}
			patch := gates.patch()
			patch.Category = domain.StringPtr(category)
			c.SetFilters(patch)

			offers := c.ChannelOffers()
			return printJSON(cmd.OutOrStdout(), offerListOutput{Count: len(offers), Offers: offers})
		},
	}
	gates.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "exact store category")
	return cmd
}

func newNearbyCmd(a *app) *cobra.Command {
	var gates offerGates
	var lat, lng float64
	var all bool
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List offers of stores within 5 km, nearest first",
		Long: `Lists offers of stores within 5 km of the user, nearest first. The position
comes from --lat/--lng, or from DEFAULT_LAT/DEFAULT_LNG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
			if latSet != lngSet {
				return errors.New("--lat and --lng must be given together")
			}
			var locator geo.Locator
			if latSet {
				locator = geo.StaticLocator{Lat: lat, Lng: lng}
			}

			c := a.newCatalog(locator)
			c.SetFilters(gates.patch())

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				if err := c.LoadStores(ctx, a.companyID); err != nil {
					return fmt.Errorf("load stores: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				loc, err := c.AcquireLocation(ctx)
				if err != nil {
					return locationError(err)
				}
				a.logger.Debug("user location acquired", zap.Float64("lat", loc.Lat), zap.Float64("lng", loc.Lng))
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			offers := c.NearbyPhysicalOffers()
			if all {
				offers = c.NearbyOffers()
			}
			if xlsxPath != "" {
				if err := export.WriteOffersXLSX(xlsxPath, "Nearby", offers); err != nil {
					return fmt.Errorf("export %s: %w", xlsxPath, err)
				}
				a.logger.Info("nearby offers exported", zap.String("path", xlsxPath), zap.Int("offers", len(offers)))
			}
			return printJSON(cmd.OutOrStdout(), offerListOutput{Count: len(offers), Offers: offers})
		},
	}
	gates.register(cmd)
	cmd.Flags().Float64Var(&lat, "lat", 0, "user latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "user longitude")
	cmd.Flags().BoolVar(&all, "all", false, "ignore the employee/community flags")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the offers to this spreadsheet")
	return cmd
}

func locationError(err error) error {
	if errors.Is(err, geo.ErrUnsupported) {
		return fmt.Errorf("%w: pass --lat/--lng or set DEFAULT_LAT/DEFAULT_LNG", err)
	}
	var posErr *geo.PositionError
	if errors.As(err, &posErr) {
		return fmt.Errorf("%s (%s)", posErr.Error(), posErr.Code)
	}
	return err
}

func newFacetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the regions, categories and offer types of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadCompany(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), facetsOutput{
				Regions:           c.AvailableRegions(),
				Categories:        c.AvailableCategories(),
				OfferTypes:        c.AvailableOfferTypes(),
				ChannelCategories: c.ChannelOfferCategories(),
			})
		},
	}
}

func newPrefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the saved user preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.newCatalog(nil)
			return printJSON(cmd.OutOrStdout(), c.Snapshot().Preferences)
		},
	}

	var categories, offerTypes, regions []string
	var budget string
	set := &cobra.Command{
		Use:   "set",
		Short: "Merge the given fields into the saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var patch domain.PreferencesPatch
			flags := cmd.Flags()
			if flags.Changed("categories") {
				patch.FavoriteCategories = domain.StringsPtr(categories...)
			}
			if flags.Changed("offer-types") {
				patch.FavoriteOfferTypes = domain.StringsPtr(offerTypes...)
			}
			if flags.Changed("regions") {
				patch.FrequentRegions = domain.StringsPtr(regions...)
			}
			if flags.Changed("budget") {
				patch.BudgetRange = domain.StringPtr(budget)
			}

			c := a.newCatalog(nil)
			if err := c.SetUserPreferences(patch); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.Snapshot().Preferences)
		},
	}
	set.Flags().StringSliceVar(&categories, "categories", nil, "favorite categories")
	set.Flags().StringSliceVar(&offerTypes, "offer-types", nil, "favorite offer types")
	set.Flags().StringSliceVar(&regions, "regions", nil, "frequent regions")
	set.Flags().StringVar(&budget, "budget", "", "budget range")

	cmd.AddCommand(show, set)
	return cmd
}
