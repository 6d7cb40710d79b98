// Package export writes offer lists to spreadsheets.
package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
)

// DefaultSheet is used when no sheet name is given.
const DefaultSheet = "Offers"

var offerHeaders = []interface{}{
	"Store ID", "Store", "Address", "Phone", "Category", "Opening Hours",
	"Lat", "Lng", "Offer", "Description", "Type",
	"Employee Offer", "Community Recommended", "Featured", "Distance (km)",
}

// WriteOffersXLSX writes one row per offer view to a new workbook at path.
// Missing coordinates and distances are left blank.
func WriteOffersXLSX(path, sheetName string, offers []domain.OfferView) error {
	f, err := buildWorkbook(sheetName, offers)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func buildWorkbook(sheetName string, offers []domain.OfferView) (*excelize.File, error) {
	if sheetName == "" {
		sheetName = DefaultSheet
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := sw.SetRow("A1", offerHeaders); err != nil {
		f.Close()
		return nil, err
	}

	for i, o := range offers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := sw.SetRow(cell, offerRow(o)); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	return f, nil
}

func offerRow(o domain.OfferView) []interface{} {
	return []interface{}{
		string(o.Store.ID), o.Store.Name, o.Store.Address, o.Store.Phone, o.Store.Category, o.Store.OpeningHours,
		optional(o.Store.Lat), optional(o.Store.Lng),
		o.Title, o.Description, o.Type,
		bool(o.IsEmployeeOffer), bool(o.CommunityRecommended), bool(o.Featured),
		optional(o.Distance),
	}
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
