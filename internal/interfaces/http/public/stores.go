package public

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/interfaces/http/common"
	"github.com/sngm3741/offer-finder/api/internal/source"
)

const (
	msgMissingCompany = "company id is not specified"
	msgUnknownCompany = "company not found"
	msgLoadFailed     = "failed to load store data"
	msgNoListing      = "company listing is not available"
)

// storeListHandler serves GET /stores?companyId=<id>.
func (h *Handler) storeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeDataset(w, r, strings.TrimSpace(r.URL.Query().Get("companyId")))
	}
}

// companyDatasetHandler serves the static-file layout
// GET /companies/{companyID}/stores.json.
func (h *Handler) companyDatasetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeDataset(w, r, strings.TrimSpace(chi.URLParam(r, "companyID")))
	}
}

func (h *Handler) writeDataset(w http.ResponseWriter, r *http.Request, companyID string) {
	if companyID == "" {
		common.WriteError(h.logger, w, http.StatusBadRequest, msgMissingCompany)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stores, err := h.stores.FetchStores(ctx, companyID)
	if err != nil {
		var payloadErr *source.PayloadError
		switch {
		case errors.Is(err, source.ErrCompanyNotFound):
			common.WriteError(h.logger, w, http.StatusNotFound, msgUnknownCompany)
		case errors.As(err, &payloadErr):
			common.WriteError(h.logger, w, http.StatusBadGateway, payloadErr.Message)
		default:
			h.logger.Error("store dataset fetch failed", zap.String("company_id", companyID), zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, msgLoadFailed)
		}
		return
	}

	h.logger.Debug("serving store dataset", zap.String("company_id", companyID), zap.Int("stores", len(stores)))
	common.WriteJSON(h.logger, w, http.StatusOK, stores)
}

// companyListHandler serves GET /companies when the source can enumerate.
func (h *Handler) companyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lister, ok := h.stores.(source.CompanyLister)
		if !ok {
			common.WriteError(h.logger, w, http.StatusNotImplemented, msgNoListing)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		ids, err := lister.Companies(ctx)
		if err != nil {
			h.logger.Error("company listing failed", zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, msgLoadFailed)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, companyListResponse{Items: ids, Total: len(ids)})
	}
}
