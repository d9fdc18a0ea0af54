package controllers

import (
	"math"
	"net/http"
	"strings"

	"github.com/hivehoney/aisla-sub000/api/responses"
	"github.com/hivehoney/aisla-sub000/api/validators"
	product "github.com/hivehoney/aisla-sub000/internal/products"
	"github.com/hivehoney/aisla-sub000/pkg/config"
	"github.com/hivehoney/aisla-sub000/pkg/enums"
	pkgerrors "github.com/hivehoney/aisla-sub000/pkg/errors"
	"github.com/hivehoney/aisla-sub000/pkg/logger"
)

const (
	maxQueryLen   = 100
	maxBarcodeLen = 64
)

// SearchProducts serves the product listing. Successful responses are the bare
// envelope; failures are {"error": message} with the configured user-facing text.
func SearchProducts(svc product.Service, cfg config.SearchConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteFlatError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"), cfg.ErrorMessage)
			return
		}

		var req searchRequest
		if err := req.bind(r); err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err, cfg.InvalidParamsMessage)
			return
		}
		params, err := req.toParams()
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err, cfg.InvalidParamsMessage)
			return
		}

		result, err := svc.Search(r.Context(), params)
		if err != nil {
			msg := cfg.ErrorMessage
			if pkgerrors.CodeOf(err) == pkgerrors.CodeValidation {
				msg = cfg.InvalidParamsMessage
			}
			responses.WriteFlatError(r.Context(), logg, w, err, msg)
			return
		}

		w.Header().Set("X-Search-Path", string(result.Path))
		w.Header().Set("X-Search-Strategy", result.Strategy)
		responses.WriteJSON(w, http.StatusOK, result.Payload())
	}
}

type searchRequest struct {
	Query            string `query:"q"`
	Barcode          string `query:"barcode"`
	CategoryID       string `query:"categoryId" validate:"omitempty,uuid|eq=all"`
	StoreID          string `query:"storeId" validate:"omitempty,uuid"`
	InventoryFilter  bool   `query:"inventoryFilter"`
	Page             int    `query:"page"`
	Limit            int    `query:"limit"`
	SortBy           string `query:"sortBy" validate:"max=32"`
	IsPOS            bool   `query:"isPOS"`
	MinPrice         *int64 `query:"minPrice"`
	MaxPrice         *int64 `query:"maxPrice"`
	HasDiscount      bool   `query:"hasDiscount"`
	ExpirationFilter string `query:"expirationFilter" validate:"max=16"`
}

// bind reads the query string. Only non-numeric numbers and malformed ids are rejected;
// everything else degrades to defaults downstream. Overlong q and barcode are cut.
func (s *searchRequest) bind(r *http.Request) error {
	var err error
	if s.Page, err = validators.ParseQueryInt(r, "page", 1, math.MinInt32, math.MaxInt32); err != nil {
		return err
	}
	if s.Limit, err = validators.ParseQueryInt(r, "limit", 0, math.MinInt32, math.MaxInt32); err != nil {
		return err
	}
	if s.MinPrice, err = validators.ParseQueryInt64(r, "minPrice"); err != nil {
		return err
	}
	if s.MaxPrice, err = validators.ParseQueryInt64(r, "maxPrice"); err != nil {
		return err
	}

	s.Query = validators.QueryString(r, "q", maxQueryLen)
	s.Barcode = validators.QueryString(r, "barcode", maxBarcodeLen)
	s.CategoryID = validators.QueryString(r, "categoryId", 0)
	if strings.EqualFold(s.CategoryID, product.CategoryAll) {
		s.CategoryID = product.CategoryAll
	}
	s.StoreID = validators.QueryString(r, "storeId", 0)
	s.SortBy = validators.QueryString(r, "sortBy", 0)
	s.ExpirationFilter = validators.QueryString(r, "expirationFilter", 0)
	s.InventoryFilter = validators.ParseQueryFlag(r, "inventoryFilter")
	s.IsPOS = validators.ParseQueryFlag(r, "isPOS")
	s.HasDiscount = validators.ParseQueryFlag(r, "hasDiscount")

	return validators.ValidateStruct(s)
}

func (s searchRequest) toParams() (product.Params, error) {
	category, err := product.ParseCategory(s.CategoryID)
	if err != nil {
		return product.Params{}, err
	}
	store, err := product.ParseStore(s.StoreID)
	if err != nil {
		return product.Params{}, err
	}
	return product.Params{
		Query:            s.Query,
		Barcode:          s.Barcode,
		CategoryID:       category,
		StoreID:          store,
		InventoryFilter:  s.InventoryFilter,
		MinPrice:         s.MinPrice,
		MaxPrice:         s.MaxPrice,
		HasDiscount:      s.HasDiscount,
		ExpirationFilter: s.ExpirationFilter,
		IsPOS:            s.IsPOS,
		Page:             s.Page,
		Limit:            s.Limit,
		SortBy:           enums.ProductSortOrDefault(s.SortBy),
	}, nil
}
