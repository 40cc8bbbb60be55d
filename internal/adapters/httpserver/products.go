package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/phenrril/headstock/internal/domain"
	"github.com/phenrril/headstock/internal/usecase"
)

// productRequest is the body of POST /products and PATCH /products/{id}.
// Images and archive arrive in several shapes and are normalized here.
type productRequest struct {
	Name               *string         `json:"name" validate:"omitempty,max=180"`
	Images             json.RawMessage `json:"images"`
	OlxURL             *string         `json:"olxUrl" validate:"omitempty,max=500"`
	PinduoduoURL       *string         `json:"pinduoduoUrl" validate:"omitempty,max=500"`
	PriceCNY           *float64        `json:"priceCNY" validate:"omitempty,gte=0,lte=1000000000"`
	PriceUAH           *float64        `json:"priceInUA" validate:"omitempty,gte=0,lte=1000000000"`
	ShippingUAH        *float64        `json:"shippingUA" validate:"omitempty,gte=0,lte=1000000000"`
	ShippingCNY        *float64        `json:"shippingCNY" validate:"omitempty,gte=0,lte=1000000000"`
	ManagementUAH      *float64        `json:"managementUAH" validate:"omitempty,gte=0,lte=1000000000"`
	Weight             *float64        `json:"weight" validate:"omitempty,gte=0,lte=100000"`
	Chip               *string         `json:"chip" validate:"omitempty,max=140"`
	Equipment          *string         `json:"equipment" validate:"omitempty,max=255"`
	MicrophoneQuality  *string         `json:"microphoneQuality" validate:"omitempty,max=140"`
	PurchasedCount     *int            `json:"purchasedCount" validate:"omitempty,gte=0,lte=1000000"`
	SellsCount         *int            `json:"sellsCount" validate:"omitempty,gte=0,lte=1000000"`
	WorkModalWindowIOS *bool           `json:"workModalWindowIOS"`
	SoundReducer       *bool           `json:"soundReducer"`
	SensesOfEar        *bool           `json:"sensesOfEar"`
	WirelessCharger    *bool           `json:"wirelessCharger"`
	Gyroscope          *bool           `json:"gyroscope"`
	Archive            json.RawMessage `json:"archive"`

	ledgerRequest
}

type ledgerRequest struct {
	Incomes       []domain.IncomeLine  `json:"incomes" validate:"omitempty,dive"`
	Expenses      []domain.ExpenseLine `json:"expenses" validate:"omitempty,dive"`
	AutoCalculate bool                 `json:"autoCalculate"`
	ExchangeRate  *float64             `json:"exchangeRate" validate:"omitempty,gte=0,lte=1000000"`
}

func (lr ledgerRequest) input() usecase.LedgerInput {
	return usecase.LedgerInput{
		Incomes:       lr.Incomes,
		Expenses:      lr.Expenses,
		AutoCalculate: lr.AutoCalculate,
		ExchangeRate:  lr.ExchangeRate,
	}
}

func present(raw json.RawMessage) bool { return len(bytes.TrimSpace(raw)) > 0 }

func imagesShape(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && (raw[0] == '"' || raw[0] == '[')
}

func (pr productRequest) patch() (domain.ProductPatch, error) {
	p := domain.ProductPatch{
		Name:               pr.Name,
		OlxURL:             pr.OlxURL,
		PinduoduoURL:       pr.PinduoduoURL,
		PriceCNY:           pr.PriceCNY,
		PriceUAH:           pr.PriceUAH,
		ShippingUAH:        pr.ShippingUAH,
		ManagementUAH:      pr.ManagementUAH,
		Weight:             pr.Weight,
		Chip:               pr.Chip,
		Equipment:          pr.Equipment,
		MicrophoneQuality:  pr.MicrophoneQuality,
		PurchasedCount:     pr.PurchasedCount,
		SellsCount:         pr.SellsCount,
		WorkModalWindowIOS: pr.WorkModalWindowIOS,
		SoundReducer:       pr.SoundReducer,
		SensesOfEar:        pr.SensesOfEar,
		WirelessCharger:    pr.WirelessCharger,
		Gyroscope:          pr.Gyroscope,
	}
	// older clients sent the shipping cost as shippingCNY
	if p.ShippingUAH == nil && pr.ShippingCNY != nil {
		p.ShippingUAH = pr.ShippingCNY
	}
	// only a URL or a list replaces images; other shapes leave them as they are
	if imagesShape(pr.Images) {
		var v any
		if err := json.Unmarshal(pr.Images, &v); err != nil {
			return p, domain.BadRequestf("invalid images: %v", err)
		}
		imgs := domain.NormalizeImages(v)
		p.Images = &imgs
	}
	if present(pr.Archive) {
		var v any
		if err := json.Unmarshal(pr.Archive, &v); err != nil {
			return p, domain.BadRequestf("invalid archive value")
		}
		b, err := domain.NormalizeArchive(v)
		if err != nil {
			return p, err
		}
		p.Archived = &b
	}
	return p, nil
}

type productView struct {
	domain.Product
	Figures domain.Figures `json:"figures"`
}

func (s *Server) view(r *http.Request, p *domain.Product, rate *float64) productView {
	v := productView{Product: *p, Figures: s.products.Figures(r.Context(), p, rate)}
	if v.Images == nil {
		v.Images = []string{}
	}
	if v.Incomes == nil {
		v.Incomes = []domain.Income{}
	}
	if v.Expenses == nil {
		v.Expenses = []domain.Expense{}
	}
	return v
}

// archivedFilter reads ?archived=true|false|all.
func archivedFilter(r *http.Request) (domain.ProductFilter, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("archived"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return domain.ProductFilter{}, nil
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return domain.ProductFilter{}, domain.BadRequestf("invalid archived filter %q", raw)
	}
	return domain.ProductFilter{Archived: &b}, nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := archivedFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rate, _ := s.products.Rate(r.Context())
	out := make([]productView, 0, len(list))
	for i := range list {
		out = append(out, s.view(r, &list[i], &rate))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.products.Create(r.Context(), usecase.CreateProductInput{Product: patch, Ledger: req.input()})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(r, p, req.ExchangeRate))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(r, p, nil))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req productRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.products.Update(r.Context(), id, usecase.UpdateProductInput{Patch: patch, Ledger: req.input()})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(r, p, req.ExchangeRate))
}

func (s *Server) syncLedger(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ledgerRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.products.SyncLedger(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(r, p, req.ExchangeRate))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Product deleted"})
}

// deleteProductByBody serves the older DELETE /products {id} form.
func (s *Server) deleteProductByBody(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id" validate:"required,uuid"`
	}
	if err := s.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.products.Delete(r.Context(), uuid.MustParse(req.ID)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Product deleted"})
}

func (s *Server) productFigures(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var override *float64
	if raw := strings.TrimSpace(r.URL.Query().Get("rate")); raw != "" {
		v, err := cast.ToFloat64E(raw)
		if err != nil || v < 0 || v > domain.MaxRate {
			writeError(w, r, domain.BadRequestf("invalid rate %q", raw))
			return
		}
		override = &v
	}
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := s.products.CheckedFigures(r.Context(), p, override)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) bulkArchive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs     json.RawMessage `json:"ids"`
		Archive json.RawMessage `json:"archive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.BadRequestf("Invalid ids array"))
		return
	}
	var raw []string
	if !present(req.IDs) || json.Unmarshal(req.IDs, &raw) != nil || len(raw) == 0 {
		writeError(w, r, domain.BadRequestf("Invalid ids array"))
		return
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			writeError(w, r, domain.BadRequestf("Invalid ids array"))
			return
		}
		ids = append(ids, id)
	}
	if !present(req.Archive) {
		writeError(w, r, domain.BadRequestf("archive is required"))
		return
	}
	var archive any
	if err := json.Unmarshal(req.Archive, &archive); err != nil {
		writeError(w, r, domain.BadRequestf("invalid archive value"))
		return
	}
	archived, err := domain.NormalizeArchive(archive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.products.BulkArchive(r.Context(), ids, archived)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": n})
}

func (s *Server) importListingImages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		URL string `json:"url" validate:"omitempty,url"`
		Max int    `json:"max" validate:"omitempty,gte=1,lte=20"`
	}
	if r.ContentLength != 0 {
		if err := s.decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	p, err := s.products.ImportListingImages(r.Context(), id, req.URL, req.Max)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(r, p, nil))
}
