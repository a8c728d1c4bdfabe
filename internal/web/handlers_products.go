package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/stockfile/internal/core"
)

// productsResponse is one page of products plus the collection aggregates.
type productsResponse struct {
	core.Page
	Stats core.Stats `json:"stats"`
}

// productResponse is returned by mutations that touch a single product.
type productResponse struct {
	Product core.Product `json:"product"`
	Stats   core.Stats   `json:"stats"`
}

// productPatch is the PATCH body. Numbers may arrive as JSON numbers or as
// locale strings ("19,99") and go through core.ParseNumber.
type productPatch struct {
	Code        *string `json:"code"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Unit        *string `json:"unit"`
	Quantity    any     `json:"quantity"`
	UnitValue   any     `json:"unitValue"`
}

// update converts the patch into a core.ProductUpdate. The category is kept
// as typed so that an invalid code is reported by validation.
func (p productPatch) update() core.ProductUpdate {
	u := core.ProductUpdate{
		Code:        p.Code,
		Description: p.Description,
		Unit:        p.Unit,
	}
	if p.Category != nil {
		c := core.Category(strings.ToUpper(strings.TrimSpace(*p.Category)))
		u.Category = &c
	}
	if p.Quantity != nil {
		q := core.ParseNumber(p.Quantity)
		u.Quantity = &q
	}
	if p.UnitValue != nil {
		v := core.ParseNumber(p.UnitValue)
		u.UnitValue = &v
	}
	return u
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseBoolParam treats a missing or unparseable value as false.
func parseBoolParam(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// store resolves the session's store or writes the error response.
func (s *Server) store(w http.ResponseWriter, r *http.Request) (*core.Store, bool) {
	st, err := s.service.Store(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return nil, false
	}
	return st, true
}

// handleListProducts returns one filtered page of products.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}

	f := core.Filter{
		Search:     r.URL.Query().Get("search"),
		OnlyErrors: parseBoolParam(r, "only_errors"),
	}
	writeJSON(w, http.StatusOK, productsResponse{
		Page:  st.Page(f, parseIntParam(r, "page", 1)),
		Stats: st.Stats(),
	})
}

// handleUpdateProduct applies a partial edit and returns the re-validated
// product together with the new stats.
func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}

	var patch productPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		err = fmt.Errorf("%w: %v", errBadRequest, err)
		respondError(w, r, err, statusFor(err))
		return
	}

	id := chi.URLParam(r, "productID")
	u := patch.update()
	if u.Empty() {
		p, err := st.Get(id)
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
		writeJSON(w, http.StatusOK, productResponse{Product: p, Stats: st.Stats()})
		return
	}

	p, stats, err := st.Update(id, u)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, productResponse{Product: p, Stats: stats})
}

// handleDeleteProduct removes one product.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}

	stats, err := st.Delete(chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.Stats{"stats": stats})
}

// handleRevalidate re-runs validation over the whole collection.
func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.Stats{"stats": st.RevalidateAll()})
}

// handleReset empties the session's product list.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	st.Reset()
	writeJSON(w, http.StatusOK, map[string]core.Stats{"stats": st.Stats()})
}

// handleStats returns the aggregates; HTMX requests get the badge fragment.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}

	stats := st.Stats()
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := statsBadge(stats).Render(r.Context(), w); err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// categoryResponse is one entry of the category picker.
type categoryResponse struct {
	Code  core.Category `json:"code"`
	Label string        `json:"label"`
}

// handleCategories lists the valid categories with their display labels.
// HTMX requests get <option> elements with ?selected= preselected.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		selected := core.ParseCategory(r.URL.Query().Get("selected"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := categoryOptions(selected).Render(r.Context(), w); err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
		}
		return
	}

	out := make([]categoryResponse, 0, len(core.Categories))
	for _, c := range core.Categories {
		out = append(out, categoryResponse{Code: c, Label: c.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}
