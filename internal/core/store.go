package core

// store.go holds the in-memory product collection of one session.
//
// Every exported method takes the store mutex for its whole duration, so a
// batch append or a revalidate-all is observed atomically by other callers.
// Products are handed out as copies; callers never alias stored slices.

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is an ordered, in-memory product collection.
type Store struct {
	mu       sync.Mutex
	products []Product
	index    map[string]int // product ID -> position in products
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Append validates and adds products in order, returning the stored copies.
// Products without an ID, or whose ID is already present, get a fresh one.
func (s *Store) Append(products ...Product) []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Product, 0, len(products))
	for _, p := range products {
		p = p.clone()
		if _, dup := s.index[p.ID]; p.ID == "" || dup {
			p.ID = uuid.NewString()
		}
		p = withValidationHint(p)

		s.index[p.ID] = len(s.products)
		s.products = append(s.products, p)
		out = append(out, p.clone())
	}
	return out
}

// Update merges u into the product with the given id and re-validates it.
// Returns the updated product and the new aggregate stats.
func (s *Store) Update(id string, u ProductUpdate) (Product, Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Product{}, Stats{}, fmt.Errorf("update %s: %w", id, ErrProductNotFound)
	}

	p := s.products[i]
	u.apply(&p)
	p = withValidation(p)
	s.products[i] = p

	return p.clone(), s.statsLocked(), nil
}

// Delete removes the product with the given id and returns the new stats.
func (s *Store) Delete(id string) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Stats{}, fmt.Errorf("delete %s: %w", id, ErrProductNotFound)
	}

	s.products = append(s.products[:i], s.products[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.products); j++ {
		s.index[s.products[j].ID] = j
	}

	return s.statsLocked(), nil
}

// Reset removes every product.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = nil
	s.index = make(map[string]int)
}

// Get returns a copy of the product with the given id.
func (s *Store) Get(id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Product{}, fmt.Errorf("get %s: %w", id, ErrProductNotFound)
	}
	return s.products[i].clone(), nil
}

// All returns a copy of every product in insertion order.
func (s *Store) All() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterLocked(Filter{})
}

// Len returns the number of stored products.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// List returns the products matching f in insertion order.
func (s *Store) List(f Filter) []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterLocked(f)
}

// Page returns one page of the products matching f. Pages are 1-based and
// out-of-range page numbers are clamped to the nearest valid page.
func (s *Store) Page(f Filter, page int) Page {
	s.mu.Lock()
	items := s.filterLocked(f)
	s.mu.Unlock()

	total := len(items)
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page = max(1, min(page, totalPages))

	start := (page - 1) * PageSize
	end := min(start+PageSize, total)

	return Page{
		Items:      items[start:end],
		Page:       page,
		PageSize:   PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// Stats recomputes the aggregates from the current collection.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

// RevalidateAll re-runs validation on every product and returns the new stats.
func (s *Store) RevalidateAll() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		s.products[i] = withValidation(s.products[i])
	}
	return s.statsLocked()
}

// HasErrors reports whether any stored product has validation errors.
func (s *Store) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.HasErrors() {
			return true
		}
	}
	return false
}

func (s *Store) filterLocked(f Filter) []Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if f.OnlyErrors && !p.HasErrors() {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Code), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p.clone())
	}
	return out
}

func (s *Store) statsLocked() Stats {
	st := Stats{
		Count:       len(s.products),
		SumQuantity: decimal.Zero,
		SumValue:    decimal.Zero,
	}
	for _, p := range s.products {
		st.SumQuantity = st.SumQuantity.Add(p.Quantity)
		st.SumValue = st.SumValue.Add(p.TotalValue())
		if p.HasErrors() {
			st.ErrorCount++
		}
	}
	return st
}
