package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T { return &v }

func seedStore(t *testing.T) (*Store, []Product) {
	t.Helper()
	s := NewStore()
	stored := s.Append(
		Product{Code: "A1", Description: "Parafuso", Category: "M", Unit: "UN",
			Quantity: decimal.NewFromInt(10), UnitValue: decimal.RequireFromString("1.50")},
		Product{Code: "B2", Description: "Porca", Category: "M", Unit: "UN",
			Quantity: decimal.NewFromInt(4), UnitValue: decimal.RequireFromString("2.25")},
		Product{Code: "", Description: "Anilha", Category: "M", Unit: "UN",
			Quantity: decimal.NewFromInt(1), UnitValue: decimal.Zero},
	)
	return s, stored
}

func TestStoreAppend(t *testing.T) {
	s, stored := seedStore(t)

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	for i, p := range stored {
		if p.ID == "" {
			t.Errorf("stored[%d] has empty ID", i)
		}
	}
	if !stored[2].HasErrors() {
		t.Error("stored[2] should be flagged for its missing code")
	}

	// Duplicate IDs are replaced
	again := s.Append(Product{ID: stored[0].ID, Code: "C3", Description: "Prego", Category: "M", Unit: "UN"})
	if again[0].ID == stored[0].ID {
		t.Errorf("duplicate ID %q kept", again[0].ID)
	}

	all := s.All()
	if all[0].Code != "A1" || all[3].Code != "C3" {
		t.Errorf("insertion order lost: %s..%s", all[0].Code, all[3].Code)
	}
}

func TestStoreStats(t *testing.T) {
	s, _ := seedStore(t)

	st := s.Stats()
	if st.Count != 3 {
		t.Errorf("Count = %d, want 3", st.Count)
	}
	if !st.SumQuantity.Equal(decimal.NewFromInt(15)) {
		t.Errorf("SumQuantity = %s, want 15", st.SumQuantity)
	}
	// 10*1.50 + 4*2.25 + 1*0
	if !st.SumValue.Equal(decimal.RequireFromString("24")) {
		t.Errorf("SumValue = %s, want 24", st.SumValue)
	}
	if st.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", st.ErrorCount)
	}
}

func TestStoreUpdate(t *testing.T) {
	s, stored := seedStore(t)

	p, st, err := s.Update(stored[2].ID, ProductUpdate{Code: ptr("D4")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if p.HasErrors() || p.Suggestion != "" {
		t.Errorf("updated product still invalid: %q / %q", p.Errors, p.Suggestion)
	}
	if st.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0", st.ErrorCount)
	}

	p, _, err = s.Update(stored[0].ID, ProductUpdate{Quantity: ptr(decimal.NewFromInt(-2))})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !p.HasErrors() {
		t.Error("negative quantity should be flagged after update")
	}

	_, _, err = s.Update("missing", ProductUpdate{Code: ptr("x")})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrProductNotFound", err)
	}
}

func TestStoreDelete(t *testing.T) {
	s, stored := seedStore(t)

	st, err := s.Delete(stored[0].ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if st.Count != 2 {
		t.Errorf("Count = %d, want 2", st.Count)
	}

	// Index must follow the shifted positions
	if _, err := s.Get(stored[2].ID); err != nil {
		t.Errorf("Get(after shift) error = %v", err)
	}
	if _, err := s.Delete(stored[0].ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("second Delete() error = %v, want ErrProductNotFound", err)
	}
}

func TestStoreDeleteRemovesFromViews(t *testing.T) {
	s, stored := seedStore(t)
	bad := stored[2]

	st, err := s.Delete(bad.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if st.ErrorCount != 0 || !st.SumValue.Equal(decimal.RequireFromString("24")) {
		t.Errorf("stats = %+v, want no errors and SumValue 24", st)
	}

	if got := s.List(Filter{OnlyErrors: true}); len(got) != 0 {
		t.Errorf("List(OnlyErrors) = %d products, want 0", len(got))
	}
	if got := s.List(Filter{Search: "anilha"}); len(got) != 0 {
		t.Errorf("List(Search) = %d products, want 0", len(got))
	}
	if s.HasErrors() {
		t.Error("HasErrors() = true after deleting the only invalid product")
	}

	pg := s.Page(Filter{}, 1)
	if pg.TotalItems != 2 {
		t.Errorf("Page TotalItems = %d, want 2", pg.TotalItems)
	}
	for _, p := range pg.Items {
		if p.ID == bad.ID {
			t.Errorf("Page still lists deleted product %s", bad.ID)
		}
	}
}

func TestStoreReset(t *testing.T) {
	s, stored := seedStore(t)
	s.Reset()

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if _, err := s.Get(stored[0].ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Get() after reset error = %v", err)
	}
}

func TestStoreList(t *testing.T) {
	s, _ := seedStore(t)

	tests := []struct {
		name string
		f    Filter
		want int
	}{
		{"no filter", Filter{}, 3},
		{"search code", Filter{Search: "b2"}, 1},
		{"search description", Filter{Search: "PORCA"}, 1},
		{"only errors", Filter{OnlyErrors: true}, 1},
		{"search and errors", Filter{Search: "Parafuso", OnlyErrors: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(s.List(tt.f)); got != tt.want {
				t.Errorf("len(List(%+v)) = %d, want %d", tt.f, got, tt.want)
			}
		})
	}
}

func TestStorePage(t *testing.T) {
	s := NewStore()
	for i := range 120 {
		s.Append(Product{Code: fmt.Sprintf("P%03d", i), Description: "x", Category: "M", Unit: "UN"})
	}

	tests := []struct {
		page      int
		wantPage  int
		wantItems int
		wantFirst string
	}{
		{1, 1, 50, "P000"},
		{3, 3, 20, "P100"},
		{0, 1, 50, "P000"},
		{9, 3, 20, "P100"},
	}
	for _, tt := range tests {
		p := s.Page(Filter{}, tt.page)
		if p.Page != tt.wantPage || len(p.Items) != tt.wantItems || p.Items[0].Code != tt.wantFirst {
			t.Errorf("Page(%d) = page %d, %d items, first %s; want %d, %d, %s",
				tt.page, p.Page, len(p.Items), p.Items[0].Code, tt.wantPage, tt.wantItems, tt.wantFirst)
		}
		if p.TotalPages != 3 || p.TotalItems != 120 {
			t.Errorf("Page(%d) totals = %d/%d, want 3/120", tt.page, p.TotalPages, p.TotalItems)
		}
	}

	empty := NewStore().Page(Filter{}, 2)
	if empty.TotalPages != 1 || empty.Page != 1 || len(empty.Items) != 0 {
		t.Errorf("empty Page() = %+v, want page 1 of 1 with no items", empty)
	}
}

func TestStoreRevalidateAll(t *testing.T) {
	s, _ := seedStore(t)

	st := s.RevalidateAll()
	if st.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", st.ErrorCount)
	}
	if !s.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s, stored := seedStore(t)

	got, _ := s.Get(stored[2].ID)
	got.Errors[0] = "tampered"

	again, _ := s.Get(stored[2].ID)
	if again.Errors[0] == "tampered" {
		t.Error("Get() returned an alias of stored errors")
	}
}

func TestStoreConcurrentAppend(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				s.Append(Product{Code: "X", Description: "Y", Category: "M", Unit: "UN"})
			}
		}()
	}
	wg.Wait()

	if s.Len() != 200 {
		t.Errorf("Len() = %d, want 200", s.Len())
	}
}
