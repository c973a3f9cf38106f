package kiosk

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/poslite/kiosk/internal/models"
)

func burger() models.MenuItem {
	price := decimal.NullDecimal{Decimal: decimal.NewFromInt(8), Valid: true}
	rate := decimal.NullDecimal{Decimal: decimal.NewFromInt(8), Valid: true}
	return models.MenuItem{ID: "burger", Name: "Burger", Price: price, TaxRate: rate, TaxStatus: models.TaxStatusTaxable}
}

func cheese() models.MenuItem {
	price := decimal.NullDecimal{Decimal: decimal.NewFromFloat(0.5), Valid: true}
	return models.MenuItem{ID: "cheese", Name: "Extra Cheese", Price: price, IsModifier: true}
}

func TestAddToCartMergesBareLines(t *testing.T) {
	s := NewState(models.ModeActive)

	s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})
	s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})

	if len(s.Cart) != 1 {
		t.Fatalf("expected 1 line after merging adds, got %d", len(s.Cart))
	}
	if s.Cart[0].Quantity != 2 {
		t.Errorf("expected merged quantity 2, got %d", s.Cart[0].Quantity)
	}
}

func TestAddToCartNeverMergesModifiedLines(t *testing.T) {
	s := NewState(models.ModeActive)

	s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})

	modified := NewLine(burger(), burger().TaxRate)
	modified.Modifiers = []models.CartLine{NewModifierLine(cheese(), modified.ID)}
	s = Reduce(s, AddToCart{Line: modified})

	if len(s.Cart) != 2 {
		t.Fatalf("expected 2 separate lines, got %d", len(s.Cart))
	}
	if s.Cart[0].Quantity != 1 || s.Cart[1].Quantity != 1 {
		t.Error("neither line should have merged")
	}

	// The bare line also must not merge into the modified one.
	s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})
	if len(s.Cart) != 2 {
		t.Fatalf("bare add should merge into the bare line only, got %d lines", len(s.Cart))
	}
	if s.Cart[0].Quantity != 2 {
		t.Errorf("bare line quantity = %d, want 2", s.Cart[0].Quantity)
	}
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		wantLines int
		wantQty   int
	}{
		{name: "positive quantity sets it", qty: 5, wantLines: 1, wantQty: 5},
		{name: "zero removes the line", qty: 0, wantLines: 0},
		{name: "negative removes the line", qty: -5, wantLines: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(models.ModeActive)
			s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})
			id := s.Cart[0].ID

			s = Reduce(s, UpdateQuantity{LineID: id, Quantity: tt.qty})

			if len(s.Cart) != tt.wantLines {
				t.Fatalf("got %d lines, want %d", len(s.Cart), tt.wantLines)
			}
			if tt.wantLines > 0 && s.Cart[0].Quantity != tt.wantQty {
				t.Errorf("quantity = %d, want %d", s.Cart[0].Quantity, tt.wantQty)
			}
		})
	}
}

func TestRemoveLine(t *testing.T) {
	s := NewState(models.ModeActive)
	s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})

	withMods := NewLine(burger(), burger().TaxRate)
	withMods.Modifiers = []models.CartLine{NewModifierLine(cheese(), withMods.ID)}
	s = Reduce(s, AddToCart{Line: withMods})

	s = Reduce(s, RemoveLine{LineID: withMods.ID})

	if len(s.Cart) != 1 {
		t.Fatalf("got %d lines, want 1", len(s.Cart))
	}
	if s.Cart[0].ID == withMods.ID {
		t.Error("wrong line removed")
	}
}

func TestAddAndRemoveModifier(t *testing.T) {
	s := NewState(models.ModeActive)
	s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})
	parentID := s.Cart[0].ID

	mod := NewModifierLine(cheese(), parentID)
	s = Reduce(s, AddModifier{ParentLineID: parentID, Modifier: mod})

	if len(s.Cart[0].Modifiers) != 1 {
		t.Fatalf("got %d modifiers, want 1", len(s.Cart[0].Modifiers))
	}
	if s.Cart[0].Modifiers[0].ParentLineID != parentID {
		t.Error("modifier parent id not set")
	}

	s = Reduce(s, RemoveModifier{ParentLineID: parentID, ModifierID: mod.ID})
	if len(s.Cart[0].Modifiers) != 0 {
		t.Errorf("got %d modifiers after removal, want 0", len(s.Cart[0].Modifiers))
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := NewState(models.ModeActive)
	s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})

	before := s
	_ = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})

	if before.Cart[0].Quantity != 1 {
		t.Errorf("prior state mutated: quantity = %d, want 1", before.Cart[0].Quantity)
	}
}

func TestSetLoyaltyPrefillsName(t *testing.T) {
	s := NewState(models.ModeActive)
	profile := &models.LoyaltyProfile{ID: "42", FirstName: "Dana", LastName: "Lee", Phone: "5550001234"}

	s = Reduce(s, SetLoyalty{Profile: profile})

	if s.CustomerType != models.CustomerMember {
		t.Errorf("customer type = %q, want member", s.CustomerType)
	}
	if s.CustomerName != "Dana Lee" {
		t.Errorf("customer name = %q, want pre-filled Dana Lee", s.CustomerName)
	}

	// Name entry is always overridable.
	s = Reduce(s, SetCustomerName{Name: "D"})
	if s.CustomerName != "D" {
		t.Errorf("customer name = %q, want overridden D", s.CustomerName)
	}

	// An already-entered name is not clobbered by a later lookup.
	s2 := NewState(models.ModeActive)
	s2 = Reduce(s2, SetCustomerName{Name: "Walk In"})
	s2 = Reduce(s2, SetLoyalty{Profile: profile})
	if s2.CustomerName != "Walk In" {
		t.Errorf("customer name = %q, want Walk In kept", s2.CustomerName)
	}
}

func TestResetOrder(t *testing.T) {
	s := NewState(models.ModeActive)
	s = Reduce(s, AddToCart{Line: NewLine(burger(), burger().TaxRate)})
	s = Reduce(s, SetCustomerType{Type: models.CustomerGuest})
	s = Reduce(s, SetCustomerName{Name: "Sam"})
	s = Reduce(s, SetDepartment{DepartmentID: "drinks"})
	s = Reduce(s, SetOnline{Online: true})

	s = Reduce(s, ResetOrder{})

	if len(s.Cart) != 0 {
		t.Error("cart not cleared")
	}
	if s.CustomerType != models.CustomerUnset || s.Loyalty != nil || s.CustomerName != "" {
		t.Error("customer identity not cleared")
	}
	if s.SelectedDepartmentID != "" {
		t.Error("department filter not cleared")
	}
	// Connectivity and mode survive a reset.
	if !s.Online {
		t.Error("online flag should survive reset")
	}
	if s.Mode != models.ModeActive {
		t.Error("kiosk mode should survive reset")
	}
}

func TestSetKioskModeRejectsUnknown(t *testing.T) {
	s := NewState(models.ModeActive)
	s = Reduce(s, SetKioskMode{Mode: models.KioskMode("retired")})
	if s.Mode != models.ModeActive {
		t.Errorf("mode = %q, want active kept", s.Mode)
	}
	s = Reduce(s, SetKioskMode{Mode: models.ModeClosed})
	if s.Mode != models.ModeClosed {
		t.Errorf("mode = %q, want closed", s.Mode)
	}
}

func TestLineIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		l := NewLine(burger(), burger().TaxRate)
		if seen[l.ID] {
			t.Fatalf("duplicate line id %s", l.ID)
		}
		seen[l.ID] = true
	}
}
