package money

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/poslite/kiosk/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func taxableItem(id, price, rate string) models.MenuItem {
	return models.MenuItem{
		ID:        id,
		Name:      id,
		Price:     nullDec(price),
		TaxRate:   nullDec(rate),
		TaxStatus: models.TaxStatusTaxable,
	}
}

func line(item models.MenuItem, qty int) models.CartLine {
	return models.CartLine{
		ID:       item.ID,
		Item:     item,
		Quantity: qty,
		TaxRate:  item.TaxRate,
	}
}

func TestLinePrice(t *testing.T) {
	tests := []struct {
		name string
		line models.CartLine
		want string
	}{
		{
			name: "catalog price",
			line: line(taxableItem("burger", "8.00", "8"), 1),
			want: "8",
		},
		{
			name: "override wins over catalog price",
			line: models.CartLine{
				Item:          taxableItem("burger", "8.00", "8"),
				Quantity:      1,
				PriceOverride: nullDec("5.50"),
			},
			want: "5.5",
		},
		{
			name: "no price and no override is zero",
			line: models.CartLine{
				Item:     models.MenuItem{ID: "market", PricePrompt: "Y"},
				Quantity: 1,
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinePrice(tt.line); got.String() != tt.want {
				t.Errorf("LinePrice() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLineTotalIncludesModifiers(t *testing.T) {
	l := line(taxableItem("burger", "8.00", "8"), 2)
	l.Modifiers = []models.CartLine{
		{Item: taxableItem("cheese", "0.50", "8"), Quantity: 2, IsModifier: true, ParentLineID: l.ID},
		{Item: taxableItem("bacon", "1.25", "8"), Quantity: 1, IsModifier: true, ParentLineID: l.ID},
	}

	// 8.00*2 + 0.50*2 + 1.25*1 = 18.25
	if got := LineTotal(l); !got.Equal(dec("18.25")) {
		t.Errorf("LineTotal() = %s, want 18.25", got)
	}
}

func TestLineTax(t *testing.T) {
	tests := []struct {
		name string
		line models.CartLine
		want string
	}{
		{
			// 3.335 * 3 = 10.005; 10.005 * 8.25 / 100 = 0.82541..,
			// truncated to cents, never rounded up.
			name: "tax is truncated not rounded",
			line: line(taxableItem("combo", "3.335", "8.25"), 3),
			want: "0.82",
		},
		{
			name: "non-taxable item owes nothing",
			line: models.CartLine{
				Item:     models.MenuItem{ID: "fries", Price: nullDec("3.00"), TaxStatus: "NO"},
				Quantity: 4,
				TaxRate:  nullDec("8.25"),
			},
			want: "0",
		},
		{
			name: "taxable item without a rate snapshot owes nothing",
			line: models.CartLine{
				Item:     taxableItem("burger", "8.00", "8"),
				Quantity: 1,
			},
			want: "0",
		},
		{
			name: "zero rate owes nothing",
			line: models.CartLine{
				Item:     taxableItem("burger", "8.00", "0"),
				Quantity: 1,
				TaxRate:  nullDec("0"),
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineTax(tt.line); got.String() != tt.want {
				t.Errorf("LineTax() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestModifiersTaxedThroughParentOnly(t *testing.T) {
	// The modifier amount is taxed once, inside the parent's line total at
	// the parent's rate, regardless of the modifier's own tax fields.
	l := line(taxableItem("burger", "8.00", "8"), 1)
	mod := line(taxableItem("cheese", "1.00", "99"), 1)
	mod.IsModifier = true
	l.Modifiers = []models.CartLine{mod}

	// (8.00 + 1.00) * 8 / 100 = 0.72
	if got := LineTax(l); !got.Equal(dec("0.72")) {
		t.Errorf("LineTax() = %s, want 0.72", got)
	}
}

func TestCartTotals(t *testing.T) {
	// Burger $8.00 x2 taxable at 8%, Fries $3.00 x1 non-taxable.
	fries := models.MenuItem{ID: "fries", Name: "Fries", Price: nullDec("3.00"), TaxStatus: "NO"}
	lines := []models.CartLine{
		line(taxableItem("burger", "8.00", "8"), 2),
		{ID: "fries", Item: fries, Quantity: 1},
	}

	if got := Subtotal(lines); !got.Equal(dec("19.00")) {
		t.Errorf("Subtotal() = %s, want 19.00", got)
	}
	if got := TaxTotal(lines); !got.Equal(dec("1.28")) {
		t.Errorf("TaxTotal() = %s, want 1.28", got)
	}
	if got := GrandTotal(lines); !got.Equal(dec("20.28")) {
		t.Errorf("GrandTotal() = %s, want 20.28", got)
	}
}

func TestTotalsArePure(t *testing.T) {
	lines := []models.CartLine{
		line(taxableItem("burger", "8.99", "8.25"), 3),
		line(taxableItem("soda", "1.99", "8.25"), 2),
	}

	first := GrandTotal(lines)
	second := GrandTotal(lines)
	if !first.Equal(second) {
		t.Errorf("GrandTotal not idempotent: %s then %s", first, second)
	}
	if !Subtotal(lines).Equal(Subtotal(lines)) {
		t.Error("Subtotal not idempotent")
	}
	if !TaxTotal(lines).Equal(TaxTotal(lines)) {
		t.Error("TaxTotal not idempotent")
	}
}

func TestFormat(t *testing.T) {
	if got := Format(dec("20.28")); got != "$20.28" {
		t.Errorf("Format() = %s, want $20.28", got)
	}
	if got := Format(decimal.Zero); got != "$0.00" {
		t.Errorf("Format() = %s, want $0.00", got)
	}
}
