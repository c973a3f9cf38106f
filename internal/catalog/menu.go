package catalog

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/poslite/kiosk/internal/models"
)

// Menu is an indexed, read-only view over one catalog snapshot. Build it
// once per snapshot; lookups during ordering are then map hits.
type Menu struct {
	catalog *models.Catalog

	itemsByID   map[string]models.MenuItem
	deptsByID   map[string]models.Department
	groupsByID  map[int64]models.ModifierGroup
	linksByItem map[string][]models.ModifierGroupLink
	ratesByNo   map[int]decimal.Decimal

	// choicesByGroup holds the modifier items linked to each group. The
	// link table is dual-use: a link from a non-modifier item offers the
	// group on that item, a link from a modifier item makes it a choice.
	choicesByGroup map[int64][]models.MenuItem
}

// NewMenu indexes a catalog snapshot.
func NewMenu(catalog *models.Catalog) *Menu {
	m := &Menu{
		catalog:        catalog,
		itemsByID:      make(map[string]models.MenuItem, len(catalog.Items)),
		deptsByID:      make(map[string]models.Department, len(catalog.Departments)),
		groupsByID:     make(map[int64]models.ModifierGroup, len(catalog.ModifierGroups)),
		linksByItem:    make(map[string][]models.ModifierGroupLink),
		ratesByNo:      make(map[int]decimal.Decimal, len(catalog.TaxRates)),
		choicesByGroup: make(map[int64][]models.MenuItem),
	}
	for _, rate := range catalog.TaxRates {
		m.ratesByNo[rate.No] = rate.Rate
	}
	for _, item := range catalog.Items {
		m.itemsByID[item.ID] = item
	}
	for _, dept := range catalog.Departments {
		m.deptsByID[dept.ID] = dept
	}
	for _, group := range catalog.ModifierGroups {
		m.groupsByID[group.ID] = group
	}
	for _, link := range catalog.ModifierLinks {
		item, ok := m.itemsByID[link.ItemID]
		if !ok {
			continue
		}
		if item.IsModifier {
			m.choicesByGroup[link.GroupID] = append(m.choicesByGroup[link.GroupID], item)
		} else {
			m.linksByItem[link.ItemID] = append(m.linksByItem[link.ItemID], link)
		}
	}
	for _, choices := range m.choicesByGroup {
		sort.SliceStable(choices, func(i, j int) bool {
			return choices[i].ListOrder < choices[j].ListOrder
		})
	}
	return m
}

// Departments returns the visible departments in list order.
func (m *Menu) Departments() []models.Department {
	out := make([]models.Department, 0, len(m.catalog.Departments))
	for _, dept := range m.catalog.Departments {
		if dept.IsVisible() {
			out = append(out, dept)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ListOrder < out[j].ListOrder
	})
	return out
}

// Items returns the sellable items for one department, or for the whole menu
// when deptID is empty. Hidden, deleted and modifier items never appear on
// the grid.
func (m *Menu) Items(deptID string) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(m.catalog.Items))
	for _, item := range m.catalog.Items {
		if !item.IsVisible() || item.IsDeleted || item.IsModifier {
			continue
		}
		if deptID != "" && item.DepartmentID != deptID {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ListOrder < out[j].ListOrder
	})
	return out
}

// Item looks up any item by id, modifiers included.
func (m *Menu) Item(id string) (models.MenuItem, bool) {
	item, ok := m.itemsByID[id]
	return item, ok
}

// defaultTaxNo is the rate table row applied when neither the item nor its
// department carries a rate.
const defaultTaxNo = 1

// EffectiveTaxRate resolves the rate a cart line snapshots at add time: the
// item's own rate when present, the department rate next, the store default
// from the tax table last. Modifiers never fall through to the default;
// their tax rides on the parent line.
func (m *Menu) EffectiveTaxRate(item models.MenuItem) decimal.NullDecimal {
	if item.TaxRate.Valid {
		return item.TaxRate
	}
	if dept, ok := m.deptsByID[item.DepartmentID]; ok && dept.TaxRate.Valid {
		return dept.TaxRate
	}
	if item.IsModifier {
		return decimal.NullDecimal{}
	}
	return m.DefaultTaxRate()
}

// DefaultTaxRate returns the store default rate from the tax table, invalid
// when the table is missing or has no default row.
func (m *Menu) DefaultTaxRate() decimal.NullDecimal {
	if rate, ok := m.ratesByNo[defaultTaxNo]; ok {
		return decimal.NullDecimal{Decimal: rate, Valid: true}
	}
	return decimal.NullDecimal{}
}

// ItemGroup is a modifier group resolved for one item: the group definition
// with any per-item link overrides applied, plus its choices.
type ItemGroup struct {
	Group     models.ModifierGroup
	MaxSelect int
	Forced    bool
	Choices   []models.MenuItem
}

// GroupsFor resolves the modifier groups offered on an item. Hidden groups
// and groups with no choices are dropped.
func (m *Menu) GroupsFor(itemID string) []ItemGroup {
	links := m.linksByItem[itemID]
	out := make([]ItemGroup, 0, len(links))
	for _, link := range links {
		group, ok := m.groupsByID[link.GroupID]
		if !ok || group.Hidden {
			continue
		}
		choices := m.choicesByGroup[link.GroupID]
		if len(choices) == 0 {
			continue
		}

		resolved := ItemGroup{
			Group:     group,
			MaxSelect: group.MaxSelect,
			Forced:    group.Forced,
			Choices:   choices,
		}
		if link.MaxSelect != nil {
			resolved.MaxSelect = *link.MaxSelect
		}
		if link.Forced != nil {
			resolved.Forced = *link.Forced
		}
		if link.Required {
			resolved.Forced = true
		}
		out = append(out, resolved)
	}
	return out
}

// BusinessInfo returns the store identity row, zero-valued when the snapshot
// carries none.
func (m *Menu) BusinessInfo() models.BusinessInfo {
	if len(m.catalog.BusinessInfo) == 0 {
		return models.BusinessInfo{}
	}
	return m.catalog.BusinessInfo[0]
}
