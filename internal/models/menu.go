package models

import "github.com/shopspring/decimal"

// Visibility values used by the upstream POS catalog. Both spellings appear
// in production databases.
const (
	VisibleOK  = "OK"
	VisibleYes = "Y"
)

// TaxStatusTaxable marks a menu item as subject to tax.
const TaxStatusTaxable = "OK"

// Department is a menu category used to filter the item grid.
type Department struct {
	ID        string              `json:"deptId"`
	Name      string              `json:"deptName"`
	Visible   string              `json:"visible"`
	TaxRate   decimal.NullDecimal `json:"taxRate"`
	ListOrder int                 `json:"listOrder"`
}

// IsVisible reports whether the department should be offered on the kiosk.
func (d Department) IsVisible() bool {
	return d.Visible == VisibleOK || d.Visible == VisibleYes
}

// MenuItem is a catalog entry. Price is nullable: "prompt for price" items
// carry no catalog price and are priced per-line via an override.
type MenuItem struct {
	ID            string              `json:"itemId"`
	Name          string              `json:"itemName"`
	DepartmentID  string              `json:"itemDeptId"`
	Price         decimal.NullDecimal `json:"itemPrice"`
	TaxRate       decimal.NullDecimal `json:"taxRate"`
	TaxStatus     string              `json:"tax1Status"`
	PricePrompt   string              `json:"pricePrompt"`
	Visible       string              `json:"visible"`
	ListOrder     int                 `json:"listOrder"`
	IsModifier    bool                `json:"isModifier"`
	IsDeleted     bool                `json:"isDeleted"`
	LoyaltyCredit decimal.NullDecimal `json:"loyalityCredit"`
}

// IsVisible reports whether the item should be offered on the kiosk.
func (i MenuItem) IsVisible() bool {
	return i.Visible == VisibleOK || i.Visible == VisibleYes
}

// Taxable reports whether the item is subject to tax at all. The effective
// rate still comes from the cart line's snapshot.
func (i MenuItem) Taxable() bool {
	return i.TaxStatus == TaxStatusTaxable
}

// ModifierGroup is a named group of modifier choices (e.g. "Toppings") with a
// selection cap and an optional forced/required flag.
type ModifierGroup struct {
	ID        int64  `json:"modifierGroupId"`
	Name      string `json:"groupName"`
	Prompt    string `json:"promptName"`
	MaxSelect int    `json:"maximumSelect"`
	Forced    bool   `json:"forced"`
	Hidden    bool   `json:"hide"`
}

// ModifierGroupLink attaches a ModifierGroup to a MenuItem, optionally
// overriding the group's selection cap and forced flag for that item.
type ModifierGroupLink struct {
	ID        int64  `json:"id"`
	ItemID    string `json:"itemId"`
	GroupID   int64  `json:"modifierGroupId"`
	MaxSelect *int   `json:"maximumSelect"`
	Forced    *bool  `json:"forced"`
	Required  bool   `json:"isRequired"`
}

// TaxRate is a store-level tax rate row.
type TaxRate struct {
	No   int             `json:"taxNo"`
	Rate decimal.Decimal `json:"taxRate"`
}

// BusinessInfo is store identity and receipt footer data.
type BusinessInfo struct {
	StoreID       string `json:"storeId"`
	Name          string `json:"businessName"`
	Address       string `json:"businessAddress"`
	CityStateZip  string `json:"cityStateZip"`
	Phone         string `json:"businessPhone"`
	Footer1       string `json:"footer1"`
	Footer2       string `json:"footer2"`
	Footer3       string `json:"footer3"`
	Footer4       string `json:"footer4"`
	EncryptionKey string `json:"encryptionKey"`
}

// Catalog is the complete menu snapshot returned by the cloud API. TaxRates
// comes from a separate endpoint and is attached to the snapshot before it
// is cached.
type Catalog struct {
	Departments    []Department        `json:"departments"`
	Items          []MenuItem          `json:"items"`
	ModifierGroups []ModifierGroup     `json:"modifierGroups"`
	ModifierLinks  []ModifierGroupLink `json:"modifiersOfItems"`
	BusinessInfo   []BusinessInfo      `json:"businessInfo"`
	TaxRates       []TaxRate           `json:"taxRates"`
}
