package models

// CustomerType distinguishes a loyalty member from a walk-up guest. The zero
// value means the customer-type step has not happened yet.
type CustomerType string

const (
	CustomerUnset  CustomerType = ""
	CustomerGuest  CustomerType = "guest"
	CustomerMember CustomerType = "member"
)

// LoyaltyProfile is a loyalty member returned by a phone or card/QR lookup.
type LoyaltyProfile struct {
	ID             string `json:"id"`
	Phone          string `json:"phoneNo"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Active         bool   `json:"status"`
	TaxExempt      bool   `json:"taxExempt"`
	LoyaltyPoints  string `json:"loyaltyPoints"`
	MembershipCard string `json:"membershipCard"`
	PlanID         string `json:"planId"`
	StoreGroupID   string `json:"memberedStoreGroupId"`
}

// DisplayName joins the profile's name parts for pre-filling the name step.
// The customer may still edit or skip the name.
func (p LoyaltyProfile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}
