package kiosk

import "github.com/poslite/kiosk/internal/models"

// Reduce applies an action to the current state and returns the next state.
// The input state is never mutated: cart slices are copied before any write,
// so callers may hold on to prior states.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case AddToCart:
		return reduceAdd(s, a.Line)

	case RemoveLine:
		s.Cart = removeLine(s.Cart, a.LineID)
		return s

	case UpdateQuantity:
		if a.Quantity <= 0 {
			// Decrement-to-zero deletes: the UI exposes the qty-1 step
			// as a trash action.
			s.Cart = removeLine(s.Cart, a.LineID)
			return s
		}
		s.Cart = mapLine(s.Cart, a.LineID, func(l models.CartLine) models.CartLine {
			l.Quantity = a.Quantity
			return l
		})
		return s

	case AddModifier:
		s.Cart = mapLine(s.Cart, a.ParentLineID, func(l models.CartLine) models.CartLine {
			l = l.Clone()
			l.Modifiers = append(l.Modifiers, a.Modifier)
			return l
		})
		return s

	case RemoveModifier:
		s.Cart = mapLine(s.Cart, a.ParentLineID, func(l models.CartLine) models.CartLine {
			kept := make([]models.CartLine, 0, len(l.Modifiers))
			for _, m := range l.Modifiers {
				if m.ID != a.ModifierID {
					kept = append(kept, m)
				}
			}
			l.Modifiers = kept
			return l
		})
		return s

	case ClearCart:
		s.Cart = nil
		return s

	case SetDepartment:
		s.SelectedDepartmentID = a.DepartmentID
		return s

	case SetCustomerType:
		s.CustomerType = a.Type
		return s

	case SetLoyalty:
		s.Loyalty = a.Profile
		if a.Profile != nil {
			s.CustomerType = models.CustomerMember
			if s.CustomerName == "" {
				s.CustomerName = a.Profile.DisplayName()
			}
		}
		return s

	case SetCustomerName:
		s.CustomerName = a.Name
		return s

	case SetKioskMode:
		if a.Mode.Valid() {
			s.Mode = a.Mode
		}
		return s

	case SetOnline:
		s.Online = a.Online
		return s

	case ResetOrder:
		s.Cart = nil
		s.CustomerType = models.CustomerUnset
		s.Loyalty = nil
		s.CustomerName = ""
		s.SelectedDepartmentID = ""
		return s
	}

	return s
}

// reduceAdd implements merge-on-add: when the incoming line is bare and an
// identical bare line of the same catalog item already exists, its quantity
// is bumped instead of inserting a duplicate. Lines carrying modifiers never
// merge, even for the same catalog id.
func reduceAdd(s State, line models.CartLine) State {
	if line.Bare() {
		for i, existing := range s.Cart {
			if existing.Item.ID == line.Item.ID && existing.Bare() {
				cart := copyCart(s.Cart)
				cart[i].Quantity += line.Quantity
				s.Cart = cart
				return s
			}
		}
	}
	cart := copyCart(s.Cart)
	s.Cart = append(cart, line)
	return s
}

func copyCart(cart []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(cart))
	copy(out, cart)
	return out
}

func removeLine(cart []models.CartLine, lineID string) []models.CartLine {
	out := make([]models.CartLine, 0, len(cart))
	for _, l := range cart {
		if l.ID != lineID {
			out = append(out, l)
		}
	}
	return out
}

func mapLine(cart []models.CartLine, lineID string, fn func(models.CartLine) models.CartLine) []models.CartLine {
	out := copyCart(cart)
	for i, l := range out {
		if l.ID == lineID {
			out[i] = fn(l)
		}
	}
	return out
}
