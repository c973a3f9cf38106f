package kiosk

import "github.com/poslite/kiosk/internal/models"

// ModifierPicker tracks modifier choices for a pending item, before it is
// added to the cart. A group cap greater than zero is enforced by replacing
// the most recently selected choice rather than blocking the tap:
// last-selected-wins within the cap.
type ModifierPicker struct {
	maxSelect int
	forced    bool
	selected  []models.MenuItem
}

// NewModifierPicker builds a picker for one modifier group. maxSelect and
// forced should already reflect any per-item link overrides.
func NewModifierPicker(maxSelect int, forced bool) *ModifierPicker {
	return &ModifierPicker{maxSelect: maxSelect, forced: forced}
}

// Toggle selects choice, or deselects it when already selected. When the
// selection cap is reached, the newest prior selection is replaced.
func (p *ModifierPicker) Toggle(choice models.MenuItem) {
	for i, sel := range p.selected {
		if sel.ID == choice.ID {
			p.selected = append(p.selected[:i], p.selected[i+1:]...)
			return
		}
	}
	if p.maxSelect > 0 && len(p.selected) >= p.maxSelect {
		p.selected = p.selected[:p.maxSelect-1]
	}
	p.selected = append(p.selected, choice)
}

// Selected returns the current choices in selection order.
func (p *ModifierPicker) Selected() []models.MenuItem {
	out := make([]models.MenuItem, len(p.selected))
	copy(out, p.selected)
	return out
}

// Satisfied reports whether a forced group has at least one selection.
func (p *ModifierPicker) Satisfied() bool {
	return !p.forced || len(p.selected) > 0
}

// Lines converts the selections into modifier cart lines for the parent.
func (p *ModifierPicker) Lines(parentLineID string) []models.CartLine {
	lines := make([]models.CartLine, 0, len(p.selected))
	for _, item := range p.selected {
		lines = append(lines, NewModifierLine(item, parentLineID))
	}
	return lines
}
