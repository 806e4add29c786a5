package item

// Mutation ops used by the editor. All of them are simple transforms on a
// single item; callers are responsible for routing the result through the
// slot handle so the authoritative copy is only touched behind the guard.

// Rename sets the custom display name. An empty string clears it back to the
// default type-derived name.
func Rename(i *Item, name string) {
	i.CustomName = name
}

// AddLoreLine appends one descriptive line.
func AddLoreLine(i *Item, line string) {
	i.Lore = append(i.Lore, line)
}

// ClearLore removes every descriptive line and reports whether there was
// anything to clear.
func ClearLore(i *Item) bool {
	if len(i.Lore) == 0 {
		return false
	}
	i.Lore = nil
	return true
}

// Repair resets accumulated damage and reports whether the item was actually
// damaged. Items without durability are not repairable.
func Repair(i *Item) bool {
	if !i.Damageable() || i.Damage <= 0 {
		return false
	}
	i.Damage = 0
	return true
}
