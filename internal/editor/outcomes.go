package editor

// Outcome codes delivered through the host notifier. The host decides how to
// render each code; params carry the substitution values.
const (
	OutcomeOpened         = "editor.opened"
	OutcomeClosed         = "editor.closed"
	OutcomeEmptyHand      = "editor.empty_hand"
	OutcomeBlacklisted    = "editor.blacklisted"
	OutcomeAlreadyEditing = "editor.already_editing"
	OutcomeNoPermission   = "editor.no_permission"
	OutcomeItemChanged    = "editor.item_changed"
	OutcomePanelFailed    = "editor.panel_failed"
	OutcomeApplied        = "modifier.applied"
	OutcomeRemoved        = "modifier.removed"
	OutcomeConflict       = "modifier.conflict"
	OutcomeAtLimit        = "modifier.at_limit"
	OutcomePromptRename   = "input.prompt_rename"
	OutcomePromptLore     = "input.prompt_lore"
	OutcomeInputCancelled = "input.cancelled"
	OutcomeRenamed        = "item.renamed"
	OutcomeLoreAdded      = "item.lore_added"
	OutcomeLoreCleared    = "item.lore_cleared"
	OutcomeLoreEmpty      = "item.lore_empty"
	OutcomeModifiersWiped = "item.modifiers_cleared"
	OutcomeNothingToWipe  = "item.no_modifiers"
	OutcomeRepaired       = "item.repaired"
	OutcomeNotRepairable  = "item.not_repairable"
	OutcomeDuplicated     = "item.duplicated"
	OutcomeInventoryFull  = "item.inventory_full"
	OutcomeReloaded       = "admin.reloaded"
	OutcomeReloadFailed   = "admin.reload_failed"
)
