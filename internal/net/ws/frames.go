package ws

// clientFrame is every inbound message shape folded into one struct, the
// same way game wire protocols usually do it: Type discriminates, unused
// fields stay zero.
type clientFrame struct {
	Type   string `json:"type"`
	Slot   int    `json:"slot"`
	Button string `json:"button"`
	Text   string `json:"text"`
}

type messageFrame struct {
	Type string `json:"type"`
}

type tileFrame struct {
	Material  string   `json:"material,omitempty"`
	Name      string   `json:"name,omitempty"`
	Lore      []string `json:"lore,omitempty"`
	Quantity  int      `json:"quantity,omitempty"`
	ModelData int      `json:"modelData,omitempty"`
}

type panelFrame struct {
	Type  string      `json:"type"`
	Title string      `json:"title"`
	Size  int         `json:"size"`
	Tiles []tileFrame `json:"tiles"`
}

type outcomeFrame struct {
	Type   string            `json:"type"`
	Code   string            `json:"code"`
	Params map[string]string `json:"params,omitempty"`
}

type inventoryFrame struct {
	Type     string      `json:"type"`
	HeldSlot int         `json:"heldSlot"`
	Items    []slotFrame `json:"items"`
}

type slotFrame struct {
	Slot     int    `json:"slot"`
	ItemType string `json:"itemType"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
