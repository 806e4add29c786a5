package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"itemforge/server/internal/host"
	"itemforge/server/internal/inventory"
	"itemforge/server/internal/item"
	"itemforge/server/internal/panel"
)

// client is one connected editor user. It implements host.Actor; its
// inventory and held slot are only touched from the app loop, while outbound
// writes are serialized by the write mutex because panel pushes and notifier
// sends can race the read loop's acks.
type client struct {
	id    string
	conn  *websocket.Conn
	perms map[string]struct{}

	inv      *inventory.Inventory
	heldSlot int

	writeMu   sync.Mutex
	connected bool

	// activePanel is the panel currently on the client's screen, if any.
	activePanel *panelHandle
}

func newClient(id string, conn *websocket.Conn, perms []string, inv *inventory.Inventory) *client {
	permSet := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		if p != "" {
			permSet[p] = struct{}{}
		}
	}
	return &client{
		id:        id,
		conn:      conn,
		perms:     permSet,
		inv:       inv,
		connected: true,
	}
}

func (c *client) ID() string { return c.id }

func (c *client) HasPermission(node string) bool {
	if _, all := c.perms["*"]; all {
		return true
	}
	_, ok := c.perms[node]
	return ok
}

func (c *client) Connected() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.connected
}

func (c *client) HeldSlot() int { return c.heldSlot }

func (c *client) Slot(index int) host.SlotHandle {
	return c.inv.Handle(index)
}

func (c *client) Give(it item.Item) bool {
	_, ok := c.inv.Add(it)
	return ok
}

func (c *client) markDisconnected() {
	c.writeMu.Lock()
	c.connected = false
	c.writeMu.Unlock()
}

func (c *client) writeJSON(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if !c.connected {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// panelHandle implements host.PanelHandle over the client connection. A
// client shows at most one panel; opening a new one displaces the old handle
// without a dismiss frame, matching how a screen replaces its content.
type panelHandle struct {
	client *client
	title  string
	size   int
}

func (p *panelHandle) Present(tiles []panel.Tile) {
	frames := make([]tileFrame, len(tiles))
	for i, t := range tiles {
		frames[i] = tileFrame{
			Material:  t.Material,
			Name:      t.Name,
			Lore:      t.Lore,
			Quantity:  t.Quantity,
			ModelData: t.ModelData,
		}
	}
	p.client.writeJSON(panelFrame{
		Type:  "panel",
		Title: p.title,
		Size:  p.size,
		Tiles: frames,
	})
}

func (p *panelHandle) Dismiss() {
	if !p.Displayed() {
		return
	}
	p.client.activePanel = nil
	p.client.writeJSON(messageFrame{Type: "panel_dismiss"})
}

func (p *panelHandle) Displayed() bool {
	return p.client.activePanel == p
}
