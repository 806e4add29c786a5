package ws

import (
	"fmt"
	"sync"

	"itemforge/server/internal/host"
	"itemforge/server/internal/telemetry"
)

// Gateway tracks connected clients and implements the host ports the editor
// core presents panels and outcomes through. It exists separately from the
// Handler so the core can be constructed before any connection arrives.
type Gateway struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  telemetry.Logger
}

func NewGateway(logger telemetry.Logger) *Gateway {
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	return &Gateway{
		clients: make(map[string]*client),
		logger:  logger,
	}
}

func (g *Gateway) register(c *client) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.clients[c.id]; exists {
		return fmt.Errorf("ws: client %s already connected", c.id)
	}
	g.clients[c.id] = c
	return nil
}

func (g *Gateway) unregister(id string) {
	g.mu.Lock()
	delete(g.clients, id)
	g.mu.Unlock()
}

func (g *Gateway) lookup(id string) (*client, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.clients[id]
	return c, ok
}

// OpenPanel implements host.Opener. The new panel frame replaces whatever
// the client screen was showing.
func (g *Gateway) OpenPanel(actor host.Actor, title string, size int) (host.PanelHandle, error) {
	c, ok := g.lookup(actor.ID())
	if !ok {
		return nil, fmt.Errorf("ws: actor %s not connected", actor.ID())
	}
	handle := &panelHandle{client: c, title: title, size: size}
	c.activePanel = handle
	return handle, nil
}

// Notify implements host.Notifier by pushing an outcome frame.
func (g *Gateway) Notify(actorID string, code string, params map[string]string) {
	c, ok := g.lookup(actorID)
	if !ok {
		return
	}
	if err := c.writeJSON(outcomeFrame{Type: "outcome", Code: code, Params: params}); err != nil {
		g.logger.Printf("ws: outcome push to %s failed: %v", actorID, err)
	}
}

// pushInventory sends the client's current inventory view. Called after
// edits that change what the client owns.
func (g *Gateway) pushInventory(c *client) {
	frame := inventoryFrame{Type: "inventory", HeldSlot: c.heldSlot}
	for i := 0; i < c.inv.Size(); i++ {
		it, ok := c.inv.Get(i)
		if !ok {
			continue
		}
		frame.Items = append(frame.Items, slotFrame{
			Slot:     i,
			ItemType: string(it.Type),
			Name:     it.DisplayName(),
			Quantity: it.Quantity,
		})
	}
	if err := c.writeJSON(frame); err != nil {
		g.logger.Printf("ws: inventory push to %s failed: %v", c.id, err)
	}
}

var _ host.Opener = (*Gateway)(nil)
var _ host.Notifier = (*Gateway)(nil)
