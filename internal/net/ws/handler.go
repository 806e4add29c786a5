package ws

import (
	"encoding/json"
	nethttp "net/http"
	"strings"

	"github.com/gorilla/websocket"

	"itemforge/server/internal/editor"
	"itemforge/server/internal/host"
	"itemforge/server/internal/inventory"
	"itemforge/server/internal/item"
	"itemforge/server/internal/telemetry"
)

// Dispatcher marshals closures onto the app loop. Every core call goes
// through it so session state is only ever touched from one goroutine.
type Dispatcher interface {
	Dispatch(fn func())
}

type HandlerConfig struct {
	Logger telemetry.Logger
}

// Handler upgrades websocket connections and translates frames into editor
// core calls.
type Handler struct {
	core     *editor.Core
	gateway  *Gateway
	loop     Dispatcher
	logger   telemetry.Logger
	upgrader websocket.Upgrader
}

func NewHandler(core *editor.Core, gateway *Gateway, loop Dispatcher, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	return &Handler{
		core:    core,
		gateway: gateway,
		loop:    loop,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	actorID := r.URL.Query().Get("id")
	if actorID == "" {
		nethttp.Error(w, "missing id", nethttp.StatusBadRequest)
		return
	}
	perms := strings.Split(r.URL.Query().Get("perms"), ",")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("ws: upgrade failed for %s: %v", actorID, err)
		return
	}

	c := newClient(actorID, conn, perms, demoInventory())
	if err := h.gateway.register(c); err != nil {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "duplicate id")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}
	h.gateway.pushInventory(c)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.disconnect(c)
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			h.logger.Printf("ws: discarding malformed frame from %s: %v", actorID, err)
			continue
		}
		h.handleFrame(c, frame)
	}
}

func (h *Handler) handleFrame(c *client, frame clientFrame) {
	switch frame.Type {
	case "begin_edit":
		h.loop.Dispatch(func() {
			h.core.BeginEdit(c)
		})
	case "click":
		kind, ok := clickKind(frame.Button)
		if !ok {
			h.logger.Printf("ws: unknown click button %q from %s", frame.Button, c.id)
			return
		}
		slot := frame.Slot
		h.loop.Dispatch(func() {
			h.core.PanelSlotClicked(c.id, slot, kind)
			h.gateway.pushInventory(c)
		})
	case "text":
		text := frame.Text
		h.loop.Dispatch(func() {
			if !h.core.TextSubmitted(c.id, text) {
				h.logger.Printf("ws: dropping text from %s with no prompt pending", c.id)
			}
		})
	case "panel_closed":
		h.loop.Dispatch(func() {
			c.activePanel = nil
			h.core.PanelClosed(c.id)
		})
	case "held_slot":
		slot := frame.Slot
		h.loop.Dispatch(func() {
			if slot >= 0 && slot < c.inv.Size() {
				c.heldSlot = slot
			}
			h.core.ActorChangedHeldSlot(c.id)
		})
	case "drop":
		h.loop.Dispatch(func() {
			h.core.ActorDroppedItem(c.id)
		})
	case "reload":
		h.loop.Dispatch(func() {
			h.core.Reload(c)
		})
	default:
		h.logger.Printf("ws: unknown frame type %q from %s", frame.Type, c.id)
	}
}

func (h *Handler) disconnect(c *client) {
	c.markDisconnected()
	h.gateway.unregister(c.id)
	h.loop.Dispatch(func() {
		h.core.ActorDisconnected(c.id)
	})
}

func clickKind(button string) (host.ClickKind, bool) {
	switch button {
	case "primary", "":
		return host.ClickPrimary, true
	case "primary_alt":
		return host.ClickPrimaryAlt, true
	case "secondary":
		return host.ClickSecondary, true
	case "secondary_alt":
		return host.ClickSecondaryAlt, true
	default:
		return host.ClickPrimary, false
	}
}

// demoInventory seeds a connecting client with a few representative items so
// the reference host is usable without a persistence layer.
func demoInventory() *inventory.Inventory {
	inv := inventory.New(36)
	inv.Set(0, item.Item{
		Type:          "iron_sword",
		Class:         item.ClassWeapon,
		Quantity:      1,
		MaxStack:      1,
		Damage:        40,
		MaxDurability: 250,
	})
	inv.Set(1, item.Item{
		Type:     "worn_tome",
		Class:    item.ClassTome,
		Quantity: 1,
		MaxStack: 1,
	})
	inv.Set(2, item.Item{
		Type:     "arrow",
		Class:    item.ClassConsumable,
		Quantity: 32,
		MaxStack: 64,
	})
	inv.Set(3, item.Item{
		Type:          "leather_helm",
		Class:         item.ClassArmor,
		Quantity:      1,
		MaxStack:      1,
		MaxDurability: 80,
	})
	return inv
}
