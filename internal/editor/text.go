package editor

import (
	"strings"
	"sync"

	"itemforge/server/internal/item"
	"itemforge/server/internal/session"
)

// CancelWord aborts a pending text prompt instead of being applied.
const CancelWord = "cancel"

type pendingText struct {
	state session.State
	text  string
}

// pendingTexts buffers typed input until the next tick. Text arrives on
// transport goroutines; applying it immediately would race the app loop, so
// it is parked here and drained once per tick with the session re-validated.
type pendingTexts struct {
	mu      sync.Mutex
	entries map[string]pendingText
}

func (p *pendingTexts) init() {
	p.entries = make(map[string]pendingText)
}

func (p *pendingTexts) put(actorID string, entry pendingText) {
	p.mu.Lock()
	p.entries[actorID] = entry
	p.mu.Unlock()
}

func (p *pendingTexts) drain() map[string]pendingText {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) == 0 {
		return nil
	}
	drained := p.entries
	p.entries = make(map[string]pendingText)
	return drained
}

// TextSubmitted offers typed input to the core. It returns true when the
// input was captured for a session awaiting text, which tells the host to
// suppress its normal chat handling. Safe to call from any goroutine.
func (c *Core) TextSubmitted(actorID, text string) bool {
	sess, ok := c.deps.Sessions.Get(actorID)
	if !ok {
		return false
	}
	state := sess.State
	if state != session.StateAwaitingRename && state != session.StateAwaitingLore {
		return false
	}
	c.pending.put(actorID, pendingText{state: state, text: text})
	return true
}

// drainPending applies parked text input. Each entry is re-validated: the
// session must still exist and still be in the state it was captured in,
// otherwise the input is discarded.
func (c *Core) drainPending() {
	for actorID, entry := range c.pending.drain() {
		sess, ok := c.deps.Sessions.Get(actorID)
		if !ok || sess.State != entry.state {
			continue
		}
		c.applyText(sess, entry)
	}
}

func (c *Core) applyText(sess *session.Session, entry pendingText) {
	text := strings.TrimSpace(entry.text)
	if strings.EqualFold(text, CancelWord) {
		c.notify(sess.Actor, OutcomeInputCancelled, nil)
		sess.State = session.StateViewing
		c.reopenPanel(sess)
		return
	}

	slot, err := c.validate(sess)
	if err != nil {
		return
	}
	updated := sess.Preview.Clone()
	var okCode string
	switch entry.state {
	case session.StateAwaitingRename:
		item.Rename(&updated, text)
		okCode = OutcomeRenamed
	case session.StateAwaitingLore:
		item.AddLoreLine(&updated, text)
		okCode = OutcomeLoreAdded
	default:
		return
	}
	if err := c.commit(sess, slot, updated); err != nil {
		return
	}
	c.notify(sess.Actor, okCode, map[string]string{"text": text})
	sess.State = session.StateViewing
	c.reopenPanel(sess)
}

// reopenPanel puts the panel back on screen after a text prompt.
func (c *Core) reopenPanel(sess *session.Session) {
	bundle := c.deps.Config.Bundle()
	handle, err := c.deps.Opener.OpenPanel(sess.Actor, bundle.Panel.Title, bundle.Panel.Size)
	if err != nil {
		c.deps.Logger.Printf("editor: reopening panel for %s: %v", sess.UserID, err)
		c.closeSession(sess.UserID, "panel_failed", true)
		return
	}
	sess.Panel = handle
	c.refresh(sess, bundle)
}
