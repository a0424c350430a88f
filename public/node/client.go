// Package node implements the per-connection façades on top of the
// protocol engine: a Client node drives LINK/UNLINK/SET_PROPERTY/INVOKE
// outbound and resolves inbound INIT/PROPERTY_CHANGE/SIGNAL against a
// client registry; a Server node answers LINK/UNLINK/SET_PROPERTY/
// INVOKE against a server registry and writes PROPERTY_CHANGE/SIGNAL
// over its own connection when a Source calls it. A Server node does
// not fan out by itself: a Source reaches every linking node by
// calling each of them.
package node

import (
	"fmt"
	"sync"

	"github.com/tenzoki/agen/olink/internal/logging"
	"github.com/tenzoki/agen/olink/public/link"
	"github.com/tenzoki/agen/olink/public/name"
	"github.com/tenzoki/agen/olink/public/protocol"
	"github.com/tenzoki/agen/olink/public/registry"
	"github.com/tenzoki/agen/olink/public/wire"
)

// Client is one connection's client-side façade: it owns a protocol
// engine, acts as that engine's Listener, and resolves object names
// against a ClientRegistry shared across however many Client nodes the
// process runs.
type Client struct {
	engine   *protocol.Engine
	registry *registry.ClientRegistry
	log      logging.Logger

	mu     sync.Mutex
	linked map[string]link.State
}

// NewClient constructs a Client node. writer is the transport to
// write frames to; the caller is responsible for feeding inbound
// frames to the returned Client's HandleMessage.
func NewClient(reg *registry.ClientRegistry, writer protocol.Writer, format wire.Format, log logging.Logger) *Client {
	if log == nil {
		log = logging.Discard
	}
	c := &Client{
		registry: reg,
		log:      log,
		linked:   make(map[string]link.State),
	}
	c.engine = protocol.New(c, writer, format, log)
	return c
}

// HandleMessage feeds one inbound frame to the underlying engine.
func (c *Client) HandleMessage(frame []byte) { c.engine.HandleMessage(frame) }

// Shutdown tears down the underlying engine, cancelling any pending
// invokes.
func (c *Client) Shutdown() { c.engine.Shutdown() }

// LinkSink begins linking the sink previously registered under name
// in the client registry by sending LINK. The sink's OnInit fires
// asynchronously once the matching INIT arrives.
func (c *Client) LinkSink(objectID string) error {
	if _, ok := c.registry.GetSink(objectID); !ok {
		return fmt.Errorf("node: no sink registered for %s", objectID)
	}
	c.mu.Lock()
	c.linked[objectID] = link.Linking
	c.mu.Unlock()
	return c.engine.WriteLink(objectID)
}

// UnlinkSink sends UNLINK for a previously linked object, releases
// the sink, and clears the registry's node pointer for it: after this
// returns the object reads as unlinked locally regardless of when the
// server processes the UNLINK.
func (c *Client) UnlinkSink(objectID string) error {
	c.mu.Lock()
	c.linked[objectID] = link.Unlinked
	c.mu.Unlock()
	err := c.engine.WriteUnlink(objectID)
	if sink, ok := c.registry.GetSink(objectID); ok {
		sink.OnRelease()
	}
	c.registry.SetNode(objectID, nil)
	return err
}

// SetRemoteProperty sends SET_PROPERTY for memberID.
func (c *Client) SetRemoteProperty(memberID string, value wire.Value) error {
	return c.engine.WriteSetProperty(memberID, value)
}

// InvokeRemote sends INVOKE for memberID; cont is called exactly once
// with the matching INVOKE_REPLY value or a shutdown-cancellation
// error. It satisfies link.ClientHandle, so a *Client can be handed to
// a Sink directly.
func (c *Client) InvokeRemote(memberID string, args wire.Value, cont func(value wire.Value, err error)) error {
	if cont == nil {
		cont = func(wire.Value, error) {}
	}
	return c.engine.WriteInvoke(memberID, args, func(r protocol.InvokeResult) {
		cont(r.Value, r.Err)
	})
}

// --- protocol.Listener ---

func (c *Client) OnLink(objectID string) {
	c.log.Warnf("object-unknown: client received server-only LINK for %s", objectID)
	c.engine.WriteError(wire.MsgLink, 0, fmt.Sprintf("client nodes do not accept LINK for %s", objectID))
}

func (c *Client) OnInit(objectID string, props wire.Value) {
	sink, ok := c.registry.GetSink(objectID)
	if !ok {
		c.log.Warnf("object-unknown: INIT for unregistered sink %s", objectID)
		return
	}
	c.mu.Lock()
	c.linked[objectID] = link.Linked
	c.mu.Unlock()
	c.registry.SetNode(objectID, c)
	sink.OnInit(objectID, props, c)
}

func (c *Client) OnUnlink(objectID string) {
	sink, ok := c.registry.GetSink(objectID)
	if !ok {
		return
	}
	c.mu.Lock()
	c.linked[objectID] = link.Unlinked
	c.mu.Unlock()
	c.registry.SetNode(objectID, nil)
	sink.OnRelease()
}

func (c *Client) OnSetProperty(memberID string, value wire.Value) {
	c.log.Warnf("object-unknown: client received server-only SET_PROPERTY for %s", memberID)
	c.engine.WriteError(wire.MsgSetProperty, 0, fmt.Sprintf("client nodes do not accept SET_PROPERTY for %s", memberID))
}

func (c *Client) OnPropertyChange(memberID string, value wire.Value) {
	sink, ok := c.registry.GetSink(name.ResourceOf(memberID))
	if !ok {
		c.log.Warnf("object-unknown: PROPERTY_CHANGE for unregistered sink %s", memberID)
		return
	}
	sink.OnPropertyChanged(memberID, value)
}

func (c *Client) OnInvoke(requestID int64, memberID string, args wire.Value) {
	c.log.Warnf("object-unknown: client received server-only INVOKE for %s", memberID)
	c.engine.WriteError(wire.MsgInvoke, requestID, fmt.Sprintf("client nodes do not accept INVOKE for %s", memberID))
}

func (c *Client) OnInvokeReply(requestID int64, memberID string, value wire.Value) {
	// resolution happens inside protocol.Engine against its own
	// pending table; nothing further to do at the node level.
}

func (c *Client) OnSignal(memberID string, args wire.Value) {
	sink, ok := c.registry.GetSink(name.ResourceOf(memberID))
	if !ok {
		c.log.Warnf("object-unknown: SIGNAL for unregistered sink %s", memberID)
		return
	}
	sink.OnSignal(memberID, args)
}

func (c *Client) OnError(offendingKind wire.MsgKind, requestID int64, message string) {
	c.log.Warnf("peer reported error: kind=%v request=%d message=%s", offendingKind, requestID, message)
}
