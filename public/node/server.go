package node

import (
	"fmt"

	"github.com/tenzoki/agen/olink/internal/logging"
	"github.com/tenzoki/agen/olink/public/name"
	"github.com/tenzoki/agen/olink/public/protocol"
	"github.com/tenzoki/agen/olink/public/registry"
	"github.com/tenzoki/agen/olink/public/wire"
)

// Server is one connection's server-side façade: it owns a protocol
// engine, acts as that engine's Listener, and resolves object names
// against a ServerRegistry shared across however many connections link
// the same sources. It also implements link.RemoteNode, so a Source
// can push PROPERTY_CHANGE/SIGNAL back through it.
type Server struct {
	engine   *protocol.Engine
	registry *registry.ServerRegistry
	log      logging.Logger
}

// NewServer constructs a Server node over one connection's writer.
func NewServer(reg *registry.ServerRegistry, writer protocol.Writer, format wire.Format, log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard
	}
	s := &Server{registry: reg, log: log}
	s.engine = protocol.New(s, writer, format, log)
	return s
}

// HandleMessage feeds one inbound frame to the underlying engine.
func (s *Server) HandleMessage(frame []byte) { s.engine.HandleMessage(frame) }

// Shutdown tears down the underlying engine. Sources linked through
// this node are not told, and the node stays in the registry's node
// sets until ServerRegistry.DetachAll (or DetachNode) removes it.
func (s *Server) Shutdown() { s.engine.Shutdown() }

// --- link.RemoteNode ---

// NotifyPropertyChange sends PROPERTY_CHANGE over this node's
// connection. Fan-out to every node linking objectID is the caller's
// (the Source's) responsibility, driven from the registry's NodesOf.
func (s *Server) NotifyPropertyChange(objectID, memberID string, value wire.Value) {
	if err := s.engine.WritePropertyChange(memberID, value); err != nil {
		s.log.Warnf("property-change-write-failed: %s: %v", memberID, err)
	}
}

// NotifySignal sends SIGNAL over this node's connection.
func (s *Server) NotifySignal(objectID, memberID string, args wire.Value) {
	if err := s.engine.WriteSignal(memberID, args); err != nil {
		s.log.Warnf("signal-write-failed: %s: %v", memberID, err)
	}
}

// --- protocol.Listener ---

func (s *Server) OnLink(objectID string) {
	src, ok := s.registry.GetSource(objectID)
	if !ok {
		s.log.Warnf("object-unknown: LINK for unregistered source %s", objectID)
		s.engine.WriteError(wire.MsgLink, 0, fmt.Sprintf("no such source %s", objectID))
		return
	}
	for _, n := range s.registry.NodesOf(objectID) {
		if n == s {
			s.log.Warnf("redundant LINK for %s", objectID)
			break
		}
	}
	s.registry.AttachNode(objectID, s)
	src.Linked(objectID, s)
	// INIT always follows a successful LINK, even when the property
	// set is empty.
	if err := s.engine.WriteInit(objectID, src.CollectProperties()); err != nil {
		s.log.Warnf("init-write-failed: %s: %v", objectID, err)
	}
}

func (s *Server) OnInit(objectID string, props wire.Value) {
	s.log.Warnf("object-unknown: server received client-only INIT for %s", objectID)
}

func (s *Server) OnUnlink(objectID string) {
	src, ok := s.registry.GetSource(objectID)
	attached := false
	for _, n := range s.registry.NodesOf(objectID) {
		if n == s {
			attached = true
			break
		}
	}
	if !ok || !attached {
		s.log.Warnf("redundant UNLINK for %s", objectID)
		return
	}
	s.registry.DetachNode(objectID, s)
	src.Unlinked(objectID, s)
}

func (s *Server) OnSetProperty(memberID string, value wire.Value) {
	src, ok := s.registry.GetSource(name.ResourceOf(memberID))
	if !ok {
		s.log.Warnf("object-unknown: SET_PROPERTY for unregistered source %s", memberID)
		s.engine.WriteError(wire.MsgSetProperty, 0, fmt.Sprintf("no such source %s", name.ResourceOf(memberID)))
		return
	}
	src.SetProperty(memberID, value)
}

func (s *Server) OnPropertyChange(memberID string, value wire.Value) {
	s.log.Warnf("object-unknown: server received client-only PROPERTY_CHANGE for %s", memberID)
}

func (s *Server) OnInvoke(requestID int64, memberID string, args wire.Value) {
	src, ok := s.registry.GetSource(name.ResourceOf(memberID))
	if !ok {
		s.engine.WriteError(wire.MsgInvoke, requestID, fmt.Sprintf("no such source %s", name.ResourceOf(memberID)))
		return
	}
	result, err := src.Invoke(memberID, args)
	if err != nil {
		s.engine.WriteError(wire.MsgInvoke, requestID, err.Error())
		return
	}
	if err := s.engine.WriteInvokeReply(requestID, memberID, result); err != nil {
		s.log.Warnf("invoke-reply-write-failed: %s: %v", memberID, err)
	}
}

func (s *Server) OnInvokeReply(requestID int64, memberID string, value wire.Value) {
	s.log.Warnf("object-unknown: server received client-only INVOKE_REPLY for %s", memberID)
}

func (s *Server) OnSignal(memberID string, args wire.Value) {
	s.log.Warnf("object-unknown: server received client-only SIGNAL for %s", memberID)
}

func (s *Server) OnError(offendingKind wire.MsgKind, requestID int64, message string) {
	s.log.Warnf("peer reported error: kind=%v request=%d message=%s", offendingKind, requestID, message)
}
