// Package protocol implements the bidirectional protocol engine: it
// parses inbound frames into messages, dispatches them to a Listener,
// builds outbound messages, and correlates INVOKE with INVOKE_REPLY
// by request id.
package protocol

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tenzoki/agen/olink/internal/logging"
	"github.com/tenzoki/agen/olink/public/wire"
)

// ErrEngineClosed is returned by every Write* method once Shutdown has
// been called.
var ErrEngineClosed = errors.New("protocol: engine is shut down")

// ErrShutdownCancelled is the error InvokeResult carries for every
// invoke still pending when the engine shuts down.
var ErrShutdownCancelled = errors.New("protocol: shutdown-cancelled")

// InvokeResult is delivered to a write-invoke continuation exactly
// once: either a successful reply or ErrShutdownCancelled.
type InvokeResult struct {
	MemberID string
	Value    wire.Value
	Err      error
}

// Continuation is called exactly once per request id: on a matching
// INVOKE_REPLY, or on engine shutdown with ErrShutdownCancelled.
type Continuation func(InvokeResult)

// Engine is the per-connection protocol state machine. It owns the
// monotonic request-id counter
// and the pending-invoke table; it is not safe to share a single
// Engine across connections, but its methods are safe to call
// concurrently (including re-entrantly from inside a Listener hook).
type Engine struct {
	listener Listener
	writer   Writer
	codec    wire.Codec
	log      logging.Logger

	mu      sync.Mutex
	nextID  int64
	pending map[int64]Continuation
	closed  bool
}

// New constructs an Engine. log may be logging.Discard in tests that
// don't want protocol warnings on stderr.
func New(listener Listener, writer Writer, format wire.Format, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Discard
	}
	return &Engine{
		listener: listener,
		writer:   writer,
		codec:    wire.New(format),
		log:      log,
		pending:  make(map[int64]Continuation),
	}
}

// HandleMessage decodes one inbound frame and dispatches it. It never
// panics or returns an error to the caller: malformed frames and
// unknown kinds are logged and dropped.
func (e *Engine) HandleMessage(frame []byte) {
	v, err := e.codec.Decode(frame)
	if err != nil {
		e.log.Warnf("protocol-malformed: %v", err)
		e.tryReportMalformed(err)
		return
	}

	kind, ok := wire.KindOf(v)
	if !ok {
		e.log.Warnf("protocol-malformed: not a tagged message array: %v", v)
		e.tryReportMalformed(fmt.Errorf("not a tagged message array"))
		return
	}

	switch kind {
	case wire.MsgLink:
		name, _ := wire.At(v, 1)
		e.listener.OnLink(name.AsString())

	case wire.MsgInit:
		name, _ := wire.At(v, 1)
		props, _ := wire.At(v, 2)
		e.listener.OnInit(name.AsString(), props)

	case wire.MsgUnlink:
		name, _ := wire.At(v, 1)
		e.listener.OnUnlink(name.AsString())

	case wire.MsgSetProperty:
		member, _ := wire.At(v, 1)
		value, _ := wire.At(v, 2)
		e.listener.OnSetProperty(member.AsString(), value)

	case wire.MsgPropertyChange:
		member, _ := wire.At(v, 1)
		value, _ := wire.At(v, 2)
		e.listener.OnPropertyChange(member.AsString(), value)

	case wire.MsgInvoke:
		id, _ := wire.At(v, 1)
		member, _ := wire.At(v, 2)
		args, _ := wire.At(v, 3)
		e.listener.OnInvoke(id.AsInt(), member.AsString(), args)

	case wire.MsgInvokeReply:
		id, _ := wire.At(v, 1)
		member, _ := wire.At(v, 2)
		value, _ := wire.At(v, 3)
		e.handleInvokeReply(id.AsInt(), member.AsString(), value)
		e.listener.OnInvokeReply(id.AsInt(), member.AsString(), value)

	case wire.MsgSignal:
		member, _ := wire.At(v, 1)
		args, _ := wire.At(v, 2)
		e.listener.OnSignal(member.AsString(), args)

	case wire.MsgError:
		offending, _ := wire.At(v, 1)
		id, _ := wire.At(v, 2)
		text, _ := wire.At(v, 3)
		e.listener.OnError(wire.MsgKind(offending.AsInt()), id.AsInt(), text.AsString())
	}
}

// handleInvokeReply resolves the pending invoke before the listener
// is notified, so the continuation fires at most once.
func (e *Engine) handleInvokeReply(requestID int64, memberID string, value wire.Value) {
	e.mu.Lock()
	cont, found := e.pending[requestID]
	if found {
		delete(e.pending, requestID)
	}
	e.mu.Unlock()

	if !found {
		msg := fmt.Sprintf("no pending invoke %s for %d", memberID, requestID)
		e.log.Warnf("invoke-mismatch: %s", msg)
		e.writeError(wire.MsgInvoke, requestID, msg)
		return
	}
	cont(InvokeResult{MemberID: memberID, Value: value})
}

// tryReportMalformed makes a best-effort attempt to tell the peer
// about a decode failure. It never surfaces its own write error: if
// the transport is unhealthy there is nothing more useful to do.
func (e *Engine) tryReportMalformed(cause error) {
	msg := wire.BuildError(0, 0, cause.Error())
	data, err := e.codec.Encode(msg)
	if err != nil {
		return
	}
	_ = e.writer.Write(data)
}

func (e *Engine) write(msg wire.Value) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.mu.Unlock()

	data, err := e.codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("protocol: encode: %w", err)
	}
	return e.writer.Write(data)
}

func (e *Engine) WriteLink(objectID string) error {
	return e.write(wire.BuildLink(objectID))
}

func (e *Engine) WriteInit(objectID string, props wire.Value) error {
	return e.write(wire.BuildInit(objectID, props))
}

func (e *Engine) WriteUnlink(objectID string) error {
	return e.write(wire.BuildUnlink(objectID))
}

func (e *Engine) WriteSetProperty(memberID string, value wire.Value) error {
	return e.write(wire.BuildSetProperty(memberID, value))
}

func (e *Engine) WritePropertyChange(memberID string, value wire.Value) error {
	return e.write(wire.BuildPropertyChange(memberID, value))
}

// WriteInvoke allocates the next request id, stores cont, and emits
// the INVOKE message atomically: there is no gap between allocation
// and emission in which a reply could arrive unmatched, since the
// pending entry is visible under the same lock that guards id
// allocation and closed state.
func (e *Engine) WriteInvoke(memberID string, args wire.Value, cont Continuation) error {
	if cont == nil {
		cont = func(InvokeResult) {}
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.nextID++
	id := e.nextID
	e.pending[id] = cont
	e.mu.Unlock()

	msg := wire.BuildInvoke(id, memberID, args)
	data, err := e.codec.Encode(msg)
	if err != nil {
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
		return fmt.Errorf("protocol: encode: %w", err)
	}
	if err := e.writer.Write(data); err != nil {
		return err
	}
	return nil
}

func (e *Engine) WriteInvokeReply(requestID int64, memberID string, value wire.Value) error {
	return e.write(wire.BuildInvokeReply(requestID, memberID, value))
}

func (e *Engine) WriteSignal(memberID string, args wire.Value) error {
	return e.write(wire.BuildSignal(memberID, args))
}

func (e *Engine) writeError(offendingKind wire.MsgKind, requestID int64, message string) {
	_ = e.write(wire.BuildError(offendingKind, requestID, message))
}

func (e *Engine) WriteError(offendingKind wire.MsgKind, requestID int64, message string) error {
	return e.write(wire.BuildError(offendingKind, requestID, message))
}

// Shutdown cancels every pending invoke with ErrShutdownCancelled and
// makes subsequent Write* calls fail fast with ErrEngineClosed.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	pending := e.pending
	e.pending = make(map[int64]Continuation)
	e.mu.Unlock()

	for _, cont := range pending {
		cont(InvokeResult{Err: ErrShutdownCancelled})
	}
}
