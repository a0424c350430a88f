package protocol

import "github.com/tenzoki/agen/olink/public/wire"

// Listener is what the protocol engine requires from its upper layer
// (a client or server node): one hook per message kind. The engine
// makes no assumption about threading — a hook may re-enter the
// engine (e.g. sending a reply from inside OnInvoke) provided the
// transport Writer is re-entrant.
type Listener interface {
	OnLink(objectID string)
	OnInit(objectID string, props wire.Value)
	OnUnlink(objectID string)
	OnSetProperty(memberID string, value wire.Value)
	OnPropertyChange(memberID string, value wire.Value)
	OnInvoke(requestID int64, memberID string, args wire.Value)
	OnInvokeReply(requestID int64, memberID string, value wire.Value)
	OnSignal(memberID string, args wire.Value)
	OnError(offendingKind wire.MsgKind, requestID int64, message string)
}

// Writer is the transport capability the engine writes frames to. It
// is synchronous from the engine's point of view and may be called
// re-entrantly during inbound dispatch.
type Writer interface {
	Write(data []byte) error
}
