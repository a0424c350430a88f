// Package link defines the capability sets a client-side proxy (Sink)
// and a server-side object (Source) must implement to take part in the
// protocol, and the link-state machine a name moves through on the
// client side.
package link

import "github.com/tenzoki/agen/olink/public/wire"

// State is the client-side lifecycle of one linked object name.
type State int

const (
	Unlinked State = iota
	Linking
	Linked
	Unlinking
)

func (s State) String() string {
	switch s {
	case Unlinked:
		return "unlinked"
	case Linking:
		return "linking"
	case Linked:
		return "linked"
	case Unlinking:
		return "unlinking"
	default:
		return "unknown"
	}
}

// RemoteNode is the capability a Source uses to push unsolicited
// updates (property changes, signals) to every server node it is
// currently linked through. A concrete node.Server implements this.
type RemoteNode interface {
	NotifyPropertyChange(objectID string, memberID string, value wire.Value)
	NotifySignal(objectID string, memberID string, args wire.Value)
}

// ClientHandle is the capability a Sink uses to act on the object it
// proxies: set a property or invoke a method on the server. A concrete
// node.Client implements this.
type ClientHandle interface {
	SetRemoteProperty(memberID string, value wire.Value) error
	InvokeRemote(memberID string, args wire.Value, cont func(value wire.Value, err error)) error
}

// Sink is the client-side proxy for one remote object. A client node
// resolves an object name to a Sink via the client registry and
// forwards INIT/PROPERTY_CHANGE/SIGNAL to it.
type Sink interface {
	// ObjectName is the name this sink links to, e.g. "demo.Calc".
	ObjectName() string

	// OnInit is called once, right after a successful LINK, with the
	// object's initial property set and the handle to issue further
	// requests (SET_PROPERTY, INVOKE) through.
	OnInit(objectID string, props wire.Value, handle ClientHandle)

	// OnRelease is called when the sink is unlinked, either locally
	// through the client node's UnlinkSink or by an UNLINK from the
	// peer. Shutting down the client node does not call it.
	OnRelease()

	// OnSignal delivers one SIGNAL emitted by the remote object.
	OnSignal(memberID string, args wire.Value)

	// OnPropertyChanged delivers one PROPERTY_CHANGE for a property of
	// the remote object.
	OnPropertyChanged(memberID string, value wire.Value)
}

// Source is the server-side implementation of one remote object. A
// server node resolves an object name to a Source via the server
// registry and forwards LINK/UNLINK/SET_PROPERTY/INVOKE to it.
type Source interface {
	// ObjectName is the name this source answers LINK requests for.
	ObjectName() string

	// Invoke calls the named method with args and returns its result.
	// An error becomes an ERROR reply to the caller; it is never
	// treated as a protocol fault.
	Invoke(memberID string, args wire.Value) (wire.Value, error)

	// SetProperty applies an inbound SET_PROPERTY. Implementations
	// that accept the change are expected to fan out PROPERTY_CHANGE
	// themselves via the RemoteNode passed to Linked.
	SetProperty(memberID string, value wire.Value)

	// CollectProperties returns the full property set sent in INIT.
	CollectProperties() wire.Value

	// Linked is called every time a new server node links this
	// object, so the source can remember where to push updates.
	Linked(objectID string, node RemoteNode)

	// Unlinked is called when a server node unlinks this object.
	Unlinked(objectID string, node RemoteNode)
}
