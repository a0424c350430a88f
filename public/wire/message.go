package wire

// MsgKind is the integer tag that opens every protocol message array.
type MsgKind int64

const (
	MsgLink            MsgKind = 10
	MsgInit            MsgKind = 11
	MsgUnlink          MsgKind = 12
	MsgSetProperty     MsgKind = 20
	MsgPropertyChange  MsgKind = 21
	MsgInvoke          MsgKind = 30
	MsgInvokeReply     MsgKind = 31
	MsgSignal          MsgKind = 40
	MsgError           MsgKind = 90
)

// KnownKind reports whether k is one of the message kinds above.
func KnownKind(k int64) bool {
	switch MsgKind(k) {
	case MsgLink, MsgInit, MsgUnlink, MsgSetProperty, MsgPropertyChange,
		MsgInvoke, MsgInvokeReply, MsgSignal, MsgError:
		return true
	}
	return false
}

// Message builders. These are the only functions that may construct
// the tagged-array shape of a protocol message; callers never build
// the array by hand so the wire shape stays authoritative here.

func BuildLink(objectID string) Value {
	return NewArray(NewInt(int64(MsgLink)), NewString(objectID))
}

func BuildInit(objectID string, props Value) Value {
	return NewArray(NewInt(int64(MsgInit)), NewString(objectID), props)
}

func BuildUnlink(objectID string) Value {
	return NewArray(NewInt(int64(MsgUnlink)), NewString(objectID))
}

func BuildSetProperty(memberID string, value Value) Value {
	return NewArray(NewInt(int64(MsgSetProperty)), NewString(memberID), value)
}

func BuildPropertyChange(memberID string, value Value) Value {
	return NewArray(NewInt(int64(MsgPropertyChange)), NewString(memberID), value)
}

func BuildInvoke(requestID int64, memberID string, args Value) Value {
	return NewArray(NewInt(int64(MsgInvoke)), NewInt(requestID), NewString(memberID), args)
}

func BuildInvokeReply(requestID int64, memberID string, value Value) Value {
	return NewArray(NewInt(int64(MsgInvokeReply)), NewInt(requestID), NewString(memberID), value)
}

func BuildSignal(memberID string, args Value) Value {
	return NewArray(NewInt(int64(MsgSignal)), NewString(memberID), args)
}

func BuildError(offendingKind MsgKind, requestID int64, message string) Value {
	return NewArray(NewInt(int64(MsgError)), NewInt(int64(offendingKind)), NewInt(requestID), NewString(message))
}

// At returns the i-th element of an array value, or false if msg is
// not an array or i is out of range.
func At(msg Value, i int) (Value, bool) {
	if msg.Kind() != KindArray {
		return Value{}, false
	}
	a := msg.AsArray()
	if i < 0 || i >= len(a) {
		return Value{}, false
	}
	return a[i], true
}

// KindOf returns the message kind tag of msg, and whether msg is a
// well-formed tagged array with a recognized tag.
func KindOf(msg Value) (MsgKind, bool) {
	first, ok := At(msg, 0)
	if !ok || first.Kind() != KindInt {
		return 0, false
	}
	if !KnownKind(first.AsInt()) {
		return 0, false
	}
	return MsgKind(first.AsInt()), true
}
