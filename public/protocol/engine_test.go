package protocol

import (
	"sync"
	"testing"

	"github.com/tenzoki/agen/olink/public/wire"
)

// recordingListener captures every hook call for assertions.
type recordingListener struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingListener) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recordingListener) OnLink(objectID string)      { r.record("link:" + objectID) }
func (r *recordingListener) OnInit(objectID string, props wire.Value) {
	r.record("init:" + objectID)
}
func (r *recordingListener) OnUnlink(objectID string) { r.record("unlink:" + objectID) }
func (r *recordingListener) OnSetProperty(memberID string, value wire.Value) {
	r.record("setprop:" + memberID)
}
func (r *recordingListener) OnPropertyChange(memberID string, value wire.Value) {
	r.record("propchange:" + memberID)
}
func (r *recordingListener) OnInvoke(requestID int64, memberID string, args wire.Value) {
	r.record("invoke:" + memberID)
}
func (r *recordingListener) OnInvokeReply(requestID int64, memberID string, value wire.Value) {
	r.record("invokereply:" + memberID)
}
func (r *recordingListener) OnSignal(memberID string, args wire.Value) {
	r.record("signal:" + memberID)
}
func (r *recordingListener) OnError(offendingKind wire.MsgKind, requestID int64, message string) {
	r.record("error")
}

// capturingWriter stores every frame written, decoding it back for
// assertions against the wire message shape.
type capturingWriter struct {
	mu     sync.Mutex
	frames [][]byte
	codec  wire.Codec
}

func newCapturingWriter(codec wire.Codec) *capturingWriter {
	return &capturingWriter{codec: codec}
}

func (w *capturingWriter) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames = append(w.frames, data)
	return nil
}

func (w *capturingWriter) last() wire.Value {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, _ := w.codec.Decode(w.frames[len(w.frames)-1])
	return v
}

func (w *capturingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.frames)
}

func TestHandleMessageDispatchesByKind(t *testing.T) {
	listener := &recordingListener{}
	writer := newCapturingWriter(wire.New(wire.JSON))
	e := New(listener, writer, wire.JSON, nil)

	frame, _ := wire.New(wire.JSON).Encode(wire.BuildLink("demo.Calc"))
	e.HandleMessage(frame)

	if len(listener.calls) != 1 || listener.calls[0] != "link:demo.Calc" {
		t.Fatalf("unexpected calls: %v", listener.calls)
	}
}

func TestHandleMessageDropsMalformed(t *testing.T) {
	listener := &recordingListener{}
	writer := newCapturingWriter(wire.New(wire.JSON))
	e := New(listener, writer, wire.JSON, nil)

	e.HandleMessage([]byte("not json at all{"))

	if len(listener.calls) != 0 {
		t.Fatalf("expected no listener calls for malformed input, got %v", listener.calls)
	}
	// best-effort ERROR(0, 0, ...) should have been written
	if writer.count() != 1 {
		t.Fatalf("expected one best-effort ERROR frame, got %d", writer.count())
	}
	errMsg := writer.last()
	kind, _ := wire.KindOf(errMsg)
	if kind != wire.MsgError {
		t.Fatalf("expected ERROR frame, got kind %v", kind)
	}
}

func TestHandleMessageDropsUnknownKind(t *testing.T) {
	listener := &recordingListener{}
	writer := newCapturingWriter(wire.New(wire.JSON))
	e := New(listener, writer, wire.JSON, nil)

	frame, _ := wire.New(wire.JSON).Encode(wire.NewArray(wire.NewInt(12345), wire.NewString("x")))
	e.HandleMessage(frame)

	if len(listener.calls) != 0 {
		t.Fatalf("expected no dispatch for unknown kind, got %v", listener.calls)
	}
}

func TestWriteInvokeRequestIDsAreUnique(t *testing.T) {
	listener := &recordingListener{}
	writer := newCapturingWriter(wire.New(wire.JSON))
	e := New(listener, writer, wire.JSON, nil)

	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		if err := e.WriteInvoke("demo.Calc/add", wire.NewArray(wire.NewInt(1)), nil); err != nil {
			t.Fatalf("WriteInvoke: %v", err)
		}
		msg := writer.last()
		id, _ := wire.At(msg, 1)
		if seen[id.AsInt()] {
			t.Fatalf("request id %d reused", id.AsInt())
		}
		seen[id.AsInt()] = true
	}
	if _, ok := seen[1]; !ok {
		t.Fatalf("first request id should be 1")
	}
}

func TestInvokeReplyMatchesContinuationExactly(t *testing.T) {
	listener := &recordingListener{}
	writer := newCapturingWriter(wire.New(wire.JSON))
	e := New(listener, writer, wire.JSON, nil)

	var calls int
	var result InvokeResult
	e.WriteInvoke("demo.Calc/add", wire.NewArray(wire.NewInt(4)), func(r InvokeResult) {
		calls++
		result = r
	})
	invokeMsg := writer.last()
	id, _ := wire.At(invokeMsg, 1)

	replyFrame, _ := wire.New(wire.JSON).Encode(wire.BuildInvokeReply(id.AsInt(), "demo.Calc/add", wire.NewInt(5)))
	e.HandleMessage(replyFrame)

	if calls != 1 {
		t.Fatalf("expected continuation called exactly once, got %d", calls)
	}
	if result.Value.AsInt() != 5 {
		t.Fatalf("expected reply value 5, got %v", result.Value)
	}

	// a second reply with the same id should not re-fire the
	// continuation, and should surface as an unmatched ERROR instead.
	e.HandleMessage(replyFrame)
	if calls != 1 {
		t.Fatalf("continuation fired again on duplicate reply: %d calls", calls)
	}
	errMsg := writer.last()
	kind, _ := wire.KindOf(errMsg)
	if kind != wire.MsgError {
		t.Fatalf("expected ERROR for unmatched reply, got %v", kind)
	}
}

func TestUnmatchedInvokeReplyEmitsError(t *testing.T) {
	listener := &recordingListener{}
	writer := newCapturingWriter(wire.New(wire.JSON))
	e := New(listener, writer, wire.JSON, nil)

	frame, _ := wire.New(wire.JSON).Encode(wire.BuildInvokeReply(999, "demo.Calc/add", wire.NewInt(0)))
	e.HandleMessage(frame)

	msg := writer.last()
	kind, _ := wire.KindOf(msg)
	if kind != wire.MsgError {
		t.Fatalf("expected ERROR, got %v", kind)
	}
	offending, _ := wire.At(msg, 1)
	reqID, _ := wire.At(msg, 2)
	if wire.MsgKind(offending.AsInt()) != wire.MsgInvoke || reqID.AsInt() != 999 {
		t.Fatalf("unexpected ERROR payload: %v", msg)
	}
}

func TestShutdownCancelsPendingInvokes(t *testing.T) {
	listener := &recordingListener{}
	writer := newCapturingWriter(wire.New(wire.JSON))
	e := New(listener, writer, wire.JSON, nil)

	var got []error
	for i := 0; i < 3; i++ {
		e.WriteInvoke("demo.Calc/add", wire.NewArray(wire.NewInt(1)), func(r InvokeResult) {
			got = append(got, r.Err)
		})
	}

	e.Shutdown()

	if len(got) != 3 {
		t.Fatalf("expected 3 cancellations, got %d", len(got))
	}
	for _, err := range got {
		if err != ErrShutdownCancelled {
			t.Errorf("expected ErrShutdownCancelled, got %v", err)
		}
	}

	if err := e.WriteLink("demo.Calc"); err != ErrEngineClosed {
		t.Errorf("expected ErrEngineClosed after shutdown, got %v", err)
	}
}

func TestOutboundOrderMatchesCallOrder(t *testing.T) {
	listener := &recordingListener{}
	writer := newCapturingWriter(wire.New(wire.JSON))
	e := New(listener, writer, wire.JSON, nil)

	e.WritePropertyChange("demo.Calc/total", wire.NewInt(5))
	e.WriteSignal("demo.Calc/hitUpper", wire.NewArray(wire.NewInt(10)))
	e.WriteInvokeReply(1, "demo.Calc/add", wire.NewInt(5))

	if writer.count() != 3 {
		t.Fatalf("expected 3 frames, got %d", writer.count())
	}
	codec := wire.New(wire.JSON)
	kinds := make([]wire.MsgKind, 3)
	for i, f := range writer.frames {
		v, _ := codec.Decode(f)
		k, _ := wire.KindOf(v)
		kinds[i] = k
	}
	want := []wire.MsgKind{wire.MsgPropertyChange, wire.MsgSignal, wire.MsgInvokeReply}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("frame %d: got kind %v, want %v", i, kinds[i], want[i])
		}
	}
}
