package registry

import (
	"testing"

	"github.com/tenzoki/agen/olink/public/link"
	"github.com/tenzoki/agen/olink/public/wire"
)

type stubSink struct{ name string }

func (s stubSink) ObjectName() string                          { return s.name }
func (s stubSink) OnInit(string, wire.Value, link.ClientHandle) {}
func (s stubSink) OnRelease()                                  {}
func (s stubSink) OnSignal(string, wire.Value)                 {}
func (s stubSink) OnPropertyChanged(string, wire.Value)         {}

type stubSource struct{ name string }

func (s stubSource) ObjectName() string { return s.name }
func (s stubSource) Invoke(string, wire.Value) (wire.Value, error) {
	return wire.Null(), nil
}
func (s stubSource) SetProperty(string, wire.Value)       {}
func (s stubSource) CollectProperties() wire.Value        { return wire.NewMap(nil) }
func (s stubSource) Linked(string, link.RemoteNode)        {}
func (s stubSource) Unlinked(string, link.RemoteNode)      {}

type stubRemoteNode struct{ id int }

func (stubRemoteNode) NotifyPropertyChange(string, string, wire.Value) {}
func (stubRemoteNode) NotifySignal(string, string, wire.Value)         {}

type stubHandle struct{ id int }

func (stubHandle) SetRemoteProperty(string, wire.Value) error { return nil }
func (stubHandle) InvokeRemote(string, wire.Value, func(wire.Value, error)) error { return nil }

func TestClientRegistrySinkLifecycle(t *testing.T) {
	r := NewClientRegistry()
	sink := stubSink{name: "demo.Calc"}

	if _, ok := r.GetSink("demo.Calc"); ok {
		t.Fatalf("expected no sink before registration")
	}

	r.AddSink(sink)
	got, ok := r.GetSink("demo.Calc")
	if !ok || got.ObjectName() != "demo.Calc" {
		t.Fatalf("expected sink to be retrievable after AddSink")
	}

	// re-adding under the same name replaces, not duplicates
	r.AddSink(stubSink{name: "demo.Calc"})
	if _, ok := r.GetSink("demo.Calc"); !ok {
		t.Fatalf("expected sink still present after re-add")
	}

	r.RemoveSink("demo.Calc")
	if _, ok := r.GetSink("demo.Calc"); ok {
		t.Fatalf("expected sink gone after RemoveSink")
	}
}

func TestClientRegistryNode(t *testing.T) {
	r := NewClientRegistry()
	n := stubHandle{id: 1}
	r.SetNode("demo.Calc", n)
	got, ok := r.GetNode("demo.Calc")
	if !ok || got != n {
		t.Fatalf("expected node to round-trip")
	}
}

func TestServerRegistryMultiNodeFanOutSet(t *testing.T) {
	r := NewServerRegistry()
	src := stubSource{name: "demo.Calc"}
	r.AddSource(src)

	n1 := stubRemoteNode{id: 1}
	n2 := stubRemoteNode{id: 2}
	r.AttachNode("demo.Calc", n1)
	r.AttachNode("demo.Calc", n2)

	nodes := r.NodesOf("demo.Calc")
	if len(nodes) != 2 {
		t.Fatalf("expected 2 attached nodes, got %d", len(nodes))
	}

	r.DetachNode("demo.Calc", n1)
	nodes = r.NodesOf("demo.Calc")
	if len(nodes) != 1 || nodes[0] != n2 {
		t.Fatalf("expected only n2 to remain, got %v", nodes)
	}

	r.DetachNode("demo.Calc", n2)
	if nodes := r.NodesOf("demo.Calc"); len(nodes) != 0 {
		t.Fatalf("expected no nodes left, got %v", nodes)
	}
}

func TestServerRegistryDetachAll(t *testing.T) {
	r := NewServerRegistry()
	r.AddSource(stubSource{name: "demo.Calc"})
	r.AddSource(stubSource{name: "demo.Clock"})

	n1 := stubRemoteNode{id: 1}
	n2 := stubRemoteNode{id: 2}
	r.AttachNode("demo.Calc", n1)
	r.AttachNode("demo.Calc", n2)
	r.AttachNode("demo.Clock", n1)

	r.DetachAll(n1)
	if nodes := r.NodesOf("demo.Calc"); len(nodes) != 1 || nodes[0] != n2 {
		t.Fatalf("expected only n2 on demo.Calc, got %v", nodes)
	}
	if nodes := r.NodesOf("demo.Clock"); len(nodes) != 0 {
		t.Fatalf("expected demo.Clock empty, got %v", nodes)
	}
	// sources themselves survive losing their last node
	if _, ok := r.GetSource("demo.Clock"); !ok {
		t.Fatalf("expected demo.Clock source to remain registered")
	}
}

func TestServerRegistrySourceLifecycle(t *testing.T) {
	r := NewServerRegistry()
	if _, ok := r.GetSource("demo.Calc"); ok {
		t.Fatalf("expected no source before registration")
	}
	r.AddSource(stubSource{name: "demo.Calc"})
	if _, ok := r.GetSource("demo.Calc"); !ok {
		t.Fatalf("expected source present")
	}
	r.RemoveSource("demo.Calc")
	if _, ok := r.GetSource("demo.Calc"); ok {
		t.Fatalf("expected source gone after RemoveSource")
	}
}

func TestDefaultRegistriesAreSingletons(t *testing.T) {
	if DefaultClient() != DefaultClient() {
		t.Fatalf("expected DefaultClient to return the same instance")
	}
	if DefaultServer() != DefaultServer() {
		t.Fatalf("expected DefaultServer to return the same instance")
	}
}
