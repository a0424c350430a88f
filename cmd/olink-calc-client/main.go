// Command olink-calc-client dials an olink-calc-server, links the
// demo.Calc object, and drives it from the command line:
//
//	olink-calc-client -addr localhost:8282 add 4 add 6 sub 2 clear
//
// Property changes and signals arriving from the server are printed
// as they happen.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/tenzoki/agen/olink/examples/calc"
	"github.com/tenzoki/agen/olink/internal/logging"
	"github.com/tenzoki/agen/olink/public/node"
	"github.com/tenzoki/agen/olink/public/registry"
	"github.com/tenzoki/agen/olink/public/transport/stream"
	"github.com/tenzoki/agen/olink/public/wire"
)

func main() {
	addr := flag.String("addr", "localhost:8282", "server address to dial")
	codec := flag.String("codec", "json", "wire format: json, bson, msgpack or cbor")
	timeout := flag.Duration("timeout", 5*time.Second, "per-operation timeout")
	flag.Parse()

	ops, err := parseOps(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] {add N | sub N | clear | set N}...\n%v\n", os.Args[0], err)
		os.Exit(2)
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to dial %s: %v", *addr, err)
	}
	framer := stream.New(conn)

	reg := registry.NewClientRegistry()
	client := node.NewClient(reg, framer, wire.ParseFormat(*codec), logging.New("olink-client"))

	sink := calc.NewSink()
	sink.OnTotalChanged = func(total int64) { fmt.Printf("total -> %d\n", total) }
	sink.OnHitUpper = func(threshold int64) { fmt.Printf("hitUpper(%d)\n", threshold) }
	sink.OnHitLower = func(threshold int64) { fmt.Printf("hitLower(%d)\n", threshold) }
	reg.AddSink(sink)

	done := make(chan struct{})
	go func() {
		framer.Pump(client.HandleMessage)
		close(done)
	}()

	if err := client.LinkSink(calc.ObjectName); err != nil {
		log.Fatalf("Failed to link %s: %v", calc.ObjectName, err)
	}
	if err := waitReady(sink, *timeout); err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("linked %s, total=%d\n", calc.ObjectName, sink.Total())

	for _, op := range ops {
		if err := run(sink, op, *timeout); err != nil {
			log.Fatalf("%s: %v", op.verb, err)
		}
	}

	client.UnlinkSink(calc.ObjectName)
	client.Shutdown()
	framer.Close()
	<-done
}

type op struct {
	verb string
	arg  int64
}

// parseOps turns positional arguments like "add 4 sub 2 clear" into
// an operation list.
func parseOps(args []string) ([]op, error) {
	var ops []op
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "clear":
			ops = append(ops, op{verb: "clear"})
		case "add", "sub", "set":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s needs an integer argument", args[i])
			}
			n, err := strconv.ParseInt(args[i+1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", args[i], err)
			}
			ops = append(ops, op{verb: args[i], arg: n})
			i++
		default:
			return nil, fmt.Errorf("unknown operation %q", args[i])
		}
	}
	return ops, nil
}

func waitReady(sink *calc.Sink, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !sink.Ready() {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for INIT from server")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// run performs one operation and waits for its reply, so output lines
// interleave in command order.
func run(sink *calc.Sink, o op, timeout time.Duration) error {
	if o.verb == "set" {
		return sink.SetTotal(o.arg)
	}

	replied := make(chan error, 1)
	cont := func(total int64, err error) {
		if err == nil {
			fmt.Printf("%s -> %d\n", o.verb, total)
		}
		replied <- err
	}

	var err error
	switch o.verb {
	case "add":
		err = sink.Add(o.arg, cont)
	case "sub":
		err = sink.Sub(o.arg, cont)
	case "clear":
		err = sink.Clear(cont)
	}
	if err != nil {
		return err
	}
	select {
	case err := <-replied:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("no reply within %v", timeout)
	}
}
