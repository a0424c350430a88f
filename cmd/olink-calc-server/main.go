// Command olink-calc-server publishes a demo.Calc source over TCP.
// Every accepted connection gets its own server node; all of them
// share one server registry, so property changes and signals fan out
// to every connected client.
package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/tenzoki/agen/olink/examples/calc"
	"github.com/tenzoki/agen/olink/internal/config"
	"github.com/tenzoki/agen/olink/internal/logging"
	"github.com/tenzoki/agen/olink/public/node"
	"github.com/tenzoki/agen/olink/public/registry"
	"github.com/tenzoki/agen/olink/public/transport/stream"
	"github.com/tenzoki/agen/olink/public/wire"
)

func main() {
	var cfg *config.Config
	var configSource string

	if len(os.Args) >= 2 {
		loaded, err := config.Load(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to load config from %s: %v", os.Args[1], err)
		}
		cfg = loaded
		configSource = fmt.Sprintf("config file: %s", os.Args[1])
	} else if _, err := os.Stat("config/olink.yaml"); err == nil {
		loaded, err := config.Load("config/olink.yaml")
		if err != nil {
			log.Fatalf("Failed to load config/olink.yaml: %v", err)
		}
		cfg = loaded
		configSource = "config/olink.yaml (default)"
	} else {
		cfg = config.Default()
		configSource = "built-in defaults"
	}

	session, err := logging.NewSession(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to open session log: %v", err)
	}
	defer session.Close()
	session.Infof("%s server starting (%s), listening on %s, codec %s",
		cfg.AppName, configSource, cfg.Server.Listen, cfg.Server.Codec)

	format := wire.ParseFormat(cfg.Server.Codec)
	reg := registry.NewServerRegistry()
	reg.AddSource(calc.NewSource(reg))

	listener, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.Server.Listen, err)
	}

	var wg sync.WaitGroup
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		session.Infof("shutting down")
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			break
		}
		wg.Add(1)
		go func(conn net.Conn) {
			defer wg.Done()
			serve(conn, reg, format, session)
		}(conn)
	}
	wg.Wait()
	session.Infof("server stopped, session log at %s", session.Path())
}

// serve runs one connection's server node until the peer disconnects.
func serve(conn net.Conn, reg *registry.ServerRegistry, format wire.Format, session *logging.SessionLogger) {
	connID := uuid.New().String()[:8]
	session.Infof("[%s] connection from %s", connID, conn.RemoteAddr())

	framer := stream.New(conn)
	srv := node.NewServer(reg, framer, format, session)

	err := framer.Pump(srv.HandleMessage)
	srv.Shutdown()
	// A departing client cannot UNLINK anymore; drop its node from
	// every object's fan-out set so notifications stop targeting it.
	reg.DetachAll(srv)
	framer.Close()
	session.Infof("[%s] connection closed: %v", connID, err)
}
