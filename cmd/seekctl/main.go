// ABOUTME: Command line remote for a running seekplay player
// ABOUTME: Finds the player via -server or mDNS and sends play/stop/status
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/seekplay/seekplay/internal/discovery"
	"github.com/seekplay/seekplay/internal/remote"
)

var (
	serverAddr = flag.String("server", "", "Player address host:port (default: discover via mDNS)")
	timeout    = flag.Duration("timeout", 5*time.Second, "Discovery and reply timeout")
	verbose    = flag.Bool("v", false, "Log discovery and connection details")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: seekctl [flags] play <seconds> | stop | status\n\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "seekctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	addr := *serverAddr
	if addr == "" {
		found, err := discover(ctx)
		if err != nil {
			return err
		}
		addr = found
	}

	client, err := remote.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()

	switch args[0] {
	case "play":
		if len(args) != 2 {
			return fmt.Errorf("usage: play <seconds>")
		}
		seconds, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[1], err)
		}
		err = client.Play(time.Duration(seconds * float64(time.Second)))
		if err != nil {
			return err
		}
	case "stop":
		if err := client.Stop(); err != nil {
			return err
		}
	case "status":
		if err := client.RequestStatus(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	select {
	case state := <-client.States:
		printState(addr, state)
		return nil
	case e := <-client.Errors:
		return fmt.Errorf("player: %s", e.Message)
	case <-client.Done():
		return fmt.Errorf("connection closed: %v", client.Err())
	case <-ctx.Done():
		return fmt.Errorf("no reply from %s", addr)
	}
}

func discover(ctx context.Context) (string, error) {
	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()

	if err := disc.Browse(); err != nil {
		return "", err
	}

	select {
	case player := <-disc.Players():
		log.Printf("Using %s at %s", player.Name, player.Addr())
		return player.Addr(), nil
	case <-ctx.Done():
		return "", fmt.Errorf("no player found via mDNS")
	}
}

func printState(addr string, s remote.PlayerState) {
	fmt.Printf("%s: %s", addr, s.State)
	if s.SessionID != "" {
		fmt.Printf(" at %.1fs (session %s)", s.Position, s.SessionID)
	}
	fmt.Println()
	fmt.Printf("  chunks: %d  delivered: %d frames  underruns: %d  queue: %d\n",
		s.ChunksProduced, s.FramesDelivered, s.Underruns, s.QueueDepth)
}
