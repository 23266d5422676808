// ABOUTME: Entry point for the seekplay player
// ABOUTME: Loads config, opens the source and drives play/stop from the TUI, stdin or remote
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/seekplay/seekplay/internal/config"
	"github.com/seekplay/seekplay/internal/discovery"
	"github.com/seekplay/seekplay/internal/remote"
	"github.com/seekplay/seekplay/internal/resolve"
	"github.com/seekplay/seekplay/internal/ui"
	"github.com/seekplay/seekplay/internal/version"
	"github.com/seekplay/seekplay/pkg/audio/decode"
	"github.com/seekplay/seekplay/pkg/audio/output"
	"github.com/seekplay/seekplay/pkg/seekplay"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "seekplay: %v\n", err)
		os.Exit(2)
	}

	useTUI := !cfg.NoTUI

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s", version.String())

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls

	if useTUI {
		controls = ui.NewControls()
		tuiProg, err = ui.Run(controls, cfg.Locator)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go tuiProg.Run()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	var remoteServer *remote.Server
	broadcast := func() {
		if remoteServer != nil {
			remoteServer.Broadcast()
		}
	}

	resolver := resolve.Default(resolve.YouTubeConfig{
		CookiesFromBrowser: cfg.CookiesFromBrowser,
		CookiesFile:        cfg.CookiesFile,
	})

	if !useTUI {
		fmt.Printf("Opening %s...\n", cfg.Locator)
	}

	player, err := seekplay.New(seekplay.Config{
		Locator:  cfg.Locator,
		Resolver: resolver,
		DecodeOptions: decode.Options{
			SampleRate: cfg.SampleRate,
			FFmpegPath: cfg.FFmpegPath,
		},
		SinkName:      cfg.Sink,
		SinkOptions:   output.Options{FramesPerBuffer: cfg.FramesPerBuffer},
		QueueCapacity: cfg.QueueCapacity,
		ChunkFrames:   cfg.ChunkFrames,
		FetchPolicy:   cfg.FetchPolicy,
		OnStateChange: func(state seekplay.State) {
			updateTUI(ui.StatusMsg{State: state.String()})
		},
		OnError: func(err error) {
			log.Printf("Player error: %v", err)
			updateTUI(ui.StatusMsg{Err: err.Error()})
			broadcast()
		},
		OnEnd: func() {
			updateTUI(ui.StatusMsg{Err: "end of stream"})
			broadcast()
		},
	})
	if err != nil {
		if tuiProg != nil {
			tuiProg.Quit()
			tuiProg.Wait()
		}
		log.Printf("Failed to open %s: %v", cfg.Locator, err)
		fmt.Fprintf(os.Stderr, "seekplay: %v\n", err)
		os.Exit(1)
	}

	log.Printf("Opened %s (%s)", cfg.Locator, player.Format())

	// Remote control and mDNS
	var disc *discovery.Manager
	if cfg.Listen != "" || cfg.MDNS {
		addr := cfg.Listen
		if addr == "" {
			addr = config.DefaultListen
		}
		srv := remote.New(remote.Config{Addr: addr, Controller: player})
		if err := srv.Start(); err != nil {
			log.Printf("Remote control disabled: %v", err)
		} else {
			remoteServer = srv
		}

		if remoteServer != nil && cfg.MDNS {
			disc = discovery.NewManager(discovery.Config{
				ServiceName: cfg.ServiceName(),
				Port:        remoteServer.Port(),
				Path:        remote.Path,
			})
			if err := disc.Advertise(); err != nil {
				log.Printf("mDNS advertisement failed: %v", err)
			}
		}
	}

	if err := player.Play(cfg.Start); err != nil {
		log.Printf("Play failed: %v", err)
		updateTUI(ui.StatusMsg{Err: err.Error()})
	}
	broadcast()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	if controls != nil {
		go handleCommands(ctx, player, controls, updateTUI, broadcast)
		go statsUpdateLoop(ctx, player, updateTUI)

		select {
		case <-controls.Quit:
			log.Printf("Received quit signal from TUI")
		case <-sigChan:
			log.Printf("Shutdown signal received")
			tuiProg.Quit()
		}
	} else {
		quit := make(chan struct{})
		go promptLoop(os.Stdin, os.Stdout, player, broadcast, quit)

		select {
		case <-quit:
		case <-sigChan:
			log.Printf("Shutdown signal received")
		}
	}
	cancel()

	if disc != nil {
		disc.Stop()
	}
	if remoteServer != nil {
		if err := remoteServer.Stop(); err != nil {
			log.Printf("Error stopping remote control: %v", err)
		}
	}

	if err := player.Close(); err != nil {
		log.Printf("Error closing player: %v", err)
	}

	log.Printf("Player stopped")
}

// controller is the part of the player the local command paths drive
type controller interface {
	Play(start time.Duration) error
	Stop() error
}

// handleCommands applies prompt commands from the TUI
func handleCommands(ctx context.Context, player controller, controls *ui.Controls, updateTUI func(ui.StatusMsg), broadcast func()) {
	for {
		select {
		case cmd := <-controls.Commands:
			var err error
			if cmd.Stop {
				log.Printf("Stop requested")
				err = player.Stop()
			} else {
				log.Printf("Play requested from %v", cmd.Position)
				err = player.Play(cmd.Position)
			}
			if err != nil {
				log.Printf("Command failed: %v", err)
				updateTUI(ui.StatusMsg{Err: err.Error()})
			}
			broadcast()
		case <-ctx.Done():
			return
		}
	}
}

// statsUpdateLoop periodically updates the TUI with session counters
func statsUpdateLoop(ctx context.Context, player *seekplay.Player, updateTUI func(ui.StatusMsg)) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	format := player.Format().String()

	for {
		select {
		case <-ticker.C:
			status := player.Status()
			stats := player.Stats()

			updateTUI(ui.StatusMsg{
				State:           status.State.String(),
				SessionID:       status.SessionID,
				Start:           status.Start,
				Position:        status.Position,
				Format:          format,
				Underruns:       stats.Underruns,
				FramesDelivered: stats.FramesDelivered,
				ChunksProduced:  stats.ChunksProduced,
				QueueDepth:      stats.QueueDepth,
				QueueCapacity:   stats.QueueCapacity,
			})
		case <-ctx.Done():
			return
		}
	}
}

// promptLoop reads seek positions from in until "exit" or EOF
func promptLoop(in io.Reader, out io.Writer, player controller, broadcast func(), quit chan<- struct{}) {
	defer close(quit)

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "Position in seconds (s = stop, exit = quit): ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
		case "exit", "quit", "q":
			return
		case "s", "stop":
			if err := player.Stop(); err != nil {
				fmt.Fprintf(out, "Stop failed: %v\n", err)
			}
			broadcast()
		default:
			seconds, err := strconv.ParseFloat(line, 64)
			if err != nil || seconds < 0 {
				fmt.Fprintf(out, "Invalid position %q\n", line)
				break
			}
			if err := player.Play(time.Duration(seconds * float64(time.Second))); err != nil {
				fmt.Fprintf(out, "Play failed: %v\n", err)
			}
			broadcast()
		}
		fmt.Fprint(out, "Position in seconds (s = stop, exit = quit): ")
	}
}
