package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/ini.v1"

	"foundcall/tones"
)

func main() {
	path := "settings.ini"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := ini.Load(path)
	if err != nil {
		fmt.Printf("failed to load settings: %v\n", err)
		return
	}

	settings, err := LoadSettings(cfg)
	if err != nil {
		fmt.Printf("failed to parse settings: %v\n", err)
		return
	}

	if err := initLogging(cfg); err != nil {
		fmt.Printf("failed to init logging: %v\n", err)
		return
	}
	defer closeLogging()
	coreLog.Infof("settings loaded for user %s", settings.UserID())

	if err := run(settings); err != nil {
		coreLog.Fatalf("fatal: %v", err)
	}
	coreLog.Info("performing a graceful shutdown...")
}

func run(settings *Settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := OpenStore(settings.DataFolder())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	recorder := NewRecorder(store, store)
	go recorder.Start(ctx)

	relay, err := DialRelay(settings.RelayAddress(), settings.UserID())
	if err != nil {
		return fmt.Errorf("connect relay: %w", err)
	}
	defer relay.Close()

	coordinator := NewCoordinator(CoordinatorConfig{
		SelfName:     settings.DisplayName(),
		RingTimeout:  settings.RingTimeout(),
		NoticeWindow: settings.NoticeWindow(),
		OnNotice: func(text string) {
			fmt.Printf("** %s **\n", text)
		},
	}, relay, tones.NewDriver(), recorder, NewPeerDirectory())

	go func() {
		if err := relay.ReadLoop(ctx, coordinator.HandleRelayEvent); err != nil {
			coreLog.Errorf("relay connection lost: %v", err)
		}
		stop()
	}()

	console := NewConsole(coordinator, store, os.Stdin, os.Stdout)
	return console.Run(ctx)
}
