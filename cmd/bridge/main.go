package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/mama165/sdk-go/logs"

	"bbb-pads/bus"
	"bbb-pads/etherpad"
	"bbb-pads/internal"
	"bbb-pads/mapper"
	"bbb-pads/proxy"
	"bbb-pads/store"
	"bbb-pads/workers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the bridge and blocks until the workers drained. Returning the
// error instead of exiting keeps defers running and the wiring testable.
func run() error {
	config, err := internal.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	api := etherpad.NewClient(etherpad.Config{
		Scheme:  config.EtherpadScheme,
		Host:    config.EtherpadHost,
		Port:    config.EtherpadPort,
		APIKey:  config.EtherpadAPIKey,
		Version: config.EtherpadVersion,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One key check up front: a bad apikey fails every later call, better to
	// refuse to start.
	if _, err := api.Call(ctx, "checkToken", nil); err != nil {
		return fmt.Errorf("editing service rejected the api key: %w", err)
	}

	transport := bus.NewStdio(os.Stdin, os.Stdout)
	defer transport.Close()
	addresses := mapper.New(log)
	sender := bus.NewSender(transport, log)
	hierarchy := store.New(api, addresses, sender, log, store.Options{
		SessionTTL:     config.SessionTTL,
		UpdateThrottle: config.UpdateThrottle,
	})
	handler := bus.NewHandler(hierarchy, log)

	target, err := url.Parse(fmt.Sprintf("%s://%s:%d", config.EtherpadScheme, config.EtherpadHost, config.EtherpadPort))
	if err != nil {
		return fmt.Errorf("editing service address invalid: %w", err)
	}
	exportProxy := proxy.New(api, target, fmt.Sprintf("%s:%d", config.ProxyHost, config.ProxyPort),
		config.SessionTTL, log)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewConsumeWorker(transport, handler, log),
		exportProxy,
	)
	if config.MonitorEnabled {
		sup.Add(workers.NewMonitorWorker(hierarchy, addresses, api, config.MonitorInterval, log))
	}

	log.Info("bridge started")
	sup.Run(ctx)
	log.Info("bridge stopped")

	return nil
}
