package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/simstub"
)

func main() {
	port := flag.Int("port", simstub.DefaultPort, "Port to listen on")
	width := flag.Int("width", simstub.DefaultWidth, "Grid width")
	height := flag.Int("height", simstub.DefaultHeight, "Grid height")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Attack roll seed")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	world, err := simstub.NewDemoWorld(simstub.NewWorldOptions{
		Width:  *width,
		Height: *height,
		Seed:   *seed,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create world: %v", err))
	}

	server := simstub.NewServer(simstub.NewServerOptions{Port: *port, World: world})
	go server.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error("Failed to stop server: %v", err)
	}
}
