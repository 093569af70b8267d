// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/flightcore/internal/config"
	"github.com/relabs-tech/flightcore/internal/gpsfeed"
)

func main() {
	configPath := flag.String("config", "./flightcore_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting flightcore GPS monitor (NMEA -> stdout)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	conn, err := gpsfeed.OpenPort(cfg.GPSSerialPort, cfg.GPSBaudRate)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	defer conn.Close()

	feed := gpsfeed.NewFeed()
	if err := feed.Run(conn, gpsfeed.LogFix); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
