// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/flightcore/internal/app"
)

func main() {
	configPath := flag.String("config", "./flightcore_config.txt", "path to configuration file")
	enableLog := flag.Bool("l", false, "enable flight log file")
	quiet := flag.Bool("q", false, "suppress the operator status printer")
	groundStation := flag.String("m", "", "enable ground-station telemetry/MQTT/console, optionally to ip:port")
	flag.Parse()

	log.Println("starting flightcore attitude-mode quadrotor autopilot")

	err := app.RunFlightCore(app.Options{
		ConfigPath:    *configPath,
		EnableLog:     *enableLog,
		Quiet:         *quiet,
		GroundStation: *groundStation,
	})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
