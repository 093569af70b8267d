// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/relabs-tech/flightcore/internal/actuator"
	"github.com/relabs-tech/flightcore/internal/arm"
	"github.com/relabs-tech/flightcore/internal/config"
	"github.com/relabs-tech/flightcore/internal/console"
	"github.com/relabs-tech/flightcore/internal/core"
	"github.com/relabs-tech/flightcore/internal/flightlog"
	"github.com/relabs-tech/flightcore/internal/gpsfeed"
	"github.com/relabs-tech/flightcore/internal/groundbus"
	"github.com/relabs-tech/flightcore/internal/imu"
	"github.com/relabs-tech/flightcore/internal/indicator"
	"github.com/relabs-tech/flightcore/internal/link"
	"github.com/relabs-tech/flightcore/internal/pausebtn"
	"github.com/relabs-tech/flightcore/internal/radio"
	"github.com/relabs-tech/flightcore/internal/runtime"
	"github.com/relabs-tech/flightcore/internal/safety"
	"github.com/relabs-tech/flightcore/internal/stack"
	"github.com/relabs-tech/flightcore/internal/telemetry"
)

// sampleRateHz is the IMU sample/control rate; must agree with
// core.DT = 5ms (spec 5).
const sampleRateHz = 1.0 / core.DT

// printerPeriod is the operator status line rate (spec 4.8: "~5 Hz").
const printerPeriod = 200 * time.Millisecond

// watcherPeriod is the link watcher and flight stack's own poll rate
// (spec 4.4, 4.7: "~100 Hz").
const watcherPeriod = 10 * time.Millisecond

// Options mirrors cmd/flightcore's CLI surface (spec 6).
type Options struct {
	ConfigPath string

	// EnableLog turns on the flight log file (-l).
	EnableLog bool

	// Quiet suppresses the operator printer (-q).
	Quiet bool

	// GroundStation enables telemetry/MQTT/console when non-empty. A
	// value that parses as a host:port overrides the configured
	// telemetry address; any other non-empty value (e.g. "on") just
	// switches the ground-station surfaces on at their configured
	// defaults. Mirrors spec 6's "-m [ip]" optional-argument flag,
	// which the standard flag package cannot express directly.
	GroundStation string
}

// RunFlightCore wires every package built for this flight core into one
// running process and blocks until the pause button (or a fatal driver
// error) requests shutdown.
func RunFlightCore(opts Options) error {
	log.Println("starting flightcore (attitude-mode quadrotor autopilot)")

	if err := config.InitGlobal(opts.ConfigPath); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg := config.Get()

	driver, err := actuator.NewHWDriver(cfg.ActuatorPins)
	if err != nil {
		return fmt.Errorf("actuator: %w", err)
	}
	defer driver.Close()

	ring := flightlog.NewRing(4096)
	logWriter := flightlog.NewWriter(ring, "flightcore.log", opts.EnableLog)

	c := core.New(&core.Setpoint{}, driver, ring, cfg)

	imuDev := imu.NewHWDevice(cfg.IMUSPIDevice, cfg.IMUCSPin)
	imuDev.SetSampleCallback(func() {
		sample, ok := imuDev.Read()
		c.Tick(sample.Euler, sample.RawGyro, ok)
	})
	if err := imuDev.Init(sampleRateHz, imu.IdentityOrientation); err != nil {
		return fmt.Errorf("imu: %w", err)
	}
	defer imuDev.Close()

	rx := radio.NewHWReceiver(cfg.RadioSerialPort, cfg.RadioBaudRate)
	if err := rx.Init(); err != nil {
		return fmt.Errorf("radio: %w", err)
	}
	defer rx.Close()

	ui := &link.UserInterface{}
	rt := runtime.New()

	armSup := arm.New(opts.ConfigPath, cfg, c, ui, driver, rt)
	flightStack := stack.New(c.Setpoint, ui, armSup)

	watcher := link.NewWatcher(rx, ui,
		func() { flightStack.SetMode(stack.FlightModeEmergencyLand) },
		func() { c.Setpoint.Disarm() },
	)
	watcher.OnMode = func(ch6 float64) {
		flightStack.SetMode(stack.FlightModeUserAttitude)
	}

	safetySup := safety.New(c.State, c.Setpoint, cfg.TipThreshold, rt)

	led, err := indicator.NewLED(cfg.LEDRedPin, cfg.LEDGreenPin, c.Setpoint, rt)
	if err != nil {
		return fmt.Errorf("indicator: %w", err)
	}

	button, err := pausebtn.NewButton(cfg.ButtonPin, rt, func() { c.Setpoint.Disarm() })
	if err != nil {
		return fmt.Errorf("pausebtn: %w", err)
	}

	oled, oledBus, oledErr := indicator.NewHWOLED(cfg.OLEDI2CAddr)
	if oledErr != nil {
		log.Printf("indicator: no OLED status panel, continuing without it: %v", oledErr)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		logWriter.Run(stop)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(watcherPeriod)
		defer ticker.Stop()
		for rt.Running() {
			watcher.Period()
			<-ticker.C
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(watcherPeriod)
		defer ticker.Stop()
		for rt.Running() {
			flightStack.Period()
			<-ticker.C
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		safetySup.Run()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		led.Run()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		button.Run()
	}()

	if oled != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			oled.Run(rt, c.Setpoint, flightStack, c.State)
		}()
	}

	if !opts.Quiet {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runOperatorPrinter(rt, c.Setpoint, c.State)
		}()
	}

	var httpSrv *http.Server
	var bus *groundbus.Bus
	var sender *telemetry.Sender
	var gpsConn io.Closer
	if opts.GroundStation != "" {
		bus, err = groundbus.New(cfg.MQTTBroker, cfg.MQTTClientID, cfg.TopicAttitude, cfg.TopicMode, cfg.TopicArmed, cfg.TopicGPS)
		if err != nil {
			log.Printf("groundbus: connect failed, continuing without it: %v", err)
			bus = nil
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				bus.Run(stop, c.State, c.Setpoint, flightStack)
			}()
		}

		telemetryAddr := cfg.TelemetryGroundStationAddr
		if isHostPort(opts.GroundStation) {
			telemetryAddr = opts.GroundStation
		}
		var terr error
		sender, terr = telemetry.New(telemetryAddr)
		if terr != nil {
			log.Printf("telemetry: dial failed, continuing without it: %v", terr)
			sender = nil
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sender.Run(stop, c.State, c.Setpoint)
			}()
		}

		consoleSrv := console.New(c.State, c.Setpoint)
		httpSrv = &http.Server{Addr: fmt.Sprintf(":%d", cfg.WebConsolePort), Handler: consoleSrv.Handler()}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("console: server error: %v", err)
			}
		}()

		if cfg.GPSSerialPort != "" {
			conn, gerr := gpsfeed.OpenPort(cfg.GPSSerialPort, cfg.GPSBaudRate)
			if gerr != nil {
				log.Printf("gpsfeed: open failed, continuing without GPS: %v", gerr)
			} else {
				gpsConn = conn
				wg.Add(1)
				go func() {
					defer wg.Done()
					feed := gpsfeed.NewFeed()
					if err := feed.Run(conn, func(fix gpsfeed.Fix) {
						if fix.Valid {
							c.Setpoint.SetPosition(fix.Latitude, fix.Longitude, fix.Altitude)
						}
						if bus != nil {
							bus.PublishGPS(fix)
						}
					}); err != nil {
						log.Printf("gpsfeed: stopped: %v", err)
					}
				}()
			}
		}
	}

	for rt.Running() {
		time.Sleep(watcherPeriod)
	}

	log.Println("flightcore: shutdown requested, disarming")
	c.Setpoint.Disarm()
	close(stop)
	if httpSrv != nil {
		_ = httpSrv.Close()
	}
	if bus != nil {
		bus.Close()
	}
	if sender != nil {
		_ = sender.Close()
	}
	if gpsConn != nil {
		_ = gpsConn.Close()
	}
	if oledBus != nil {
		_ = oledBus.Close()
	}
	wg.Wait()
	log.Println("flightcore: shutdown complete")
	return nil
}

func isHostPort(s string) bool {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return true
		}
	}
	return false
}

func runOperatorPrinter(rt *runtime.Controller, sp *core.Setpoint, state *core.State) {
	ticker := time.NewTicker(printerPeriod)
	defer ticker.Stop()
	for rt.Running() {
		st := state.Snapshot()
		log.Printf("status: mode=%s roll=%.2f pitch=%.2f yaw=%.2f esc=%.2f/%.2f/%.2f/%.2f loop=%d",
			sp.Mode(), st.Roll, st.Pitch, st.Yaw, st.ESC[0], st.ESC[1], st.ESC[2], st.ESC[3], st.LoopCounter)
		<-ticker.C
	}
}
