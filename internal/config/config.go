// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package config loads and holds the flight core's tunable parameters:
// controller gains, trims, and safety thresholds. It mirrors the
// KEY=VALUE text format and singleton access pattern used across the
// rest of this codebase's tooling.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all flight-core tunables. Reloaded in full on every arm
// sequence (spec: "Config created at startup... On arm: ... config
// reloaded").
type Config struct {
	// Controller gains (roll-rate, pitch-rate, yaw PIDs).
	RollRateKp float64
	RollRateKi float64
	RollRateKd float64

	PitchRateKp float64
	PitchRateKi float64
	PitchRateKd float64

	YawKp float64
	YawKi float64
	YawKd float64

	// Derivative cutoff (tau_d) shared by all three PIDs; DT-dependent.
	DerivativeCutoff float64

	// Outer attitude->rate conversion gains.
	RollRatePerRad  float64
	PitchRatePerRad float64

	// Throttle / setpoint envelope.
	IdleThrottle float64
	MaxThrust    float64
	MaxRoll      float64 // rad
	MaxPitch     float64 // rad
	MaxYawRate   float64 // rad/s

	// ArmTipThreshold bounds |roll| and |pitch| during the arming
	// gesture's level checks (spec 4.5 steps 1 and 6). Deliberately
	// tighter than the in-flight TipThreshold since the craft is
	// expected to be motionless on the ground.
	ArmTipThreshold float64 // rad

	// TipThreshold is the in-flight roll/pitch excursion that disarms
	// immediately (spec 4.6).
	TipThreshold float64 // rad

	// Per-axis saturation of controller outputs (normal flight).
	MaxRollOutput  float64
	MaxPitchOutput float64
	MaxYawOutput   float64

	// Sensor-axis trims (known sensor-axis bugs corrected at estimator
	// level; spec §4.2).
	IMURollErr  float64
	IMUPitchErr float64

	// IMU full-scale range for gyro, degrees/sec.
	GyroFSR float64

	// Hardware wiring (periph.io device addressing).
	IMUSPIDevice string
	IMUCSPin     string

	RadioSerialPort string
	RadioBaudRate   int

	LEDRedPin   string
	LEDGreenPin string
	ButtonPin   string

	// OLEDI2CAddr is the SSD1306 status panel's I2C address.
	OLEDI2CAddr uint16

	ActuatorPins [4]string

	// Ground station / telemetry.
	TelemetryGroundStationAddr string
	MQTTBroker                 string
	MQTTClientID               string

	TopicAttitude string
	TopicMode     string
	TopicArmed    string
	TopicGPS      string

	WebConsolePort int

	GPSSerialPort string
	GPSBaudRate   int
}

// Default returns the built-in defaults materialized when no config file
// is present on disk (spec §7: "Config missing: recover by writing
// defaults; warn; continue").
func Default() *Config {
	return &Config{
		RollRateKp: 0.15, RollRateKi: 0.05, RollRateKd: 0.003,
		PitchRateKp: 0.15, PitchRateKi: 0.05, PitchRateKd: 0.003,
		YawKp: 0.20, YawKi: 0.02, YawKd: 0.0,
		DerivativeCutoff:           0.02,
		RollRatePerRad:             6.0,
		PitchRatePerRad:            6.0,
		IdleThrottle:               0.10,
		MaxThrust:                  1.0,
		MaxRoll:                    0.35,
		MaxPitch:                   0.35,
		MaxYawRate:                 2.5,
		ArmTipThreshold:            0.1,
		TipThreshold:               1.5,
		MaxRollOutput:              0.4,
		MaxPitchOutput:             0.4,
		MaxYawOutput:               0.3,
		IMURollErr:                 0,
		IMUPitchErr:                0,
		GyroFSR:                    2000,
		IMUSPIDevice:               "/dev/spidev6.0",
		IMUCSPin:                   "18",
		RadioSerialPort:            "/dev/ttyUSB0",
		RadioBaudRate:              115200,
		LEDRedPin:                  "GPIO23",
		LEDGreenPin:                "GPIO24",
		ButtonPin:                  "GPIO25",
		OLEDI2CAddr:                0x3C,
		ActuatorPins:               [4]string{"PWM0", "PWM1", "PWM2", "PWM3"},
		TelemetryGroundStationAddr: "127.0.0.1:14550",
		MQTTBroker:                 "tcp://localhost:1883",
		MQTTClientID:               "flightcore",
		TopicAttitude:              "flight/attitude",
		TopicMode:                  "flight/mode",
		TopicArmed:                 "flight/armed",
		TopicGPS:                   "flight/gps",
		WebConsolePort:             8090,
		GPSSerialPort:              "/dev/ttyAMA0",
		GPSBaudRate:                9600,
	}
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config. If the file
// does not exist, it materializes and saves the built-in defaults
// instead of failing, per spec §7.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if saveErr := Save(path, cfg); saveErr != nil {
			fmt.Printf("WARNING: could not persist default config to %s: %v\n", path, saveErr)
		}
		fmt.Printf("WARNING: config %s not found, using defaults\n", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setValue(key, value string) error {
	fv := func(dst *float64) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		*dst = v
		return nil
	}
	iv := func(dst *int) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		*dst = v
		return nil
	}

	switch key {
	case "ROLL_RATE_KP":
		return fv(&c.RollRateKp)
	case "ROLL_RATE_KI":
		return fv(&c.RollRateKi)
	case "ROLL_RATE_KD":
		return fv(&c.RollRateKd)
	case "PITCH_RATE_KP":
		return fv(&c.PitchRateKp)
	case "PITCH_RATE_KI":
		return fv(&c.PitchRateKi)
	case "PITCH_RATE_KD":
		return fv(&c.PitchRateKd)
	case "YAW_KP":
		return fv(&c.YawKp)
	case "YAW_KI":
		return fv(&c.YawKi)
	case "YAW_KD":
		return fv(&c.YawKd)
	case "DERIVATIVE_CUTOFF":
		return fv(&c.DerivativeCutoff)
	case "ROLL_RATE_PER_RAD":
		return fv(&c.RollRatePerRad)
	case "PITCH_RATE_PER_RAD":
		return fv(&c.PitchRatePerRad)
	case "IDLE_THROTTLE":
		return fv(&c.IdleThrottle)
	case "MAX_THRUST":
		return fv(&c.MaxThrust)
	case "MAX_ROLL":
		return fv(&c.MaxRoll)
	case "MAX_PITCH":
		return fv(&c.MaxPitch)
	case "MAX_YAW_RATE":
		return fv(&c.MaxYawRate)
	case "ARM_TIP_THRESHOLD":
		return fv(&c.ArmTipThreshold)
	case "TIP_THRESHOLD":
		return fv(&c.TipThreshold)
	case "MAX_ROLL_OUTPUT":
		return fv(&c.MaxRollOutput)
	case "MAX_PITCH_OUTPUT":
		return fv(&c.MaxPitchOutput)
	case "MAX_YAW_OUTPUT":
		return fv(&c.MaxYawOutput)
	case "IMU_ROLL_ERR":
		return fv(&c.IMURollErr)
	case "IMU_PITCH_ERR":
		return fv(&c.IMUPitchErr)
	case "GYRO_FSR":
		return fv(&c.GyroFSR)
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "RADIO_SERIAL_PORT":
		c.RadioSerialPort = value
	case "RADIO_BAUD_RATE":
		return iv(&c.RadioBaudRate)
	case "LED_RED_PIN":
		c.LEDRedPin = value
	case "LED_GREEN_PIN":
		c.LEDGreenPin = value
	case "BUTTON_PIN":
		c.ButtonPin = value
	case "OLED_I2C_ADDR":
		v, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		c.OLEDI2CAddr = uint16(v)
	case "ACTUATOR_PIN_0":
		c.ActuatorPins[0] = value
	case "ACTUATOR_PIN_1":
		c.ActuatorPins[1] = value
	case "ACTUATOR_PIN_2":
		c.ActuatorPins[2] = value
	case "ACTUATOR_PIN_3":
		c.ActuatorPins[3] = value
	case "TELEMETRY_GROUND_STATION_ADDR":
		c.TelemetryGroundStationAddr = value
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_ATTITUDE":
		c.TopicAttitude = value
	case "TOPIC_MODE":
		c.TopicMode = value
	case "TOPIC_ARMED":
		c.TopicArmed = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "WEB_CONSOLE_PORT":
		return iv(&c.WebConsolePort)
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		return iv(&c.GPSBaudRate)
	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}

func (c *Config) validate() error {
	if c.MaxThrust <= 0 {
		return fmt.Errorf("MAX_THRUST must be positive")
	}
	if c.IdleThrottle < 0 || c.IdleThrottle >= c.MaxThrust {
		return fmt.Errorf("IDLE_THROTTLE must be in [0, MAX_THRUST)")
	}
	if c.MaxRoll <= 0 || c.MaxPitch <= 0 || c.MaxYawRate <= 0 {
		return fmt.Errorf("MAX_ROLL, MAX_PITCH and MAX_YAW_RATE must be positive")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	return nil
}

// Save writes cfg to path in the same KEY=VALUE format Load reads.
func Save(path string, cfg *Config) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# flight core configuration (auto-generated defaults)\n")
	fmt.Fprintf(&b, "ROLL_RATE_KP=%g\n", cfg.RollRateKp)
	fmt.Fprintf(&b, "ROLL_RATE_KI=%g\n", cfg.RollRateKi)
	fmt.Fprintf(&b, "ROLL_RATE_KD=%g\n", cfg.RollRateKd)
	fmt.Fprintf(&b, "PITCH_RATE_KP=%g\n", cfg.PitchRateKp)
	fmt.Fprintf(&b, "PITCH_RATE_KI=%g\n", cfg.PitchRateKi)
	fmt.Fprintf(&b, "PITCH_RATE_KD=%g\n", cfg.PitchRateKd)
	fmt.Fprintf(&b, "YAW_KP=%g\n", cfg.YawKp)
	fmt.Fprintf(&b, "YAW_KI=%g\n", cfg.YawKi)
	fmt.Fprintf(&b, "YAW_KD=%g\n", cfg.YawKd)
	fmt.Fprintf(&b, "DERIVATIVE_CUTOFF=%g\n", cfg.DerivativeCutoff)
	fmt.Fprintf(&b, "ROLL_RATE_PER_RAD=%g\n", cfg.RollRatePerRad)
	fmt.Fprintf(&b, "PITCH_RATE_PER_RAD=%g\n", cfg.PitchRatePerRad)
	fmt.Fprintf(&b, "IDLE_THROTTLE=%g\n", cfg.IdleThrottle)
	fmt.Fprintf(&b, "MAX_THRUST=%g\n", cfg.MaxThrust)
	fmt.Fprintf(&b, "MAX_ROLL=%g\n", cfg.MaxRoll)
	fmt.Fprintf(&b, "MAX_PITCH=%g\n", cfg.MaxPitch)
	fmt.Fprintf(&b, "MAX_YAW_RATE=%g\n", cfg.MaxYawRate)
	fmt.Fprintf(&b, "ARM_TIP_THRESHOLD=%g\n", cfg.ArmTipThreshold)
	fmt.Fprintf(&b, "TIP_THRESHOLD=%g\n", cfg.TipThreshold)
	fmt.Fprintf(&b, "MAX_ROLL_OUTPUT=%g\n", cfg.MaxRollOutput)
	fmt.Fprintf(&b, "MAX_PITCH_OUTPUT=%g\n", cfg.MaxPitchOutput)
	fmt.Fprintf(&b, "MAX_YAW_OUTPUT=%g\n", cfg.MaxYawOutput)
	fmt.Fprintf(&b, "IMU_ROLL_ERR=%g\n", cfg.IMURollErr)
	fmt.Fprintf(&b, "IMU_PITCH_ERR=%g\n", cfg.IMUPitchErr)
	fmt.Fprintf(&b, "GYRO_FSR=%g\n", cfg.GyroFSR)
	fmt.Fprintf(&b, "IMU_SPI_DEVICE=%s\n", cfg.IMUSPIDevice)
	fmt.Fprintf(&b, "IMU_CS_PIN=%s\n", cfg.IMUCSPin)
	fmt.Fprintf(&b, "RADIO_SERIAL_PORT=%s\n", cfg.RadioSerialPort)
	fmt.Fprintf(&b, "RADIO_BAUD_RATE=%d\n", cfg.RadioBaudRate)
	fmt.Fprintf(&b, "LED_RED_PIN=%s\n", cfg.LEDRedPin)
	fmt.Fprintf(&b, "LED_GREEN_PIN=%s\n", cfg.LEDGreenPin)
	fmt.Fprintf(&b, "BUTTON_PIN=%s\n", cfg.ButtonPin)
	fmt.Fprintf(&b, "OLED_I2C_ADDR=0x%02X\n", cfg.OLEDI2CAddr)
	for i, p := range cfg.ActuatorPins {
		fmt.Fprintf(&b, "ACTUATOR_PIN_%d=%s\n", i, p)
	}
	fmt.Fprintf(&b, "TELEMETRY_GROUND_STATION_ADDR=%s\n", cfg.TelemetryGroundStationAddr)
	fmt.Fprintf(&b, "MQTT_BROKER=%s\n", cfg.MQTTBroker)
	fmt.Fprintf(&b, "MQTT_CLIENT_ID=%s\n", cfg.MQTTClientID)
	fmt.Fprintf(&b, "TOPIC_ATTITUDE=%s\n", cfg.TopicAttitude)
	fmt.Fprintf(&b, "TOPIC_MODE=%s\n", cfg.TopicMode)
	fmt.Fprintf(&b, "TOPIC_ARMED=%s\n", cfg.TopicArmed)
	fmt.Fprintf(&b, "TOPIC_GPS=%s\n", cfg.TopicGPS)
	fmt.Fprintf(&b, "WEB_CONSOLE_PORT=%d\n", cfg.WebConsolePort)
	fmt.Fprintf(&b, "GPS_SERIAL_PORT=%s\n", cfg.GPSSerialPort)
	fmt.Fprintf(&b, "GPS_BAUD_RATE=%d\n", cfg.GPSBaudRate)

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// InitGlobal loads the config at path and installs it as the global
// instance. Safe to call more than once; only the first call takes
// effect.
func InitGlobal(path string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(path)
	})
	return err
}

// Get returns the current global configuration. InitGlobal must run
// first.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// Reload re-reads path and atomically swaps the global configuration.
// Called by the arming supervisor on every arm sequence (spec §4.5
// step 8: "Reload config; reinitialize PID filters from reloaded
// gains").
func Reload(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return cfg, nil
}
