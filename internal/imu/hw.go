// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// HWDevice drives an MPU9250 over SPI and polls it from an internal
// goroutine at the requested rate, the way the sensor stack this is
// adapted from drives its SPI-attached IMUs.
type HWDevice struct {
	spiDev string
	csPin  string

	mu          sync.Mutex
	dev         *mpu9250.MPU9250
	orientation [9]float64
	last        Sample
	ok          bool
	callback    func()

	stop chan struct{}
	done chan struct{}

	yaw      float64 // radians, on-device gyro-integrated estimate
	lastPoll time.Time
}

// NewHWDevice returns an HWDevice bound to the given SPI device path and
// chip-select GPIO pin name. Init must still be called before use.
func NewHWDevice(spiDev, csPin string) *HWDevice {
	return &HWDevice{spiDev: spiDev, csPin: csPin}
}

func (h *HWDevice) Init(rateHz float64, orientation [9]float64) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("imu: periph host init: %w", err)
	}

	cs := gpioreg.ByName(h.csPin)
	if cs == nil {
		return fmt.Errorf("imu: CS pin %q not found", h.csPin)
	}

	tr, err := mpu9250.NewSpiTransport(h.spiDev, cs)
	if err != nil {
		return fmt.Errorf("imu: SPI transport (%s): %w", h.spiDev, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return fmt.Errorf("imu: device creation: %w", err)
	}
	if err := dev.Init(); err != nil {
		return fmt.Errorf("imu: initialization: %w", err)
	}
	if err := dev.SetGyroRange(3); err != nil { // ±2000 deg/s, matches FSRDegPerSec
		return fmt.Errorf("imu: set gyro range: %w", err)
	}

	h.mu.Lock()
	h.dev = dev
	h.orientation = orientation
	h.mu.Unlock()

	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	period := time.Duration(float64(time.Second) / rateHz)
	go h.pollLoop(period)

	log.Printf("imu: initialized %s (cs=%s) at %.0f Hz", h.spiDev, h.csPin, rateHz)
	return nil
}

func (h *HWDevice) pollLoop(period time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.poll()
		}
	}
}

func (h *HWDevice) poll() {
	h.mu.Lock()
	dev := h.dev
	orientation := h.orientation
	now := time.Now()
	dt := now.Sub(h.lastPoll).Seconds()
	if h.lastPoll.IsZero() || dt <= 0 || dt > 1 {
		dt = 0
	}
	h.lastPoll = now
	h.mu.Unlock()

	sample, yawRate, err := readSample(dev, orientation)

	h.mu.Lock()
	if err == nil {
		h.yaw = wrapPi(h.yaw + yawRate*dt)
		sample.Euler[2] = h.yaw
	}
	h.last = sample
	h.ok = err == nil
	cb := h.callback
	h.mu.Unlock()

	if err != nil {
		log.Printf("imu: sample read failed: %v", err)
		return
	}
	if cb != nil {
		cb()
	}
}

// readSample reads accel and gyro registers and derives a roll/pitch tilt
// estimate from the accelerometer, the way the accelerometer-only tilt
// source elsewhere in this codebase does. Yaw has no magnetometer fusion
// here, so the caller integrates gyro Z and wraps it to (-pi, pi] itself;
// readSample returns that rate so the caller can do the integration under
// its own lock.
func readSample(dev *mpu9250.MPU9250, orientation [9]float64) (Sample, float64, error) {
	ax, err := dev.GetAccelerationX()
	if err != nil {
		return Sample{}, 0, fmt.Errorf("imu accel X: %w", err)
	}
	ay, err := dev.GetAccelerationY()
	if err != nil {
		return Sample{}, 0, fmt.Errorf("imu accel Y: %w", err)
	}
	az, err := dev.GetAccelerationZ()
	if err != nil {
		return Sample{}, 0, fmt.Errorf("imu accel Z: %w", err)
	}
	gx, err := dev.GetRotationX()
	if err != nil {
		return Sample{}, 0, fmt.Errorf("imu gyro X: %w", err)
	}
	gy, err := dev.GetRotationY()
	if err != nil {
		return Sample{}, 0, fmt.Errorf("imu gyro Y: %w", err)
	}
	gz, err := dev.GetRotationZ()
	if err != nil {
		return Sample{}, 0, fmt.Errorf("imu gyro Z: %w", err)
	}

	fx, fy, fz := float64(ax), float64(ay), float64(az)
	rollRad := math.Atan2(fy, fz)
	pitchRad := math.Atan2(-fx, math.Sqrt(fy*fy+fz*fz))
	yawRate := float64(gz) * FSRDegPerSec * (math.Pi / 180) / 32767

	corrected := applyOrientation(orientation, [3]float64{pitchRad, rollRad, 0})

	return Sample{
		Euler:   corrected,
		RawGyro: [3]int16{gx, gy, gz},
	}, yawRate, nil
}

func wrapPi(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func applyOrientation(m [9]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

func (h *HWDevice) SetSampleCallback(fn func()) {
	h.mu.Lock()
	h.callback = fn
	h.mu.Unlock()
}

func (h *HWDevice) Read() (Sample, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.ok
}

func (h *HWDevice) Close() error {
	if h.stop != nil {
		close(h.stop)
		<-h.done
	}
	return nil
}

// IdentityOrientation is the default mounting-orientation matrix: no
// correction applied.
var IdentityOrientation = [9]float64{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}
