// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package sensornode

import (
	"log"
	"math"
	"time"

	"github.com/fermlab/tilted/pkg/sampler"
	"github.com/fermlab/tilted/pkg/tiltwire"
)

// RadioLink is the sensor side of the wireless hop: bounded bring-up,
// one send, teardown. Satisfied by *link.Radio.
type RadioLink interface {
	Up(timeout time.Duration) error
	Send(payload []byte) error
	Down()
}

// BatterySource reports supply voltage in millivolts. Satisfied by
// *drivers.SysfsBattery.
type BatterySource interface {
	VoltageMv() (int, error)
}

// Sleeper suspends the node between wake cycles. The default
// implementation sleeps in-process; execution re-enters the loop as a
// warm wake, which is the Linux rendition of resume-from-deep-sleep.
type Sleeper interface {
	DeepSleep(d time.Duration)
}

type processSleeper struct{}

func (processSleeper) DeepSleep(d time.Duration) { time.Sleep(d) }

// Polling cadence: slow while the tilt window is filling to keep bus
// traffic down, fast once only a conversion tail remains so transmission
// is not delayed. The cold-boot gesture watch polls slower still; the
// inversion is held by hand for seconds, not milliseconds.
const (
	pollSampling = 10 * time.Millisecond
	pollTail     = time.Millisecond
	pollGesture  = 2 * time.Second
)

// Largest packet the node ever builds; the encode buffer lives on the
// stack sized to this.
const maxItems = 6

const maxPacketSize = tiltwire.HeaderSize + tiltwire.MaxNameLen + maxItems*tiltwire.ItemSize

// Config carries the control loop's timing parameters. Zero values take
// the defaults.
type Config struct {
	ChipID uint32

	// NamePrefix defaults to "tilt"; the wire name is derived from it
	// and the chip id.
	NamePrefix string

	// WakeTimeout bounds the sampling phase of a normal cycle. It is
	// not applied while calibrating, matching how the device has always
	// behaved during a calibration run.
	WakeTimeout time.Duration

	// GestureWindow is how long a cold boot watches for the inversion
	// gesture before settling into normal mode.
	GestureWindow time.Duration

	// Sleep intervals for calibration and normal mode, and the cap on
	// calibration cycles. IterationCount saturates at MaxIterations and
	// is never reset automatically.
	CalibrationInterval time.Duration
	NormalInterval      time.Duration
	MaxIterations       uint32
}

func (c *Config) applyDefaults() {
	if c.NamePrefix == "" {
		c.NamePrefix = "tilt"
	}
	if c.WakeTimeout == 0 {
		c.WakeTimeout = 10 * time.Second
	}
	if c.GestureWindow == 0 {
		c.GestureWindow = 30 * time.Second
	}
	if c.CalibrationInterval == 0 {
		c.CalibrationInterval = 30 * time.Second
	}
	if c.NormalInterval == 0 {
		c.NormalInterval = 800 * time.Second
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 60
	}
}

// Node drives one sensor through its wake cycles. The tilt sampler and
// radio are mandatory; the probe sampler and battery source may be nil
// and their items are simply omitted.
type Node struct {
	cfg     Config
	tilt    *sampler.TiltSampler
	probe   *sampler.ProbeSampler
	battery BatterySource
	radio   RadioLink
	store   *Store
	sleeper Sleeper

	lastSend time.Time

	now   func() time.Time
	pause func(time.Duration)
}

// New assembles a Node. sleeper may be nil for the in-process default.
func New(cfg Config, tilt *sampler.TiltSampler, probe *sampler.ProbeSampler,
	battery BatterySource, radio RadioLink, store *Store, sleeper Sleeper) *Node {
	cfg.applyDefaults()
	if sleeper == nil {
		sleeper = processSleeper{}
	}
	return &Node{
		cfg:     cfg,
		tilt:    tilt,
		probe:   probe,
		battery: battery,
		radio:   radio,
		store:   store,
		sleeper: sleeper,
		now:     time.Now,
		pause:   time.Sleep,
	}
}

// Run loops wake cycles forever.
func (n *Node) Run() {
	for {
		interval := n.RunCycle()
		n.sleeper.DeepSleep(interval)
	}
}

// RunCycle executes one wake cycle, Sampling through Sleeping, and
// returns the interval to deep-sleep for. Every failure inside the cycle
// is skip-and-continue; the node always reaches sleep.
func (n *Node) RunCycle() time.Duration {
	progress, warm := n.store.Load()
	calibrating := false
	switch {
	case !warm:
		if n.detectGesture() {
			log.Printf("sensornode: calibration gesture detected, starting calibration run")
			progress.IterationCount = 1
			calibrating = true
		} else {
			progress.IterationCount = 0
		}
	case progress.IterationCount > 0 && progress.IterationCount < n.cfg.MaxIterations:
		progress.IterationCount++
		calibrating = true
	}
	if err := n.store.Save(progress.IterationCount); err != nil {
		log.Printf("sensornode: %v", err)
	}

	interval := n.cfg.NormalInterval
	if calibrating {
		interval = n.cfg.CalibrationInterval
	}

	n.samplePhase(calibrating)
	// Processing is a pure handoff between sampling and transmission.
	n.transmitPhase(uint16(interval / time.Second))
	n.sleepPhase()
	return interval
}

// samplers returns the configured samplers; the probe slot may be empty.
func (n *Node) samplers() []sampler.Sampler {
	s := []sampler.Sampler{n.tilt}
	if n.probe != nil {
		s = append(s, n.probe)
	}
	return s
}

// detectGesture runs the tilt sampler for the gesture window looking for
// an accepted sample in the inversion band. Only called on cold boot.
func (n *Node) detectGesture() bool {
	if err := n.tilt.Begin(); err != nil {
		log.Printf("sensornode: tilt sensor unavailable: %v", err)
		return false
	}
	n.tilt.Start()
	deadline := n.now().Add(n.cfg.GestureWindow)
	for n.now().Before(deadline) {
		n.tilt.Sample()
		if isCalibrationGesture(n.tilt.Latest()) {
			return true
		}
		if n.tilt.Ready() {
			// Window filled without the gesture; re-arm and keep
			// watching until the detection window closes.
			if err := n.tilt.Begin(); err != nil {
				return false
			}
			n.tilt.Start()
		}
		n.pause(pollGesture)
	}
	return false
}

// samplePhase re-initializes every sampler and advances them until all
// are ready or the wake timeout elapses. The timeout is bypassed while
// calibrating.
func (n *Node) samplePhase(calibrating bool) {
	samplers := n.samplers()
	for _, s := range samplers {
		if err := s.Begin(); err != nil {
			log.Printf("sensornode: sampler begin: %v", err)
		}
		s.Start()
	}
	deadline := n.now().Add(n.cfg.WakeTimeout)
	for {
		pending := 0
		for _, s := range samplers {
			s.Sample()
			if s.Pending() {
				pending++
			}
		}
		if pending == 0 {
			return
		}
		if !calibrating && !n.now().Before(deadline) {
			log.Printf("sensornode: wake timeout with %d sampler(s) outstanding", pending)
			return
		}
		if n.tilt.Pending() {
			n.pause(pollSampling)
		} else {
			n.pause(pollTail)
		}
	}
}

// transmitPhase assembles the readings packet and sends it once. Tilt is
// mandatory: without it there is nothing worth forwarding and the cycle
// skips transmission entirely.
func (n *Node) transmitPhase(intervalSeconds uint16) {
	tilt := n.tilt.TiltDeg()
	if math.IsNaN(tilt) {
		log.Printf("sensornode: no tilt result, skipping transmission")
		return
	}

	items := make([]tiltwire.ValueItem, 0, maxItems)
	items = append(items, tiltwire.TiltDeg(tilt))
	if temp := n.tilt.TempC(); !math.IsNaN(temp) {
		items = append(items, tiltwire.TempC(temp))
	}
	if n.probe != nil {
		if aux := n.probe.TempC(); !math.IsNaN(aux) {
			items = append(items, tiltwire.AuxTempC(aux))
		}
	}
	if n.battery != nil {
		if mv, err := n.battery.VoltageMv(); err == nil {
			items = append(items, tiltwire.BatteryMv(int32(mv)))
		} else {
			log.Printf("sensornode: battery read failed: %v", err)
		}
	}
	items = append(items, tiltwire.IntervalS(int32(intervalSeconds)))

	name := tiltwire.DeviceName(n.cfg.NamePrefix, n.cfg.ChipID)
	var buf [maxPacketSize]byte
	wrote, err := tiltwire.Encode(buf[:], n.cfg.ChipID, intervalSeconds, name, items)
	if err != nil {
		log.Printf("sensornode: encode: %v", err)
		return
	}

	if err := n.radio.Up(n.cfg.WakeTimeout / 2); err != nil {
		log.Printf("sensornode: radio bring-up failed, skipping transmission: %v", err)
		return
	}
	defer n.radio.Down()
	if err := n.radio.Send(buf[:wrote]); err != nil {
		log.Printf("sensornode: send failed: %v", err)
		return
	}
	n.lastSend = n.now()
}

// sleepPhase powers down every sampler before the node suspends.
func (n *Node) sleepPhase() {
	for _, s := range n.samplers() {
		s.Sleep()
	}
}

// LastSend reports when the node last transmitted successfully; zero if
// it never has.
func (n *Node) LastSend() time.Time { return n.lastSend }
