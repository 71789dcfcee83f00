// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

// Package gateway implements the mains-powered relay: it receives
// readings packets off the wireless link, stages the newest one, and
// forwards it as JSON to the logging endpoint.
package gateway

import (
	"math"

	"github.com/fermlab/tilted/pkg/tiltwire"
)

// Reading is the intermediate record between the receive handler and the
// forwarder. Pointer fields control JSON presence: only measurements the
// sensor actually sent appear in the forwarded payload.
type Reading struct {
	Name        string   `json:"name,omitempty"`
	Angle       *float64 `json:"angle,omitempty"`
	Temp        *float64 `json:"temp,omitempty"`
	TempUnit    string   `json:"temp_unit,omitempty"`
	AuxTemp     *float64 `json:"aux_temp,omitempty"`
	AuxTempUnit string   `json:"aux_temp_unit,omitempty"`
	Battery     *float64 `json:"battery,omitempty"`
	Interval    *float64 `json:"interval,omitempty"`
	Rssi        *float64 `json:"rssi,omitempty"`
	Gravity     *float64 `json:"gravity,omitempty"`
	GravityUnit string   `json:"gravity_unit,omitempty"`
}

func ptr(v float64) *float64 { return &v }

// ReadingFromView copies a decoded packet view into an owned Reading.
// The view borrows the receive buffer, so everything is copied out here,
// before the buffer is reused. Duplicate item types are last-wins;
// unknown types are skipped for forward compatibility.
func ReadingFromView(v tiltwire.View) *Reading {
	r := &Reading{Name: string(v.Name())}
	for i := 0; i < v.ItemCount(); i++ {
		it := v.Item(i)
		val := it.Value()
		switch it.Type {
		case tiltwire.TypeTilt:
			r.Angle = ptr(val)
		case tiltwire.TypeTemp:
			r.Temp = ptr(val)
			r.TempUnit = "C"
		case tiltwire.TypeAuxTemp:
			r.AuxTemp = ptr(val)
			r.AuxTempUnit = "C"
		case tiltwire.TypeBatteryMv:
			r.Battery = ptr(val / 1000.0)
		case tiltwire.TypeIntervalS:
			r.Interval = ptr(val)
		case tiltwire.TypeRssiDbm:
			r.Rssi = ptr(val)
		}
	}
	return r
}

// ReadingFromLegacy maps the old fixed readings struct into the same
// record. Legacy packets carry no device name.
func ReadingFromLegacy(l tiltwire.LegacyReading) *Reading {
	r := &Reading{
		Angle:    ptr(float64(l.Tilt)),
		Battery:  ptr(float64(l.BatteryMv) / 1000.0),
		Interval: ptr(float64(l.IntervalS)),
	}
	if !math.IsNaN(float64(l.Temp)) {
		r.Temp = ptr(float64(l.Temp))
		r.TempUnit = "C"
	}
	return r
}
