// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package tiltwire

import "math"

// ValueItem is one typed measurement. The real value is
// RawValue * 10^Scale10; fixed point keeps floats off the wire.
type ValueItem struct {
	Type     ValueType
	Scale10  int8
	RawValue int32
}

// Value converts the fixed-point wire representation to a float.
// Negative exponents divide rather than multiply by a pre-rounded
// 10^scale10, so 234 at scale -1 comes out as exactly 23.4.
func (it ValueItem) Value() float64 {
	if it.Scale10 < 0 {
		return float64(it.RawValue) / math.Pow(10, -float64(it.Scale10))
	}
	return float64(it.RawValue) * math.Pow(10, float64(it.Scale10))
}

// scaleAndRound converts a float to its integer wire representation for
// the given exponent. Only the small set of exponents this project emits
// is handled exactly; anything else falls back to plain rounding.
func scaleAndRound(value float64, scale10 int8) int32 {
	switch scale10 {
	case -3:
		return int32(math.Round(value * 1000))
	case -2:
		return int32(math.Round(value * 100))
	case -1:
		return int32(math.Round(value * 10))
	case 0:
		return int32(math.Round(value))
	case 1:
		return int32(math.Round(value / 10))
	default:
		return int32(math.Round(value))
	}
}

// TiltDeg builds a tilt item with one decimal of precision.
func TiltDeg(deg float64) ValueItem {
	return ValueItem{Type: TypeTilt, Scale10: -1, RawValue: scaleAndRound(deg, -1)}
}

// TempC builds a temperature item with one decimal of precision.
func TempC(c float64) ValueItem {
	return ValueItem{Type: TypeTemp, Scale10: -1, RawValue: scaleAndRound(c, -1)}
}

// AuxTempC builds an auxiliary-probe temperature item.
func AuxTempC(c float64) ValueItem {
	return ValueItem{Type: TypeAuxTemp, Scale10: -1, RawValue: scaleAndRound(c, -1)}
}

// BatteryMv builds a battery voltage item in millivolts.
func BatteryMv(mv int32) ValueItem {
	return ValueItem{Type: TypeBatteryMv, RawValue: mv}
}

// IntervalS builds a sleep interval item in seconds.
func IntervalS(seconds int32) ValueItem {
	return ValueItem{Type: TypeIntervalS, RawValue: seconds}
}

// RssiDbm builds a received-signal-strength item in dBm.
func RssiDbm(dbm int32) ValueItem {
	return ValueItem{Type: TypeRssiDbm, RawValue: dbm}
}
