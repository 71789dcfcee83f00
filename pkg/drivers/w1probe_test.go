// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package drivers

import (
	"math"
	"testing"
	"time"
)

func TestParseW1Slave(t *testing.T) {
	good := "4b 01 4b 46 7f ff 05 10 d8 : crc=d8 YES\n" +
		"4b 01 4b 46 7f ff 05 10 d8 t=20687\n"
	temp, err := parseW1Slave(good)
	if err != nil {
		t.Fatalf("parseW1Slave() error: %v", err)
	}
	if math.Abs(temp-20.687) > 1e-9 {
		t.Errorf("parseW1Slave() = %v; want 20.687", temp)
	}
}

func TestParseW1SlaveNegative(t *testing.T) {
	s := "f6 ff 4b 46 7f ff 05 10 8c : crc=8c YES\n" +
		"f6 ff 4b 46 7f ff 05 10 8c t=-625\n"
	temp, err := parseW1Slave(s)
	if err != nil {
		t.Fatalf("parseW1Slave() error: %v", err)
	}
	if math.Abs(temp-(-0.625)) > 1e-9 {
		t.Errorf("parseW1Slave() = %v; want -0.625", temp)
	}
}

func TestParseW1SlaveBadCRC(t *testing.T) {
	s := "4b 01 4b 46 7f ff 05 10 d8 : crc=d8 NO\n" +
		"4b 01 4b 46 7f ff 05 10 d8 t=20687\n"
	if _, err := parseW1Slave(s); err == nil {
		t.Fatal("parseW1Slave() accepted failed CRC")
	}
}

func TestParseW1SlaveMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"one line only YES",
		"a : crc=a YES\nno temperature here",
		"a : crc=a YES\nb t=notanumber",
	} {
		if _, err := parseW1Slave(s); err == nil {
			t.Errorf("parseW1Slave(%q) accepted malformed input", s)
		}
	}
}

func TestW1ConversionTimes(t *testing.T) {
	tests := []struct {
		bits int
		want time.Duration
	}{
		{9, 94 * time.Millisecond},
		{10, 188 * time.Millisecond},
		{11, 375 * time.Millisecond},
		{12, 750 * time.Millisecond},
	}
	for _, tt := range tests {
		p := &W1Probe{Resolution: tt.bits}
		if got := p.ConversionTime(); got != tt.want {
			t.Errorf("ConversionTime() at %d bits = %v; want %v", tt.bits, got, tt.want)
		}
	}
}

func TestW1InitRejectsBadResolution(t *testing.T) {
	p := &W1Probe{Resolution: 13}
	if err := p.Init(); err == nil {
		t.Fatal("Init() accepted 13-bit resolution")
	}
}
