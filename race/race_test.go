// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package race

import "testing"

func TestStatusActive(t *testing.T) {
	for _, tc := range []struct {
		status Status
		want   bool
	}{
		{Ready, false},
		{Staging, true},
		{Racing, true},
		{Done, false},
	} {
		if got := tc.status.Active(); got != tc.want {
			t.Errorf("%v.Active() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestShortCallsign(t *testing.T) {
	if got := ShortCallsign("SKYWALKER"); got != "SKYWAL" {
		t.Errorf("ShortCallsign(SKYWALKER) = %q", got)
	}
	if got := ShortCallsign("ACE"); got != "ACE" {
		t.Errorf("ShortCallsign(ACE) = %q", got)
	}
}

func TestShortLapTime(t *testing.T) {
	if got := ShortLapTime("0:23.456"); got != "23.456" {
		t.Errorf("ShortLapTime(0:23.456) = %q", got)
	}
	if got := ShortLapTime("1:02.001"); got != "1:02.001" {
		t.Errorf("ShortLapTime(1:02.001) = %q", got)
	}
}
