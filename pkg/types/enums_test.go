package types

import "testing"

func TestChannel(t *testing.T) {
	tests := []struct {
		c    Channel
		want string
	}{
		{ChannelTransient, "transient"},
		{ChannelSticky, "sticky"},
		{Channel(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.c.String(); got != tt.want {
				t.Errorf("Channel(%d).String() = %q, want %q", tt.c, got, tt.want)
			}
		})
	}

	if ChannelFor(true) != ChannelSticky || ChannelFor(false) != ChannelTransient {
		t.Error("ChannelFor() picked the wrong channel")
	}
}

func TestLifecycleState_Order(t *testing.T) {
	order := []LifecycleState{StateDestroyed, StateInitialized, StateCreated, StateStarted, StateResumed}
	for i := 1; i < len(order); i++ {
		if !order[i].IsAtLeast(order[i-1]) || order[i-1].IsAtLeast(order[i]) {
			t.Errorf("%s should be strictly above %s", order[i], order[i-1])
		}
	}
}

func TestLifecycleState_IsEligible(t *testing.T) {
	tests := []struct {
		state     LifecycleState
		threshold LifecycleState
		want      bool
	}{
		{StateResumed, StateStarted, true},
		{StateStarted, StateStarted, true},
		{StateCreated, StateStarted, false},
		{StateInitialized, StateInitialized, true},
		{StateDestroyed, StateDestroyed, false},
		{StateDestroyed, StateInitialized, false},
	}

	for _, tt := range tests {
		if got := tt.state.IsEligible(tt.threshold); got != tt.want {
			t.Errorf("%s.IsEligible(%s) = %v, want %v", tt.state, tt.threshold, got, tt.want)
		}
	}
}

func TestParseLifecycleState(t *testing.T) {
	for _, s := range []LifecycleState{StateDestroyed, StateInitialized, StateCreated, StateStarted, StateResumed} {
		got, ok := ParseLifecycleState(s.String())
		if !ok || got != s {
			t.Errorf("ParseLifecycleState(%q) = %v, %v", s.String(), got, ok)
		}
	}

	if _, ok := ParseLifecycleState("paused"); ok {
		t.Error("ParseLifecycleState(\"paused\") should fail")
	}
}
