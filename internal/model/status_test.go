package model

import "testing"

func TestRunState_IsActive(t *testing.T) {
	tests := []struct {
		state    RunState
		expected bool
	}{
		{RunStateIdle, false},
		{RunStateListing, true},
		{RunStateFiltering, true},
		{RunStateSelecting, true},
		{RunStateDownloadingVideo, true},
		{RunStateDownloadingAudio, true},
		{RunStateMerging, true},
		{RunStateDone, false},
		{RunStateFailed, false},
	}

	for _, test := range tests {
		result := test.state.IsActive()
		if result != test.expected {
			t.Errorf("RunState(%s).IsActive() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestRunState_IsFinished(t *testing.T) {
	tests := []struct {
		state    RunState
		expected bool
	}{
		{RunStateIdle, false},
		{RunStateListing, false},
		{RunStateSelecting, false},
		{RunStateMerging, false},
		{RunStateDone, true},
		{RunStateFailed, true},
	}

	for _, test := range tests {
		result := test.state.IsFinished()
		if result != test.expected {
			t.Errorf("RunState(%s).IsFinished() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestRunState_CanFail(t *testing.T) {
	tests := []struct {
		state    RunState
		expected bool
	}{
		{RunStateIdle, false},
		{RunStateListing, true},
		{RunStateFiltering, true},
		{RunStateSelecting, false},
		{RunStateDownloadingVideo, true},
		{RunStateDownloadingAudio, true},
		{RunStateMerging, true},
		{RunStateDone, false},
	}

	for _, test := range tests {
		result := test.state.CanFail()
		if result != test.expected {
			t.Errorf("RunState(%s).CanFail() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestRunState_String(t *testing.T) {
	state := RunStateDownloadingVideo
	expected := "DownloadingVideo"
	result := state.String()

	if result != expected {
		t.Errorf("RunState.String() = %s, expected %s", result, expected)
	}
}
