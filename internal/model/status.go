package model

// RunState represents the state of a pipeline run
type RunState string

const (
	// RunStateIdle means the run was created but nothing has happened yet
	RunStateIdle RunState = "Idle"

	// RunStateListing means formats are being requested from the extractor
	RunStateListing RunState = "Listing"

	// RunStateFiltering means the listing is being narrowed to video formats
	RunStateFiltering RunState = "Filtering"

	// RunStateSelecting means the operator is choosing a format
	RunStateSelecting RunState = "Selecting"

	// RunStateDownloadingVideo means the video stream is being fetched
	RunStateDownloadingVideo RunState = "DownloadingVideo"

	// RunStateDownloadingAudio means the audio stream is being fetched
	RunStateDownloadingAudio RunState = "DownloadingAudio"

	// RunStateMerging means ffmpeg is combining the two streams
	RunStateMerging RunState = "Merging"

	// RunStateDone means the run finished successfully
	RunStateDone RunState = "Done"

	// RunStateFailed means the run stopped on an error
	RunStateFailed RunState = "Failed"
)

// String returns the string representation of RunState
func (rs RunState) String() string {
	return string(rs)
}

// IsActive returns true if the run is doing work in this state
func (rs RunState) IsActive() bool {
	switch rs {
	case RunStateListing, RunStateFiltering, RunStateSelecting,
		RunStateDownloadingVideo, RunStateDownloadingAudio, RunStateMerging:
		return true
	}
	return false
}

// IsFinished returns true if the run is in a terminal state (done or failed)
func (rs RunState) IsFinished() bool {
	return rs == RunStateDone || rs == RunStateFailed
}

// CanFail reports whether an error in this state moves the run to Failed.
// Selecting never fails: invalid input falls back to the default format.
func (rs RunState) CanFail() bool {
	switch rs {
	case RunStateListing, RunStateFiltering, RunStateDownloadingVideo,
		RunStateDownloadingAudio, RunStateMerging:
		return true
	}
	return false
}
