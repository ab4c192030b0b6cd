package merge

// Package merge shells out to ffmpeg to combine a video stream and an audio
// stream: the video is copied unchanged and the audio is re-encoded to a
// fixed codec. A non-zero exit is a merge failure; nothing is retried and
// the source files are never touched.
