package platform

// Package platform contains OS integration and external tooling glue:
// filesystem helpers for the output and staging directories, executable
// resolution for ffmpeg/ffprobe/yt-dlp, and revealing a file in the OS file
// manager.
