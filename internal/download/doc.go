package download

// Package download implements the extraction and fetch collaborators of the
// pipeline. The default backend drives the yt-dlp executable through
// github.com/lrstanley/go-ytdlp; the native backend uses the pure-Go
// extractor github.com/ytget/ytdlp/v2. Both list formats for a URL and fetch
// one format spec to a fixed output path, reporting progress to a callback.
