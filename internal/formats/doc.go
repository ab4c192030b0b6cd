package formats

// Package formats narrows an extractor listing to video formats, renders the
// numbered selection menu and resolves an operator's numeric choice to a
// format identifier. It also builds the yt-dlp style format specs used by
// the two fetches. Everything here is pure; reading input is the shell's job.
