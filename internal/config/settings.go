package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ytget/yt-merger/internal/platform"
)

// Download backends
const (
	BackendYtdlp  = "yt-dlp"
	BackendNative = "native"
)

// Environment keys
const (
	EnvOutputDir    = "YTM_OUTPUT_DIR"
	EnvFFmpeg       = "YTM_FFMPEG"
	EnvFFprobe      = "YTM_FFPROBE"
	EnvYtdlp        = "YTM_YTDLP"
	EnvInstallYtdlp = "YTM_INSTALL_YTDLP"
	EnvBackend      = "YTM_BACKEND"
	EnvAudioCodec   = "YTM_AUDIO_CODEC"
	EnvKeepSources  = "YTM_KEEP_SOURCES"
	EnvReveal       = "YTM_REVEAL"
	EnvLanguage     = "YTM_LANG"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvMetricsFile  = "YTM_METRICS_FILE"
)

// Default values
const (
	DefaultOutputDir    = "."
	DefaultBackend      = BackendYtdlp
	DefaultAudioCodec   = "aac"
	DefaultKeepSources  = true
	DefaultInstallYtdlp = false
	DefaultReveal       = false
	DefaultLanguage     = "system"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultEnvFile      = ".env"
)

// Executable names looked up in PATH
const (
	FFmpegName  = "ffmpeg"
	FFprobeName = "ffprobe"
	YtdlpName   = "yt-dlp"
)

// ErrInvalidSettings is returned by Validate
var ErrInvalidSettings = errors.New("invalid settings")

// Tool is an external executable as configured by flag and environment
type Tool struct {
	Name string // PATH lookup name
	Flag string
	Env  string
}

// Resolve returns the executable path: flag, then environment, then PATH
func (t Tool) Resolve() (string, error) {
	return platform.ResolveExecutable(t.Flag, t.Env, t.Name)
}

// Settings is the application configuration
type Settings struct {
	OutputDir    string
	FFmpeg       Tool
	FFprobe      Tool
	Ytdlp        Tool
	InstallYtdlp bool
	Backend      string
	AudioCodec   string
	KeepSources  bool
	Reveal       bool
	Language     string
	LogLevel     string
	LogFormat    string
	MetricsFile  string
}

// Load builds Settings from .env, the environment and command line flags,
// in increasing order of precedence. A missing .env file is not an error.
func Load(args []string) (*Settings, error) {
	return LoadWithOutput(args, os.Stderr)
}

// LoadWithOutput is Load with the flag usage and errors written to w
func LoadWithOutput(args []string, w io.Writer) (*Settings, error) {
	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}

	s := &Settings{
		FFmpeg:  Tool{Name: FFmpegName, Env: os.Getenv(EnvFFmpeg)},
		FFprobe: Tool{Name: FFprobeName, Env: os.Getenv(EnvFFprobe)},
		Ytdlp:   Tool{Name: YtdlpName, Env: os.Getenv(EnvYtdlp)},
	}

	installYtdlp, err := GetEnvBool(EnvInstallYtdlp, DefaultInstallYtdlp)
	if err != nil {
		return nil, err
	}
	keepSources, err := GetEnvBool(EnvKeepSources, DefaultKeepSources)
	if err != nil {
		return nil, err
	}
	reveal, err := GetEnvBool(EnvReveal, DefaultReveal)
	if err != nil {
		return nil, err
	}

	flags := flag.NewFlagSet("yt-merger", flag.ContinueOnError)
	flags.SetOutput(w)

	flags.StringVar(&s.OutputDir, "output-dir", GetEnv(EnvOutputDir, DefaultOutputDir), "Directory for video.mp4, audio.mp4 and output.mp4")
	flags.StringVar(&s.FFmpeg.Flag, "ffmpeg", "", "Path to ffmpeg (default: $"+EnvFFmpeg+", then PATH)")
	flags.StringVar(&s.FFprobe.Flag, "ffprobe", "", "Path to ffprobe, used for merge progress (default: $"+EnvFFprobe+", then PATH)")
	flags.StringVar(&s.Ytdlp.Flag, "ytdlp", "", "Path to yt-dlp (default: $"+EnvYtdlp+", then PATH)")
	flags.BoolVar(&s.InstallYtdlp, "install-ytdlp", installYtdlp, "Download yt-dlp when it is not installed")
	flags.StringVar(&s.Backend, "backend", GetEnv(EnvBackend, DefaultBackend), "Download backend: yt-dlp or native")
	flags.StringVar(&s.AudioCodec, "audio-codec", GetEnv(EnvAudioCodec, DefaultAudioCodec), "Audio codec passed to ffmpeg -c:a")
	flags.BoolVar(&s.KeepSources, "keep-sources", keepSources, "Keep video.mp4 and audio.mp4 next to the merged file")
	flags.BoolVar(&s.Reveal, "reveal", reveal, "Show the merged file in the file manager")
	flags.StringVar(&s.Language, "lang", GetEnv(EnvLanguage, DefaultLanguage), "Interface language: en, ru, pt or system")
	flags.StringVar(&s.LogLevel, "log-level", GetEnv(EnvLogLevel, DefaultLogLevel), "Log level: debug, info, warn, error")
	flags.StringVar(&s.LogFormat, "log-format", GetEnv(EnvLogFormat, DefaultLogFormat), "Log format: text or json")
	flags.StringVar(&s.MetricsFile, "metrics-file", GetEnv(EnvMetricsFile, ""), "Write run metrics in Prometheus text format to this file")

	flags.Usage = func() {
		fmt.Fprintf(w, "Usage: %s [flags]\n", flags.Name())
		fmt.Fprintln(w, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments: %s", ErrInvalidSettings, strings.Join(flags.Args(), " "))
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks values that flag parsing cannot
func (s *Settings) Validate() error {
	switch s.Backend {
	case BackendYtdlp, BackendNative:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidSettings, s.Backend)
	}
	if strings.TrimSpace(s.AudioCodec) == "" {
		return fmt.Errorf("%w: audio codec must not be empty", ErrInvalidSettings)
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		return fmt.Errorf("%w: output directory must not be empty", ErrInvalidSettings)
	}
	return nil
}

// LoadEnvFile reads path into the process environment without overriding
// variables that are already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvBool returns the boolean value of the environment variable named by
// key, or fallback if the variable is unset or empty.
func GetEnvBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidSettings, key, s)
	}
	return b, nil
}
