package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets every variable Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvOutputDir, EnvFFmpeg, EnvFFprobe, EnvYtdlp, EnvInstallYtdlp,
		EnvBackend, EnvAudioCodec, EnvKeepSources, EnvReveal, EnvLanguage,
		EnvLogLevel, EnvLogFormat, EnvMetricsFile,
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := LoadWithOutput(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.OutputDir != DefaultOutputDir {
		t.Errorf("Expected output dir %s, got %s", DefaultOutputDir, s.OutputDir)
	}
	if s.Backend != DefaultBackend {
		t.Errorf("Expected backend %s, got %s", DefaultBackend, s.Backend)
	}
	if s.AudioCodec != DefaultAudioCodec {
		t.Errorf("Expected audio codec %s, got %s", DefaultAudioCodec, s.AudioCodec)
	}
	if s.KeepSources != DefaultKeepSources {
		t.Errorf("Expected keep sources %v, got %v", DefaultKeepSources, s.KeepSources)
	}
	if s.Language != DefaultLanguage {
		t.Errorf("Expected language %s, got %s", DefaultLanguage, s.Language)
	}
	if s.FFmpeg.Name != FFmpegName || s.FFmpeg.Flag != "" || s.FFmpeg.Env != "" {
		t.Errorf("Unexpected ffmpeg tool %+v", s.FFmpeg)
	}
	if s.MetricsFile != "" {
		t.Errorf("Expected metrics disabled, got %s", s.MetricsFile)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOutputDir, "/videos")
	t.Setenv(EnvBackend, BackendNative)
	t.Setenv(EnvKeepSources, "false")
	t.Setenv(EnvFFmpeg, "/opt/ffmpeg")
	t.Setenv(EnvLogLevel, "debug")

	s, err := LoadWithOutput(nil, io.Discard)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.OutputDir != "/videos" {
		t.Errorf("Expected /videos, got %s", s.OutputDir)
	}
	if s.Backend != BackendNative {
		t.Errorf("Expected native backend, got %s", s.Backend)
	}
	if s.KeepSources {
		t.Error("Expected keep sources to be disabled")
	}
	if s.FFmpeg.Env != "/opt/ffmpeg" {
		t.Errorf("Expected ffmpeg env /opt/ffmpeg, got %s", s.FFmpeg.Env)
	}
	if s.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", s.LogLevel)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOutputDir, "/videos")
	t.Setenv(EnvAudioCodec, "libopus")
	t.Setenv(EnvFFmpeg, "/opt/ffmpeg")

	s, err := LoadWithOutput([]string{
		"-output-dir", "/tmp/out",
		"-audio-codec", "aac",
		"-ffmpeg", "/usr/local/bin/ffmpeg",
		"-keep-sources=false",
		"-reveal",
	}, io.Discard)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.OutputDir != "/tmp/out" {
		t.Errorf("Expected /tmp/out, got %s", s.OutputDir)
	}
	if s.AudioCodec != "aac" {
		t.Errorf("Expected aac, got %s", s.AudioCodec)
	}
	if s.FFmpeg.Flag != "/usr/local/bin/ffmpeg" || s.FFmpeg.Env != "/opt/ffmpeg" {
		t.Errorf("Expected both flag and env to be kept, got %+v", s.FFmpeg)
	}
	if s.KeepSources || !s.Reveal {
		t.Errorf("Unexpected booleans keep=%v reveal=%v", s.KeepSources, s.Reveal)
	}
}

func TestLoad_InvalidBoolEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvKeepSources, "maybe")

	_, err := LoadWithOutput(nil, io.Discard)
	if !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
}

func TestLoad_UnknownFlag(t *testing.T) {
	clearEnv(t)

	if _, err := LoadWithOutput([]string{"-playlist"}, io.Discard); err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestLoad_UnexpectedArguments(t *testing.T) {
	clearEnv(t)

	_, err := LoadWithOutput([]string{"https://example.com/v"}, io.Discard)
	if !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Settings{OutputDir: ".", Backend: BackendYtdlp, AudioCodec: "aac"}

	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"valid", func(*Settings) {}, false},
		{"native backend", func(s *Settings) { s.Backend = BackendNative }, false},
		{"unknown backend", func(s *Settings) { s.Backend = "youtube-dl" }, true},
		{"empty codec", func(s *Settings) { s.AudioCodec = " " }, true},
		{"empty output dir", func(s *Settings) { s.OutputDir = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.modify(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	// godotenv skips keys present in the environment, even when empty
	t.Setenv(EnvAudioCodec, "")
	os.Unsetenv(EnvAudioCodec)

	path := filepath.Join(t.TempDir(), ".env")
	content := EnvAudioCodec + "=libopus\n" + EnvOutputDir + "=/from/file\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// Already set variables win over the file
	t.Setenv(EnvOutputDir, "/from/env")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv(EnvAudioCodec); got != "libopus" {
		t.Errorf("Expected libopus from .env, got %q", got)
	}
	if got := os.Getenv(EnvOutputDir); got != "/from/env" {
		t.Errorf("Expected existing env to win, got %q", got)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Expected missing file to be ignored, got %v", err)
	}
}

func TestToolResolve_Flag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := Tool{Name: FFmpegName, Flag: path, Env: "/nonexistent/ffmpeg"}.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}
}
