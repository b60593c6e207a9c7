// Package config holds flag parsing for the binaries.
package config

import (
	"flag"
	"time"
)

// HostConfig configures the deltahost binary.
type HostConfig struct {
	ListenAddr   string
	DisplayIndex int
	FPS          int
	Quality      int
	JPEG         bool
}

// ParseHostFlags parses flags for the deltahost binary.
func ParseHostFlags() *HostConfig {
	cfg := &HostConfig{}
	flag.StringVar(&cfg.ListenAddr, "listen", ":8799", "Address to serve the frame stream on")
	flag.IntVar(&cfg.DisplayIndex, "display", 0, "Display index to capture (0 = primary)")
	flag.IntVar(&cfg.FPS, "fps", 24, "Target capture cycles per second")
	flag.IntVar(&cfg.Quality, "quality", 70, "JPEG quality (1-100), used with -jpeg")
	flag.BoolVar(&cfg.JPEG, "jpeg", false, "JPEG-compress span payloads instead of sending raw pixels")
	flag.Parse()
	return cfg
}

// ViewConfig configures the deltaview binary.
type ViewConfig struct {
	HostURL string
}

// ParseViewFlags parses flags for the deltaview binary.
func ParseViewFlags() *ViewConfig {
	cfg := &ViewConfig{}
	flag.StringVar(&cfg.HostURL, "host", "ws://localhost:8799/stream", "deltahost stream URL")
	flag.Parse()
	return cfg
}

// AvgConfig configures the screenavg binary.
type AvgConfig struct {
	DisplayIndex int
	Interval     time.Duration
}

// ParseAvgFlags parses flags for the screenavg binary.
func ParseAvgFlags() *AvgConfig {
	cfg := &AvgConfig{}
	flag.IntVar(&cfg.DisplayIndex, "display", 0, "Display index to capture (0 = primary)")
	flag.DurationVar(&cfg.Interval, "interval", 80*time.Millisecond, "Delay between captures")
	flag.Parse()
	return cfg
}

// SnapConfig configures the screensnap binary.
type SnapConfig struct {
	DisplayIndex int
	Count        int
	OutDir       string
}

// ParseSnapFlags parses flags for the screensnap binary.
func ParseSnapFlags() *SnapConfig {
	cfg := &SnapConfig{}
	flag.IntVar(&cfg.DisplayIndex, "display", 0, "Display index to capture (0 = primary)")
	flag.IntVar(&cfg.Count, "count", 2, "Number of consecutive frames to capture")
	flag.StringVar(&cfg.OutDir, "out", ".", "Directory to write PNG files into")
	flag.Parse()
	return cfg
}
