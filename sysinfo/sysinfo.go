// Package sysinfo reports basic facts about the host. Facts the platform
// cannot provide are left nil instead of failing the report.
package sysinfo

import (
	"context"
	"math"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
)

// Info is a snapshot of host facts.
type Info struct {
	Platform      string
	System        string
	Release       string
	GoVersion     string
	Architecture  string
	CPUCount      *int
	LoadAvg       []float64 // 1, 5 and 15 minute averages
	UptimeSeconds *float64
}

// Source supplies raw host facts. The default reads them through gopsutil.
type Source interface {
	Host(ctx context.Context) (*host.InfoStat, error)
	Uptime(ctx context.Context) (uint64, error)
	Load(ctx context.Context) (*load.AvgStat, error)
	CPUs(ctx context.Context) (int, error)
}

// Collect gathers Info from src. A nil src reads the local host.
func Collect(ctx context.Context, src Source) Info {
	if src == nil {
		src = gopsutilSource{}
	}
	info := Info{
		System:       runtime.GOOS,
		GoVersion:    runtime.Version(),
		Architecture: runtime.GOARCH,
	}

	if h, err := src.Host(ctx); err == nil && h != nil {
		if h.OS != "" {
			info.System = h.OS
		}
		info.Release = h.KernelVersion
		if h.KernelArch != "" {
			info.Architecture = h.KernelArch
		}
		info.Platform = platform(h)
	}
	if info.Platform == "" {
		info.Platform = info.System + "-" + info.Architecture
	}

	if n, err := src.CPUs(ctx); err == nil && n > 0 {
		info.CPUCount = &n
	}
	if avg, err := src.Load(ctx); err == nil && avg != nil {
		info.LoadAvg = []float64{avg.Load1, avg.Load5, avg.Load15}
	}
	if up, err := src.Uptime(ctx); err == nil && up > 0 {
		secs := math.Round(float64(up)*100) / 100
		info.UptimeSeconds = &secs
	}
	return info
}

// platform renders a one-line platform string such as
// "linux-6.8.0-x86_64-ubuntu-24.04".
func platform(h *host.InfoStat) string {
	var parts []string
	for _, p := range []string{h.OS, h.KernelVersion, h.KernelArch, h.Platform, h.PlatformVersion} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

type gopsutilSource struct{}

func (gopsutilSource) Host(ctx context.Context) (*host.InfoStat, error) {
	return host.InfoWithContext(ctx)
}

func (gopsutilSource) Uptime(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

func (gopsutilSource) Load(ctx context.Context) (*load.AvgStat, error) {
	return load.AvgWithContext(ctx)
}

func (gopsutilSource) CPUs(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}
