package worker

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/exec"
	"github.com/fwojciec/relay/sysinfo"
)

type statusPayload struct {
	Status string `json:"status"`
}

type errorPayload struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func failure(err error) errorPayload {
	return errorPayload{Status: relay.StatusError, Error: err.Error()}
}

type readPayload struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Content string `json:"content"`
}

type processPayload struct {
	Status     string `json:"status"`
	ReturnCode int    `json:"returncode"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	Command    string `json:"command"`
}

func process(res exec.Result) processPayload {
	status := relay.StatusOK
	if !res.OK() {
		status = relay.StatusError
	}
	return processPayload{
		Status:     status,
		ReturnCode: res.ReturnCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		Command:    res.Command,
	}
}

type systemPayload struct {
	Status        string    `json:"status"`
	Platform      string    `json:"platform"`
	System        string    `json:"system"`
	Release       string    `json:"release"`
	Go            string    `json:"go"`
	Architecture  string    `json:"architecture"`
	CPUCount      *int      `json:"cpu_count"`
	LoadAvg       []float64 `json:"load_avg"`
	UptimeSeconds *float64  `json:"uptime_seconds"`
}

type portPayload struct {
	Status  string   `json:"status"`
	Host    string   `json:"host"`
	Port    int      `json:"port"`
	Open    bool     `json:"open"`
	Latency *float64 `json:"latency,omitempty"`
}

func (s *Server) readFile(_ context.Context, args map[string]any) any {
	content, err := s.files.ReadFile(str(args, "path"))
	if err != nil {
		return readPayload{Status: relay.StatusError, Error: err.Error()}
	}
	return readPayload{Status: relay.StatusOK, Content: content}
}

func (s *Server) appendLog(_ context.Context, args map[string]any) any {
	if err := s.files.AppendLog(str(args, "path"), str(args, "text")); err != nil {
		return failure(err)
	}
	return statusPayload{Status: relay.StatusOK}
}

func (s *Server) runCommand(ctx context.Context, args map[string]any) any {
	res, err := s.runner.RunCommand(ctx, str(args, "command"), seconds(args, "timeout"))
	if err != nil {
		return failure(err)
	}
	return process(res)
}

func (s *Server) systemInfo(ctx context.Context, _ map[string]any) any {
	info := sysinfo.Collect(ctx, s.source)
	return systemPayload{
		Status:        relay.StatusOK,
		Platform:      info.Platform,
		System:        info.System,
		Release:       info.Release,
		Go:            info.GoVersion,
		Architecture:  info.Architecture,
		CPUCount:      info.CPUCount,
		LoadAvg:       info.LoadAvg,
		UptimeSeconds: info.UptimeSeconds,
	}
}

func (s *Server) pingHost(ctx context.Context, args map[string]any) any {
	res, err := s.runner.Ping(ctx, str(args, "host"), integer(args, "count"), integer(args, "timeout"))
	if err != nil {
		return failure(err)
	}
	return process(res)
}

func (s *Server) scanPort(ctx context.Context, args map[string]any) any {
	st, err := s.scanner.ScanPort(ctx, str(args, "host"), integer(args, "port"), seconds(args, "timeout"))
	if err != nil {
		return failure(err)
	}
	p := portPayload{Status: relay.StatusOK, Host: st.Host, Port: st.Port, Open: st.Open}
	if st.Open {
		p.Latency = &st.Latency
	}
	return p
}

func (s *Server) sshCommand(ctx context.Context, args map[string]any) any {
	res, err := s.runner.SSH(ctx, exec.SSHOptions{
		Host:    str(args, "host"),
		Command: str(args, "command"),
		User:    str(args, "user"),
		Port:    integer(args, "port"),
		KeyPath: str(args, "key_path"),
		Timeout: seconds(args, "timeout"),
	})
	if err != nil {
		return failure(err)
	}
	return process(res)
}

// Argument accessors. Prepare has already checked types, so these only
// convert between the numeric representations JSON decoding and defaults
// produce.

func str(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func number(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

func integer(args map[string]any, key string) int {
	return int(math.Trunc(number(args, key)))
}

func seconds(args map[string]any, key string) time.Duration {
	return time.Duration(number(args, key) * float64(time.Second))
}
