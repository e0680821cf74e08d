package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func result(status Status) func(ctx context.Context) CheckResult {
	return func(ctx context.Context) CheckResult {
		return CheckResult{Status: status}
	}
}

func TestCheckers(t *testing.T) {
	named := NewChecker("store", result(StatusHealthy))
	if named.Name() != "store" {
		t.Errorf("Name() = %v, want store", named.Name())
	}
	if CheckFunc(result(StatusHealthy)).Name() != "unknown" {
		t.Error("CheckFunc should report the name unknown")
	}
	if got := AlwaysHealthy("noop").Check(context.Background()).Status; got != StatusHealthy {
		t.Errorf("AlwaysHealthy() = %v", got)
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no checks", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unknown counts as degraded", []Status{StatusUnknown}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("nsms", "0.1.0")
			for i, s := range tt.statuses {
				registry.RegisterFunc(string(rune('a'+i)), result(s))
			}

			report := registry.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if report.Healthy() != (tt.want != StatusUnhealthy) {
				t.Errorf("Healthy() = %v for %v", report.Healthy(), report.Status)
			}
		})
	}
}

func TestRegistry_ReportOrderAndNames(t *testing.T) {
	registry := NewRegistry("nsms", "0.1.0")
	for _, name := range []string{"sqlite", "grpc", "router"} {
		registry.RegisterFunc(name, result(StatusHealthy))
	}
	registry.Unregister("grpc")

	want := []string{"router", "sqlite"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	report := registry.CheckWithTimeout(time.Second)
	var got []string
	for _, c := range report.Checks {
		got = append(got, c.Name)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("report order = %v, want %v", got, want)
	}
	if report.Service != "nsms" || report.Version != "0.1.0" || registry.Service() != "nsms" {
		t.Errorf("report = %s", report)
	}
}

func TestRegistry_ConcurrentChecks(t *testing.T) {
	registry := NewRegistry("nsms", "0.1.0")
	var counter int32
	for i := 0; i < 5; i++ {
		registry.RegisterFunc(string(rune('A'+i)), func(ctx context.Context) CheckResult {
			atomic.AddInt32(&counter, 1)
			time.Sleep(20 * time.Millisecond)
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	report := registry.Check(context.Background())
	if elapsed := time.Since(start); elapsed > 90*time.Millisecond {
		t.Errorf("Check() took %v, expected concurrent execution", elapsed)
	}
	if atomic.LoadInt32(&counter) != 5 || len(report.Checks) != 5 {
		t.Errorf("ran %d checks, report has %d", counter, len(report.Checks))
	}
	for _, c := range report.Checks {
		if c.Duration <= 0 || c.Timestamp.IsZero() {
			t.Errorf("check %s lacks timing: %+v", c.Name, c)
		}
	}
}

func TestTCPCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()

	up := TCPCheck("router", addr, time.Second).Check(context.Background())
	if up.Status != StatusHealthy || up.Details["address"] != addr {
		t.Errorf("open port: %+v", up)
	}

	ln.Close()
	down := TCPCheck("router", addr, time.Second).Check(context.Background())
	if down.Status != StatusUnhealthy || down.Details["error"] == nil {
		t.Errorf("closed port: %+v", down)
	}
}

func TestHTTPCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tests := []struct {
		path string
		want Status
	}{
		{"/health", StatusHealthy},
		{"/broken", StatusUnhealthy},
	}
	for _, tt := range tests {
		got := HTTPCheck("http", srv.URL+tt.path, time.Second).Check(context.Background())
		if got.Status != tt.want {
			t.Errorf("%s: Status = %v, want %v", tt.path, got.Status, tt.want)
		}
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestDatabaseCheck(t *testing.T) {
	ok := DatabaseCheck("sqlite", pingerFunc(func(context.Context) error { return nil }))
	if got := ok.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("healthy ping: %+v", got)
	}

	bad := DatabaseCheck("sqlite", pingerFunc(func(context.Context) error { return errors.New("database is locked") }))
	got := bad.Check(context.Background())
	if got.Status != StatusUnhealthy || got.Details["error"] != "database is locked" {
		t.Errorf("failed ping: %+v", got)
	}
}
