package main

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"
)

const (
	dbPingTimeout    = 3 * time.Second
	heapThreshold    = 150 * 1024 * 1024
	rssThreshold     = 300 * 1024 * 1024
	diskUsedPctLimit = 90.0
)

type healthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func pass(name string) healthCheck {
	return healthCheck{Name: name, Status: "ok"}
}

func fail(name, detail string) healthCheck {
	return healthCheck{Name: name, Status: "fail", Detail: detail}
}

func (app *application) checkDatabase(ctx context.Context) healthCheck {
	ctx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		return fail("database", err.Error())
	}
	return pass("database")
}

func (app *application) checkHeap() healthCheck {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	if ms.HeapAlloc > heapThreshold {
		return fail("heap", "heap allocation above threshold")
	}
	return pass("heap")
}

func (app *application) checkRSS() healthCheck {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return fail("rss", err.Error())
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return fail("rss", err.Error())
	}

	if mem.RSS > rssThreshold {
		return fail("rss", "resident set size above threshold")
	}
	return pass("rss")
}

func (app *application) checkDisk() healthCheck {
	usage, err := disk.Usage("/")
	if err != nil {
		return fail("disk", err.Error())
	}

	if usage.UsedPercent > diskUsedPctLimit {
		return fail("disk", "disk usage above threshold")
	}
	return pass("disk")
}

// healthCheckHandler aggregates all sub-checks; a single failure makes the
// whole endpoint report unhealthy.
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	checks := []healthCheck{
		app.checkDatabase(r.Context()),
		app.checkHeap(),
		app.checkRSS(),
		app.checkDisk(),
	}

	status := "ok"
	httpStatus := http.StatusOK
	for _, c := range checks {
		if c.Status != "ok" {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	env := envelope{
		"status": status,
		"checks": checks,
		"system_info": map[string]string{
			"environment": app.config.Environment,
			"version":     app.config.Version,
		},
	}

	if err := app.writeJSON(w, httpStatus, env, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) livenessHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.writeJSON(w, http.StatusOK, envelope{"status": "ok"}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) readinessHandler(w http.ResponseWriter, r *http.Request) {
	check := app.checkDatabase(r.Context())

	status := http.StatusOK
	if check.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	if err := app.writeJSON(w, status, envelope{"status": check.Status, "database": check}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// metricsHandler exposes the raw numbers behind the thresholds.
func (app *application) metricsHandler(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	metrics := envelope{
		"goroutines":      runtime.NumGoroutine(),
		"heap_alloc":      ms.HeapAlloc,
		"heap_sys":        ms.HeapSys,
		"total_alloc":     ms.TotalAlloc,
		"num_gc":          ms.NumGC,
		"db_open_conns":   app.db.Stats().OpenConnections,
		"db_in_use_conns": app.db.Stats().InUse,
		"db_idle_conns":   app.db.Stats().Idle,
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			metrics["rss"] = mem.RSS
		}
	}

	if usage, err := disk.Usage("/"); err == nil {
		metrics["disk_used_percent"] = usage.UsedPercent
	}

	if err := app.writeJSON(w, http.StatusOK, envelope{"metrics": metrics}, nil); err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
