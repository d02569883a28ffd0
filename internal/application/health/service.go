package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"papertrade-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const feedPingTimeout = 3 * time.Second

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// FeedPinger checks that the quote feed is reachable.
type FeedPinger interface {
	Ping(ctx context.Context) error
}

// CollectResult is the shape of /health/json and the dashboard payload.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
	Goroutines    int        `json:"goroutines"`
}

type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// timedPing times check and maps its outcome to up or down.
func timedPing(check func() error, up, down string) DepStatus {
	start := time.Now()
	if err := check(); err != nil {
		return DepStatus{Status: down}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: up, PingMs: &ms}
}

// CollectHealth gathers health data from Redis, the optional DB and the optional quote feed.
// Overall status is "ok" only when the database and Redis are connected; an unreachable
// quote feed degrades trading but is reported separately.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger, feed FeedPinger) CollectResult {
	deps := map[string]DepStatus{
		"database": {Status: "disconnected"},
		"redis":    {Status: "disconnected"},
		"quotes":   {Status: "disconnected"},
	}
	if db != nil {
		deps["database"] = timedPing(db.Ping, "connected", "error")
	}

	traffic := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startedMs := time.Now().UnixMilli()
	if rdb != nil {
		deps["redis"] = timedPing(func() error { return rdb.Ping(ctx).Err() }, "connected", "error")
		if deps["redis"].Status == "connected" {
			startedMs = readTraffic(ctx, rdb, &traffic, startedMs)
		}
	}

	if feed != nil {
		deps["quotes"] = timedPing(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, feedPingTimeout)
			defer cancel()
			return feed.Ping(pingCtx)
		}, "reachable", "unreachable")
	}

	status := "issue"
	if deps["database"].Status == "connected" && deps["redis"].Status == "connected" {
		status = "ok"
	}
	return CollectResult{
		Status:       status,
		Runtime:      runtimeInfo(startedMs),
		Traffic:      traffic,
		Dependencies: deps,
	}
}

func runtimeInfo(startedMs int64) RuntimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startedMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	const mb = 1024 * 1024
	return RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{Alloc: int(m.Alloc / mb), HeapUsed: int(m.HeapInuse / mb)},
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
		Goroutines:    runtime.NumGoroutine(),
	}
}

// readTraffic fills stats from the health marker counters and returns the recorded start time,
// seeding it on first use.
func readTraffic(ctx context.Context, rdb *redis.Client, stats *TrafficInfo, startTimeMs int64) int64 {
	vals, err := rdb.MGet(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyStartTime,
		middleware.KeyLastReq,
	).Result()
	if err != nil {
		return startTimeMs
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	if t, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		startTimeMs = t
	} else {
		rdb.SetNX(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	if count, _ := strconv.Atoi(str(3)); count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if last := str(5); last != "" {
		var lastReq map[string]interface{}
		if json.Unmarshal([]byte(last), &lastReq) == nil {
			stats.LastRequest = lastReq
		}
	}
	return startTimeMs
}
