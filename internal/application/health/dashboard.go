package health

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
)

// RenderDashboardHTML returns the HTML status page for GET /. The page refreshes itself from
// /health/json a few times and links the error log.
func RenderDashboardHTML(health CollectResult) string {
	b, _ := json.Marshal(health)
	jsonStr := string(b)
	// Escape for embedding in JS template literal: \ ` $
	jsonStr = strings.ReplaceAll(jsonStr, "\\", "\\\\")
	jsonStr = strings.ReplaceAll(jsonStr, "`", "\\`")
	jsonStr = strings.ReplaceAll(jsonStr, "$", "\\$")

	headline := "All Systems Operational"
	if health.Status != "ok" {
		headline = "System Issues Detected"
	}

	names := make([]string, 0, len(health.Dependencies))
	for name := range health.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	var deps strings.Builder
	for _, name := range names {
		d := health.Dependencies[name]
		class := "err"
		if d.Status == "connected" || d.Status == "reachable" {
			class = "ok"
		}
		ping := "--"
		if d.PingMs != nil {
			ping = fmt.Sprint(*d.PingMs)
		}
		fmt.Fprintf(&deps, `<div class="row"><span>%s</span><span id="pill-%s" class="pill %s">%s · <span id="ping-%s">%s</span> ms</span></div>`,
			html.EscapeString(name), name, class, html.EscapeString(d.Status), name, ping)
	}

	lastReq := "-"
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		lastReq = fmt.Sprintf("%v %v", m["method"], m["path"])
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Papertrade · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --ok: #0f766e; --dark: #1e293b; --bad: #dc2626; --bg: #f8fafc; --muted: #64748b; }
    body { background: var(--bg); color: var(--dark); font-family: system-ui, sans-serif; margin: 0; display: flex; justify-content: center; padding: 40px 20px; }
    .container { width: 100%; max-width: 960px; }
    h1 { font-size: 40px; font-weight: 900; letter-spacing: -2px; margin: 0 0 24px; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; }
    .card { background: white; border-radius: 16px; padding: 24px; box-shadow: 0 10px 40px -20px rgba(0,0,0,0.2); }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 800; letter-spacing: 2px; color: var(--muted); margin-bottom: 16px; }
    .big { font-size: 36px; font-weight: 900; margin-bottom: 8px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; font-size: 14px; font-weight: 600; border-bottom: 1px solid #f1f5f9; }
    .pill { font-size: 12px; font-weight: 800; padding: 2px 10px; border-radius: 8px; }
    .ok { color: var(--ok); background: rgba(15,118,110,0.08); }
    .err { color: var(--bad); background: rgba(220,38,38,0.08); }
    footer { margin-top: 16px; font-family: monospace; font-size: 13px; color: var(--muted); display: flex; justify-content: space-between; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <div class="container">
    <h1 id="headline">` + headline + `</h1>
    <div class="grid">
      <div class="card">
        <div class="label">Traffic</div>
        <div class="big" id="total-req">` + fmt.Sprint(health.Traffic.TotalRequests) + `</div>
        <div class="row"><span>Successful</span><span id="success-count">` + fmt.Sprint(health.Traffic.SuccessCount) + `</span></div>
        <div class="row"><span>Failed</span><span id="failed-count">` + fmt.Sprint(health.Traffic.FailedCount) + `</span></div>
        <div class="row"><span>Success Rate</span><span id="success-rate">` + health.Traffic.SuccessRate + `%</span></div>
        <div class="row"><span>Avg Latency</span><span id="avg-time">` + fmt.Sprint(health.Traffic.AvgResponseTime) + `ms</span></div>
      </div>
      <div class="card">
        <div class="label">Runtime</div>
        <div class="big" id="uptime">` + fmt.Sprint(health.Runtime.UptimeSeconds) + `s</div>
        <div class="row"><span>Heap Used</span><span id="mem-heap">` + fmt.Sprint(health.Runtime.Memory.HeapUsed) + ` MB</span></div>
        <div class="row"><span>Goroutines</span><span>` + fmt.Sprint(health.Runtime.Goroutines) + `</span></div>
        <div class="row"><span>Platform</span><span>` + health.Runtime.Platform + `</span></div>
      </div>
      <div class="card">
        <div class="label">Connectivity</div>
        ` + deps.String() + `
      </div>
    </div>
    <footer><span>LAST INBOUND <span id="last-req">` + html.EscapeString(lastReq) + `</span></span><a href="/health/errors">error log</a></footer>
  </div>
  <script>
    let left = 3;
    const updateUI = (d) => {
      document.getElementById('headline').innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
      document.getElementById('total-req').innerText = d.traffic.totalRequests;
      document.getElementById('success-count').innerText = d.traffic.successCount;
      document.getElementById('failed-count').innerText = d.traffic.failedCount;
      document.getElementById('success-rate').innerText = d.traffic.successRate + '%';
      document.getElementById('avg-time').innerText = d.traffic.avgResponseTime + 'ms';
      document.getElementById('uptime').innerText = d.runtime.uptimeSeconds + 's';
      document.getElementById('mem-heap').innerText = d.runtime.memory.heapUsed + ' MB';
      for (const [name, dep] of Object.entries(d.dependencies)) {
        const pill = document.getElementById('pill-' + name);
        if (!pill) continue;
        const ok = dep.status === 'connected' || dep.status === 'reachable';
        pill.className = 'pill ' + (ok ? 'ok' : 'err');
        pill.innerHTML = dep.status + ' · <span id="ping-' + name + '">' + (dep.pingMs != null ? dep.pingMs : '--') + '</span> ms';
      }
      if (d.traffic.lastRequest) document.getElementById('last-req').innerText = d.traffic.lastRequest.method + ' ' + d.traffic.lastRequest.path;
    };
    async function tick() { if (left <= 0) return; try { const r = await fetch('/health/json'); updateUI(await r.json()); left--; } catch (e) {} }
    updateUI(JSON.parse(` + "`" + jsonStr + "`" + `));
    setInterval(tick, 10000);
  </script>
</body>
</html>`
}
