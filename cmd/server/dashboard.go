package main

import (
	"net/http"
)

func dashboardHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>RSVP Fence</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #f4f1ea;
            color: #2d2a26;
            padding: 24px;
        }
        .container { max-width: 1000px; margin: 0 auto; }
        h1 { font-size: 1.8em; margin-bottom: 4px; }
        .subtitle { color: #7a746b; margin-bottom: 24px; }
        .cards {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 16px;
            margin-bottom: 24px;
        }
        .card {
            background: white;
            border-radius: 8px;
            padding: 18px;
            box-shadow: 0 1px 3px rgba(0,0,0,0.08);
        }
        .card .label { color: #7a746b; font-size: 0.85em; text-transform: uppercase; }
        .card .value { font-size: 2em; font-weight: 600; margin-top: 6px; }
        .allowed { color: #2f855a; }
        .blocked { color: #c53030; }
        table {
            width: 100%;
            background: white;
            border-radius: 8px;
            border-collapse: collapse;
            margin-bottom: 24px;
            box-shadow: 0 1px 3px rgba(0,0,0,0.08);
        }
        th, td { text-align: left; padding: 10px 14px; border-bottom: 1px solid #eee; }
        th { color: #7a746b; font-size: 0.85em; text-transform: uppercase; }
        h2 { font-size: 1.1em; margin-bottom: 10px; }
        .footer { color: #7a746b; font-size: 0.85em; }
    </style>
</head>
<body>
    <div class="container">
        <h1>RSVP Fence</h1>
        <p class="subtitle">Limiter decisions and RSVP outcomes since start</p>

        <div class="cards">
            <div class="card"><div class="label">Checks</div><div class="value" id="total">0</div></div>
            <div class="card"><div class="label">Allowed</div><div class="value allowed" id="allowed">0</div></div>
            <div class="card"><div class="label">Blocked</div><div class="value blocked" id="blocked">0</div></div>
            <div class="card"><div class="label">Uptime</div><div class="value" id="uptime">0s</div></div>
        </div>

        <h2>Limiters</h2>
        <table>
            <thead><tr><th>Limiter</th><th>Allowed</th><th>Blocked</th><th>Last block</th></tr></thead>
            <tbody id="limiters"></tbody>
        </table>

        <h2>Operations</h2>
        <table>
            <thead><tr><th>Operation</th><th>Total</th><th>Outcomes</th></tr></thead>
            <tbody id="operations"></tbody>
        </table>

        <p class="footer">Refreshes every 2 seconds</p>
    </div>

    <script>
        function cell(text) {
            const td = document.createElement('td');
            td.textContent = text;
            return td;
        }

        function formatUptime(seconds) {
            const h = Math.floor(seconds / 3600);
            const m = Math.floor((seconds % 3600) / 60);
            const s = seconds % 60;
            if (h > 0) return h + 'h ' + m + 'm';
            if (m > 0) return m + 'm ' + s + 's';
            return s + 's';
        }

        function render(data) {
            document.getElementById('total').textContent = data.total_checks.toLocaleString();
            document.getElementById('allowed').textContent = data.allowed_checks.toLocaleString();
            document.getElementById('blocked').textContent = data.blocked_checks.toLocaleString();
            document.getElementById('uptime').textContent = formatUptime(data.uptime_seconds);

            const limiters = document.getElementById('limiters');
            limiters.replaceChildren();
            (data.limiters || []).forEach(function (l) {
                const tr = document.createElement('tr');
                const last = l.blocked > 0 ? new Date(l.last_block).toLocaleTimeString() : '-';
                tr.append(cell(l.limiter), cell(l.allowed), cell(l.blocked), cell(last));
                limiters.appendChild(tr);
            });

            const operations = document.getElementById('operations');
            operations.replaceChildren();
            (data.operations || []).forEach(function (op) {
                const tr = document.createElement('tr');
                const outcomes = Object.keys(op.outcomes || {}).sort().map(function (k) {
                    return k + ': ' + op.outcomes[k];
                }).join(', ');
                tr.append(cell(op.operation), cell(op.total), cell(outcomes));
                operations.appendChild(tr);
            });
        }

        async function fetchMetrics() {
            try {
                const response = await fetch('/metrics');
                render(await response.json());
            } catch (error) {
                console.error('Failed to fetch metrics:', error);
            }
        }

        fetchMetrics();
        setInterval(fetchMetrics, 2000);
    </script>
</body>
</html>`
