package demo

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Pulse Live Graph</title>
<style>
body {
	font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
	max-width: 700px;
	margin: 0 auto;
	padding: 2rem;
	background: #1a1a2e;
	color: #eee;
}
h1 { color: #6ee7b7; }
.value {
	font-size: 3rem;
	font-weight: bold;
	color: #6ee7b7;
	text-align: center;
	padding: 1.5rem;
	background: #0f3460;
	border-radius: 12px;
	margin-bottom: 1rem;
}
.label { text-align: center; color: #888; margin-bottom: 1.5rem; }
button {
	background: linear-gradient(135deg, #6ee7b7, #3b82f6);
	border: none;
	color: #000;
	padding: 0.75rem 1.5rem;
	border-radius: 8px;
	font-weight: 600;
	cursor: pointer;
	margin-right: 0.5rem;
}
.status-connected { color: #22c55e; }
.status-disconnected { color: #ef4444; }
</style>
</head>
<body>
<h1>Pulse Live Graph</h1>
<p>Status: <span id="status" class="status-disconnected">connecting...</span></p>
<div class="value" id="total">-</div>
<div class="label" id="label"></div>
<button onclick="post('/api/click')">Click</button>
<button onclick="post('/api/step/5')">Step x5</button>
<button onclick="post('/api/step/1')">Step x1</button>
<button onclick="post('/api/toggle')">Toggle</button>
<button onclick="post('/api/reset')">Reset</button>
<script>
function post(path) { fetch(path, { method: 'POST' }); }

const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
const ws = new WebSocket(proto + '//' + location.host + '/ws');
const status = document.getElementById('status');

ws.onopen = () => {
	status.textContent = 'connected';
	status.className = 'status-connected';
};
ws.onclose = () => {
	status.textContent = 'disconnected';
	status.className = 'status-disconnected';
};
ws.onmessage = (e) => {
	const snap = JSON.parse(e.data);
	document.getElementById('total').textContent = snap.total;
	document.getElementById('label').textContent =
		snap.label + ' (rev ' + snap.revision + ')';
};
</script>
</body>
</html>
`
