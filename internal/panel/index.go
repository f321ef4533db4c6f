package panel

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/determined-ai/memberpanel/internal/view"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

type indexData struct {
	Defaults simconfig.Config
	State    view.State
}

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

func (s *Server) getIndex(c echo.Context) error {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, indexData{Defaults: s.defaults, State: s.viewer.State()}); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// The page keeps the operator's current selection across background polls by only rebuilding
// the select element when options_version changes.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Processor group membership</title>
</head>
<body>
<h1>Processor group membership</h1>

<form id="start_form">
  <label>Processors <input type="number" min="1" step="1" name="num_processors" value="{{.Defaults.NumProcessors}}"></label>
  <label>Max clock sync error <input type="number" min="0" step="any" name="max_clock_sync_error" value="{{.Defaults.MaxClockSyncError}}"></label>
  <label>Broadcast delay <input type="number" min="0" step="any" name="broadcast_delay" value="{{.Defaults.BroadcastDelay}}"></label>
  <label>Datagram delay <input type="number" min="0" step="any" name="datagram_delay" value="{{.Defaults.DatagramDelay}}"></label>
  <label>Check in period <input type="number" min="0" step="any" name="check_in_period" value="{{.Defaults.CheckInPeriod}}"></label>
  <button type="submit">Start</button>
</form>

<form id="crash_form">
  <select id="crash_processor" name="processor_id" data-version="{{.State.OptionsVersion}}">
  {{- range .State.Options}}
    <option value="{{.Value}}">{{.Label}}</option>
  {{- end}}
  </select>
  <button type="submit">Crash</button>
</form>

<p id="current_time">{{if not .State.Clock.IsZero}}{{.State.Clock.Format "Mon Jan 2 2006 15:04:05 MST"}}{{end}}</p>

<ul id="processors">
{{- range .State.Entries}}
  <li>{{.}}</li>
{{- end}}
</ul>

<script>
function post(url, form) {
  return fetch(url, {method: 'POST', body: new URLSearchParams(new FormData(form))})
    .then((response) => {
      if (response.status !== 200) {
        return response.json().then((body) => alert(body.message || ('Request failed: ' + response.status)));
      }
    });
}

document.getElementById('start_form').addEventListener('submit', (ev) => {
  ev.preventDefault();
  post('/api/v1/start', ev.target);
});

document.getElementById('crash_form').addEventListener('submit', (ev) => {
  ev.preventDefault();
  post('/api/v1/crash', ev.target);
});

function render(state) {
  document.getElementById('current_time').textContent = new Date(state.clock).toString();

  const list = document.getElementById('processors');
  list.replaceChildren(...(state.entries || []).map((text) => {
    const li = document.createElement('li');
    li.textContent = text;
    return li;
  }));

  const select = document.getElementById('crash_processor');
  if (select.dataset.version !== String(state.options_version)) {
    select.dataset.version = String(state.options_version);
    select.replaceChildren(...(state.options || []).map((o) => new Option(o.label, o.value)));
  }
}

(function connect() {
  const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  const socket = new WebSocket(scheme + location.host + '/ws');
  socket.onmessage = (ev) => render(JSON.parse(ev.data));
  socket.onclose = () => setTimeout(connect, 1000);
})();
</script>
</body>
</html>
`
