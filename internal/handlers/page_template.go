package handlers

// embeddedHomeTemplate is used when no home.html exists under the template path
const embeddedHomeTemplate = `<!DOCTYPE html>
<html lang="en" class="{{.Theme}}">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.SiteTitle}}</title>
    {{if .SiteURL}}<link rel="canonical" href="{{.SiteURL}}">{{end}}
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root { --bg: #0a0a0a; --fg: #f5f5f5; --muted: #737373; --line: #262626; }
        html.light { --bg: #fafafa; --fg: #0a0a0a; --muted: #737373; --line: #e5e5e5; }
        body { background: var(--bg); color: var(--fg); font-family: ui-monospace, Menlo, monospace; min-height: 100vh; display: flex; flex-direction: column; }
        header { position: sticky; top: 0; display: flex; justify-content: space-between; align-items: center; padding: 16px 24px; border-bottom: 1px solid var(--line); background: var(--bg); z-index: 10; font-size: 12px; letter-spacing: .08em; }
        header .controls { display: flex; gap: 16px; align-items: center; }
        header button { background: none; border: 0; color: inherit; font: inherit; cursor: pointer; letter-spacing: inherit; }
        .stage { display: grid; grid-template-columns: 1fr 280px; gap: 24px; padding: 48px 24px; border-bottom: 1px solid var(--line); }
        .stage img { width: 100%; height: auto; display: block; }
        .meta { font-size: 12px; color: var(--muted); display: flex; flex-direction: column; gap: 6px; }
        .meta h2 { color: var(--fg); font-size: 14px; font-weight: 500; }
        .settings { display: grid; grid-template-columns: 1fr 1fr; gap: 4px; margin-top: 12px; }
        .tags span { margin-right: 8px; }
        .empty { flex: 1; display: flex; align-items: center; justify-content: center; color: var(--muted); font-size: 14px; }
        .modal { position: fixed; inset: 0; background: var(--bg); display: none; grid-template-columns: 280px 1fr; z-index: 20; }
        .modal.open { display: grid; }
        .modal aside { border-right: 1px solid var(--line); padding: 24px; overflow-y: auto; font-size: 12px; }
        .modal aside h3 { color: var(--muted); margin: 16px 0 8px; font-weight: 400; }
        .modal aside li { list-style: none; cursor: pointer; padding: 2px 0; }
        .modal input { width: 100%; background: none; border: 0; border-bottom: 1px solid var(--line); color: inherit; font: inherit; padding: 8px 0; }
        .modal section { padding: 24px; overflow-y: auto; }
        .results { display: grid; grid-template-columns: repeat(auto-fill, minmax(160px, 1fr)); gap: 8px; margin-top: 16px; }
        .results img { width: 100%; aspect-ratio: 1; object-fit: cover; }
        @media (max-width: 768px) { .stage { grid-template-columns: 1fr; } .modal { grid-template-columns: 1fr; } }
    </style>
</head>
<body>
    <header>
        <div>{{upper .SiteTitle}}</div>
        <div class="controls">
            <span id="clock" data-timezone="{{.Timezone}}">{{.Clock}}</span>
            <button id="theme-toggle" type="button">{{if eq .Theme "light"}}DARK{{else}}LIGHT{{end}}</button>
            <button id="search-open" type="button">SEARCH ({{.Stats.TotalCount}})</button>
        </div>
    </header>

    {{if .Photos}}
    <main>
        {{range .Photos}}
        <article class="stage" id="{{.ID}}">
            <img src="{{.Src}}" alt="{{.Title}}" loading="lazy"{{if .Width}} width="{{.Width}}" height="{{.Height}}"{{end}}>
            <div class="meta">
                <h2>{{.Title}}</h2>
                {{if .Location}}<p>{{upper .Location}}</p>{{end}}
                <p>{{upper .Device}}</p>
                {{if .Date}}<p>{{.Date}}</p>{{end}}
                <div class="settings">
                    <span>{{.Settings.FocalLength}}{{if .Settings.FocalLength35mm}} ({{.Settings.FocalLength35mm}}){{end}}</span>
                    <span>{{.Settings.Aperture}}</span>
                    <span>{{.Settings.ShutterSpeed}}</span>
                    <span>ISO {{.Settings.ISO}}</span>
                </div>
                {{if .Tags}}<p class="tags">{{range .Tags}}<span>#{{upper .}}</span>{{end}}</p>{{end}}
            </div>
        </article>
        {{end}}
    </main>
    {{else}}
    <div class="empty">{{if .Unavailable}}PHOTOS UNAVAILABLE{{else}}NO PHOTOS FOUND{{end}}</div>
    {{end}}

    <div class="modal" id="search-modal">
        <aside>
            <input id="search-query" type="text" placeholder="SEARCH" autocomplete="off">
            <h3>TAGS</h3>
            <ul data-type="tag">{{range .Stats.Tags}}<li data-label="{{.Label}}">{{.Label}} ({{.Count}})</li>{{end}}</ul>
            <h3>CAMERAS</h3>
            <ul data-type="camera">{{range .Stats.Cameras}}<li data-label="{{.Label}}">{{.Label}} ({{.Count}})</li>{{end}}</ul>
            <h3>LOCATIONS</h3>
            <ul data-type="location">{{range .Stats.Locations}}<li data-label="{{.Label}}">{{.Label}} ({{.Count}})</li>{{end}}</ul>
        </aside>
        <section>
            <button id="search-close" type="button">CLOSE</button>
            <p id="search-summary"></p>
            <div class="results" id="search-results"></div>
        </section>
    </div>

    <script>
    (function () {
        const modal = document.getElementById('search-modal');
        const query = document.getElementById('search-query');
        const results = document.getElementById('search-results');
        const summary = document.getElementById('search-summary');
        let active = null;

        document.getElementById('search-open').onclick = () => { modal.classList.add('open'); query.focus(); };
        document.getElementById('search-close').onclick = () => modal.classList.remove('open');

        function search() {
            const params = new URLSearchParams({ q: query.value });
            if (active) { params.set('type', active.type); params.set('label', active.label); }
            fetch('/api/search?' + params).then(r => r.json()).then(render);
        }

        function render(res) {
            document.querySelectorAll('#search-modal aside ul').forEach(ul => {
                const key = { tag: 'tags', camera: 'cameras', location: 'locations' }[ul.dataset.type];
                const shown = new Set((res.sidebar[key] || []).map(s => s.label));
                ul.querySelectorAll('li').forEach(li => { li.hidden = !shown.has(li.dataset.label); });
            });
            summary.textContent = res.active ? res.count + ' PHOTOS' + (res.dateRange ? ' / ' + res.dateRange : '') : '';
            results.innerHTML = '';
            (res.photos || []).forEach(p => {
                const a = document.createElement('a');
                a.href = '#' + p.id;
                a.onclick = () => modal.classList.remove('open');
                const img = document.createElement('img');
                img.src = p.src; img.alt = p.title || '';
                a.appendChild(img);
                results.appendChild(a);
            });
        }

        query.oninput = search;
        document.querySelectorAll('#search-modal aside li').forEach(li => {
            const pick = () => { active = { type: li.parentElement.dataset.type, label: li.dataset.label }; search(); };
            li.onmouseenter = pick;
            li.onclick = pick;
        });

        function applyTheme(theme) {
            document.documentElement.className = theme;
            document.getElementById('theme-toggle').textContent = theme === 'light' ? 'DARK' : 'LIGHT';
        }
        document.getElementById('theme-toggle').onclick = () =>
            fetch('/api/preferences/theme/toggle', { method: 'POST' }).then(r => r.json()).then(p => applyTheme(p.theme));

        const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
        const ws = new WebSocket(proto + '//' + location.host + '/ws');
        ws.onopen = () => {
            ws.send(JSON.stringify({ type: 'subscribe', payload: 'clock' }));
            ws.send(JSON.stringify({ type: 'subscribe', payload: 'feed' }));
        };
        ws.onmessage = (e) => {
            const msg = JSON.parse(e.data);
            if (msg.type === 'clock') document.getElementById('clock').textContent = msg.payload.time;
            if (msg.type === 'theme_changed') applyTheme(msg.payload.theme);
            if (msg.type === 'feed_updated') document.getElementById('search-open').dataset.stale = 'true';
        };
    })();
    </script>
</body>
</html>`
