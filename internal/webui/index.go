package webui

const indexHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>cue</title>
  <style>
    body { font-family: "Segoe UI", sans-serif; margin: 0; background: linear-gradient(145deg,#f7fafc,#e9eef7); color: #1f2937; }
    .wrap { max-width: 1200px; margin: 0 auto; padding: 20px; display: grid; grid-template-columns: 1fr 1fr; gap: 16px; }
    .panel { background: #fff; border-radius: 12px; box-shadow: 0 8px 30px rgba(15,23,42,.08); padding: 16px; }
    .full { grid-column: 1 / -1; }
    h2 { margin-top: 0; font-size: 1.1rem; }
    input, textarea, select { width: 100%; box-sizing: border-box; padding: 8px; border: 1px solid #cbd5e1; border-radius: 8px; margin-bottom: 6px; font: inherit; }
    textarea { min-height: 70px; }
    button { padding: 8px 14px; border: 0; border-radius: 8px; background: #4f46e5; color: #fff; cursor: pointer; }
    button:disabled { background: #94a3b8; cursor: default; }
    button.ghost { background: #e2e8f0; color: #1f2937; }
    ul { list-style: none; padding: 0; margin: 8px 0; }
    li { display: flex; justify-content: space-between; align-items: center; padding: 6px 8px; border-bottom: 1px solid #f1f5f9; }
    .tabs button { background: #e2e8f0; color: #1f2937; }
    .tabs button.active { background: #4f46e5; color: #fff; }
    pre { white-space: pre-wrap; background: #f9fafb; border: 1px solid #d1d5db; border-radius: 8px; padding: 12px; min-height: 160px; max-height: 50vh; overflow: auto; }
    .cards { display: grid; grid-template-columns: repeat(auto-fill, minmax(220px, 1fr)); gap: 10px; }
    .card { border: 1px solid #e2e8f0; border-radius: 10px; padding: 10px; cursor: pointer; }
    .card.featured { border-color: #f59e0b; }
    .badge { font-size: .75rem; background: #eef2ff; color: #4338ca; border-radius: 6px; padding: 2px 6px; }
    #toast { position: fixed; top: 16px; right: 16px; padding: 10px 14px; border-radius: 8px; color: #fff; display: none; }
    #toast.success { background: #059669; display: block; }
    #toast.error { background: #dc2626; display: block; }
  </style>
</head>
<body>
  <div id="toast"></div>
  <div class="wrap">
    <div class="panel">
      <h2>Sections</h2>
      <input id="secTitle" placeholder="Section title" />
      <textarea id="secContent" placeholder="Section content"></textarea>
      <button onclick="addSection()">Add section</button>
      <ul id="sections"></ul>
      <h2>Rules</h2>
      <input id="ruleText" placeholder="Rule" />
      <button onclick="addRule()">Add rule</button>
      <ul id="rules"></ul>
      <button class="ghost" onclick="clearDoc()">Clear</button>
    </div>
    <div class="panel">
      <div class="tabs">
        <button data-view="json" onclick="setView('json')">JSON</button>
        <button data-view="markdown" onclick="setView('markdown')">Markdown</button>
        <button data-view="plain" onclick="setView('plain')">Plain text</button>
        <button class="ghost" onclick="copyView()">Copy</button>
      </div>
      <pre id="output"></pre>
      <h2>Test</h2>
      <input id="apiKey" type="password" placeholder="OpenRouter API key" />
      <button onclick="saveKey()">Save key</button>
      <select id="model"><option value="">Select a model</option></select>
      <button id="testBtn" onclick="testPrompt()">Test prompt</button>
      <button class="ghost" onclick="shareSlack()">Share to Slack</button>
      <pre id="result"></pre>
    </div>
    <div class="panel">
      <h2>Library</h2>
      <input id="saveName" placeholder="Prompt name" />
      <button onclick="savePrompt()">Save current</button>
      <ul id="library"></ul>
    </div>
    <div class="panel">
      <h2>Import template</h2>
      <input id="importURL" placeholder="https://example.com/template.json" />
      <button onclick="importURL()">Import from URL</button>
      <input id="importFile" type="file" accept=".json" onchange="importFile(event)" />
      <h2>Submit current prompt</h2>
      <input id="subTitle" placeholder="Title" />
      <input id="subCategory" placeholder="Category" />
      <input id="subDescription" placeholder="Description" />
      <input id="subAuthor" placeholder="Author name" />
      <input id="subGithub" placeholder="GitHub URL (optional)" />
      <button onclick="submitTemplate()">Submit</button>
    </div>
    <div class="panel full">
      <h2>Templates</h2>
      <div class="tabs" id="categories"></div>
      <div id="featured"></div>
      <h3>Prebuilt</h3>
      <div class="cards" id="prebuilt"></div>
      <h3>Community</h3>
      <div class="cards" id="community"></div>
    </div>
  </div>
  <script>
    let snap = null;
    const $ = (id) => document.getElementById(id);
    const esc = (s) => String(s).replace(/[&<>"']/g, (c) => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
    let toastTimer = null;
    function toast(msg, kind) {
      const t = $('toast'); t.textContent = msg; t.className = kind;
      clearTimeout(toastTimer); toastTimer = setTimeout(() => { t.className = ''; }, 3000);
    }
    async function api(method, path, body) {
      const res = await fetch(path, { method, headers: { 'Content-Type': 'application/json' }, body: body === undefined ? undefined : JSON.stringify(body) });
      const data = await res.json().catch(() => ({}));
      if (!res.ok) throw new Error(data.error || res.statusText);
      return data;
    }
    async function run(fn, ok) {
      try { const r = await fn(); if (ok) toast(ok, 'success'); return r; } catch (e) { toast(e.message, 'error'); }
    }
    function render(s) {
      snap = s;
      $('sections').innerHTML = s.document.sections.map((x, i) => '<li><span><b>' + esc(x.title) + '</b></span><button class="ghost" onclick="rmSection(' + i + ')">Remove</button></li>').join('');
      $('rules').innerHTML = s.document.rules.map((x, i) => '<li><span>' + (i + 1) + '. ' + esc(x) + '</span><button class="ghost" onclick="rmRule(' + i + ')">Remove</button></li>').join('');
      $('output').textContent = s.views[s.active];
      document.querySelectorAll('.tabs button[data-view]').forEach((b) => b.classList.toggle('active', b.dataset.view === s.active));
    }
    const addSection = () => run(async () => { await api('POST', '/api/sections', { title: $('secTitle').value, content: $('secContent').value }); $('secTitle').value = ''; $('secContent').value = ''; }, 'Section added');
    const addRule = () => run(async () => { await api('POST', '/api/rules', { text: $('ruleText').value }); $('ruleText').value = ''; }, 'Rule added');
    const rmSection = (i) => run(() => api('DELETE', '/api/sections/' + i));
    const rmRule = (i) => run(() => api('DELETE', '/api/rules/' + i));
    const clearDoc = () => confirm('Clear the current prompt?') && run(() => api('DELETE', '/api/document'));
    const setView = (v) => run(() => api('PUT', '/api/document/view', { view: v }));
    const copyView = () => run(() => navigator.clipboard.writeText($('output').textContent), 'Copied to clipboard');
    async function loadLibrary() {
      const list = await api('GET', '/api/library');
      $('library').innerHTML = list.map((e, i) => '<li><span>' + esc(e.name) + ' <small>' + new Date(e.savedAt).toLocaleString() + '</small></span><span><button onclick="loadPrompt(' + i + ')">Load</button> <button class="ghost" onclick="deletePrompt(' + i + ')">Delete</button></span></li>').join('');
    }
    const savePrompt = () => run(async () => { await api('POST', '/api/library', { name: $('saveName').value }); $('saveName').value = ''; await loadLibrary(); }, 'Prompt saved');
    const loadPrompt = (i) => run(() => api('POST', '/api/library/' + i + '/load'), 'Prompt loaded');
    const deletePrompt = (i) => confirm('Delete this prompt?') && run(async () => { await api('DELETE', '/api/library/' + i); await loadLibrary(); }, 'Prompt deleted');
    function card(t, source) {
      return '<div class="card' + (t.featured ? ' featured' : '') + '" data-source="' + esc(source) + '" data-id="' + esc(t.id) + '"><span class="badge">' + esc(t.category) + '</span><h4>' + esc(t.title) + '</h4><p>' + esc(t.description || '') + '</p><small>' + esc(t.author.name) + ' · ★ ' + t.rating + ' · ' + t.downloads + ' uses</small></div>';
    }
    async function loadTemplates(category) {
      const q = category === undefined ? '' : '&category=' + encodeURIComponent(category);
      const pre = await api('GET', '/api/templates?source=prebuilt' + q);
      const com = await api('GET', '/api/templates?source=community' + q);
      $('prebuilt').innerHTML = pre.templates.map((t) => card(t, 'prebuilt')).join('') || '<p>No templates found</p>';
      $('community').innerHTML = com.templates.map((t) => card(t, 'community')).join('') || '<p>No community templates yet</p>';
      const cats = await api('GET', '/api/templates/categories');
      $('categories').innerHTML = cats.map((c) => '<button class="' + (c.id === pre.category ? 'active' : '') + '" data-category="' + esc(c.id) + '">' + esc(c.name) + '</button>').join('');
      try { const f = await api('GET', '/api/templates/featured'); $('featured').innerHTML = '<h3>Featured</h3>' + card(f, 'prebuilt'); } catch (e) { $('featured').innerHTML = ''; }
    }
    document.addEventListener('click', (ev) => {
      const cat = ev.target.closest('#categories button[data-category]');
      if (cat) { run(() => loadTemplates(cat.dataset.category)); return; }
      const card = ev.target.closest('.card[data-id]');
      if (card) useTemplate(card.dataset.source, card.dataset.id);
    });
    const useTemplate = (source, id) => run(async () => { const r = await api('POST', '/api/templates/' + encodeURIComponent(source) + '/' + encodeURIComponent(id) + '/load'); await loadTemplates(); return r; }, 'Template loaded');
    const importURL = () => run(async () => { await api('POST', '/api/templates/import', { url: $('importURL').value }); await loadTemplates(); }, 'Template imported');
    function importFile(ev) {
      const f = ev.target.files[0]; if (!f) return;
      const reader = new FileReader();
      reader.onload = () => run(async () => {
        let tpl; try { tpl = JSON.parse(reader.result); } catch (e) { throw new Error('Invalid JSON file'); }
        await api('POST', '/api/templates/import', { template: tpl }); await loadTemplates();
      }, 'Template imported');
      reader.readAsText(f);
    }
    const submitTemplate = () => run(async () => {
      await api('POST', '/api/templates/submit', { title: $('subTitle').value, category: $('subCategory').value, description: $('subDescription').value, authorName: $('subAuthor').value, authorGithub: $('subGithub').value });
      ['subTitle', 'subCategory', 'subDescription', 'subAuthor', 'subGithub'].forEach((id) => { $(id).value = ''; });
      await loadTemplates();
    }, 'Template submitted');
    function renderModels(models) {
      const sel = $('model'); const cur = sel.value;
      sel.innerHTML = '<option value="">Select a model</option>' + models.map((m) => '<option value="' + esc(m.id) + '">' + esc(m.id) + '</option>').join('');
      sel.value = cur;
    }
    const saveKey = () => run(async () => { const r = await api('PUT', '/api/key', { key: $('apiKey').value }); $('apiKey').value = ''; renderModels(r.models); }, 'API key saved');
    const testPrompt = () => run(() => api('POST', '/api/test', { model: $('model').value }), 'Test completed successfully!');
    const shareSlack = () => run(() => api('POST', '/api/share/slack', { title: prompt('Title for the Slack post?') || 'Prompt' }), 'Shared to Slack');
    function connect() {
      const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
      ws.onmessage = (m) => {
        const ev = JSON.parse(m.data);
        if (ev.type === 'snapshot') render(ev.data);
        if (ev.type === 'models') renderModels(ev.data);
        if (ev.type === 'busy') $('testBtn').disabled = ev.data;
        if (ev.type === 'result') $('result').textContent = ev.data;
      };
      ws.onclose = () => setTimeout(connect, 2000);
    }
    connect();
    run(loadLibrary); run(loadTemplates); run(async () => renderModels(await api('GET', '/api/models')));
  </script>
</body>
</html>
`
