package api

const webUI = `<!DOCTYPE html>
<html lang="th">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Job Tracking Kiosk</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;color:#333;line-height:1.6}

/* Header */
.hdr{background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);color:#fff;padding:14px 20px;display:flex;align-items:center;justify-content:space-between;position:sticky;top:0;z-index:100}
.hdr h1{font-size:18px;font-weight:600}
.hdr-right{display:flex;align-items:center;font-size:13px;gap:6px}
.dot{width:10px;height:10px;border-radius:50%;display:inline-block}
.dot-green{background:#22c55e}.dot-red{background:#ef4444}.dot-gray{background:#9ca3af}

/* Screens */
.content{max-width:900px;margin:0 auto;padding:20px}
.screen{display:none}
.screen.active{display:block}
.card{background:#fff;border-radius:8px;padding:20px;margin-bottom:16px;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.card h2{font-size:16px;margin-bottom:12px;padding-bottom:8px;border-bottom:1px solid #eee}

/* Buttons */
.btn{display:inline-flex;align-items:center;gap:6px;padding:10px 18px;border-radius:6px;border:none;cursor:pointer;font-size:15px;font-weight:500}
.btn-primary{background:#667eea;color:#fff}
.btn-secondary{background:#e5e7eb;color:#374151}
.btn-danger{background:#fff;color:#ef4444;border:1px solid #ef4444}
.btn-sm{padding:5px 10px;font-size:12px}
.btn-row{display:flex;gap:8px;flex-wrap:wrap;margin-top:12px}

/* Forms */
.form-group{margin-bottom:14px}
.form-group label{display:block;font-size:13px;font-weight:500;margin-bottom:4px;color:#555}
.form-group input,.form-group select,.form-group textarea{width:100%;padding:8px 12px;border:1px solid #ddd;border-radius:6px;font-size:14px}
.form-row{display:grid;grid-template-columns:1fr 1fr 1fr;gap:12px}

/* Jobs table */
table{width:100%;border-collapse:collapse;font-size:14px}
th,td{text-align:left;padding:8px;border-bottom:1px solid #f0f0f0}
.badge{display:inline-block;padding:2px 10px;border-radius:20px;font-size:12px;font-weight:500}
.badge-open{background:#dcfce7;color:#166534}
.badge-pause{background:#fef9c3;color:#854d0e}
.muted{color:#888;font-size:13px}

/* Modal */
.modal{display:none;position:fixed;inset:0;background:rgba(0,0,0,.4);align-items:center;justify-content:center;z-index:200}
.modal .card{width:420px;max-width:95vw}
.spinner{width:40px;height:40px;border:4px solid #e5e7eb;border-top-color:#667eea;border-radius:50%;animation:spin 1s linear infinite;margin:40px auto}
@keyframes spin{to{transform:rotate(360deg)}}
</style>
</head>
<body>
<div class="hdr">
  <h1>Job Tracking Kiosk</h1>
  <div class="hdr-right"><span id="cloud-text">-</span><span class="dot dot-gray" id="cloud-dot"></span></div>
</div>

<div class="content">
  <div class="screen active" id="scan-screen">
    <div class="card">
      <h2>Scan work order</h2>
      <div class="form-group"><label>QR data</label><textarea id="qr-input" rows="4" placeholder='{"projectNo":"..."}'></textarea></div>
      <div class="btn-row"><button class="btn btn-primary" onclick="submitScan()">Scan</button></div>
    </div>
  </div>

  <div class="screen" id="info-screen">
    <div class="card">
      <h2>Work order</h2>
      <div id="scan-info" class="muted"></div>
      <div class="btn-row">
        <button class="btn btn-primary" onclick="showScreen('start-form')">Start job</button>
        <button class="btn btn-secondary" onclick="toggleOpenJobs(true)">Open jobs</button>
        <button class="btn btn-secondary" onclick="openModal('daily-report-modal')">Daily report</button>
        <button class="btn btn-secondary" onclick="openModal('qc-report-modal')">QC report</button>
        <button class="btn btn-danger" onclick="resetSession()">New scan</button>
      </div>
    </div>
    <div class="card" id="open-jobs-card" style="display:none">
      <h2>Open jobs <button class="btn btn-sm btn-secondary" onclick="toggleOpenJobs(false)">Hide</button></h2>
      <table id="open-jobs-table"><thead><tr><th>Process</th><th>No.</th><th>Step</th><th>Machine</th><th>Status</th><th></th></tr></thead><tbody></tbody></table>
    </div>
  </div>

  <div class="screen" id="start-form">
    <form class="card" onsubmit="submitStart(event)">
      <h2>Start job</h2>
      <div class="form-group"><label>Process Name</label><input name="processName" required></div>
      <div class="form-row">
        <div class="form-group"><label>Process No.</label><input name="processNo" required></div>
        <div class="form-group"><label>Step No.</label><input name="stepNo" required></div>
        <div class="form-group"><label>Machine No.</label><input name="machineNo"></div>
      </div>
      <div class="form-group"><label>Employee code</label><input name="employeeCode" required></div>
      <div class="btn-row"><button class="btn btn-primary" type="submit">Start</button><button class="btn btn-secondary" type="button" onclick="showScreen('info-screen')">Back</button></div>
    </form>
  </div>

  <div class="screen" id="stop-form">
    <form class="card" onsubmit="submitStop(event)">
      <h2>Stop job</h2>
      <div id="stop-job-info" class="muted"></div>
      <div class="form-group"><label>Employee code</label><input name="employeeCode" required></div>
      <div class="form-row" id="quantity-row">
        <div class="form-group"><label>FG</label><input name="fg" type="number"></div>
        <div class="form-group"><label>NG</label><input name="ng" type="number"></div>
        <div class="form-group"><label>Rework</label><input name="rework" type="number"></div>
      </div>
      <div class="btn-row"><button class="btn btn-primary" type="submit">Stop</button><button class="btn btn-secondary" type="button" onclick="showScreen('info-screen')">Back</button></div>
    </form>
  </div>

  <div class="screen" id="loading-screen"><div class="spinner"></div></div>

  <div class="screen" id="confirm-screen">
    <div class="card">
      <h2>Saved</h2>
      <div class="btn-row"><button class="btn btn-primary" onclick="showScreen('info-screen')">OK</button></div>
    </div>
  </div>
</div>

<div class="modal" id="pause-reason-modal">
  <form class="card" id="pause-reason-form" onsubmit="submitPause(event)">
    <h2>Pause reason</h2>
    <div class="form-group"><select name="reason" id="pause-reason-select" onchange="pauseReasonChanged()"></select></div>
    <div class="form-group" id="pause-other-reason" style="display:none"><input name="otherReason"></div>
    <div class="btn-row"><button class="btn btn-primary" type="submit">Pause</button><button class="btn btn-secondary" type="button" onclick="closeModal('pause-reason-modal')">Cancel</button></div>
  </form>
</div>

<div class="modal" id="daily-report-modal">
  <form class="card" onsubmit="submitDailyReport(event)">
    <h2>Daily report</h2>
    <div class="form-row">
      <div class="form-group"><label>Process Name</label><input name="processName"></div>
      <div class="form-group"><label>Process No.</label><input name="processNo"></div>
      <div class="form-group"><label>Step No.</label><input name="stepNo"></div>
    </div>
    <div class="form-group"><label>Machine No.</label><input name="machineNo"></div>
    <div class="form-group"><label>Employee code</label><input name="employeeCode"></div>
    <div class="form-row">
      <div class="form-group"><label>FG</label><input name="fg"></div>
      <div class="form-group"><label>NG</label><input name="ng"></div>
      <div class="form-group"><label>Rework</label><input name="rework"></div>
    </div>
    <div class="form-group"><label>Remark</label><input name="remark"></div>
    <div class="btn-row"><button class="btn btn-primary" type="submit">Save</button><button class="btn btn-secondary" type="button" onclick="closeModal('daily-report-modal')">Cancel</button></div>
  </form>
</div>

<div class="modal" id="qc-report-modal">
  <form class="card" onsubmit="submitQCReport(event)">
    <h2>QC report</h2>
    <div class="form-group"><label>Employee code</label><input name="employeeCode"></div>
    <div class="form-row">
      <div class="form-group"><label>FG</label><input name="fg"></div>
      <div class="form-group"><label>NG</label><input name="ng"></div>
      <div class="form-group"><label>Rework</label><input name="rework"></div>
    </div>
    <div class="form-group"><label>Remark</label><input name="remark"></div>
    <div class="btn-row"><button class="btn btn-primary" type="submit">Save</button><button class="btn btn-secondary" type="button" onclick="closeModal('qc-report-modal')">Cancel</button></div>
  </form>
</div>

<script>
let scan = null;
let openJobs = [];
let pauseKey = null;
let otherLabel = '';

function showScreen(id) {
  document.querySelectorAll('.screen').forEach(s => s.classList.toggle('active', s.id === id));
}
function openModal(id) { document.getElementById(id).style.display = 'flex'; }
function closeModal(id) { document.getElementById(id).style.display = 'none'; }

function formJSON(form) {
  const data = {};
  new FormData(form).forEach((v, k) => { data[k] = v; });
  return data;
}

async function post(path, body) {
  const res = await fetch(path, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body || {})});
  return res.json();
}

// Every action answers with the next screen and an optional alert
async function act(path, body) {
  showScreen('loading-screen');
  try {
    const out = await post(path, body);
    if (out.busy) return;
    if (out.alert) alert(out.alert);
    showScreen(out.screen || 'info-screen');
    return out;
  } catch (err) {
    alert('เกิดข้อผิดพลาดในการส่งข้อมูล: ' + err.message);
    showScreen('info-screen');
  }
}

async function submitScan() {
  let qr;
  try { qr = JSON.parse(document.getElementById('qr-input').value); } catch (e) { alert('QR data is not valid'); return; }
  const out = await post('/api/scan', qr);
  scan = out.scan;
  document.getElementById('scan-info').textContent = (scan.projectNo || '-') + ' / ' + (scan.partName || '-') + ' / ' + (scan.customerName || '-');
  showScreen('info-screen');
}

async function resetSession() {
  await post('/api/session/reset');
  scan = null;
  showScreen('scan-screen');
}

function toggleOpenJobs(visible) {
  document.getElementById('open-jobs-card').style.display = visible ? '' : 'none';
  post('/api/views/open-jobs', {visible: visible});
}

function keyOf(job) {
  return {processName: job.processName, processNo: job.processNo, stepNo: job.stepNo, machineNo: job.machineNo};
}

function renderOpenJobs(jobs) {
  openJobs = jobs;
  const body = document.querySelector('#open-jobs-table tbody');
  if (jobs.length === 0) {
    body.innerHTML = '<tr><td colspan="6" class="muted">No open jobs</td></tr>';
    return;
  }
  body.innerHTML = jobs.map((j, i) => {
    const paused = j.status !== 'OPEN';
    const actions = paused
      ? '<button class="btn btn-sm btn-primary" onclick="continueJob(' + i + ')">Continue</button>'
      : '<button class="btn btn-sm btn-secondary" onclick="pauseJob(' + i + ')">Pause</button>' +
        '<button class="btn btn-sm btn-danger" onclick="stopJob(' + i + ')">Stop</button>' +
        '<button class="btn btn-sm btn-secondary" onclick="otJob(' + i + ', true)">OT start</button>' +
        '<button class="btn btn-sm btn-secondary" onclick="otJob(' + i + ', false)">OT stop</button>';
    return '<tr><td>' + j.processName + '</td><td>' + j.processNo + '</td><td>' + j.stepNo + '</td><td>' + (j.machineNo || 'N/A') +
      '</td><td><span class="badge ' + (paused ? 'badge-pause' : 'badge-open') + '">' + j.status + '</span></td><td>' + actions + '</td></tr>';
  }).join('');
}

async function submitStart(e) {
  e.preventDefault();
  const data = formJSON(e.target);
  if (data.machineNo === '') data.machineNo = null;
  await act('/api/jobs/start', data);
}

async function stopJob(i) {
  const sel = await post('/api/jobs/stop/select', {key: keyOf(openJobs[i])});
  if (sel.alert) { alert(sel.alert); return; }
  const j = sel.job;
  document.getElementById('stop-job-info').textContent = j.processName + ' / ' + j.processNo + ' / ' + j.stepNo + ' / ' + (j.machineNo || 'N/A');
  document.getElementById('quantity-row').style.display = sel.quantitiesRequired ? '' : 'none';
  document.querySelector('#stop-form [name="employeeCode"]').value = j.employeeCode || '';
  showScreen('stop-form');
}

async function submitStop(e) {
  e.preventDefault();
  await act('/api/jobs/stop', formJSON(e.target));
}

async function pauseJob(i) {
  pauseKey = keyOf(openJobs[i]);
  const data = await (await fetch('/api/pause-reasons')).json();
  otherLabel = data.other;
  const select = document.getElementById('pause-reason-select');
  select.innerHTML = '<option value="">-</option>' + data.reasons.map(r => '<option>' + r.label + '</option>').join('');
  document.getElementById('pause-reason-form').reset();
  pauseReasonChanged();
  openModal('pause-reason-modal');
}

function pauseReasonChanged() {
  const other = document.getElementById('pause-reason-select').value === otherLabel;
  document.getElementById('pause-other-reason').style.display = other ? '' : 'none';
}

async function submitPause(e) {
  e.preventDefault();
  const data = formJSON(e.target);
  closeModal('pause-reason-modal');
  await act('/api/jobs/pause', {key: pauseKey, reason: data.reason, otherReason: data.otherReason || ''});
}

async function continueJob(i) {
  if (!confirm('คุณต้องการดำเนินงานนี้ต่อใช่หรือไม่?')) return;
  await act('/api/jobs/continue', {key: keyOf(openJobs[i])});
}

async function otJob(i, start) {
  await act(start ? '/api/jobs/ot/start' : '/api/jobs/ot/stop', {key: keyOf(openJobs[i])});
}

async function submitDailyReport(e) {
  e.preventDefault();
  const data = formJSON(e.target);
  if (scan) {
    data.date = new Date().toLocaleDateString('th-TH');
    ['projectNo', 'customerName', 'partName', 'drawingNo', 'quantityOrdered'].forEach(k => { data[k] = String(scan[k] || ''); });
  }
  closeModal('daily-report-modal');
  await act('/api/reports/daily', data);
}

async function submitQCReport(e) {
  e.preventDefault();
  closeModal('qc-report-modal');
  await act('/api/reports/qc', formJSON(e.target));
}

async function fetchStatus() {
  try {
    const data = await (await fetch('/api/status')).json();
    const connected = data.cloud && data.cloud.connected;
    document.getElementById('cloud-text').textContent = connected ? 'Connected' : 'Not connected';
    document.getElementById('cloud-dot').className = 'dot ' + (connected ? 'dot-green' : 'dot-red');
  } catch (err) {
    document.getElementById('cloud-dot').className = 'dot dot-gray';
  }
}

function connect() {
  const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
  ws.onmessage = ev => {
    const msg = JSON.parse(ev.data);
    if (msg.type === 'open_jobs') renderOpenJobs(msg.jobs);
  };
  ws.onclose = () => setTimeout(connect, 2000);
}

post('/api/views/open-jobs', {visible: false});
connect();
fetchStatus();
setInterval(fetchStatus, 5000);
</script>
</body>
</html>`
