package live

// indexPage is the demo shell. The client script renders the init
// message, applies patches by node id, and turns clicks and input on
// [data-action] elements into action messages.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>sigstore demo</title>
<style>
body { font-family: system-ui, sans-serif; display: flex; justify-content: center; }
.demo { display: flex; flex-direction: column; gap: 1rem; align-items: center; padding: 4rem 1rem 1rem; }
.abc { display: grid; grid-template-columns: 1fr 1fr; gap: .5rem; text-align: center; }
#logs { list-style: none; padding: 0; text-align: center; }
#logs .highlight { color: #0a7cff; }
</style>
</head>
<body>
<div id="root"></div>
<script>
(function() {
    'use strict';

    var root = document.getElementById('root');
    var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
    var ws = new WebSocket(protocol + '//' + location.host + '/ws');

    ws.onmessage = function(e) {
        var msg;
        try {
            msg = JSON.parse(e.data);
        } catch (err) {
            return;
        }

        switch (msg.type) {
            case 'init':
                root.innerHTML = msg.html;
                break;

            case 'patch':
                var el = document.getElementById(msg.node);
                if (!el) return;
                var focused = document.activeElement;
                var restore = focused && el.contains(focused) && focused.dataset.action;
                el.innerHTML = msg.html;
                if (restore) {
                    var input = el.querySelector('[data-action="' + restore + '"]');
                    if (input) {
                        input.focus();
                        input.setSelectionRange(input.value.length, input.value.length);
                    }
                }
                break;

            case 'error':
                console.error('[sigstore]', msg.code, msg.error);
                break;
        }
    };

    function send(action, value) {
        if (ws.readyState !== WebSocket.OPEN) return;
        ws.send(JSON.stringify({action: action, value: value}));
    }

    root.addEventListener('click', function(e) {
        var target = e.target.closest('button[data-action]');
        if (target) send(target.dataset.action);
    });

    root.addEventListener('input', function(e) {
        var target = e.target.closest('input[data-action]');
        if (target) send(target.dataset.action, target.value);
    });
})();
</script>
</body>
</html>
`
