package rod

// HTML fixtures served by httptest in the browser-backed tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	LoginHTML = `<!DOCTYPE html>
<html>
<head><title>Swag Labs</title></head>
<body>
	<input id="user-name" type="text" />
	<input id="password" type="password" />
	<input id="login-button" type="submit" value="Login" />
	<button id="disabled-btn" disabled>Disabled</button>
	<div id="hidden" style="display:none">Hidden</div>
	<h3 data-test="error" id="banner"></h3>
	<script>
		document.getElementById('login-button').addEventListener('click', function() {
			document.getElementById('banner').textContent = 'Epic sadface: ' + document.getElementById('user-name').value;
		});
	</script>
</body>
</html>`

	ReplaceHTML = `<!DOCTYPE html>
<html>
<body>
	<div id="slot"><button id="swap">Swap</button></div>
	<script>
		document.getElementById('swap').addEventListener('click', function() {
			document.getElementById('slot').innerHTML = '<button id="swap">Swapped</button>';
		});
	</script>
</body>
</html>`

	AlertHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="alert" onclick="window.alert('hello')">Alert</button>
	<div id="after">after</div>
</body>
</html>`
)
