package handlers

import (
	"html/template"
	"net/http"

	"github.com/arko-chat/geobridge/components/assets"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>geobridge</title>
<script src="{{.Script}}"></script>
</head>
<body>
<h1>geobridge</h1>
<form id="call">
<select name="command">{{range .Commands}}<option>{{.}}</option>{{end}}</select>
<textarea name="args" rows="6" cols="60">{}</textarea>
<button type="submit">Call</button>
</form>
<pre id="out"></pre>
<script>
const out = document.getElementById("out");
const log = (line) => { out.textContent = line + "\n" + out.textContent; };
for (const ch of geobridge.channels) {
  geobridge.on(ch, (data) => log(ch + " " + JSON.stringify(data)));
}
document.getElementById("call").addEventListener("submit", async (e) => {
  e.preventDefault();
  const form = new FormData(e.target);
  try {
    const res = await geobridge.call(form.get("command"), JSON.parse(form.get("args") || "{}"));
    log("ok " + JSON.stringify(res));
  } catch (err) {
    log("rejected " + err);
  }
});
</script>
</body>
</html>
`))

// HandleIndex serves a console page for trying commands by hand.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(w, map[string]any{
		"Script":   assets.JS("geobridge.js"),
		"Commands": h.disp.Commands(),
	})
	if err != nil {
		h.logger.Error("render index", "err", err)
	}
}
