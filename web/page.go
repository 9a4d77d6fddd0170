package web

import (
	"html/template"
	"io"

	"github.com/papercomputeco/sqlchat/pkg/chat"
)

// pageTemplate is the minimal markup around the conversation. Bubble HTML is
// inserted as-is: it was escaped or rendered when the bubble was created.
var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"trusted": func(s string) template.HTML { return template.HTML(s) },
}).Parse(`<!doctype html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>sqlchat</title>
<style>
#chat { max-width: 48rem; margin: 0 auto; }
.bubble { margin: .5rem 0; padding: .5rem .75rem; border-radius: .5rem; }
.bubble.user { background: #e8f0fe; margin-left: 20%; }
.bubble.assist { background: #f1f3f4; margin-right: 20%; }
pre { margin: 0; white-space: pre-wrap; }
</style>
</head>
<body>
<div id="chat">
{{- range .Bubbles }}
<div class="bubble {{ .Role }}" id="b-{{ .ID }}">{{ trusted .HTML }}</div>
{{- end }}
<a id="end"></a>
</div>
<form id="chat-form" method="post" action="/">
<input id="question" name="question" value="{{ .InputValue }}" autocomplete="off"
  {{- if not .InputEnabled }} disabled{{ end }}{{ if .Focused }} autofocus{{ end }}>
<button type="submit"{{ if not .InputEnabled }} disabled{{ end }}>送信</button>
</form>
<footer><small>{{ .Endpoint }}</small></footer>
</body>
</html>
`))

type pageData struct {
	chat.State
	Endpoint string
}

func renderPage(w io.Writer, state chat.State, endpoint string) error {
	return pageTemplate.Execute(w, pageData{State: state, Endpoint: endpoint})
}
