package api

import "html/template"

type indexPage struct {
	Version    string
	Source     string
	State      string
	Records    int
	LastUpdate string
	TTL        string
	Endpoints  map[string]string
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Drama Comb</title>
  <style>
    body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 2rem auto; color: #222; }
    code { background: #f3f3f3; padding: 0 .25rem; }
    .fresh { color: #1a7f37; } .stale { color: #9a6700; } .empty { color: #cf222e; }
  </style>
</head>
<body>
  <h1>Drama Comb <small>{{.Version}}</small></h1>
  <p>Scraping <a href="{{.Source}}">{{.Source}}</a>, cached for {{.TTL}}.</p>
  <p>Cache: <strong class="{{.State}}">{{.State}}</strong>, {{.Records}} records{{if .LastUpdate}}, updated {{.LastUpdate}}{{end}}.</p>
  <h2>Endpoints</h2>
  <ul>
  {{- range $name, $path := .Endpoints}}
    <li>{{$name}}: <code>{{$path}}</code></li>
  {{- end}}
  </ul>
</body>
</html>
`))
