package web

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jaminalder/morabaraba/internal/domain"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"playerName": func(p domain.Player) string {
			switch p {
			case domain.One:
				return "Player 1"
			case domain.Two:
				return "Player 2"
			default:
				return ""
			}
		},
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Morabaraba</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Morabaraba</h1><form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Morabaraba</h1>
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board-slot" hx-sse="swap:board">{{template "board" .}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.Bytes(), nil
}

const boardTemplate = `
<div id="board">
  {{with .State}}
  <p class="turn">{{playerName .Turn}} to play</p>
  {{end}}
  <p class="phase">{{.Phase}}: {{.Hint}}</p>
  <p class="stats">Player 1: {{.State.Reserve.One}} left, {{.State.OnBoard.One}} on board.
  Player 2: {{.State.Reserve.Two}} left, {{.State.OnBoard.Two}} on board.</p>
  {{if .State.Winner}}
  <p class="winner">{{playerName .State.Winner}} wins!</p>
  {{end}}
  <table class="grid">
  {{range .Rows}}
    <tr>
    {{range .}}
      <td>{{if .Point}}
        <form hx-post="/game/{{$.ID}}/select" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="pos" value="{{.Pos}}">
          <button type="submit" class="{{.Class}}" data-pos="{{.Pos}}"{{if not .Target}} disabled{{end}}>{{.Symbol}}</button>
        </form>
      {{end}}</td>
    {{end}}
    </tr>
  {{end}}
  </table>
  <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit" class="reset">New game</button>
  </form>
</div>
`
