package render

import (
	"html/template"
	"io"

	"prysma/internal/layout"
)

var cardPage = template.Must(template.New("card").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main class="prysma-card" data-user="{{.UserID}}">
{{.Body}}
</main>
</body>
</html>
`))

type cardPageVM struct {
	Title  string
	UserID string
	Body   template.HTML
}

// Page writes a standalone HTML document of the card.
func Page(w io.Writer, title, userID string, st layout.State) error {
	return cardPage.Execute(w, cardPageVM{
		Title:  title,
		UserID: userID,
		Body:   HTML(Markdown(st)),
	})
}
