// Package view renders the few server-side HTML pages of the interactive path.
package view

import (
	"fmt"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"kerneltest/internal/ingest"
)

// Flash categories double as the CSS class of the rendered list item.
const (
	FlashMessage = "message"
	FlashError   = "error"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// UploadData feeds UploadPage.
type UploadData struct {
	User      string
	Flashes   []Flash
	Fields    map[string][]string
	CSRFToken string
}

func page(title string, body ...Node) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Kernel Test Results")),
		),
		Body(Main(Class("layout"), Group(body))),
	)
}

func flashList(flashes []Flash) Node {
	if len(flashes) == 0 {
		return nil
	}
	items := make([]Node, 0, len(flashes))
	for _, f := range flashes {
		items = append(items, Li(Class(f.Category), Text(f.Message)))
	}
	return Ul(Class("flashes"), Group(items))
}

func fieldErrors(msgs []string) Node {
	if len(msgs) == 0 {
		return nil
	}
	return Ul(Class("errors"), Map(msgs, func(m string) Node {
		return Li(Text(m))
	}))
}

// UploadPage is the form behind GET and POST /upload/.
func UploadPage(d UploadData) Node {
	return page("Upload",
		Header(
			H1(Text("Upload test results")),
			P(Class("user"), Textf("Logged in as %s", d.User), Text(" "), A(Href("/logout"), Text("Log out"))),
		),
		flashList(d.Flashes),
		Form(
			Method("post"),
			Action("/upload/"),
			EncType("multipart/form-data"),
			If(d.CSRFToken != "", Input(Type("hidden"), Name("csrf_token"), Value(d.CSRFToken))),
			Label(For(ingest.FieldTestResult), Text("Result file")),
			Input(ID(ingest.FieldTestResult), Name(ingest.FieldTestResult), Type("file"), Accept("text/plain")),
			fieldErrors(d.Fields[ingest.FieldTestResult]),
			Button(Type("submit"), Text("Upload")),
		),
	)
}

// LoginRequiredPage explains that no identity reached /login.
func LoginRequiredPage(header string) Node {
	return page("Login required",
		H1(Text("Login required")),
		P(Text(fmt.Sprintf("No authenticated user was supplied (expected the %s header from the login proxy).", header))),
	)
}

// ErrorPage is a plain titled message.
func ErrorPage(title, message string) Node {
	return page(title,
		H1(Text(title)),
		P(Text(message)),
		P(A(Href("/upload/"), Text("Back to upload"))),
	)
}
