package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

//go:embed *.tmpl
var FS embed.FS

var (
	htmlTemplates = htmpl.Must(htmpl.New("html").ParseFS(FS, "*.html.tmpl"))
	textTemplates = texttpl.Must(texttpl.New("text").ParseFS(FS, "*.txt.tmpl"))
)

// Render renders subject, text and HTML bodies for a named template.
// Known templates: "otp_code", "reset_password".
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case "otp_code":
		flow, _ := data["Flow"].(string)
		if flow == "signup" {
			subject = "Verify your CoinQuest Academy account"
		} else {
			subject = "Your CoinQuest Academy login code"
		}
	case "reset_password":
		subject = "Reset your CoinQuest Academy password"
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	var tb bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&tb, name+".txt.tmpl", data); err != nil {
		return "", "", "", err
	}
	var hb bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&hb, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return subject, tb.String(), hb.String(), nil
}
