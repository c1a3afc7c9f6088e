package notify

import (
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
)

type templateData struct {
	Studio  string
	Contact *model.ContactMessage
}

func (d templateData) Received() string {
	return d.Contact.CreatedAt.UTC().Format("January 2, 2006 at 3:04 PM MST")
}

const adminHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="background: #2563eb; color: #fff; padding: 20px; text-align: center;">New Contact Form Submission</h1>
  <p><strong>Subject:</strong> {{.Contact.Subject}}</p>
  <p><strong>Name:</strong> {{.Contact.Name}}</p>
  <p><strong>Email:</strong> <a href="mailto:{{.Contact.Email}}">{{.Contact.Email}}</a></p>
  {{- with .Contact.Phone}}
  <p><strong>Phone:</strong> <a href="tel:{{.}}">{{.}}</a></p>
  {{- end}}
  {{- with .Contact.Company}}
  <p><strong>Company:</strong> {{.}}</p>
  {{- end}}
  {{- with .Contact.ProjectType}}
  <p><strong>Project type:</strong> {{.}}</p>
  {{- end}}
  {{- with .Contact.Budget}}
  <p><strong>Budget:</strong> {{.}}</p>
  {{- end}}
  {{- with .Contact.Timeline}}
  <p><strong>Timeline:</strong> {{.}}</p>
  {{- end}}
  {{- with .Contact.Location}}
  <p><strong>Location:</strong> {{.}}</p>
  {{- end}}
  <p><strong>Received:</strong> {{.Received}}</p>
  <div style="background: #fff; padding: 15px; border-left: 4px solid #2563eb; white-space: pre-wrap;">{{.Contact.Message}}</div>
  <p style="color: #6b7280; font-size: 14px;">Automated notification from the {{.Studio}} contact form.</p>
</div>
</body>
</html>`

const adminText = `NEW CONTACT FORM SUBMISSION - {{.Studio}}

Subject: {{.Contact.Subject}}
Name: {{.Contact.Name}}
Email: {{.Contact.Email}}
{{with .Contact.Phone}}Phone: {{.}}
{{end}}{{with .Contact.Company}}Company: {{.}}
{{end}}{{with .Contact.ProjectType}}Project type: {{.}}
{{end}}{{with .Contact.Budget}}Budget: {{.}}
{{end}}{{with .Contact.Timeline}}Timeline: {{.}}
{{end}}{{with .Contact.Location}}Location: {{.}}
{{end}}Received: {{.Received}}

Message:
{{.Contact.Message}}
`

const ackHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="background: #2563eb; color: #fff; padding: 20px; text-align: center;">Thank you for contacting us</h1>
  <p>Dear {{.Contact.Name}},</p>
  <p>We've received your inquiry about "<strong>{{.Contact.Subject}}</strong>" and will get back to you as soon as possible, usually within 24 hours on business days.</p>
  <div style="background: #fff; padding: 15px; border-left: 4px solid #10b981; white-space: pre-wrap;">{{.Contact.Message}}</div>
  <p>Best regards,<br>The {{.Studio}} team</p>
</div>
</body>
</html>`

const ackText = `Dear {{.Contact.Name}},

Thank you for contacting {{.Studio}}. We've received your inquiry about "{{.Contact.Subject}}" and will get back to you as soon as possible, usually within 24 hours on business days.

Your message:
{{.Contact.Message}}

Best regards,
The {{.Studio}} team
`

var (
	adminHTMLTmpl = htmltemplate.Must(htmltemplate.New("admin.html").Parse(adminHTML))
	adminTextTmpl = texttemplate.Must(texttemplate.New("admin.txt").Parse(adminText))
	ackHTMLTmpl   = htmltemplate.Must(htmltemplate.New("ack.html").Parse(ackHTML))
	ackTextTmpl   = texttemplate.Must(texttemplate.New("ack.txt").Parse(ackText))
)

// renderer is satisfied by both html/template and text/template.
type renderer interface {
	Execute(w io.Writer, data any) error
}

func render(tmpl renderer, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
