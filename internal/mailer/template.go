package mailer

import (
	"html/template"
	"strings"
	"time"
)

// emailTemplate is the fixed header/content/footer layout every notification
// renders into. Content paragraphs come pre-split; the request id and
// attachment links are optional blocks.
const emailTemplate = `<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: #003b71; padding: 20px; text-align: center; }
.header h1 { color: white; margin: 0; }
.content { padding: 20px; background-color: #f9f9f9; }
.footer { background-color: #f1f1f1; padding: 15px; text-align: center; font-size: 12px; color: #666; }
.request-id { background-color: #f0f0f0; border: 1px solid #ddd; padding: 8px 12px; border-radius: 4px; font-family: monospace; margin: 10px 0; display: inline-block; }
.attachments { margin-top: 20px; border-top: 1px solid #ddd; padding-top: 15px; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h1>{{.PortalName}}</h1></div>
  <div class="content">
    <h2>{{.Subject}}</h2>
    {{if .RequestKey}}<div>Request ID: <span class="request-id">{{.RequestKey}}</span></div>{{end}}
    {{range .Paragraphs}}<p>{{.}}</p>
    {{end}}
    {{if .Attachments}}<div class="attachments">
      <p><strong>Attachments:</strong></p>
      <ul>
        {{range .Attachments}}<li><a href="{{.URL}}" target="_blank">View Attachment ({{.Name}})</a></li>
        {{end}}
      </ul>
    </div>{{end}}
  </div>
  <div class="footer">
    <p>This is an automated message from the {{.PortalName}}. Please do not reply to this email.</p>
    <p>&copy; {{.Year}} {{.PortalName}}. All rights reserved.</p>
  </div>
</div>
</body>
</html>`

var emailTmpl = template.Must(template.New("notification").Parse(emailTemplate))

type attachmentLink struct {
	URL  string
	Name string
}

type emailData struct {
	PortalName  string
	Subject     string
	RequestKey  string
	Paragraphs  []string
	Attachments []attachmentLink
	Year        int
}

// RenderHTML produces the notification email body. Content is split into
// paragraphs on blank lines, matching how the notification content is stored.
func RenderHTML(portalName, subject, requestKey, content string, attachmentURLs []string) (string, error) {
	data := emailData{
		PortalName: portalName,
		Subject:    subject,
		RequestKey: requestKey,
		Year:       time.Now().Year(),
	}
	for _, p := range strings.Split(content, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			data.Paragraphs = append(data.Paragraphs, trimmed)
		}
	}
	for _, url := range attachmentURLs {
		data.Attachments = append(data.Attachments, attachmentLink{URL: url, Name: FileNameFromURL(url)})
	}

	var sb strings.Builder
	if err := emailTmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
