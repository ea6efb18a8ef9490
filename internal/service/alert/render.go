package alert

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/jwalitptl/carewatch-api/internal/model"
)

var emailTemplate = template.Must(template.New("alert").Parse(`<h1>Prolonged Stay Alert</h1>
<p>Dear {{.Contact}},</p>
<p>{{.Message}}</p>
<p><strong>Individual:</strong> {{.Individual}}</p>
<p><strong>Address:</strong> {{.Address}}</p>
<p>Please check on them as soon as possible.</p>
<p>Best regards,<br>Prolonged Stay Alert System</p>
`))

// Render builds the channel-specific content for one alert.
func Render(method model.AlertMethod, profile *model.ElderlyProfile, contact *model.Contact, message string) model.RenderedAlert {
	address := profile.AddressOrDefault()
	switch method {
	case model.AlertMethodEmail:
		text := fmt.Sprintf("Dear %s,\n\n%s\n\nIndividual: %s\nAddress: %s\n\nPlease check on them as soon as possible.",
			contact.FullName, message, profile.FullName, address)
		return model.RenderedAlert{
			Subject: fmt.Sprintf("⚠️ Inactivity Alert: %s", profile.FullName),
			Text:    text,
			HTML: renderHTML(emailTemplate, map[string]string{
				"Contact":    contact.FullName,
				"Message":    message,
				"Individual": profile.FullName,
				"Address":    address,
			}, text),
		}
	case model.AlertMethodSMS:
		return model.RenderedAlert{
			Text: fmt.Sprintf("⚠️ Prolonged Stay Alert: %s - %s. Address: %s. Please check on them.",
				profile.FullName, message, address),
		}
	case model.AlertMethodVoiceCall:
		return model.RenderedAlert{
			Text: fmt.Sprintf("This is a prolonged stay alert for %s. %s. Address: %s. Please check on them immediately.",
				profile.FullName, message, address),
		}
	}
	return model.RenderedAlert{Text: message}
}

// renderHTML executes tmpl, falling back to the escaped plain-text body so an
// email never goes out with an empty HTML part.
func renderHTML(tmpl *template.Template, data map[string]string, text string) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "<pre>" + template.HTMLEscapeString(text) + "</pre>"
	}
	return buf.String()
}
