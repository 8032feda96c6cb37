package notification

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// invitationPayload mirrors the JSON written by the connection engine's
// outbox publisher.
type invitationPayload struct {
	InvitationID    string `json:"invitation_id"`
	FromUserID      string `json:"from_user_id"`
	ToUserID        string `json:"to_user_id"`
	FromDisplayName string `json:"from_display_name"`
	Date            string `json:"date"`
}

func (p *invitationPayload) decode(raw []byte) error {
	return json.Unmarshal(raw, p)
}

type rendered struct {
	Subject  string
	Title    string
	Body     string
	HTMLBody string
}

func renderEvent(eventType string, raw []byte, dateName string) (*rendered, error) {
	var payload invitationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	from := payload.FromDisplayName
	if from == "" {
		from = "Someone"
	}
	if dateName == "" {
		dateName = payload.Date
	}

	var out rendered
	var templateName string
	switch eventType {
	case "invitation.received":
		out.Subject = fmt.Sprintf("%s invited you to share %s", from, dateName)
		out.Title = "New invitation"
		out.Body = fmt.Sprintf("%s invited you to share %s.", from, dateName)
		templateName = "invitation_received.html"
	case "invitation.accepted":
		out.Subject = fmt.Sprintf("%s accepted your invitation", from)
		out.Title = "Invitation accepted"
		out.Body = fmt.Sprintf("%s accepted your invitation for %s. It's a match!", from, dateName)
		templateName = "invitation_accepted.html"
	case "invitation.declined":
		out.Subject = "Your invitation was declined"
		out.Title = "Invitation declined"
		out.Body = fmt.Sprintf("Your invitation for %s was declined.", dateName)
		templateName = "invitation_declined.html"
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	var buf bytes.Buffer
	err := emailTemplates.ExecuteTemplate(&buf, templateName, map[string]any{
		"FromDisplayName": from,
		"DateName":        dateName,
	})
	if err != nil {
		return nil, err
	}
	out.HTMLBody = buf.String()

	return &out, nil
}
