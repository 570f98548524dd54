package core

import "net/mail"

type (
	// EmailMessage is a transactional email. The actual template lives at the
	// provider and is addressed by TemplateID; TemplateData carries its
	// parameters. BodyStr is used for simple text/plain, non-templated content.
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string

		TemplateID   string
		TemplateData map[string]interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.BodyStr != "") || (m.TemplateID != "") }
