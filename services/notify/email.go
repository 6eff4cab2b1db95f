// Package notify delivers notifications through the configured email service.
package notify

import (
	"bytes"
	"context"
	"net/mail"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

type emailNotifier struct {
	mailSvc core.EmailService
	logger  core.Logger
}

var _ core.Notifier = (*emailNotifier)(nil)

func NewEmailNotifier(mailSvc core.EmailService, logger core.Logger) core.Notifier {
	return &emailNotifier{mailSvc: mailSvc, logger: logger}
}

func (n *emailNotifier) Send(ctx context.Context, notif core.Notification) core.Delivery {
	d := core.Delivery{Recipient: notif.Recipient.Address}
	if notif.Recipient.Address == "" {
		d.Error = "missing recipient address"
		return d
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{notif.Recipient},
		Subject:      notif.Subject,
		BodyStr:      notif.Body,
		TemplateName: notif.TemplateName,
		TemplateData: notif.TemplateData,
	}
	for _, doc := range notif.Attachments {
		var ct []string
		if doc.ContentType != "" {
			ct = append(ct, doc.ContentType)
		}
		if err := msg.Attach(bytes.NewReader(doc.Payload), doc.Filename, ct...); err != nil {
			d.Error = "attaching " + doc.Filename + ": " + err.Error()
			return d
		}
	}

	if err := n.mailSvc.Send(ctx, msg); err != nil {
		d.Error = err.Error()
		return d
	}
	d.Success = true
	return d
}

// SendBulk sends the notifications one after the other and never stops on a failure.
func (n *emailNotifier) SendBulk(ctx context.Context, notifs ...core.Notification) []core.Delivery {
	deliveries := make([]core.Delivery, 0, len(notifs))
	for _, notif := range notifs {
		d := n.Send(ctx, notif)
		if !d.Success {
			n.logger.Warn("notification not delivered", map[string]interface{}{"recipient": d.Recipient, "error": d.Error})
		}
		deliveries = append(deliveries, d)
	}
	return deliveries
}
