package notify

import (
	"context"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	emailsvc "github.com/GausMx/Scoolynk-app-sub000/services/email"
	testutil "github.com/GausMx/Scoolynk-app-sub000/tests"
)

func TestEmailNotifier(t *testing.T) {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	core.ParseEmailTemplates(conf, logger)
	n := NewEmailNotifier(emailsvc.NewConsoleServiceMock(conf), logger)
	ctx := context.Background()

	sheet := core.Document{Payload: []byte("%PDF-1.3 sheet"), Filename: "ada-obi.pdf", ContentType: "application/pdf"}
	templated := core.Notification{
		Recipient:    mail.Address{Name: "Mrs Obi", Address: "obi@parents.test"},
		Subject:      "First Term 2024/2025 result of Ada Obi",
		TemplateName: "result_sent",
		TemplateData: map[string]interface{}{
			"SchoolName":  "Greenfield Academy",
			"ParentName":  "Mrs Obi",
			"StudentName": "Ada Obi",
			"ClassName":   "JSS 1A",
			"Term":        "First Term",
			"Session":     "2024/2025",
			"Total":       140.0,
			"Average":     70.0,
			"Position":    "2nd",
		},
		Attachments: []core.Document{sheet},
	}
	plain := core.Notification{
		Recipient: mail.Address{Address: "ade@parents.test"},
		Subject:   "Reminder",
		Body:      "Results are out.",
	}
	noRecipient := core.Notification{Subject: "Lost", Body: "Nobody reads this."}
	noContent := core.Notification{Recipient: mail.Address{Address: "eze@parents.test"}, Subject: "Empty"}

	before := len(emailsvc.SentMessages)
	deliveries := n.SendBulk(ctx, templated, noRecipient, plain, noContent)
	require.Len(t, deliveries, 4)

	assert.True(t, deliveries[0].Success, deliveries[0].Error)
	assert.False(t, deliveries[1].Success)
	assert.Equal(t, "missing recipient address", deliveries[1].Error)
	assert.True(t, deliveries[2].Success, deliveries[2].Error)
	assert.False(t, deliveries[3].Success)
	assert.Equal(t, "eze@parents.test", deliveries[3].Recipient)

	sent := emailsvc.SentMessages[before:]
	require.Len(t, sent, 2)
	msg := sent[0]
	assert.True(t, strings.Contains(msg.TextContent, "Ada Obi (JSS 1A)"), msg.TextContent)
	assert.True(t, strings.Contains(msg.TextContent, "Position: 2nd"), msg.TextContent)
	assert.True(t, strings.Contains(msg.HTMLContent, "Greenfield Academy"), msg.HTMLContent)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, "ada-obi.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "Results are out.", sent[1].TextContent)
}

func TestEmailNotifier_Cancelled(t *testing.T) {
	conf := testutil.NewConfig()
	n := NewEmailNotifier(emailsvc.NewConsoleServiceMock(conf), testutil.NewLogger(conf))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := n.Send(ctx, core.Notification{Recipient: mail.Address{Address: "obi@parents.test"}, Body: "hi"})
	assert.False(t, d.Success)
	assert.Equal(t, context.Canceled.Error(), d.Error)
}
