package core

import (
	"context"
	"net/mail"
)

type (
	// Document is a rendered file, e.g. a result sheet.
	Document struct {
		Payload     []byte
		Size        int
		Filename    string
		ContentType string
	}

	// Notification is a message to a single recipient.
	// Body is used as is, otherwise TemplateName is rendered with TemplateData.
	Notification struct {
		Recipient    mail.Address
		Subject      string
		Body         string
		TemplateName string
		TemplateData interface{}
		Attachments  []Document
	}

	// Delivery is the outcome of sending one Notification.
	Delivery struct {
		Recipient string `json:"recipient"`
		Success   bool   `json:"success"`
		Error     string `json:"error,omitempty"`
	}

	// Notifier is any service that can deliver notifications.
	Notifier interface {
		Send(ctx context.Context, n Notification) Delivery
		// SendBulk is best effort: it returns one Delivery per notification, in order.
		SendBulk(ctx context.Context, ns ...Notification) []Delivery
	}
)
