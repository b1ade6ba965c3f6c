package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BookingEmailData holds data for booking confirmation and cancellation emails.
type BookingEmailData struct {
	Email     string
	BookingID string
	RoomName  string
	Title     string
	Date      string
	StartTime string
	EndTime   string
}

// EmailService defines the contract for sending booking emails.
type EmailService interface {
	SendBookingConfirmation(ctx context.Context, data *BookingEmailData) error
	SendBookingCancellation(ctx context.Context, data *BookingEmailData) error
}
