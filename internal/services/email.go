package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"roombooking/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *zap.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *zap.Logger) domain.EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendBookingConfirmation sends the "booking_confirmed" email.
func (s *emailService) SendBookingConfirmation(ctx context.Context, data *domain.BookingEmailData) error {
	return s.send(ctx, "booking_confirmed", data)
}

// SendBookingCancellation sends the "booking_cancelled" email.
func (s *emailService) SendBookingCancellation(ctx context.Context, data *domain.BookingEmailData) error {
	return s.send(ctx, "booking_cancelled", data)
}

func (s *emailService) send(ctx context.Context, template string, data *domain.BookingEmailData) error {
	if data == nil {
		return fmt.Errorf("%s email data is nil", template)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.Info("email sent", zap.String("template", template), zap.String("booking_id", data.BookingID))
	return nil
}
