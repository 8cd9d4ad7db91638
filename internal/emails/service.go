package emails

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/autotradehub/autotradehub-backend/pkg/config"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
)

// PasswordResetInput is the storefront's reset request payload.
type PasswordResetInput struct {
	To        string `json:"to" validate:"required,email"`
	Name      string `json:"name" validate:"required"`
	ResetLink string `json:"resetLink" validate:"required,url"`
}

// Service renders and hands off transactional emails.
type Service interface {
	SendPasswordReset(ctx context.Context, input PasswordResetInput) error
}

type service struct {
	sender   Sender
	cfg      config.EmailConfig
	validate *validator.Validate
}

// NewService builds the email service.
func NewService(sender Sender, cfg config.EmailConfig) (Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	return &service{
		sender:   sender,
		cfg:      cfg,
		validate: validator.New(),
	}, nil
}

func (s *service) SendPasswordReset(ctx context.Context, input PasswordResetInput) error {
	if err := s.validate.Struct(input); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password reset request")
	}

	msg := Message{
		To:       input.To,
		ToName:   input.Name,
		From:     s.cfg.FromAddress,
		FromName: s.cfg.FromName,
		Subject:  "Reset your AutoTradeHub password",
		Body: fmt.Sprintf(
			"Hi %s,\n\nA password reset was requested for your account. Follow the link below to choose a new password:\n\n%s\n\nIf you did not request this, you can ignore this email.",
			input.Name, input.ResetLink,
		),
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send password reset email")
	}
	return nil
}
