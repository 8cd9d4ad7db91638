package emails

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/autotradehub/autotradehub-backend/pkg/config"
	pkgerrors "github.com/autotradehub/autotradehub-backend/pkg/errors"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func emailCfg() config.EmailConfig {
	return config.EmailConfig{
		FromAddress: "noreply@autotradehub.example",
		FromName:    "AutoTradeHub",
	}
}

func TestSendPasswordReset(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewService(sender, emailCfg())
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	err = svc.SendPasswordReset(context.Background(), PasswordResetInput{
		To:        "buyer@example.com",
		Name:      "Dana",
		ResetLink: "https://autotradehub.example/reset?token=abc",
	})
	if err != nil {
		t.Fatalf("SendPasswordReset error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "buyer@example.com" || msg.From != "noreply@autotradehub.example" {
		t.Fatalf("unexpected envelope %+v", msg)
	}
	if !strings.Contains(msg.Body, "https://autotradehub.example/reset?token=abc") {
		t.Fatalf("body missing reset link: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Dana") {
		t.Fatalf("body missing recipient name: %q", msg.Body)
	}
}

func TestSendPasswordResetValidation(t *testing.T) {
	sender := &recordingSender{}
	svc, _ := NewService(sender, emailCfg())
	ctx := context.Background()

	cases := []struct {
		name  string
		input PasswordResetInput
	}{
		{"bad email", PasswordResetInput{To: "not-an-email", Name: "Dana", ResetLink: "https://x.example/r"}},
		{"missing name", PasswordResetInput{To: "a@b.example", ResetLink: "https://x.example/r"}},
		{"bad link", PasswordResetInput{To: "a@b.example", Name: "Dana", ResetLink: "::"}},
		{"empty", PasswordResetInput{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.SendPasswordReset(ctx, tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(sender.sent) != 0 {
		t.Fatalf("rejected requests must not send, got %d", len(sender.sent))
	}
}

func TestSendPasswordResetSenderFailure(t *testing.T) {
	svc, _ := NewService(&recordingSender{err: errors.New("smtp down")}, emailCfg())

	err := svc.SendPasswordReset(context.Background(), PasswordResetInput{
		To:        "buyer@example.com",
		Name:      "Dana",
		ResetLink: "https://autotradehub.example/reset?token=abc",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestLogSenderNeverFails(t *testing.T) {
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	sender := NewLogSender(log)

	if err := sender.Send(context.Background(), Message{To: "a@b.example", Subject: "x"}); err != nil {
		t.Fatalf("log sender error: %v", err)
	}
}
