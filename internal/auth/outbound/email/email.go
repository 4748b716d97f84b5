// Package email delivers login codes through the mail transport.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"
	"time"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/config"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otclogin/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const defaultAppName = "OTC Login"

const textLoginCode = `Here is your {{.app_name}} login code: {{.code}}

This code expires in {{.minutes}} minutes.`

const htmlLoginCode = `<p>Here is your <strong>{{.app_name}}</strong> login code:</p>
<p style="font-size:24px;letter-spacing:4px;"><strong>{{.code}}</strong></p>
<p>This code expires in {{.minutes}} minutes. If you didn't request it, you can ignore this email.</p>`

var (
	textTemplate = texttemplate.Must(texttemplate.New("login_code.txt").Option("missingkey=zero").Parse(textLoginCode))
	htmlTemplate = htmltemplate.Must(htmltemplate.New("login_code.html").Option("missingkey=zero").Parse(htmlLoginCode))
)

type Email struct {
	client mail.Mail
	cfg    config.Config
	ins    instrument.Instrumentation
}

func New(client mail.Mail, cfg config.Config, ins instrument.Instrumentation) *Email {
	return &Email{client: client, cfg: cfg, ins: ins}
}

func (m *Email) SendCode(ctx context.Context, email, code string, ttl time.Duration) (err error) {
	ctx, span := m.ins.Tracer("auth.outbound.email").Start(ctx, "SendCode")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	appName := m.cfg.GetString("app.name")
	if appName == "" {
		appName = defaultAppName
	}

	data := map[string]any{
		"app_name": appName,
		"code":     code,
		"minutes":  int(ttl.Minutes()),
	}

	var text, html bytes.Buffer
	if err := textTemplate.Execute(&text, data); err != nil {
		return fmt.Errorf("%w: render text body: %w", entity.ErrNotifierFailed, err)
	}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return fmt.Errorf("%w: render html body: %w", entity.ErrNotifierFailed, err)
	}

	err = m.client.Send(ctx, mail.Message{
		To:       []string{email},
		Subject:  "Your " + appName + " login code",
		TextBody: text.String(),
		HTMLBody: html.String(),
	})
	if errors.Is(err, mail.ErrUnconfigured) {
		return entity.ErrNotifierUnconfigured
	}
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrNotifierFailed, err)
	}

	slog.InfoContext(ctx, "login code emailed", "email", email)
	return nil
}
