package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/k3a/html2text"
	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
)

// DefaultSendTimeout bounds one SMTP delivery attempt.
const DefaultSendTimeout = 30 * time.Second

// EmailProvider sends report emails through shoutrrr's SMTP service.
// The sender is built lazily so construction never fails; ValidateConfig
// surfaces bad settings before anything is sent.
type EmailProvider struct {
	settings conf.EmailSettings
	sender   *router.ServiceRouter
	timeout  time.Duration
}

// NewEmailProvider builds a provider from the configured email settings.
func NewEmailProvider(settings *conf.Settings) *EmailProvider {
	return &EmailProvider{
		settings: settings.Email,
		timeout:  DefaultSendTimeout,
	}
}

// Enabled reports whether email delivery is turned on.
func (p *EmailProvider) Enabled() bool { return p.settings.Enabled }

// serviceURL assembles the shoutrrr SMTP URL from the configured endpoint.
// STARTTLS is always requested; port 587 submission is the expected setup.
func (p *EmailProvider) serviceURL() (string, error) {
	smtp := p.settings.SMTP
	if smtp.Host == "" {
		return "", errors.Newf("email delivery enabled but smtp host is not set").
			Component("notify").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if len(p.settings.To) == 0 {
		return "", errors.Newf("email delivery enabled but no recipients are configured").
			Component("notify").
			Category(errors.CategoryConfiguration).
			Build()
	}

	from := p.settings.From
	if from == "" {
		from = smtp.Username
	}

	host := smtp.Host
	if smtp.Port > 0 {
		host = fmt.Sprintf("%s:%d", smtp.Host, smtp.Port)
	}

	u := url.URL{Scheme: "smtp", Host: host, Path: "/"}
	if smtp.Username != "" {
		u.User = url.UserPassword(smtp.Username, smtp.Password)
	}

	query := url.Values{}
	query.Set("from", from)
	query.Set("to", strings.Join(p.settings.To, ","))
	query.Set("starttls", "yes")
	if p.settings.HTML {
		query.Set("usehtml", "yes")
	} else {
		query.Set("usehtml", "no")
	}
	if smtp.Username == "" {
		query.Set("auth", "None")
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// ValidateConfig builds the shoutrrr sender, verifying the SMTP settings in
// the process.
func (p *EmailProvider) ValidateConfig() error {
	serviceURL, err := p.serviceURL()
	if err != nil {
		return err
	}

	// Build sender to validate the URL
	sender, err := shoutrrr.CreateSender(serviceURL)
	if err != nil {
		return errors.New(err).
			Component("notify").
			Category(errors.CategoryConfiguration).
			Context("operation", "create_sender").
			Build()
	}

	// Apply configured timeout and quiet logger
	sender.Timeout = p.timeout
	sender.SetLogger(log.New(io.Discard, "", 0))
	p.sender = sender
	return nil
}

// Send delivers one report email. htmlBody is sent as-is for HTML delivery
// and converted to plain text otherwise.
func (p *EmailProvider) Send(ctx context.Context, subject, htmlBody string) error {
	if p.sender == nil {
		if err := p.ValidateConfig(); err != nil {
			return err
		}
	}
	_ = ctx // the router applies its own send timeout

	body := htmlBody
	if !p.settings.HTML {
		body = html2text.HTML2Text(htmlBody)
	}

	params := stypes.Params{}
	params.SetTitle(subject)

	logger.Info("Sending report email",
		"recipients", len(p.settings.To),
		"html", p.settings.HTML,
		"subject", subject)

	for _, err := range p.sender.Send(body, &params) {
		if err != nil {
			logger.Error("Email delivery failed", "error", err)
			return errors.New(err).
				Component("notify").
				Category(errors.CategoryDelivery).
				Context("operation", "send_email").
				Build()
		}
	}

	logger.Info("Report email sent", "recipients", len(p.settings.To))
	return nil
}

// Subject returns the report email subject line. date should already be in
// the reporting timezone.
func Subject(totalEvents int, date time.Time) string {
	return fmt.Sprintf("🦊 Fox Detection Report - %d events - %s", totalEvents, date.Format("2006-01-02"))
}
