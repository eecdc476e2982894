package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/jdwit/ssh-auth-analyzer/internal/config"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// SESAPI defines the SES operations used.
type SESAPI interface {
	SendEmailWithContext(ctx aws.Context, input *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error)
}

// SES sends notification emails through Amazon SES.
type SES struct {
	client SESAPI
	from   string
	to     []string
}

// NewSES creates an SES notifier. The recipient setting accepts a comma-separated list.
func NewSES(opts config.Notify, sess *session.Session) (*SES, error) {
	from, err := requiredSetting("NOTIFY_EMAIL_FROM", opts.EmailFrom)
	if err != nil {
		return nil, err
	}

	to, err := requiredSetting("NOTIFY_EMAIL_TO", opts.EmailTo)
	if err != nil {
		return nil, err
	}

	if sess == nil {
		return nil, fmt.Errorf("ses notifier requires an AWS session")
	}

	return &SES{
		client: ses.New(sess),
		from:   from,
		to:     splitList(to),
	}, nil
}

// Notify sends one email for r.
func (s *SES) Notify(ctx context.Context, r types.DetectionResult) error {
	out, err := s.client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.from),
		Destination: &ses.Destination{ToAddresses: aws.StringSlice(s.to)},
		Message: &ses.Message{
			Subject: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject(r))},
			Body: &ses.Body{
				Text: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(body(r))},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}

	slog.Info("email notification sent", "ip", r.IP, "message_id", aws.StringValue(out.MessageId))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
