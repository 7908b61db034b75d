package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

// AddressLookup resolves a user ID to an email address.
type AddressLookup interface {
	EmailByUserID(ctx context.Context, userID string) (string, error)
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// NotifierConfig holds configuration for creating a notification sender.
type NotifierConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
}

const notificationSubject = "Event update"

// NewNotifier creates a NotificationSender from config. Provider "ses" delivers
// notifications as email via AWS SES; "noop" or unknown logs and drops them.
func NewNotifier(config NotifierConfig, addresses AddressLookup, logger *slog.Logger) (domain.NotificationSender, error) {
	switch config.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: config.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.SES.AccessKeyID,
					config.SES.SecretAccessKey,
					"",
				),
			),
		}
		return &sesNotifier{
			client:      ses.NewFromConfig(awsCfg),
			addresses:   addresses,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
			logger:      logger,
		}, nil
	case "noop":
		return &noopNotifier{logger: logger}, nil
	default:
		logger.Warn("unknown notification provider, using noop", "provider", config.Provider)
		return &noopNotifier{logger: logger}, nil
	}
}

type sesNotifier struct {
	client      *ses.Client
	addresses   AddressLookup
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func (s *sesNotifier) Notify(ctx context.Context, userID, message string) error {
	to, err := s.addresses.EmailByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve notification address: %w", err)
	}
	source := s.fromAddress
	if s.fromName != "" {
		source = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(notificationSubject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(message),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send notification via SES: %w", err)
	}
	s.logger.DebugContext(ctx, "notification sent via SES", "message_id", aws.ToString(result.MessageId))
	return nil
}

type noopNotifier struct {
	logger *slog.Logger
}

func (n *noopNotifier) Notify(ctx context.Context, userID, message string) error {
	n.logger.InfoContext(ctx, "notification would be sent (noop)", "user_id", userID, "message", message)
	return nil
}
