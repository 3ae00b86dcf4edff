package push

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/pkg/errors"

	"github.com/mompick/mompick-admin/internal/config"
	"github.com/mompick/mompick-admin/internal/db/models"
)

// ErrNoPlatformApplication is returned when no SNS platform application
// matches the device platform.
var ErrNoPlatformApplication = errors.New("no sns platform application for platform")

// snsAPI is the part of the SNS client the transport uses.
type snsAPI interface {
	CreatePlatformEndpoint(ctx context.Context, in *sns.CreatePlatformEndpointInput, opts ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS sends through AWS SNS mobile push endpoints.
type SNS struct {
	client snsAPI
	cfg    config.SNS
}

// NewSNS creates an SNS transport with the default AWS credential chain.
func NewSNS(ctx context.Context, cfg config.SNS) (*SNS, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return &SNS{client: sns.NewFromConfig(awsCfg), cfg: cfg}, nil
}

// Name implements Transport.
func (s *SNS) Name() string { return config.PushSNS }

func (s *SNS) platformARN(platform string) string {
	if platform == models.PlatformIOS {
		return s.cfg.IOSPlatformARN
	}

	return s.cfg.AndroidPlatformARN
}

func snsMessage(d Delivery) (string, error) {
	gcm, err := json.Marshal(map[string]interface{}{
		"notification": map[string]interface{}{
			"title":      d.Title,
			"body":       d.Body,
			"channel_id": d.Channel,
			"sound":      "default",
			"color":      notificationColor,
		},
		"data":     d.Data,
		"priority": "high",
	})
	if err != nil {
		return "", err
	}

	apns, err := json.Marshal(map[string]interface{}{
		"aps": map[string]interface{}{
			"alert": map[string]string{"title": d.Title, "body": d.Body},
			"sound": "default",
			"badge": 1,
		},
		"data": d.Data,
	})
	if err != nil {
		return "", err
	}

	msg, err := json.Marshal(map[string]string{
		"default":      d.Body,
		"GCM":          string(gcm),
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
	})

	return string(msg), err
}

// Send implements Transport. The platform endpoint is created on demand;
// SNS returns the existing one for a known token.
func (s *SNS) Send(ctx context.Context, d Delivery) error {
	arn := s.platformARN(d.Platform)
	if arn == "" {
		return errors.Wrap(ErrNoPlatformApplication, d.Platform)
	}

	endpoint, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(arn),
		Token:                  aws.String(d.Token),
	})
	if err != nil {
		return errors.Wrap(err, "create sns platform endpoint")
	}

	msg, err := snsMessage(d)
	if err != nil {
		return errors.Wrap(err, "encode sns message")
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        endpoint.EndpointArn,
		Message:          aws.String(msg),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		var disabled *types.EndpointDisabledException
		if errors.As(err, &disabled) {
			return errors.Wrap(ErrInvalidToken, "sns endpoint disabled")
		}

		return errors.Wrap(err, "publish sns message")
	}

	return nil
}
