package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/learninghub-api/internal/config"
	"github.com/learninghub-api/internal/domain"
)

// API is the subset of the SNS client the publisher uses.
type API interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// BroadcastPublisher announces committed broadcasts on an SNS topic so that
// push gateways can fan them out to devices.
type BroadcastPublisher struct {
	client   API
	topicARN string
}

// announcement is the JSON message body published per broadcast.
type announcement struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Recipients int    `json:"recipients"`
}

func NewClient(ctx context.Context, cfg config.AWSConfig) (*sns.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for SNS: %w", err)
	}

	var clientOpts []func(*sns.Options)
	if cfg.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		})
	}
	return sns.NewFromConfig(awsCfg, clientOpts...), nil
}

func NewBroadcastPublisher(client API, topicARN string) *BroadcastPublisher {
	return &BroadcastPublisher{client: client, topicARN: topicARN}
}

// PublishBroadcast publishes tmpl and the number of notifications created.
func (p *BroadcastPublisher) PublishBroadcast(ctx context.Context, tmpl domain.BroadcastTemplate, recipients int) error {
	body, err := json.Marshal(announcement{
		Title:      tmpl.Title,
		Message:    tmpl.Message,
		Type:       tmpl.Type,
		Recipients: recipients,
	})
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("broadcast"),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(tmpl.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
