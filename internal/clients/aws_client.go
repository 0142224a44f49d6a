package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spacesedan/mindnest/config"
)

var (
	awsCfg    aws.Config
	awsErr    error
	awsOnce   sync.Once
	awsTarget string
)

// GetAWSConfig loads the shared AWS config once. A non-empty endpoint points
// DynamoDB at a local emulator.
func GetAWSConfig(ctx context.Context, settings config.Settings) (aws.Config, error) {
	awsOnce.Do(func() {
		slog.Info("[AWSClient] Initializing AWS Config...",
			slog.String("region", settings.AWSRegion))

		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(settings.AWSRegion))
		if err != nil {
			awsErr = fmt.Errorf("[AWSClient] failed to load AWS config: %w", err)
			return
		}

		awsCfg = cfg
		awsTarget = settings.AWSEndpoint
		slog.Info("[AWSClient] AWS Config Initialized")
	})

	return awsCfg, awsErr
}

func GetDynamoDBClient(ctx context.Context, settings config.Settings) (*dynamodb.Client, error) {
	cfg, err := GetAWSConfig(ctx, settings)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if awsTarget != "" {
			o.BaseEndpoint = aws.String(awsTarget)
		}
	}), nil
}
