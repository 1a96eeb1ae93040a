package dynamo

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/learninghub-api/internal/pkg/logger"
)

// TableCreator is the subset of the DynamoDB client Bootstrap needs.
type TableCreator interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Bootstrap creates one table per collection, keyed by a string "id".
// Tables that already exist are skipped, so it is safe on every startup.
func Bootstrap(ctx context.Context, client TableCreator, collections []string, logg *logger.Logger) {
	for _, name := range collections {
		createTable(ctx, client, &dynamodb.CreateTableInput{
			TableName:   aws.String(name),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(keyAttr), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(keyAttr), KeyType: types.KeyTypeHash},
			},
		}, logg)
	}
}

func createTable(ctx context.Context, client TableCreator, input *dynamodb.CreateTableInput, logg *logger.Logger) {
	ctx = logg.WithField(ctx, "table", aws.ToString(input.TableName))
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			logg.Error(ctx, "could not create table", err)
		}
		return
	}
	logg.Info(ctx, "created table")
}
