// Command change-consumer is a Lambda function that receives change
// notifications from SQS and refreshes the user each one names.
package main

import (
	"context"
	"fmt"
	"os"

	"field_mates_server/config"
	"field_mates_server/logging"
	"field_mates_server/services"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogFile)
	if err != nil {
		return err
	}

	awscfg, err := cfg.LoadAWS(ctx)
	if err != nil {
		return err
	}

	db := &services.DynamoService{
		Client:    services.InitializeDynamoDBClient(awscfg, cfg.DynamoDBEndpoint),
		TableName: cfg.TableName,
		Log:       log,
	}
	if cfg.S3Bucket != "" {
		db.Assets = &services.S3AssetStore{
			Client: services.InitializeS3Client(awscfg, cfg.S3Endpoint),
			Bucket: cfg.S3Bucket,
		}
	}

	store := services.NewRecordStore(db, log, cfg.QueryResultsLimit)
	c := &consumer{
		users: &services.UserService{Store: store},
		log:   log,
	}

	lambda.Start(c.handle)
	return nil
}
