package initializers

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/farhan/clouddrive-backend/storage"
)

var Blobs storage.BlobStore

func InitAWS() {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(os.Getenv("AWS_REGION")),
	)
	if err != nil {
		log.Fatalf("unable to load AWS SDK config: %v", err)
	}

	bucket := os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		log.Fatal("AWS_BUCKET_NAME is not set")
	}
	Blobs = storage.NewS3Store(s3.NewFromConfig(cfg), bucket)
}
