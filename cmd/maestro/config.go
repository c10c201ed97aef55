package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/localstore"
	"github.com/clara/maestro/internal/remotestore"
	"github.com/clara/maestro/internal/util"
)

// Remote configuration keys. Flags are not offered for credentials; they come
// from the config file or MAESTRO_* environment variables.
const (
	keyRemoteDB    = "remote_db"
	keyS3Endpoint  = "s3_endpoint"
	keyS3Bucket    = "s3_bucket"
	keyS3AccessKey = "s3_access_key"
	keyS3SecretKey = "s3_secret_key"
	keyS3Region    = "s3_region"
	keyS3PublicURL = "s3_public_url"
)

func init() {
	viper.SetDefault(keyS3Region, "us-east-1")
	viper.SetDefault(keyS3Bucket, "maestro")
}

// openLocal opens the local library database and asset store.
func openLocal() (*localstore.Store, *assets.LocalStore, error) {
	db, err := localstore.Open(viper.GetString("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local database: %w", err)
	}

	return db, assets.NewLocalStore(viper.GetString("assets")), nil
}

// openRemote connects to the remote library database and object bucket.
func openRemote(ctx context.Context) (*remotestore.Store, *assets.BucketStore, error) {
	databaseURL := viper.GetString(keyRemoteDB)
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("%w: remote_db is not set (MAESTRO_REMOTE_DB)", util.ErrInvalidConfig)
	}

	endpoint := viper.GetString(keyS3Endpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("%w: s3_endpoint is not set (MAESTRO_S3_ENDPOINT)", util.ErrInvalidConfig)
	}

	db, err := remotestore.Open(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open remote database: %w", err)
	}

	bucket, err := assets.NewBucketStore(ctx, assets.BucketConfig{
		Endpoint:      endpoint,
		Bucket:        viper.GetString(keyS3Bucket),
		AccessKey:     viper.GetString(keyS3AccessKey),
		SecretKey:     viper.GetString(keyS3SecretKey),
		Region:        viper.GetString(keyS3Region),
		PublicBaseURL: viper.GetString(keyS3PublicURL),
	})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to open remote bucket: %w", err)
	}

	return db, bucket, nil
}
