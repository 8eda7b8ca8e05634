package remote

import (
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
)

// Connection holds the Couchbase cluster and bucket the store runs on.
type Connection struct {
	cluster    *gocb.Cluster
	bucket     *gocb.Bucket
	bucketName string
}

// ConnectionConfig carries the Couchbase connection parameters.
type ConnectionConfig struct {
	URL      string
	Username string
	Password string
	Bucket   string
}

// NewConnection connects to the Couchbase cluster and waits for the bucket
// to come up.
func NewConnection(cfg ConnectionConfig) (*Connection, error) {
	log.Info().
		Str("url", cfg.URL).
		Str("bucket", cfg.Bucket).
		Msg("Creating Couchbase connection")

	cluster, err := gocb.Connect(cfg.URL, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{Username: cfg.Username, Password: cfg.Password},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to Couchbase cluster")
		return nil, fmt.Errorf("connect cluster: %w", err)
	}

	bucket := cluster.Bucket(cfg.Bucket)
	err = bucket.WaitUntilReady(30*time.Second, &gocb.WaitUntilReadyOptions{
		ServiceTypes: []gocb.ServiceType{gocb.ServiceTypeKeyValue, gocb.ServiceTypeQuery},
	})
	if err != nil {
		log.Error().Err(err).Msg("Couchbase bucket not ready")
		return nil, fmt.Errorf("bucket not ready: %w", err)
	}

	log.Info().Msg("Couchbase connection created successfully")
	return &Connection{
		cluster:    cluster,
		bucket:     bucket,
		bucketName: cfg.Bucket,
	}, nil
}

// Close closes the Couchbase connection.
func (c *Connection) Close() error {
	if c.cluster != nil {
		return c.cluster.Close(nil)
	}
	return nil
}

// Bucket returns the Couchbase bucket.
func (c *Connection) Bucket() *gocb.Bucket {
	return c.bucket
}

// Cluster returns the Couchbase cluster.
func (c *Connection) Cluster() *gocb.Cluster {
	return c.cluster
}

// BucketName returns the Couchbase bucket name.
func (c *Connection) BucketName() string {
	return c.bucketName
}
