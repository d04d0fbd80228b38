package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
	"github.com/fivetwenty-io/directus/pkg/directusclient"
	"github.com/fivetwenty-io/directus/pkg/store"
)

// buildClientConfig maps the CLI configuration onto a client configuration.
// The file storage is resolved by the caller since it needs a path.
func buildClientConfig(config *Config) (*directus.Config, error) {
	if config.URL == "" {
		return nil, constants.ErrNoBaseURLConfigured
	}

	if config.Prefix == "" {
		return nil, constants.ErrNoPrefixConfigured
	}

	clientConfig := directus.DefaultConfig(config.URL, config.Prefix)
	clientConfig.StaticToken = config.Token
	clientConfig.SkipTLSVerify = config.SkipSSLValidation
	clientConfig.OnlyIPv4 = config.OnlyIPv4
	clientConfig.KeepHeaders = viper.GetBool("verbose")

	switch config.Storage {
	case "", constants.StorageFile:
	case constants.StorageRedis:
		clientConfig.AuthStorage = store.TypeRedis
		clientConfig.Redis = &store.RedisConfig{Addr: config.RedisAddr}
	case constants.StorageNATS:
		clientConfig.AuthStorage = store.TypeNATS
		clientConfig.NATS = &store.NATSConfig{URL: config.NATSURL}
	default:
		clientConfig.AuthStorage = store.Type(config.Storage)
	}

	if viper.GetBool("verbose") {
		clientConfig.Logger = NewLogger(os.Stderr, true)
		clientConfig.Debug = true
	}

	return clientConfig, nil
}

// openSessionStore opens the store selected by the CLI configuration.
func openSessionStore(config *Config, clientConfig *directus.Config) (store.Store, error) {
	if config.Storage == "" || config.Storage == constants.StorageFile {
		path, err := DefaultSessionPath()
		if err != nil {
			return nil, err
		}

		return NewFileStore(path), nil
	}

	backend, err := store.NewFromConfig(&store.Config{
		Type:  clientConfig.AuthStorage,
		Redis: clientConfig.Redis,
		NATS:  clientConfig.NATS,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s session store: %w", config.Storage, err)
	}

	return backend, nil
}

// createClient creates a Directus client from the CLI configuration.
func createClient(ctx context.Context) (directus.Client, error) {
	config := loadConfig()

	clientConfig, err := buildClientConfig(config)
	if err != nil {
		return nil, err
	}

	clientConfig.Store, err = openSessionStore(config, clientConfig)
	if err != nil {
		return nil, err
	}

	client, err := directusclient.New(ctx, clientConfig)
	if err != nil {
		_ = store.Close(clientConfig.Store)

		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// withClient runs fn with a client and closes it afterwards.
func withClient(ctx context.Context, fn func(client directus.Client) error) error {
	client, err := createClient(ctx)
	if err != nil {
		return err
	}

	defer func() { _ = client.Close() }()

	return fn(client)
}
