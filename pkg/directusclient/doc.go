// Package directusclient is the entry point for constructing a Directus API
// client that implements the directus.Client interface.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/directus/pkg/directus"
//	  "github.com/fivetwenty-io/directus/pkg/directusclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := directusclient.New(ctx, directus.DefaultConfig("cms.example.com", "app_"))
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  err = cli.Auth().Login(ctx, "admin@example.com", "secret", "")
//	  if err != nil { log.Fatal(err) }
//
//	  envelope, err := cli.Items().List(ctx, "articles", directus.NewQuery().WithLimit(10))
//	  if err != nil { log.Fatal(err) }
//	  if err := envelope.Err(); err != nil { log.Fatal(err) }
//	}
//
// # Session storage
//
// The session obtained by Login is written to the store selected by
// Config.AuthStorage: the in-process session store (default), the cookie
// store bound to one HTTP exchange, Redis, or a NATS key-value bucket. Supply
// Config.Store, or use NewWithStore, to share a store across clients.
//
// # Helpers
//
// NewWithToken builds a client around a static token and NewWithStore around
// an existing store, both starting from directus.DefaultConfig.
package directusclient
