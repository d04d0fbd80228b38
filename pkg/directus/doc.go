// Package directus provides types, interfaces, and helpers for working with
// the Directus REST API.
//
// # Overview
//
// The directus package defines the client interfaces (AuthClient,
// ItemsClient, UsersClient, FilesClient), the Envelope every data operation
// returns, the Query type for global query parameters, and the error types.
// A concrete client is provided by the directusclient package, which wires
// configuration, transport, and the session store.
//
// Getting a client
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
//	  cli, err := directusclient.New(ctx, directus.DefaultConfig("https://cms.example.com", "app_"))
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  if err := cli.Auth().Login(ctx, "admin@example.com", "secret", ""); err != nil {
//	    log.Fatal(err)
//	  }
//
//	  env, err := cli.Items().List(ctx, "articles", directus.NewQuery().WithLimit(10))
//	  if err != nil { log.Fatal(err) }
//
//	  var articles []map[string]interface{}
//	  if err := env.Decode(&articles); err != nil { log.Fatal(err) }
//	}
//
// # Envelopes and errors
//
// Data operations return an Envelope even when Directus rejects the request:
// upstream errors are kept verbatim in Envelope.Errors and a request that
// never reached the server carries a single TRANSPORT_ERROR entry. The Go
// error return is reserved for local failures such as payload encoding,
// store I/O, or ErrAuthenticationFailed after a rejected session refresh.
// Envelope.Err converts a failed envelope into a *ResponseError or
// *TransportError; IsNotFound, IsUnauthorized, and IsForbidden branch on
// common cases.
//
// # Sessions
//
// Login stores the refresh token, access token, and access token expiry in
// the configured store under Config.AuthPrefix. Every later call resolves the
// access token from the store and refreshes it once when it has expired.
package directus
