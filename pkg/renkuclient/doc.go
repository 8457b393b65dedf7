// Package renkuclient provides the entry point for constructing a client of
// the Renku API gateway that implements the renku.Client interface.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/renku-client/pkg/renku"
//	  "github.com/fivetwenty-io/renku-client/pkg/renkuclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := renkuclient.New(&renku.Config{
//	    APIURL: "https://renku.example.com/api",
//	    Token:  "eyJhbGciOi...",
//	    Navigator: renku.NavigatorFunc(func(ctx context.Context, target string) error {
//	      log.Printf("session expired, log in again at %s", target)
//	      return nil
//	    }),
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  listing, err := cli.Projects().List(ctx, &renku.ProjectListOptions{Membership: true})
//	  if err != nil { log.Fatal(err) }
//	  _ = listing.Data
//	}
//
// # Sessions and renewal
//
// The UI server marks responses to requests with an expired session. The
// client then navigates once to the UI server's login page, through the
// configured renku.Navigator, and every call made while the renewal is in
// flight returns an empty result flagged RenewalInFlight instead of an
// error.
//
// # Helpers
//
// NewWithToken and NewWithNavigator wrap New with the matching configuration.
package renkuclient
