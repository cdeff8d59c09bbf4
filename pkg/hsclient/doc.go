// Package hsclient provides the primary entry point for constructing a
// HydroShare REST API client that implements the hs.Client interface.
//
// It layers configuration, HTTP transport and authentication on top of the
// resource interfaces and types defined in the hs package. Most applications
// import hsclient to build a client, then use the returned hs.Client to reach
// the resource specific clients: Resources(), Bags(), Files(), Folders(),
// Functions(), Users() and Tasks().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/hsclient/pkg/hs"
//	  "github.com/fivetwenty-io/hsclient/pkg/hsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Anonymous access to the public server.
//	  cli, err := hsclient.NewAnonymous(ctx, "www.hydroshare.org")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with the OAuth2 password grant; the token is requested right away.
//	  cli, err = hsclient.New(ctx, &hs.Config{
//	    UseHTTPS: true,
//	    Auth: hs.OAuth2Auth{
//	      ClientID: "client-id",
//	      Username: "user",
//	      Password: "pass",
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  it := cli.Resources().List(ctx, hs.NewResourceListParams().WithCreator("user"))
//	  for resource, err := range it.Seq() {
//	    if err != nil { log.Fatal(err) }
//	    log.Println(resource.ResourceID, resource.ResourceTitle)
//	  }
//
//	  path, err := cli.Bags().Download(ctx, "abc123", &hs.BagDownloadOptions{
//	    Destination: "/tmp",
//	    Unzip:       true,
//	    Wait:        true,
//	  })
//	  if err != nil { log.Fatal(err) }
//	  log.Println("bag extracted to", path)
//	}
//
// # TLS and development mode
//
// InsecureHTTPClient builds an http.Client for local servers with
// self-signed certificates. It is gated by the environment variable
// HS_DEV_MODE to avoid accidental insecure usage against production servers.
//
// # Helpers
//
// The package also provides convenience constructors NewAnonymous,
// NewWithBasicAuth, NewWithOAuth2Password and NewWithOAuth2Token that wrap New
// with a configuration derived from an endpoint by ConfigForEndpoint.
package hsclient
