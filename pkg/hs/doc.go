// Package hs provides types, interfaces, and helpers for working with the
// HydroShare REST API.
//
// # Overview
//
// The hs package defines the domain types (Resource, ResourceFile,
// ScienceMetadata, UserInfo) and the interfaces of the resource-oriented
// clients (ResourcesClient, BagsClient, FilesClient, ...). A concrete
// implementation is provided by the hsclient package, which wires
// configuration, transport and authentication. Most consumers import hsclient
// to construct a client and then work with the interfaces declared here.
//
// Getting a client
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
//	  cli, err := hsclient.New(ctx, &hs.Config{Hostname: "www.hydroshare.org", UseHTTPS: true})
//	  if err != nil { log.Fatal(err) }
//
//	  // Walk every public resource created by a user, page by page.
//	  it := cli.Resources().List(ctx, hs.NewResourceListParams().WithCreator("admin"))
//	  for res, err := range it.Seq() {
//	    if err != nil { log.Fatal(err) }
//	    log.Println(res.ResourceID, res.ResourceTitle)
//	  }
//	}
//
// # Pagination
//
// List endpoints answer with a {count, next, previous, results} envelope.
// ResultsIterator follows next links lazily and re-sends the original
// filters with every page. It offers HasNext/Next, All, ForEach and a
// range-over-func Seq.
//
// # Bags
//
// A resource can be fetched as a zipped BagIt archive. The server generates
// bags asynchronously; BagsClient either waits for the generation task or
// returns BagNotReadyError, depending on the caller's choice.
//
// # Errors
//
// Failures are reported with typed errors: ArgumentError,
// AuthenticationError, NotAuthorizedError (403), NotFoundError (404),
// HTTPError (any other unexpected status), BagNotReadyError and
// GenericClientError. Use the Is* helpers or errors.As to inspect them.
package hs
