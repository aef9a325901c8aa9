// Package maven lists published artifact versions from Maven Central.
//
// # Usage
//
//	catalog, err := maven.NewCatalog(24 * time.Hour)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	versions, err := catalog.AllVersions(ctx, "org.apache.maven", "maven-core", false)
//	for v := range versions {
//	    fmt.Println(v)
//	}
//
// # Query
//
// Each lookup is one GET against the search service:
//
//	https://search.maven.org/solrsearch/select?q=g:<groupId>+AND+a:<artifactId>&core=gav&rows=100&wt=xml
//
// The reply is XML; every <str name="v"> under result/doc is a version.
// Blank values are dropped. The service caps the reply at [PageSize]
// documents, so the sequence is finite.
//
// # Errors
//
// Malformed URLs and XML are IO_ERROR. A 404 is NOT_FOUND and unwraps to
// [integrations.ErrNotFound]; other HTTP failures are NETWORK_ERROR and
// unwrap to [integrations.ErrNetwork]. Nothing is retried.
//
// # Caching
//
// Version lists are cached on disk under the "maven:" namespace for the
// catalog's TTL. Pass refresh=true to bypass the cache.
package maven
