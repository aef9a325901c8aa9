// Package integrations provides the HTTP client shared by remote
// repository clients.
//
// [Client] wraps an http.Client with default headers, the file cache from
// [httputil] and status mapping: 404 becomes [ErrNotFound], every other
// failure [ErrNetwork]. There is no automatic retry; callers decide.
//
// Repository-specific clients live in subpackages:
//
//   - [maven]: published versions from the Maven Central search service
//
// [httputil]: github.com/matzehuels/mvnbox/pkg/httputil
// [maven]: github.com/matzehuels/mvnbox/pkg/integrations/maven
package integrations
