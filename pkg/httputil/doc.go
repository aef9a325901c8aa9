// Package httputil holds the response cache shared by remote clients.
//
// [Cache] keeps JSON-encoded values on disk (~/.cache/mvnbox by default)
// with a TTL measured from the last write. Clients scope their keys with
// [Cache.Namespace]:
//
//	c, err := httputil.NewCache("", 24*time.Hour)
//	maven := c.Namespace("maven:")
//	ok, err := maven.Get("junit:junit", &versions)
//
// `mvnbox cache clear` empties the directory through [Cache.Clear].
package httputil
