package maven

import (
	"context"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"iter"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/mvnbox/pkg/errors"
	"github.com/matzehuels/mvnbox/pkg/integrations"
)

const (
	// DefaultSearchURL is the Maven Central search endpoint.
	DefaultSearchURL = "https://search.maven.org/solrsearch/select"

	// PageSize is the number of versions the service returns per query.
	PageSize = 100

	cacheNamespace = "maven:"
	versionField   = "v"
)

// Catalog lists published versions of an artifact from the Maven Central
// search service. Each uncached lookup is a single request without retry.
// A Catalog is safe for concurrent use.
type Catalog struct {
	*integrations.Client
	baseURL string
}

// NewCatalog creates a catalog for Maven Central with responses cached for
// cacheTTL.
func NewCatalog(cacheTTL time.Duration) (*Catalog, error) {
	cache, err := integrations.NewCacheWithNamespace(cacheNamespace, cacheTTL)
	if err != nil {
		return nil, err
	}
	return NewCatalogWithClient(integrations.NewClient(cache, nil), DefaultSearchURL), nil
}

// NewCatalogWithClient creates a catalog that queries baseURL through client.
func NewCatalogWithClient(client *integrations.Client, baseURL string) *Catalog {
	return &Catalog{Client: client, baseURL: baseURL}
}

// SearchURL returns the query URL for an artifact.
func (c *Catalog) SearchURL(groupID, artifactID string) (string, error) {
	raw := fmt.Sprintf("%s?q=g:%s+AND+a:%s&core=gav&rows=%d&wt=xml",
		c.baseURL, integrations.URLEncode(groupID), integrations.URLEncode(artifactID), PageSize)
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "build search url")
	}
	return u.String(), nil
}

// AllVersions returns the published versions of groupID:artifactID in the
// order the service reports them, newest first in practice. The sequence
// holds at most [PageSize] values. refresh bypasses the response cache.
func (c *Catalog) AllVersions(ctx context.Context, groupID, artifactID string, refresh bool) (iter.Seq[string], error) {
	if err := errors.ValidateMavenID("groupId", groupID); err != nil {
		return nil, err
	}
	if err := errors.ValidateMavenID("artifactId", artifactID); err != nil {
		return nil, err
	}

	var versions []string
	err := c.Cached(ctx, groupID+":"+artifactID, refresh, &versions, func() error {
		v, err := c.fetch(ctx, groupID, artifactID)
		versions = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return slices.Values(versions), nil
}

// Latest returns the first version reported by the service. It fails with
// NOT_FOUND when the artifact has no published versions.
func (c *Catalog) Latest(ctx context.Context, groupID, artifactID string, refresh bool) (string, error) {
	seq, err := c.AllVersions(ctx, groupID, artifactID, refresh)
	if err != nil {
		return "", err
	}
	for v := range seq {
		return v, nil
	}
	return "", errors.New(errors.ErrCodeNotFound, "no published versions of %s:%s", groupID, artifactID)
}

func (c *Catalog) fetch(ctx context.Context, groupID, artifactID string) ([]string, error) {
	u, err := c.SearchURL(groupID, artifactID)
	if err != nil {
		return nil, err
	}
	body, err := c.GetBytes(ctx, u, map[string]string{"Accept": "application/xml"})
	if err != nil {
		code := errors.ErrCodeNetwork
		if stderrors.Is(err, integrations.ErrNotFound) {
			code = errors.ErrCodeNotFound
		}
		return nil, errors.Wrap(code, err, "query versions of %s:%s", groupID, artifactID)
	}
	versions, err := parseVersions(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "parse versions of %s:%s", groupID, artifactID)
	}
	return versions, nil
}

// searchResponse maps response/result/doc/str elements of a Solr XML reply.
type searchResponse struct {
	XMLName xml.Name `xml:"response"`
	Result  struct {
		Docs []struct {
			Fields []struct {
				Name  string `xml:"name,attr"`
				Value string `xml:",chardata"`
			} `xml:"str"`
		} `xml:"doc"`
	} `xml:"result"`
}

// parseVersions extracts the non-blank "v" fields in document order.
func parseVersions(data []byte) ([]string, error) {
	var resp searchResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	versions := []string{}
	for _, doc := range resp.Result.Docs {
		for _, f := range doc.Fields {
			if f.Name != versionField {
				continue
			}
			if v := strings.TrimSpace(f.Value); v != "" {
				versions = append(versions, v)
			}
		}
	}
	return versions, nil
}

// ParseCoordinate splits "groupId:artifactId".
func ParseCoordinate(coord string) (groupID, artifactID string, err error) {
	g, a, ok := strings.Cut(strings.TrimSpace(coord), ":")
	if !ok || strings.Contains(a, ":") {
		return "", "", errors.New(errors.ErrCodeInvalidInput,
			"invalid maven coordinate %q (expected groupId:artifactId)", coord)
	}
	if err := errors.ValidateMavenID("groupId", g); err != nil {
		return "", "", err
	}
	if err := errors.ValidateMavenID("artifactId", a); err != nil {
		return "", "", err
	}
	return g, a, nil
}
