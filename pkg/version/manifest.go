package version

import (
	"archive/zip"
	"bufio"
	"io"
	"strings"
)

const (
	manifestPath = "META-INF/MANIFEST.MF"

	// ImplementationVersion is the manifest attribute holding the version.
	ImplementationVersion = "Implementation-Version"
)

// readManifest returns the main-section attributes of the archive's manifest.
// A missing manifest yields an empty map.
func readManifest(zr *zip.Reader) (map[string]string, error) {
	for _, f := range zr.File {
		if f.Name != manifestPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return parseManifest(rc)
	}
	return map[string]string{}, nil
}

// parseManifest parses the main section of a JAR manifest. Lines starting
// with a single space continue the previous line.
func parseManifest(r io.Reader) (map[string]string, error) {
	attrs := make(map[string]string)
	sc := bufio.NewScanner(r)
	var key string
	var val strings.Builder

	flush := func() {
		if key != "" {
			attrs[key] = strings.TrimSpace(val.String())
		}
		key = ""
		val.Reset()
	}

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break // end of main section
		}
		if strings.HasPrefix(line, " ") {
			val.WriteString(line[1:])
			continue
		}
		flush()
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(k)
		val.WriteString(strings.TrimPrefix(v, " "))
	}
	flush()
	return attrs, sc.Err()
}
