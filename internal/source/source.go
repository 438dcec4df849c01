// Package source reads the list of resource names or IDs to tag. The list
// may come from a local file, standard input, or an S3 object.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin is the location that selects standard input.
const Stdin = "-"

// maxLineBytes bounds a single line of the identifier list.
const maxLineBytes = 1 << 20

// Loader resolves a list location to its identifiers.
type Loader struct {
	// Stdin is read when the location is "-". Defaults to os.Stdin.
	Stdin io.Reader

	// S3 builds the object client used for s3:// locations. Defaults to a
	// client from the standard aws-sdk-go-v2 config chain.
	S3 s3ClientFactory

	// Region overrides the AWS region for s3:// locations.
	Region string
}

// Load reads identifiers from location using a default Loader.
func Load(ctx context.Context, location string) ([]string, error) {
	return (&Loader{}).Load(ctx, location)
}

// Load reads identifiers from location: "-" for stdin, an s3://bucket/key
// URI, or a local file path.
func (l *Loader) Load(ctx context.Context, location string) ([]string, error) {
	switch {
	case location == "":
		return nil, fmt.Errorf("no identifier list given")
	case location == Stdin:
		in := l.Stdin
		if in == nil {
			in = os.Stdin
		}
		return Parse(in)
	case strings.HasPrefix(location, s3Scheme):
		return l.loadS3(ctx, location)
	default:
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open identifier list: %w", err)
		}
		defer f.Close()
		return Parse(f)
	}
}

// Parse reads one identifier per line. Surrounding whitespace is trimmed,
// blank lines and lines starting with '#' are skipped, and repeated
// identifiers are kept only at their first position.
func Parse(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	seen := make(map[string]bool)
	var ids []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read identifier list: %w", err)
	}
	return ids, nil
}
