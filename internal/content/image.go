package content

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const imageCDN = "https://cdn.sanity.io/images"

// ImageURL turns an asset reference such as
// "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg" into a CDN URL.
// Width and height are optional resize hints; zero leaves them out.
func ImageURL(projectID, dataset, ref string, width, height int) (string, error) {
	parts := strings.Split(ref, "-")
	if len(parts) < 4 || parts[0] != "image" {
		return "", fmt.Errorf("content: malformed image reference %q", ref)
	}

	format := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	id := strings.Join(parts[1:len(parts)-2], "-")
	if id == "" || !strings.Contains(dims, "x") {
		return "", fmt.Errorf("content: malformed image reference %q", ref)
	}

	u := fmt.Sprintf("%s/%s/%s/%s-%s.%s", imageCDN, projectID, dataset, id, dims, format)

	q := url.Values{}
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("h", strconv.Itoa(height))
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, nil
}
