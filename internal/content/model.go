package content

import (
	"encoding/json"
	"time"
)

type Slug struct {
	Current string `json:"current"`
}

type ImageAsset struct {
	Ref string `json:"_ref"`
}

// Image is the CMS image reference. URL is filled in by the client.
type Image struct {
	Asset ImageAsset `json:"asset"`
	Alt   string     `json:"alt,omitempty"`
	URL   string     `json:"url,omitempty"`
}

type Author struct {
	Name  string          `json:"name"`
	Slug  *Slug           `json:"slug,omitempty"`
	Image *Image          `json:"image,omitempty"`
	Bio   json.RawMessage `json:"bio,omitempty"`
}

type Category struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Slug        Slug   `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type Post struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Slug        Slug            `json:"slug"`
	PublishedAt time.Time       `json:"publishedAt"`
	Excerpt     string          `json:"excerpt,omitempty"`
	MainImage   *Image          `json:"mainImage,omitempty"`
	Author      *Author         `json:"author,omitempty"`
	Categories  []Category      `json:"categories"`
	Featured    bool            `json:"featured"`
	Body        json.RawMessage `json:"body,omitempty"`
	SEO         json.RawMessage `json:"seo,omitempty"`
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}
