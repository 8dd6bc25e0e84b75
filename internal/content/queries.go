package content

const (
	postsQuery = `*[_type == "post" && publishedAt <= now()] | order(publishedAt desc) {
  _id, title, slug, publishedAt, excerpt, mainImage,
  "author": author->{name, image},
  "categories": categories[]->{title, slug, color},
  featured
}`

	postBySlugQuery = `*[_type == "post" && slug.current == $slug][0] {
  _id, title, slug, publishedAt, mainImage, body,
  "author": author->{name, slug, image, bio},
  "categories": categories[]->{title, slug, color},
  seo
}`

	categoriesQuery = `*[_type == "category"] | order(title asc) {
  _id, title, slug, description, color
}`
)
