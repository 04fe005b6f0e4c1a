package serper

// ImagesInput is the body of POST /images.
type ImagesInput struct {
	Query string `json:"q"`
	Num   int    `json:"num,omitempty"`
}

// Image is a single image hit.
type Image struct {
	Title        string `json:"title"`
	ImageURL     string `json:"imageUrl"`
	ImageWidth   int    `json:"imageWidth,omitempty"`
	ImageHeight  int    `json:"imageHeight,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Source       string `json:"source,omitempty"`
	Domain       string `json:"domain,omitempty"`
	Link         string `json:"link,omitempty"`
	Position     int    `json:"position,omitempty"`
}

// ImagesOutput is the decoded reply of POST /images.
type ImagesOutput struct {
	Images []Image `json:"images"`
}

// URLs returns up to limit non-empty image URLs in rank order. A non-positive
// limit returns all of them.
func (o ImagesOutput) URLs(limit int) []string {
	urls := make([]string, 0, len(o.Images))
	for _, image := range o.Images {
		if limit > 0 && len(urls) == limit {
			break
		}
		if image.ImageURL != "" {
			urls = append(urls, image.ImageURL)
		}
	}
	return urls
}

type apiError struct {
	Message string `json:"message"`
}
