package models

// ThumbnailRequest asks for a cached thumbnail of a static image.
type ThumbnailRequest struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Method string `json:"method"`
}

// ThumbnailResponse describes the materialized thumbnail.
type ThumbnailResponse struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// VideoThumbnailRequest asks for a derived frame or clip of a static video.
type VideoThumbnailRequest struct {
	Name     string `json:"name"`
	Format   string `json:"format"`
	Position *int   `json:"position"` // seconds; omitted picks one from the duration
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Method   string `json:"method"`
}

// VideoThumbnailResponse describes the materialized derivative.
type VideoThumbnailResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BundleResponse lists the URLs resolved for a bundle group. One URL when
// the group compiled into a single bundle, one per member otherwise.
type BundleResponse struct {
	Group string   `json:"group"`
	URLs  []string `json:"urls"`
}

// AssetResponse describes a single resolved asset.
type AssetResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CompileRequest asks for eager compilation of bundle groups.
type CompileRequest struct {
	Groups []string `json:"groups"`
}
