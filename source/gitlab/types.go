package gitlab

// GitLabReleaseResponse models GitLab API /projects/:id/releases/:tag response
type GitLabReleaseResponse struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Links       struct {
		Self string `json:"self"`
	} `json:"_links"`
	Assets struct {
		Count int               `json:"count"`
		Links []GitLabAssetLink `json:"links"`
	} `json:"assets"`
}

// GitLabAssetLink models asset links in release responses and in the create-link response
type GitLabAssetLink struct {
	Id       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Url      string `json:"url"`
	LinkType string `json:"link_type,omitempty"`
}

// GitLabUploadResponse models GitLab API POST /projects/:id/uploads response
type GitLabUploadResponse struct {
	Alt      string `json:"alt"`
	Url      string `json:"url"`
	FullPath string `json:"full_path"`
	Markdown string `json:"markdown"`
}
