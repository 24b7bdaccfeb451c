package github

// RepoInfo is the repository metadata document
type RepoInfo struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name" validate:"required"`
	FullName        string   `json:"full_name"`
	Description     string   `json:"description"`
	StargazersCount int      `json:"stargazers_count" validate:"gte=0"`
	ForksCount      int      `json:"forks_count" validate:"gte=0"`
	OpenIssuesCount int      `json:"open_issues_count" validate:"gte=0"`
	WatchersCount   int      `json:"watchers_count" validate:"gte=0"`
	UpdatedAt       string   `json:"updated_at"`
	PushedAt        string   `json:"pushed_at"`
	DefaultBranch   string   `json:"default_branch"`
	License         *License `json:"license"`
}

// License is the detected repository license
type License struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Content is one entry of a directory listing
type Content struct {
	Name        string  `json:"name" validate:"required"`
	Path        string  `json:"path"`
	SHA         string  `json:"sha"`
	Size        int64   `json:"size"`
	URL         string  `json:"url"`
	HTMLURL     string  `json:"html_url"`
	GitURL      string  `json:"git_url"`
	DownloadURL *string `json:"download_url"`
	Type        string  `json:"type" validate:"required"`
}

// IsDir reports whether the entry is a directory
func (c Content) IsDir() bool {
	return c.Type == "dir"
}

// Issue is an issue from the issues endpoint
type Issue struct {
	ID        int64   `json:"id"`
	Number    int     `json:"number" validate:"gt=0"`
	Title     string  `json:"title"`
	State     string  `json:"state" validate:"omitempty,oneof=open closed"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	Labels    []Label `json:"labels" validate:"dive"`
	User      User    `json:"user"`
	Body      *string `json:"body"`
	Comments  int     `json:"comments" validate:"gte=0"`
}

// BodyText returns the issue body or "" when it is null
func (i Issue) BodyText() string {
	if i.Body == nil {
		return ""
	}
	return *i.Body
}

// Label is an issue label
type Label struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name" validate:"required"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

// User is the minimal account shape embedded in issues and releases
type User struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Release is a published release
type Release struct {
	ID          int64   `json:"id"`
	TagName     string  `json:"tag_name" validate:"required"`
	Name        string  `json:"name"`
	Body        *string `json:"body"`
	Draft       bool    `json:"draft"`
	Prerelease  bool    `json:"prerelease"`
	CreatedAt   string  `json:"created_at"`
	PublishedAt string  `json:"published_at"`
	Author      User    `json:"author"`
}
