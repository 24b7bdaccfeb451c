package npm

// PackageInfo is the registry document of a package
type PackageInfo struct {
	ID          string                 `json:"_id"`
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	DistTags    map[string]string      `json:"dist-tags" validate:"required"`
	Versions    map[string]VersionInfo `json:"versions"`
	Time        map[string]string      `json:"time"`
	Maintainers []Maintainer           `json:"maintainers"`
	Homepage    string                 `json:"homepage"`
	Keywords    []string               `json:"keywords"`
}

// VersionInfo keeps the per-version fields the dashboard reads
type VersionInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Maintainer is a package maintainer
type Maintainer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DownloadPoint is the total download count over a period
type DownloadPoint struct {
	Downloads int    `json:"downloads" validate:"gte=0"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Package   string `json:"package" validate:"required"`
}

// DailyDownload is one day of a download range
type DailyDownload struct {
	Downloads int    `json:"downloads" validate:"gte=0"`
	Day       string `json:"day" validate:"required,datetime=2006-01-02"`
}

// DownloadRange is the per-day download series over a period
type DownloadRange struct {
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Package   string          `json:"package" validate:"required"`
	Downloads []DailyDownload `json:"downloads" validate:"dive"`
}

// Version is a published version and its publish time
type Version struct {
	Version string `json:"version"`
	Date    string `json:"date"`
}
