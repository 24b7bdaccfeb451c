// Package mapper converts GitHub and npm payloads into the dashboard's
// view models. Every function is pure: the same input always yields the
// same output, and the current time is an explicit argument.
package mapper

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"design-system-api/internal/github"
	"design-system-api/internal/models"
)

const (
	defaultVersion = "5.0.0"
	betaThreshold  = 200
	dateLayout     = "2006-01-02"
)

var (
	patternComponents    = []string{"form", "menu", "layout", "grid", "space", "flex"}
	foundationComponents = []string{"icon", "typography", "config-provider"}
	deprecatedComponents = []string{"mention", "back-top"}
)

// wellKnownUsage pins the placeholder usage of the most common components so
// the ranking looks plausible.
var wellKnownUsage = map[string]int{
	"button":     5842,
	"input":      4256,
	"table":      3987,
	"form":       3654,
	"select":     3421,
	"modal":      2987,
	"card":       2756,
	"menu":       2534,
	"icon":       2321,
	"typography": 2100,
}

// DesignComponents derives catalogue entries from the component folders and
// the release list (newest first). The result is sorted by usage, highest
// first; ties keep listing order.
func DesignComponents(listing []github.Content, releases []github.Release, now time.Time) []models.DesignComponent {
	version := defaultVersion
	lastUpdated := now.UTC().Format(dateLayout)
	if len(releases) > 0 {
		latest := releases[0]
		if v := strings.Replace(latest.TagName, "v", "", 1); v != "" {
			version = v
		}
		if day := datePart(latest.PublishedAt); day != "" {
			lastUpdated = day
		}
	}

	out := make([]models.DesignComponent, 0, len(listing))
	for _, item := range listing {
		usage := PlaceholderUsageCount(item.Name)
		status := models.StatusStable
		if usage < betaThreshold {
			status = models.StatusBeta
		}
		if contains(deprecatedComponents, strings.ToLower(item.Name)) {
			status = models.StatusDeprecated
		}
		display := DisplayName(item.Name)
		out = append(out, models.DesignComponent{
			ID:          "antd-" + item.Name,
			Name:        display,
			Description: "Ant Design " + display + " component",
			Category:    Category(item.Name),
			Version:     version,
			Status:      status,
			Platforms:   []models.Platform{models.PlatformWeb},
			LastUpdated: lastUpdated,
			UsageCount:  usage,
			NeedsUpdate: needsUpdate(item.Name),
			Tags:        Tags(item.Name),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UsageCount > out[j].UsageCount
	})
	return out
}

// PlaceholderUsageCount is a stand-in for real usage data, which the public
// APIs do not expose. Well-known names use a fixed table; any other name is
// hashed with the 32-bit shift-subtract string hash (h = h<<5 - h + unit over
// UTF-16 code units, wrapping) and mapped to |h mod 2000| + 100.
func PlaceholderUsageCount(name string) int {
	if n, ok := wellKnownUsage[strings.ToLower(name)]; ok {
		return n
	}
	var h int32
	for _, unit := range utf16.Encode([]rune(name)) {
		h = h<<5 - h + int32(unit)
	}
	r := int(h % 2000)
	if r < 0 {
		r = -r
	}
	return r + 100
}

// needsUpdate is a placeholder flag: the first code unit modulo 5.
func needsUpdate(name string) bool {
	units := utf16.Encode([]rune(name))
	return len(units) > 0 && units[0]%5 == 0
}

// DisplayName turns a folder name like "date-picker" into "Date Picker".
func DisplayName(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		if r, size := utf8.DecodeRuneInString(w); size > 0 {
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

// Category places a component by folder name.
func Category(name string) models.ComponentCategory {
	lower := strings.ToLower(name)
	switch {
	case contains(foundationComponents, lower):
		return models.CategoryFoundations
	case contains(patternComponents, lower):
		return models.CategoryPatterns
	default:
		return models.CategoryComponents
	}
}

// Tags derives search tags from substrings of the folder name. The
// lower-cased name itself is always the last tag.
func Tags(name string) []string {
	lower := strings.ToLower(name)
	var tags []string
	if containsAny(lower, "input", "select", "picker") {
		tags = append(tags, "form", "input")
	}
	if containsAny(lower, "table", "list", "tree") {
		tags = append(tags, "data-display")
	}
	if containsAny(lower, "modal", "drawer", "message") {
		tags = append(tags, "feedback")
	}
	if containsAny(lower, "menu", "breadcrumb", "pagination") {
		tags = append(tags, "navigation")
	}
	if containsAny(lower, "button", "switch", "checkbox") {
		tags = append(tags, "interactive")
	}
	return append(tags, lower)
}

// ComponentUsage ranks the first ten components. The trend is a placeholder
// derived from the first letter of the display name.
func ComponentUsage(components []models.DesignComponent) []models.ComponentUsage {
	n := min(len(components), 10)
	out := make([]models.ComponentUsage, 0, n)
	for _, c := range components[:n] {
		var trend float64
		if units := utf16.Encode([]rune(c.Name)); len(units) > 0 {
			trend = float64(int(units[0])%10 - 3)
		}
		out = append(out, models.ComponentUsage{
			ComponentID:   c.ID,
			ComponentName: c.Name,
			UsageCount:    c.UsageCount,
			Trend:         trend,
		})
	}
	return out
}

// PlatformUsage groups components by platform. Usage is the share of
// components that ship on the platform, in percent.
func PlatformUsage(components []models.DesignComponent) []models.PlatformUsage {
	var out []models.PlatformUsage
	for _, p := range []models.Platform{models.PlatformWeb, models.PlatformIOS, models.PlatformAndroid} {
		var ids []string
		for _, c := range components {
			if c.HasPlatform(p) {
				ids = append(ids, c.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		out = append(out, models.PlatformUsage{
			Platform:   p,
			Components: ids,
			Usage:      len(ids) * 100 / len(components),
		})
	}
	return out
}

func datePart(timestamp string) string {
	day, _, _ := strings.Cut(timestamp, "T")
	return day
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
