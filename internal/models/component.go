package models

import "slices"

// ComponentCategory groups components in the catalogue navigation
type ComponentCategory string

const (
	CategoryFoundations ComponentCategory = "foundations"
	CategoryComponents  ComponentCategory = "components"
	CategoryPatterns    ComponentCategory = "patterns"
	CategoryTemplates   ComponentCategory = "templates"
)

// Categories lists every category in display order
var Categories = []ComponentCategory{CategoryFoundations, CategoryComponents, CategoryPatterns, CategoryTemplates}

// ComponentStatus represents the lifecycle status of a component
type ComponentStatus string

const (
	StatusStable     ComponentStatus = "stable"
	StatusBeta       ComponentStatus = "beta"
	StatusDeprecated ComponentStatus = "deprecated"
)

// Platform represents a target platform
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// DesignComponent represents one entry of the design system catalogue
type DesignComponent struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Category    ComponentCategory `json:"category" yaml:"category"`
	Version     string            `json:"version" yaml:"version"`
	Status      ComponentStatus   `json:"status" yaml:"status"`
	Platforms   []Platform        `json:"platforms" yaml:"platforms"`
	LastUpdated string            `json:"lastUpdated" yaml:"lastUpdated"`
	UsageCount  int               `json:"usageCount" yaml:"usageCount"`
	NeedsUpdate bool              `json:"needsUpdate" yaml:"needsUpdate"`
	Tags        []string          `json:"tags" yaml:"tags"`
}

// HasPlatform reports whether the component ships on p
func (c DesignComponent) HasPlatform(p Platform) bool {
	for _, own := range c.Platforms {
		if own == p {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with c
func (c DesignComponent) Clone() DesignComponent {
	c.Platforms = slices.Clone(c.Platforms)
	c.Tags = slices.Clone(c.Tags)
	return c
}

// ComponentFilter narrows a component list. Empty fields match everything.
type ComponentFilter struct {
	Search     string              `json:"search" form:"search"`
	Platforms  []Platform          `json:"platforms" form:"platform"`
	Categories []ComponentCategory `json:"categories" form:"category"`
	Statuses   []ComponentStatus   `json:"statuses" form:"status"`
}

// ComponentStats summarises a loaded component set
type ComponentStats struct {
	Total       int `json:"total"`
	Stable      int `json:"stable"`
	Beta        int `json:"beta"`
	Deprecated  int `json:"deprecated"`
	NeedsUpdate int `json:"needsUpdate"`
}
