package models

import (
	"time"

	"gorm.io/datatypes"
)

type DashboardChart struct {
	Name           string         `json:"chart_name" gorm:"primaryKey"`
	ChartType      string         `json:"chart_type"` // Group By, Sum, Count
	Type           string         `json:"type"`       // Donut, Bar, Line
	DocumentType   string         `json:"document_type"`
	GroupByBasedOn string         `json:"group_by_based_on"`
	GroupByType    string         `json:"group_by_type"`
	BasedOn        string         `json:"based_on"`
	ValueBasedOn   string         `json:"value_based_on"`
	Timespan       string         `json:"timespan"`
	IsPublic       bool           `json:"is_public"`
	FiltersJSON    datatypes.JSON `json:"filters_json"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Workspace holds the landing page layout. Content is the ordered list of
// WorkspaceBlock values; Charts and Shortcuts are the linked records.
type Workspace struct {
	Name      string              `json:"name" gorm:"primaryKey"`
	Content   datatypes.JSON      `json:"content"`
	Charts    []WorkspaceChart    `json:"charts" gorm:"foreignKey:WorkspaceName;references:Name;constraint:OnDelete:CASCADE"`
	Shortcuts []WorkspaceShortcut `json:"shortcuts" gorm:"foreignKey:WorkspaceName;references:Name;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type WorkspaceChart struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	WorkspaceName string `json:"workspace" gorm:"not null;index"`
	ChartName     string `json:"chart_name"`
	Label         string `json:"label"`
}

type WorkspaceShortcut struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	WorkspaceName string `json:"workspace" gorm:"not null;index"`
	Label         string `json:"label"`
	Type          string `json:"type"`
	URL           string `json:"url"`
}

type WorkspaceBlock struct {
	Type string         `json:"type"` // header, shortcut, card, chart, spacer
	Data map[string]any `json:"data"`
}
