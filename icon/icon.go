// Package icon maps tasks and categories to display icons. Icon names use
// the Font Awesome class vocabulary the web frontend consumes.
package icon

import (
	internalstrings "github.com/prepline/prepline/internal/strings"
	"github.com/prepline/prepline/task"
)

// Icon is an icon class plus an optional color class.
type Icon struct {
	Class string
	Color string
}

// Fallbacks for missing or user-created categories.
var (
	DefaultIcon     = Icon{Class: "fa-square", Color: "text-success"}
	UserCreatedIcon = Icon{Class: "fa-circle", Color: "text-purple"}
	JanitorialIcon  = Icon{Class: "fa-broom", Color: "text-warning"}
	ManualIcon      = Icon{Class: "fa-hand", Color: "text-secondary"}
)

// categoryIcons maps batch and inventory category names to icons.
var categoryIcons = map[string]string{
	"sauces":          "fa-pot-food",
	"dressings":       "fa-bottle-droplet",
	"soups":           "fa-bowl-rice",
	"stocks & broths": "fa-pot-food",
	"dough":           "fa-bread-slice",
	"marinades":       "fa-jar",
	"produce":         "fa-leaf",
	"dairy":           "fa-cheese",
	"protein":         "fa-drumstick-bite",
	"frozen/thaw":     "fa-snowflake",
	"spreads & dips":  "fa-bread-slice",
	"dessert":         "fa-ice-cream",
	"restock/rotate":  "fa-rotate",
	"manual":          "fa-hand",
	"specials":        "fa-star",
	"misc tasks":      "fa-list-check",
}

// ForCategory returns the icon for a batch or inventory category name.
// Unknown categories get the user-created fallback; empty ones the default.
func ForCategory(name string) Icon {
	if name == "" {
		return DefaultIcon
	}
	if class, ok := categoryIcons[internalstrings.NormalizeLowerTrimSpace(name)]; ok {
		return Icon{Class: class}
	}
	return UserCreatedIcon
}

// Source resolves an icon for a task, or reports that it has no opinion.
type Source interface {
	Icon(t *task.Task) (Icon, bool)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(t *task.Task) (Icon, bool)

func (f SourceFunc) Icon(t *task.Task) (Icon, bool) {
	return f(t)
}

// DefaultSources is the icon resolution order: janitorial duty, then the
// inventory item's category, then the batch's category, then the manual
// fallback.
func DefaultSources() []Source {
	return []Source{
		SourceFunc(func(t *task.Task) (Icon, bool) {
			if t.JanitorialID != "" {
				return JanitorialIcon, true
			}
			return Icon{}, false
		}),
		SourceFunc(func(t *task.Task) (Icon, bool) {
			if t.InventoryItemID != "" && t.ItemCategory != "" {
				return ForCategory(t.ItemCategory), true
			}
			return Icon{}, false
		}),
		SourceFunc(func(t *task.Task) (Icon, bool) {
			if t.BatchRef() != "" && t.BatchCategory != "" {
				return ForCategory(t.BatchCategory), true
			}
			return Icon{}, false
		}),
		SourceFunc(func(t *task.Task) (Icon, bool) {
			if t.Category != "" {
				return ForCategory(t.Category), true
			}
			return Icon{}, false
		}),
	}
}

// ForTask resolves a task's icon by probing sources in order. The first
// source with an opinion wins; with none, the manual fallback applies.
func ForTask(t *task.Task, sources ...Source) Icon {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	for _, src := range sources {
		if ic, ok := src.Icon(t); ok {
			return ic
		}
	}
	return ManualIcon
}
