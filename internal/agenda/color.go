package agenda

import "github.com/SAP-F-2025/assignment-service/internal/models"

const (
	ColorHigh   = "#ef4444"
	ColorMedium = "#f59e0b"
	ColorLow    = "#10b981"

	ColorAssignment = "#3b82f6"
	ColorCourse     = "#8b5cf6"
	ColorPersonal   = "#10b981"
)

var priorityColors = map[models.Priority]string{
	models.PriorityHigh:   ColorHigh,
	models.PriorityMedium: ColorMedium,
	models.PriorityLow:    ColorLow,
}

var categoryColors = map[Category]string{
	CategoryAssignment: ColorAssignment,
	CategoryCourse:     ColorCourse,
	CategoryPersonal:   ColorPersonal,
}

// ColorFor picks the class color, then the priority color, then the category
// default. Personal items always get the personal color.
func ColorFor(category Category, classColor *string, priority *models.Priority) string {
	if category == CategoryPersonal {
		return ColorPersonal
	}
	if classColor != nil && *classColor != "" {
		return *classColor
	}
	if priority != nil {
		if c, ok := priorityColors[*priority]; ok {
			return c
		}
	}
	return categoryColors[category]
}
