// Package agenda holds the pure part of the learner timeline: item shape,
// filtering, ordering, colors and the overdue/today/upcoming stats.
// Loading the items is the agenda service's job.
package agenda

import (
	"sort"
	"time"

	apperrors "github.com/SAP-F-2025/assignment-service/internal/errors"
	"github.com/SAP-F-2025/assignment-service/internal/models"
)

type Category string

const (
	CategoryAssignment Category = "assignment"
	CategoryCourse     Category = "course"
	CategoryPersonal   Category = "personal"
)

type Origin string

const (
	OriginTeacher Origin = "teacher"
	OriginStudent Origin = "student"
)

// Category filter values.
const (
	FilterAll      = "all"
	FilterTeacher  = "teacher"
	FilterPersonal = "personal"
)

// Status filter values.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type Item struct {
	ID        string                `json:"id"`
	SourceID  uint                  `json:"source_id"`
	Title     string                `json:"title"`
	Start     time.Time             `json:"start"`
	End       time.Time             `json:"end"`
	Category  Category              `json:"category"`
	Origin    Origin                `json:"origin"`
	Priority  *models.Priority      `json:"priority,omitempty"`
	Color     string                `json:"color"`
	Editable  bool                  `json:"editable"`
	Status    models.ProgressStatus `json:"status,omitempty"`
	TeacherID string                `json:"teacher_id,omitempty"`
	SubjectID *uint                 `json:"subject_id,omitempty"`
	CourseID  *uint                 `json:"course_id,omitempty"`
}

// Filters narrows the merged item set. Zero values match everything.
type Filters struct {
	Category   string     `form:"category" json:"category" validate:"omitempty,agenda_category"`
	TeacherIDs []string   `form:"teacher_ids" json:"teacher_ids"`
	SubjectIDs []uint     `form:"subject_ids" json:"subject_ids"`
	CourseID   *uint      `form:"course_id" json:"course_id"`
	Status     string     `form:"status" json:"status" validate:"omitempty,agenda_status"`
	From       *time.Time `form:"from" json:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" json:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (f Filters) Validate() error {
	var errs apperrors.ValidationErrors
	switch f.Category {
	case "", FilterAll, FilterTeacher, FilterPersonal:
	default:
		errs = append(errs, *apperrors.NewValidationErrorWithRule("category", "must be all, teacher or personal", "agenda_category", f.Category))
	}
	switch f.Status {
	case "", StatusAll, StatusPending, StatusCompleted:
	default:
		errs = append(errs, *apperrors.NewValidationErrorWithRule("status", "must be all, pending or completed", "agenda_status", f.Status))
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs = append(errs, *apperrors.NewValidationError("to", "must not be before from", f.To))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Matches reports whether item passes every filter. Course items carry no
// deadline and are never excluded by the date range. Personal items carry no
// teacher, subject or course, so any of those filters excludes them.
func (f Filters) Matches(item Item) bool {
	switch f.Category {
	case FilterTeacher:
		if item.Category == CategoryPersonal {
			return false
		}
	case FilterPersonal:
		if item.Category != CategoryPersonal {
			return false
		}
	}

	if len(f.TeacherIDs) > 0 && !containsString(f.TeacherIDs, item.TeacherID) {
		return false
	}
	if len(f.SubjectIDs) > 0 && (item.SubjectID == nil || !containsUint(f.SubjectIDs, *item.SubjectID)) {
		return false
	}
	if f.CourseID != nil && (item.CourseID == nil || *item.CourseID != *f.CourseID) {
		return false
	}

	switch f.Status {
	case StatusPending:
		if item.Status == models.ProgressCompleted {
			return false
		}
	case StatusCompleted:
		if item.Status != models.ProgressCompleted {
			return false
		}
	}

	if item.Category != CategoryCourse {
		if f.From != nil && item.End.Before(*f.From) {
			return false
		}
		if f.To != nil && item.End.After(*f.To) {
			return false
		}
	}
	return true
}

// Apply filters items and returns them sorted by start.
func Apply(items []Item, f Filters) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	Sort(out)
	return out
}

// Sort orders items by start; ties keep a stable order by id.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Start.Equal(items[j].Start) {
			return items[i].Start.Before(items[j].Start)
		}
		return items[i].ID < items[j].ID
	})
}

type Stats struct {
	Overdue  int `json:"overdue"`
	Today    int `json:"today"`
	Upcoming int `json:"upcoming"`
	Personal int `json:"personal"`
	Total    int `json:"total"`
}

// ComputeStats counts items relative to the midnight that starts now's day
// in now's location.
func ComputeStats(items []Item, now time.Time) Stats {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	stats := Stats{Total: len(items)}
	for _, it := range items {
		completed := it.Status == models.ProgressCompleted
		switch it.Category {
		case CategoryPersonal:
			stats.Personal++
		case CategoryCourse:
			if !completed {
				stats.Upcoming++
			}
		case CategoryAssignment:
			switch {
			case it.End.Before(today):
				if !completed {
					stats.Overdue++
				}
			case it.End.Before(tomorrow):
				stats.Today++
			case !completed:
				stats.Upcoming++
			}
		}
	}
	return stats
}

// StatusFromCompletion maps a course completion percentage to a status.
func StatusFromCompletion(percentage float64) models.ProgressStatus {
	switch {
	case percentage >= 100:
		return models.ProgressCompleted
	case percentage > 0:
		return models.ProgressInProgress
	default:
		return models.ProgressNotStarted
	}
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsUint(values []uint, v uint) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
