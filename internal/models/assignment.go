package models

import (
	"time"

	"gorm.io/datatypes"
)

type TargetType string

const (
	TargetClass   TargetType = "CLASS"
	TargetTeam    TargetType = "TEAM"
	TargetStudent TargetType = "STUDENT"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ContentKind names the level of the content hierarchy an assignment points at.
type ContentKind string

const (
	ContentCourse  ContentKind = "course"
	ContentChapter ContentKind = "chapter"
	ContentSection ContentKind = "section"
)

type Assignment struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`

	// Content reference: exactly one of the three is set
	CourseID  *uint `json:"course_id" gorm:"index;uniqueIndex:uq_synthetic_course_class,where:synthetic = true"`
	ChapterID *uint `json:"chapter_id" gorm:"index"`
	SectionID *uint `json:"section_id" gorm:"index"`

	// Denormalized from the content at creation time
	RootCourseID *uint `json:"root_course_id" gorm:"index"`
	SubjectID    *uint `json:"subject_id" gorm:"index"`

	// Target descriptor, discriminated by TargetType
	TargetType TargetType                  `json:"target_type" gorm:"not null;size:16;index"`
	ClassID    *uint                       `json:"class_id" gorm:"index;uniqueIndex:uq_synthetic_course_class,where:synthetic = true"`
	TeamID     *uint                       `json:"team_id" gorm:"index"`
	StudentID  *string                     `json:"student_id" gorm:"size:255;index"`
	MemberIDs  datatypes.JSONSlice[string] `json:"member_ids"`

	StartAt  *time.Time `json:"start_at"`
	DueAt    *time.Time `json:"due_at" gorm:"index"`
	Priority Priority   `json:"priority" gorm:"not null;size:8;default:MEDIUM"`

	// Recurrence is carried, never interpreted here
	IsRecurring    bool    `json:"is_recurring" gorm:"default:false"`
	RecurrenceRule *string `json:"recurrence_rule" gorm:"size:500"`

	TeacherID string `json:"teacher_id" gorm:"not null;size:255;index"`
	ParentID  *uint  `json:"parent_id" gorm:"index"`
	// Synthetic rows were created by orphan synthesis; at most one per (course, class)
	Synthetic bool   `json:"synthetic" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Children []Assignment `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// ContentRef returns the kind and id of the single content reference.
// ok is false when zero or more than one reference is set.
func (a *Assignment) ContentRef() (kind ContentKind, id uint, ok bool) {
	set := 0
	if a.CourseID != nil {
		kind, id = ContentCourse, *a.CourseID
		set++
	}
	if a.ChapterID != nil {
		kind, id = ContentChapter, *a.ChapterID
		set++
	}
	if a.SectionID != nil {
		kind, id = ContentSection, *a.SectionID
		set++
	}
	return kind, id, set == 1
}

// HasExplicitMembers reports whether a TEAM assignment carries its own member list.
func (a *Assignment) HasExplicitMembers() bool {
	return a.TargetType == TargetTeam && len(a.MemberIDs) > 0
}
