package models

import "time"

// Reference data below is owned by the school/content systems. This service
// reads it through the roster, content and eligibility collaborators only.

type Class struct {
	ID    uint    `json:"id" gorm:"primaryKey"`
	Name  string  `json:"name" gorm:"not null;size:100"`
	Color *string `json:"color" gorm:"size:16"`
}

func (Class) TableName() string { return "classes" }

type ClassMember struct {
	ClassID   uint      `json:"class_id" gorm:"primaryKey"`
	StudentID string    `json:"student_id" gorm:"primaryKey;size:255;index"`
	JoinedAt  time.Time `json:"joined_at"`
}

func (ClassMember) TableName() string { return "class_members" }

type ClassTeacher struct {
	ClassID   uint   `json:"class_id" gorm:"primaryKey"`
	TeacherID string `json:"teacher_id" gorm:"primaryKey;size:255;index"`
}

func (ClassTeacher) TableName() string { return "class_teachers" }

type Team struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null;size:100"`
	TeacherID string `json:"teacher_id" gorm:"size:255;index"`
}

func (Team) TableName() string { return "teams" }

type TeamMember struct {
	TeamID    uint   `json:"team_id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"primaryKey;size:255;index"`
}

func (TeamMember) TableName() string { return "team_members" }

type Subject struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"`
}

func (Subject) TableName() string { return "subjects" }

// TeacherSubject is the subject-eligibility set of a teacher.
type TeacherSubject struct {
	TeacherID string `json:"teacher_id" gorm:"primaryKey;size:255"`
	SubjectID uint   `json:"subject_id" gorm:"primaryKey;index"`
}

func (TeacherSubject) TableName() string { return "teacher_subjects" }

type Course struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	SubjectID   uint   `json:"subject_id" gorm:"not null;index"`
	TeacherID   string `json:"teacher_id" gorm:"not null;size:255;index"`
	Title       string `json:"title" gorm:"not null;size:200"`
	IsPublished bool   `json:"is_published" gorm:"default:false;index"`
}

func (Course) TableName() string { return "courses" }

type Chapter struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	CourseID uint   `json:"course_id" gorm:"not null;index"`
	Title    string `json:"title" gorm:"not null;size:200"`
}

func (Chapter) TableName() string { return "chapters" }

type Section struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ChapterID uint   `json:"chapter_id" gorm:"not null;index"`
	Title     string `json:"title" gorm:"not null;size:200"`
}

func (Section) TableName() string { return "sections" }

type CourseCompletion struct {
	StudentID  string    `json:"student_id" gorm:"primaryKey;size:255"`
	CourseID   uint      `json:"course_id" gorm:"primaryKey"`
	Percentage float64   `json:"percentage" gorm:"not null;default:0"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (CourseCompletion) TableName() string { return "course_completions" }

// ContentInfo is the resolved view of a course, chapter or section.
type ContentInfo struct {
	Kind      ContentKind `json:"kind"`
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	CourseID  uint        `json:"course_id"`
	SubjectID uint        `json:"subject_id"`
}
