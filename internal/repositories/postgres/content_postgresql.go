package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

type ContentPostgreSQL struct {
	db *gorm.DB
}

func NewContentPostgreSQL(db *gorm.DB) repositories.ContentProvider {
	return &ContentPostgreSQL{db: db}
}

// ResolveContent walks section -> chapter -> course so every kind reports
// the course and subject it belongs to.
func (c *ContentPostgreSQL) ResolveContent(ctx context.Context, kind models.ContentKind, id uint) (*models.ContentInfo, error) {
	db := c.db.WithContext(ctx)
	var row struct {
		Title     string
		CourseID  uint
		SubjectID uint
	}

	var query *gorm.DB
	switch kind {
	case models.ContentCourse:
		query = db.Table("courses").
			Select("courses.title AS title, courses.id AS course_id, courses.subject_id AS subject_id").
			Where("courses.id = ?", id)
	case models.ContentChapter:
		query = db.Table("chapters").
			Select("chapters.title AS title, courses.id AS course_id, courses.subject_id AS subject_id").
			Joins("JOIN courses ON courses.id = chapters.course_id").
			Where("chapters.id = ?", id)
	case models.ContentSection:
		query = db.Table("sections").
			Select("sections.title AS title, courses.id AS course_id, courses.subject_id AS subject_id").
			Joins("JOIN chapters ON chapters.id = sections.chapter_id").
			Joins("JOIN courses ON courses.id = chapters.course_id").
			Where("sections.id = ?", id)
	default:
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}

	res := query.Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return &models.ContentInfo{
		Kind:      kind,
		ID:        id,
		Title:     row.Title,
		CourseID:  row.CourseID,
		SubjectID: row.SubjectID,
	}, nil
}

func (c *ContentPostgreSQL) ContentExists(ctx context.Context, kind models.ContentKind, id uint) (bool, error) {
	info, err := c.ResolveContent(ctx, kind, id)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

func (c *ContentPostgreSQL) PublishedCoursesTaughtBy(ctx context.Context, teacherIDs []string) ([]models.Course, error) {
	if len(teacherIDs) == 0 {
		return nil, nil
	}

	var courses []models.Course
	err := c.db.WithContext(ctx).
		Where("is_published = ? AND teacher_id IN ?", true, teacherIDs).
		Order("id ASC").
		Find(&courses).Error
	return courses, err
}

func (c *ContentPostgreSQL) CourseCompletionPercentage(ctx context.Context, learnerID string, courseID uint) (float64, error) {
	var pct []float64
	err := c.db.WithContext(ctx).
		Model(&models.CourseCompletion{}).
		Where("student_id = ? AND course_id = ?", learnerID, courseID).
		Limit(1).
		Pluck("percentage", &pct).Error
	if err != nil {
		return 0, err
	}
	if len(pct) == 0 {
		return 0, nil
	}
	return pct[0], nil
}

func (c *ContentPostgreSQL) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var courses []models.Course
	if err := c.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&courses).Error; err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, nil
	}
	return &courses[0], nil
}

func (c *ContentPostgreSQL) ListSubjects(ctx context.Context, teacherIDs []string) ([]models.Subject, error) {
	query := c.db.WithContext(ctx).Model(&models.Subject{})
	if len(teacherIDs) > 0 {
		query = query.Where("id IN (?)",
			c.db.Model(&models.TeacherSubject{}).Select("subject_id").Where("teacher_id IN ?", teacherIDs))
	}

	var subjects []models.Subject
	err := query.Order("name ASC").Find(&subjects).Error
	return subjects, err
}

func (c *ContentPostgreSQL) ListCourses(ctx context.Context, subjectIDs []uint, teacherIDs []string) ([]models.Course, error) {
	query := c.db.WithContext(ctx).Model(&models.Course{})
	if len(subjectIDs) > 0 {
		query = query.Where("subject_id IN ?", subjectIDs)
	}
	if len(teacherIDs) > 0 {
		query = query.Where("teacher_id IN ?", teacherIDs)
	}

	var courses []models.Course
	err := query.Order("title ASC").Find(&courses).Error
	return courses, err
}

func (c *ContentPostgreSQL) ListChapters(ctx context.Context, courseIDs []uint) ([]models.Chapter, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	var chapters []models.Chapter
	err := c.db.WithContext(ctx).Where("course_id IN ?", courseIDs).Order("id ASC").Find(&chapters).Error
	return chapters, err
}

func (c *ContentPostgreSQL) ListSections(ctx context.Context, chapterIDs []uint) ([]models.Section, error) {
	if len(chapterIDs) == 0 {
		return nil, nil
	}

	var sections []models.Section
	err := c.db.WithContext(ctx).Where("chapter_id IN ?", chapterIDs).Order("id ASC").Find(&sections).Error
	return sections, err
}

type TeacherPostgreSQL struct {
	db *gorm.DB
}

func NewTeacherPostgreSQL(db *gorm.DB) repositories.TeacherEligibility {
	return &TeacherPostgreSQL{db: db}
}

func (t *TeacherPostgreSQL) TeachersEligibleForSubject(ctx context.Context, subjectID uint) ([]string, error) {
	var ids []string
	err := t.db.WithContext(ctx).
		Model(&models.TeacherSubject{}).
		Where("subject_id = ?", subjectID).
		Order("teacher_id ASC").
		Pluck("teacher_id", &ids).Error
	return ids, err
}

func (t *TeacherPostgreSQL) ListTeachers(ctx context.Context) ([]string, error) {
	var ids []string
	err := t.db.WithContext(ctx).
		Model(&models.TeacherSubject{}).
		Distinct("teacher_id").
		Order("teacher_id ASC").
		Pluck("teacher_id", &ids).Error
	return ids, err
}
