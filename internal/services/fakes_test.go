package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uintPtr(v uint) *uint { return &v }
func strPtr(v string) *string { return &v }
func floatPtr(v float64) *float64 { return &v }
func timePtr(v time.Time) *time.Time { return &v }

type progressKey struct {
	assignmentID uint
	studentID    string
}

// memStore is an in-memory stand-in for the database behind every repository
type memStore struct {
	mu     sync.Mutex
	nextID uint

	assignments map[uint]*models.Assignment
	progress    map[progressKey]*models.ProgressRecord
	scores      map[uint]*models.ScoreRecord
	events      map[uint]*models.PersonalEvent

	classes       map[uint]models.Class
	classMembers  []models.ClassMember
	classTeachers map[uint][]string
	teams         map[uint]models.Team
	teamMembers   map[uint][]string
	subjects      []models.Subject
	courses       map[uint]models.Course
	chapters      []models.Chapter
	sections      []models.Section
	completions   map[progressKey]float64
	eligibility   map[uint][]string

	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		nextID:        100,
		assignments:   map[uint]*models.Assignment{},
		progress:      map[progressKey]*models.ProgressRecord{},
		scores:        map[uint]*models.ScoreRecord{},
		events:        map[uint]*models.PersonalEvent{},
		classes:       map[uint]models.Class{},
		classTeachers: map[uint][]string{},
		teams:         map[uint]models.Team{},
		teamMembers:   map[uint][]string{},
		courses:       map[uint]models.Course{},
		completions:   map[progressKey]float64{},
		eligibility:   map[uint][]string{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) addMember(classID uint, studentID string, joined time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classMembers = append(s.classMembers, models.ClassMember{ClassID: classID, StudentID: studentID, JoinedAt: joined})
}

func (s *memStore) progressOf(assignmentID uint) map[string]models.ProgressStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]models.ProgressStatus{}
	for k, r := range s.progress {
		if k.assignmentID == assignmentID {
			out[k.studentID] = r.Status
		}
	}
	return out
}

func (s *memStore) assignmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assignments)
}

// ===== REPOSITORY AGGREGATE =====

type memRepo struct {
	store  *memStore
	roster repositories.RosterProvider
}

func newMemRepo() *memRepo {
	store := newMemStore()
	return &memRepo{store: store, roster: &memRoster{store}}
}

func (r *memRepo) Assignment() repositories.AssignmentRepository       { return &memAssignments{r.store} }
func (r *memRepo) Progress() repositories.ProgressRepository           { return &memProgress{r.store} }
func (r *memRepo) Score() repositories.ScoreRepository                 { return &memScores{r.store} }
func (r *memRepo) PersonalEvent() repositories.PersonalEventRepository { return &memEvents{r.store} }
func (r *memRepo) Roster() repositories.RosterProvider                 { return r.roster }
func (r *memRepo) Content() repositories.ContentProvider               { return &memContent{r.store} }
func (r *memRepo) Teacher() repositories.TeacherEligibility            { return &memTeachers{r.store} }

// Transaction restores assignments and progress when fn fails
func (r *memRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.store.mu.Lock()
	assignments := make(map[uint]*models.Assignment, len(r.store.assignments))
	for k, v := range r.store.assignments {
		assignments[k] = v
	}
	progress := make(map[progressKey]*models.ProgressRecord, len(r.store.progress))
	for k, v := range r.store.progress {
		progress[k] = v
	}
	r.store.mu.Unlock()

	if err := fn(nil); err != nil {
		r.store.mu.Lock()
		r.store.assignments = assignments
		r.store.progress = progress
		r.store.mu.Unlock()
		return err
	}
	return nil
}

// ===== ASSIGNMENTS =====

type memAssignments struct{ s *memStore }

func (m *memAssignments) Create(ctx context.Context, tx *gorm.DB, a *models.Assignment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if a.Synthetic {
		for _, existing := range m.s.assignments {
			if existing.Synthetic && sameUint(existing.CourseID, a.CourseID) && sameUint(existing.ClassID, a.ClassID) {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	a.ID = m.s.id()
	stored := *a
	m.s.assignments[a.ID] = &stored
	return nil
}

func (m *memAssignments) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *a
	return &out, nil
}

func (m *memAssignments) List(ctx context.Context, tx *gorm.DB, f repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	var out []*models.Assignment
	for _, a := range m.sorted() {
		if f.TeacherID != nil && a.TeacherID != *f.TeacherID {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (m *memAssignments) ListForReconciliation(ctx context.Context, tx *gorm.DB, scope repositories.ReconcileScope) ([]*models.Assignment, error) {
	var out []*models.Assignment
	for _, a := range m.sorted() {
		if scope.AssignmentID != nil && a.ID != *scope.AssignmentID {
			continue
		}
		if scope.ClassID != nil && !sameUint(a.ClassID, scope.ClassID) {
			continue
		}
		if scope.TeacherID != nil && a.TeacherID != *scope.TeacherID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memAssignments) ListForLearner(ctx context.Context, tx *gorm.DB, learnerID string, classIDs, teamIDs []uint) ([]*models.Assignment, error) {
	var out []*models.Assignment
	for _, a := range m.sorted() {
		switch a.TargetType {
		case models.TargetStudent:
			if a.StudentID != nil && *a.StudentID == learnerID {
				out = append(out, a)
			}
		case models.TargetClass:
			if a.ClassID != nil && containsUint(classIDs, *a.ClassID) {
				out = append(out, a)
			}
		case models.TargetTeam:
			if a.HasExplicitMembers() {
				if containsStr(a.MemberIDs, learnerID) {
					out = append(out, a)
				}
			} else if a.TeamID != nil && containsUint(teamIDs, *a.TeamID) {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (m *memAssignments) FindClassAssignmentForCourse(ctx context.Context, tx *gorm.DB, courseID, classID uint) (*models.Assignment, error) {
	for _, a := range m.sorted() {
		if a.TargetType != models.TargetClass || !sameUint(a.ClassID, &classID) {
			continue
		}
		if sameUint(a.RootCourseID, &courseID) || sameUint(a.CourseID, &courseID) {
			return a, nil
		}
	}
	return nil, nil
}

func (m *memAssignments) DeleteCascade(ctx context.Context, tx *gorm.DB, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	doomed := map[uint]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, a := range m.s.assignments {
			if a.ParentID != nil && doomed[*a.ParentID] && !doomed[a.ID] {
				doomed[a.ID] = true
				changed = true
			}
		}
	}
	for k := range m.s.progress {
		if doomed[k.assignmentID] {
			delete(m.s.progress, k)
		}
	}
	for aid := range doomed {
		delete(m.s.assignments, aid)
	}
	return nil
}

func (m *memAssignments) sorted() []*models.Assignment {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*models.Assignment, 0, len(m.s.assignments))
	for _, a := range m.s.assignments {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ===== PROGRESS =====

type memProgress struct{ s *memStore }

func (m *memProgress) InsertMissing(ctx context.Context, tx *gorm.DB, records []*models.ProgressRecord) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.insertErr != nil {
		return 0, m.s.insertErr
	}
	var n int64
	for _, r := range records {
		k := progressKey{r.AssignmentID, r.StudentID}
		if _, exists := m.s.progress[k]; exists {
			continue
		}
		r.ID = m.s.id()
		cp := *r
		m.s.progress[k] = &cp
		n++
	}
	return n, nil
}

func (m *memProgress) ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]*models.ProgressRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.ProgressRecord
	for k, r := range m.s.progress {
		if k.assignmentID == assignmentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (m *memProgress) StudentIDsByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]string, error) {
	records, _ := m.ListByAssignment(ctx, tx, assignmentID)
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.StudentID)
	}
	return ids, nil
}

func (m *memProgress) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, assignmentIDs []uint) ([]*models.ProgressRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.ProgressRecord
	for k, r := range m.s.progress {
		if k.studentID == studentID && containsUint(assignmentIDs, k.assignmentID) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memProgress) UpdateStatus(ctx context.Context, tx *gorm.DB, assignmentID uint, studentID string, status models.ProgressStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.progress[progressKey{assignmentID, studentID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.Status = status
	return nil
}

func (m *memProgress) Summary(ctx context.Context, tx *gorm.DB, assignmentID uint) (*models.ProgressSummary, error) {
	records, _ := m.ListByAssignment(ctx, tx, assignmentID)
	var s models.ProgressSummary
	for _, r := range records {
		s.Add(r.Status)
	}
	return &s, nil
}

// ===== SCORES =====

type memScores struct{ s *memStore }

func (m *memScores) Upsert(ctx context.Context, tx *gorm.DB, rec *models.ScoreRecord) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, existing := range m.s.scores {
		if existing.StudentID == rec.StudentID && existing.CourseID == rec.CourseID {
			rec.ID = id
			cp := *rec
			m.s.scores[id] = &cp
			return nil
		}
	}
	rec.ID = m.s.id()
	cp := *rec
	m.s.scores[rec.ID] = &cp
	return nil
}

func (m *memScores) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ScoreRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rec, ok := m.s.scores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memScores) GetByStudentCourse(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.ScoreRecord, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, rec := range m.s.scores {
		if rec.StudentID == studentID && rec.CourseID == courseID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memScores) List(ctx context.Context, tx *gorm.DB, f repositories.ScoreFilters) ([]*models.ScoreRecord, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.ScoreRecord
	for _, rec := range m.s.scores {
		if f.CourseID != nil && rec.CourseID != *f.CourseID {
			continue
		}
		if f.StudentID != nil && rec.StudentID != *f.StudentID {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *memScores) ListByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.ScoreRecord, error) {
	all, _, _ := m.List(ctx, tx, repositories.ScoreFilters{})
	var out []*models.ScoreRecord
	for _, rec := range all {
		if containsUint(ids, rec.ID) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ===== PERSONAL EVENTS =====

type memEvents struct{ s *memStore }

func (m *memEvents) Create(ctx context.Context, tx *gorm.DB, e *models.PersonalEvent) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e.ID = m.s.id()
	cp := *e
	m.s.events[e.ID] = &cp
	return nil
}

func (m *memEvents) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PersonalEvent, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEvents) Update(ctx context.Context, tx *gorm.DB, e *models.PersonalEvent) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *e
	m.s.events[e.ID] = &cp
	return nil
}

func (m *memEvents) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.events, id)
	return nil
}

func (m *memEvents) EventsOwnedBy(ctx context.Context, tx *gorm.DB, ownerID string, from, to *time.Time) ([]*models.PersonalEvent, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*models.PersonalEvent
	for _, e := range m.s.events {
		if e.OwnerID != ownerID {
			continue
		}
		if from != nil && e.EndAt.Before(*from) {
			continue
		}
		if to != nil && e.StartAt.After(*to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== ROSTER =====

type memRoster struct{ s *memStore }

func (m *memRoster) MembersOfClass(ctx context.Context, classID uint) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var ids []string
	for _, cm := range m.s.classMembers {
		if cm.ClassID == classID {
			ids = append(ids, cm.StudentID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memRoster) MembersOfTeam(ctx context.Context, teamID uint) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]string(nil), m.s.teamMembers[teamID]...), nil
}

func (m *memRoster) ClassesOfStudent(ctx context.Context, studentID string) ([]models.ClassMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.ClassMember
	for _, cm := range m.s.classMembers {
		if cm.StudentID == studentID {
			out = append(out, cm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.After(out[j].JoinedAt) })
	return out, nil
}

func (m *memRoster) TeamsOfStudent(ctx context.Context, studentID string) ([]uint, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var ids []uint
	for teamID, members := range m.s.teamMembers {
		if containsStr(members, studentID) {
			ids = append(ids, teamID)
		}
	}
	return ids, nil
}

func (m *memRoster) TeachersOfClasses(ctx context.Context, classIDs []uint) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var ids []string
	for _, classID := range classIDs {
		ids = append(ids, m.s.classTeachers[classID]...)
	}
	return uniqueIDs(ids), nil
}

func (m *memRoster) GetClass(ctx context.Context, id uint) (*models.Class, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.classes[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memRoster) GetTeam(ctx context.Context, id uint) (*models.Team, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.teams[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memRoster) GetClasses(ctx context.Context, ids []uint) ([]models.Class, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Class
	for _, id := range ids {
		if c, ok := m.s.classes[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memRoster) ListClasses(ctx context.Context) ([]models.Class, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Class
	for _, c := range m.s.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== CONTENT =====

type memContent struct{ s *memStore }

func (m *memContent) ResolveContent(ctx context.Context, kind models.ContentKind, id uint) (*models.ContentInfo, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	courseInfo := func(courseID uint, title string) *models.ContentInfo {
		c, ok := m.s.courses[courseID]
		if !ok {
			return nil
		}
		if title == "" {
			title = c.Title
		}
		return &models.ContentInfo{Kind: kind, ID: id, Title: title, CourseID: c.ID, SubjectID: c.SubjectID}
	}
	chapterByID := func(chapterID uint) *models.Chapter {
		for i := range m.s.chapters {
			if m.s.chapters[i].ID == chapterID {
				return &m.s.chapters[i]
			}
		}
		return nil
	}

	switch kind {
	case models.ContentCourse:
		return courseInfo(id, ""), nil
	case models.ContentChapter:
		if ch := chapterByID(id); ch != nil {
			return courseInfo(ch.CourseID, ch.Title), nil
		}
	case models.ContentSection:
		for _, sec := range m.s.sections {
			if sec.ID == id {
				if ch := chapterByID(sec.ChapterID); ch != nil {
					return courseInfo(ch.CourseID, sec.Title), nil
				}
			}
		}
	}
	return nil, nil
}

func (m *memContent) ContentExists(ctx context.Context, kind models.ContentKind, id uint) (bool, error) {
	info, err := m.ResolveContent(ctx, kind, id)
	return info != nil, err
}

func (m *memContent) PublishedCoursesTaughtBy(ctx context.Context, teacherIDs []string) ([]models.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Course
	for _, c := range m.s.courses {
		if c.IsPublished && containsStr(teacherIDs, c.TeacherID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memContent) CourseCompletionPercentage(ctx context.Context, learnerID string, courseID uint) (float64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.completions[progressKey{courseID, learnerID}], nil
}

func (m *memContent) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.courses[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memContent) ListSubjects(ctx context.Context, teacherIDs []string) ([]models.Subject, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Subject
	for _, sub := range m.s.subjects {
		if len(teacherIDs) > 0 && !anyIn(m.s.eligibility[sub.ID], teacherIDs) {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

func (m *memContent) ListCourses(ctx context.Context, subjectIDs []uint, teacherIDs []string) ([]models.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Course
	for _, c := range m.s.courses {
		if len(subjectIDs) > 0 && !containsUint(subjectIDs, c.SubjectID) {
			continue
		}
		if len(teacherIDs) > 0 && !containsStr(teacherIDs, c.TeacherID) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memContent) ListChapters(ctx context.Context, courseIDs []uint) ([]models.Chapter, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Chapter
	for _, ch := range m.s.chapters {
		if containsUint(courseIDs, ch.CourseID) {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (m *memContent) ListSections(ctx context.Context, chapterIDs []uint) ([]models.Section, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Section
	for _, sec := range m.s.sections {
		if containsUint(chapterIDs, sec.ChapterID) {
			out = append(out, sec)
		}
	}
	return out, nil
}

// ===== TEACHERS =====

type memTeachers struct{ s *memStore }

func (m *memTeachers) TeachersEligibleForSubject(ctx context.Context, subjectID uint) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([]string(nil), m.s.eligibility[subjectID]...), nil
}

func (m *memTeachers) ListTeachers(ctx context.Context) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var ids []string
	for _, teachers := range m.s.eligibility {
		ids = append(ids, teachers...)
	}
	ids = uniqueIDs(ids)
	sort.Strings(ids)
	return ids, nil
}

// ===== MOCK ROSTER =====

// MockRoster injects collaborator failures
type MockRoster struct {
	mock.Mock
	repositories.RosterProvider
}

func (m *MockRoster) MembersOfClass(ctx context.Context, classID uint) ([]string, error) {
	args := m.Called(ctx, classID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// ===== HELPERS =====

func sameUint(a, b *uint) bool {
	return a != nil && b != nil && *a == *b
}

func containsUint(values []uint, v uint) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func containsStr(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func anyIn(values, candidates []string) bool {
	for _, v := range values {
		if containsStr(candidates, v) {
			return true
		}
	}
	return false
}
