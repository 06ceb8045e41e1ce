package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/cascade"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

// Predefined filter hierarchies
const (
	HierarchyContent = "content" // subject -> course -> chapter -> section
	HierarchyTeacher = "teacher" // teacher -> subject -> course
	HierarchyRoster  = "roster"  // class -> student
)

type filterService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
	ttl    time.Duration
}

func NewFilterService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, ttl time.Duration) FilterService {
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}
	if ttl <= 0 {
		ttl = defaultFilterCacheTTL
	}
	return &filterService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
		ttl:    ttl,
	}
}

func (s *filterService) Hierarchies() []string {
	return []string{HierarchyContent, HierarchyTeacher, HierarchyRoster}
}

// Resolve computes every level of the hierarchy top-down from the given
// selections, pruning selections that are no longer offered.
func (s *filterService) Resolve(ctx context.Context, hierarchy string, req *FilterResolveRequest) (*FilterResolveResponse, error) {
	levels, err := s.levels(hierarchy)
	if err != nil {
		return nil, err
	}

	known := make(map[string]int, len(levels))
	for i, l := range levels {
		known[l.Name] = i
	}
	selections := make([][]string, len(levels))
	var errs ValidationErrors
	for name, values := range req.Selections {
		i, ok := known[name]
		if !ok {
			errs = append(errs, *NewValidationError("selections."+name, "unknown level for hierarchy "+hierarchy, values))
			continue
		}
		selections[i] = values
	}
	if len(errs) > 0 {
		return nil, errs
	}

	states, err := cascade.Resolve(ctx, levels, selections)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s filters: %w", hierarchy, err)
	}
	return &FilterResolveResponse{Hierarchy: hierarchy, Levels: states}, nil
}

func (s *filterService) levels(hierarchy string) ([]cascade.Level, error) {
	switch hierarchy {
	case HierarchyContent:
		return []cascade.Level{
			s.level(hierarchy, "subject", s.subjectOptions(-1)),
			s.level(hierarchy, "course", s.courseOptions(0, -1)),
			s.level(hierarchy, "chapter", s.chapterOptions),
			s.level(hierarchy, "section", s.sectionOptions),
		}, nil
	case HierarchyTeacher:
		return []cascade.Level{
			s.level(hierarchy, "teacher", s.teacherOptions),
			s.level(hierarchy, "subject", s.subjectOptions(0)),
			s.level(hierarchy, "course", s.courseOptions(1, 0)),
		}, nil
	case HierarchyRoster:
		return []cascade.Level{
			{Name: "class", Fetch: s.classOptions},
			{Name: "student", Fetch: s.studentOptions},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownHierarchy, hierarchy)
}

// Invalidate drops the memoized option sets of hierarchy, or of every
// hierarchy when it is empty.
func (s *filterService) Invalidate(ctx context.Context, hierarchy string) error {
	pattern := "*"
	if hierarchy != "" {
		if _, err := s.levels(hierarchy); err != nil {
			return err
		}
		pattern = hierarchy + ":*"
	}
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate %q filter options: %w", pattern, err)
	}
	s.logger.InfoContext(ctx, "Filter options invalidated", "pattern", pattern)
	return nil
}

// level memoizes the option set of a catalog level per parent-selection key.
// Roster levels are read live since memberships change outside this service.
func (s *filterService) level(hierarchy, name string, fetch cascade.FetchFunc) cascade.Level {
	return cascade.Level{
		Name: name,
		Fetch: func(ctx context.Context, parents [][]string) ([]cascade.Option, error) {
			key := fmt.Sprintf("%s:%s:%s", hierarchy, name, cascade.SelectionKey(parents))
			var options []cascade.Option
			err := s.cache.CacheOrExecute(ctx, key, &options, s.ttl, func() (interface{}, error) {
				return fetch(ctx, parents)
			})
			return options, err
		},
	}
}

// ===== LEVEL FETCHERS =====

// subjectOptions narrows subjects by the teacher level at teacherLevel, -1 for none
func (s *filterService) subjectOptions(teacherLevel int) cascade.FetchFunc {
	return func(ctx context.Context, parents [][]string) ([]cascade.Option, error) {
		teachers := selectionAt(parents, teacherLevel)
		subjects, err := s.repo.Content().ListSubjects(ctx, teachers)
		if err != nil {
			return nil, err
		}
		options := make([]cascade.Option, 0, len(subjects))
		for _, sub := range subjects {
			options = append(options, cascade.Option{Value: formatID(sub.ID), Label: sub.Name})
		}
		return options, nil
	}
}

// courseOptions narrows courses by the subject and teacher levels; an empty
// parent selection does not restrict
func (s *filterService) courseOptions(subjectLevel, teacherLevel int) cascade.FetchFunc {
	return func(ctx context.Context, parents [][]string) ([]cascade.Option, error) {
		subjectIDs := parseIDs(selectionAt(parents, subjectLevel))
		teachers := selectionAt(parents, teacherLevel)
		courses, err := s.repo.Content().ListCourses(ctx, subjectIDs, teachers)
		if err != nil {
			return nil, err
		}
		options := make([]cascade.Option, 0, len(courses))
		for _, c := range courses {
			options = append(options, cascade.Option{Value: formatID(c.ID), Label: c.Title})
		}
		return options, nil
	}
}

// chapterOptions lists chapters of the selected courses; nothing until a course is chosen
func (s *filterService) chapterOptions(ctx context.Context, parents [][]string) ([]cascade.Option, error) {
	chapters, err := s.repo.Content().ListChapters(ctx, parseIDs(selectionAt(parents, 1)))
	if err != nil {
		return nil, err
	}
	options := make([]cascade.Option, 0, len(chapters))
	for _, ch := range chapters {
		options = append(options, cascade.Option{Value: formatID(ch.ID), Label: ch.Title})
	}
	return options, nil
}

func (s *filterService) sectionOptions(ctx context.Context, parents [][]string) ([]cascade.Option, error) {
	sections, err := s.repo.Content().ListSections(ctx, parseIDs(selectionAt(parents, 2)))
	if err != nil {
		return nil, err
	}
	options := make([]cascade.Option, 0, len(sections))
	for _, sec := range sections {
		options = append(options, cascade.Option{Value: formatID(sec.ID), Label: sec.Title})
	}
	return options, nil
}

func (s *filterService) teacherOptions(ctx context.Context, _ [][]string) ([]cascade.Option, error) {
	teachers, err := s.repo.Teacher().ListTeachers(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]cascade.Option, 0, len(teachers))
	for _, t := range teachers {
		options = append(options, cascade.Option{Value: t, Label: t})
	}
	return options, nil
}

func (s *filterService) classOptions(ctx context.Context, _ [][]string) ([]cascade.Option, error) {
	classes, err := s.repo.Roster().ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]cascade.Option, 0, len(classes))
	for _, c := range classes {
		options = append(options, cascade.Option{Value: formatID(c.ID), Label: c.Name})
	}
	return options, nil
}

// studentOptions is the union of the selected classes' rosters
func (s *filterService) studentOptions(ctx context.Context, parents [][]string) ([]cascade.Option, error) {
	var students []string
	for _, classID := range parseIDs(selectionAt(parents, 0)) {
		members, err := s.repo.Roster().MembersOfClass(ctx, classID)
		if err != nil {
			return nil, err
		}
		students = append(students, members...)
	}
	students = uniqueIDs(students)
	sort.Strings(students)

	options := make([]cascade.Option, 0, len(students))
	for _, id := range students {
		options = append(options, cascade.Option{Value: id, Label: id})
	}
	return options, nil
}

func selectionAt(parents [][]string, level int) []string {
	if level < 0 || level >= len(parents) {
		return nil
	}
	return parents[level]
}

// parseIDs drops values that are not ids; pruning already removed them upstream
func parseIDs(values []string) []uint {
	ids := make([]uint, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
