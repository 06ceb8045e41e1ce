package models

// ProgressSummary counts progress records of one assignment by status.
type ProgressSummary struct {
	Total      int `json:"total"`
	NotStarted int `json:"not_started"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Graded     int `json:"graded"`
}

func (s *ProgressSummary) Add(status ProgressStatus) {
	s.Total++
	switch status {
	case ProgressNotStarted:
		s.NotStarted++
	case ProgressInProgress:
		s.InProgress++
	case ProgressCompleted:
		s.Completed++
	case ProgressGraded:
		s.Graded++
	}
}

// All returns every model owned or read by the service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Subject{},
		&Course{},
		&Chapter{},
		&Section{},
		&Class{},
		&ClassMember{},
		&ClassTeacher{},
		&Team{},
		&TeamMember{},
		&TeacherSubject{},
		&CourseCompletion{},
		&Assignment{},
		&ProgressRecord{},
		&ScoreRecord{},
		&PersonalEvent{},
	}
}
