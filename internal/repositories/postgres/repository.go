package postgres

import (
	"context"

	"github.com/SAP-F-2025/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db            *gorm.DB
	assignment    repositories.AssignmentRepository
	progress      repositories.ProgressRepository
	score         repositories.ScoreRepository
	personalEvent repositories.PersonalEventRepository
	roster        repositories.RosterProvider
	content       repositories.ContentProvider
	teacher       repositories.TeacherEligibility
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:            db,
		assignment:    NewAssignmentPostgreSQL(db),
		progress:      NewProgressPostgreSQL(db),
		score:         NewScorePostgreSQL(db),
		personalEvent: NewPersonalEventPostgreSQL(db),
		roster:        NewRosterPostgreSQL(db),
		content:       NewContentPostgreSQL(db),
		teacher:       NewTeacherPostgreSQL(db),
	}
}

func (r *Repository) Assignment() repositories.AssignmentRepository       { return r.assignment }
func (r *Repository) Progress() repositories.ProgressRepository           { return r.progress }
func (r *Repository) Score() repositories.ScoreRepository                 { return r.score }
func (r *Repository) PersonalEvent() repositories.PersonalEventRepository { return r.personalEvent }
func (r *Repository) Roster() repositories.RosterProvider                 { return r.roster }
func (r *Repository) Content() repositories.ContentProvider               { return r.content }
func (r *Repository) Teacher() repositories.TeacherEligibility            { return r.teacher }

func (r *Repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// isPostgres reports whether db talks to Postgres; a few queries use jsonb
// operators there and a JSON1 fallback elsewhere.
func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
