package bootstrap

import (
	"course_gen_backend/platform/database"
	"course_gen_backend/repository"
)

type Repositories struct {
	RunRepository repository.RunRepository
}

// NewRepositories returns an empty set when db is nil.
func NewRepositories(db *database.DB) *Repositories {
	if db == nil {
		return &Repositories{}
	}
	return &Repositories{
		RunRepository: repository.NewRunRepository(db.GetDatabase()),
	}
}
