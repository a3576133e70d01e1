// Package journal records provisioning runs in a local sqlite database so
// operators can see what happened to each instance after the fact.
package journal

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Run is one provisioning attempt for one instance.
type Run struct {
	ID         string `gorm:"primaryKey"`
	Instance   string `gorm:"index"`
	State      string
	Step       string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

type Store struct {
	db *gorm.DB
}

func NewStore(path string) (*Store, error) {
	quiet := gormlogger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		gormlogger.Config{
			IgnoreRecordNotFoundError: true,
			LogLevel:                  gormlogger.Error,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: quiet})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Begin opens a run record for an instance.
func (s *Store) Begin(instanceName string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Instance:  instanceName,
		State:     "provisioning",
		StartedAt: time.Now(),
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// SetStep records the step an instance's run just entered.
func (s *Store) SetStep(run *Run, step string) error {
	run.Step = step
	return s.db.Model(&Run{}).Where("id = ?", run.ID).Update("step", step).Error
}

// Finish closes a run with a terminal state. Only the error text is
// recorded, never any secret material.
func (s *Store) Finish(run *Run, state string, runErr error) error {
	run.State = state
	run.FinishedAt = time.Now()
	updates := map[string]interface{}{
		"state":       state,
		"finished_at": run.FinishedAt,
	}
	if runErr != nil {
		updates["error"] = runErr.Error()
	}
	return s.db.Model(&Run{}).Where("id = ?", run.ID).Updates(updates).Error
}

// Latest returns the most recent run for an instance, or nil when the
// instance has never been provisioned.
func (s *Store) Latest(instanceName string) (*Run, error) {
	var run Run
	err := s.db.Where("instance = ?", instanceName).
		Order("started_at desc").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
