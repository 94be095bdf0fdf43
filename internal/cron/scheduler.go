package cron

import (
	"context"
	"log"

	"github.com/EmptySpace206/PHRatings/internal/service"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the expiry sweeps on a timer as a safety net. The flows
// already sweep lazily at every entry point, and sweeps are idempotent, so
// this job only keeps listings fresh on an otherwise idle server.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *service.Sweeper
}

func NewScheduler(sweeper *service.Sweeper) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.Default()))),
		sweeper: sweeper,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", s.runSweeps)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Sweep scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Sweep scheduler stopped")
}

func (s *Scheduler) runSweeps() {
	if err := s.sweeper.SweepAll(context.Background()); err != nil {
		log.Printf("Error running expiry sweeps: %v", err)
	}
}
