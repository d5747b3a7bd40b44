// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scheduler runs the periodic catalog re-index job.
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warnerco/schematica/internal/catalog"
)

// Scheduler periodically reloads the catalog file and re-ingests schematics
// whose content hash changed since they were last indexed. This keeps the
// memory backend and graph fresh when the catalog file is edited in place.
type Scheduler struct {
	ingestor    *catalog.Ingestor
	directory   *catalog.Directory
	catalogPath string
	interval    time.Duration
	stopChan    chan bool
	log         *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(ingestor *catalog.Ingestor, directory *catalog.Directory, catalogPath string, intervalMinutes int, log *logrus.Logger) *Scheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = 15
	}
	return &Scheduler{
		ingestor:    ingestor,
		directory:   directory,
		catalogPath: catalogPath,
		interval:    time.Duration(intervalMinutes) * time.Minute,
		stopChan:    make(chan bool),
		log:         log,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.refresh()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopChan <- true
}

// refresh re-ingests stale catalog entries
func (s *Scheduler) refresh() {
	schematics, err := catalog.Load(s.catalogPath)
	if err != nil {
		s.log.WithError(err).Warn("scheduler failed to load catalog")
		return
	}

	stale, err := s.ingestor.StaleSchematics(schematics)
	if err != nil {
		s.log.WithError(err).Warn("scheduler failed to check catalog staleness")
		return
	}
	if len(stale) == 0 {
		return
	}

	result, err := s.ingestor.IngestAll(context.Background(), stale)
	if err != nil {
		s.log.WithError(err).Warn("scheduler re-index failed")
		return
	}
	for _, sc := range stale {
		s.directory.Put(sc)
	}

	s.log.WithFields(logrus.Fields{
		"reindexed":     result.Indexed,
		"entities":      result.EntitiesAdded,
		"relationships": result.RelationshipsAdded,
	}).Info("catalog re-index complete")
}
