// Package store holds the domain state stores. Each store keeps its
// collection in memory, mutates it synchronously under a lock, and then
// enqueues an asynchronous persistence write. A failed write is surfaced on
// the store's error channel and logged; the in-memory state stays
// authoritative for the session.
package store

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// saver serializes persistence writes for one store. Jobs run strictly in
// enqueue order, so the last snapshot written is always the newest.
type saver struct {
	name string
	log  *zap.Logger

	jobs chan func() error
	errs chan error
	done chan struct{}
	once sync.Once
}

func newSaver(name string, log *zap.Logger) *saver {
	s := &saver{
		name: name,
		log:  log,
		jobs: make(chan func() error, 64),
		errs: make(chan error, 16),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *saver) run() {
	defer close(s.done)
	for job := range s.jobs {
		if err := job(); err != nil {
			s.log.Warn("state persistence failed, in-memory state remains authoritative",
				zap.String("store", s.name), zap.Error(err))
			select {
			case s.errs <- fmt.Errorf("%w: %s: %w", ErrPersistenceWrite, s.name, err):
			default:
			}
		}
	}
}

// enqueue schedules a persistence write. Blocks only when the queue is
// saturated, preserving write order.
func (s *saver) enqueue(job func() error) {
	s.jobs <- job
}

// errs exposes persistence failures callers may optionally drain.
func (s *saver) errors() <-chan error {
	return s.errs
}

// close drains the queue and stops the worker. Safe to call twice.
func (s *saver) close() {
	s.once.Do(func() {
		close(s.jobs)
	})
	<-s.done
}
