package services

import (
	"context"
	"fmt"

	"contribot/internal/core"
	"contribot/internal/log"
)

// Store is the part of the record store the service writes through.
type Store interface {
	Insert(ctx context.Context, c core.Contribution) (core.Contribution, error)
	InsertAll(ctx context.Context, cs []core.Contribution) ([]core.Contribution, error)
}

// Publisher announces stored contributions to downstream consumers.
type Publisher interface {
	PublishContributionRecorded(ctx context.Context, id int64) error
	Close() error
}

// ContributionService saves contributions and publishes a mirror message
// for each stored record. Publishing never fails a save.
type ContributionService struct {
	store     Store
	publisher Publisher
	logger    *log.StructuredLogger
}

// NewContributionService accepts a nil publisher when AMQP is not configured.
func NewContributionService(store Store, publisher Publisher, logger *log.Logger) *ContributionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentContribution)
	}
	return &ContributionService{
		store:     store,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger),
	}
}

func (s *ContributionService) Insert(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	stored, err := s.store.Insert(ctx, c)
	if err != nil {
		return core.Contribution{}, err
	}
	s.recorded(ctx, stored)
	return stored, nil
}

func (s *ContributionService) InsertAll(ctx context.Context, cs []core.Contribution) ([]core.Contribution, error) {
	stored, err := s.store.InsertAll(ctx, cs)
	if err != nil {
		return nil, err
	}
	for _, c := range stored {
		s.recorded(ctx, c)
	}
	return stored, nil
}

func (s *ContributionService) recorded(ctx context.Context, c core.Contribution) {
	s.logger.LogContributionRecorded(ctx, c.UserID, c.ID, c.Year, string(c.Month), string(c.Category), c.Member(), c.Amount.String())

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishContributionRecorded(ctx, c.ID); err != nil {
		// The record is already committed locally.
		s.logger.LogError(ctx, "Failed to publish contribution message", err,
			log.ComponentAMQP, log.OpPublish, log.NewFields().WithContribution(c.ID, c.Year, string(c.Month), string(c.Category), c.Member(), c.Amount.String()))
	}
}

// Close releases the publisher. The store is owned by the caller.
func (s *ContributionService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close contribution service: %w", err)
	}
	return nil
}
