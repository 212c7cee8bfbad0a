package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/pagegen/internal/domain"
	"storefront/pagegen/internal/domain/task"
	"storefront/pagegen/internal/metrics"
	"storefront/pagegen/internal/provider"
	"storefront/pagegen/internal/queue"
	"storefront/pagegen/internal/repository"
	"storefront/pagegen/internal/route"
	"storefront/pagegen/internal/state"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNoBuild = errors.New("no build published")

	// errPoisonMessage marks messages that can never be processed
	errPoisonMessage = errors.New("poison message")
)

type Service struct {
	storeID      string
	provider     provider.StaticPathProvider
	queue        queue.Queue
	repository   repository.PageRepository
	stateManager state.StateManager
	metrics      *metrics.Metrics
	routeOptions route.Options
	minIdleTime  time.Duration
	newBuildID   func() string
	now          func() time.Time
}

func NewService(
	storeID string,
	provider provider.StaticPathProvider,
	queue queue.Queue,
	repository repository.PageRepository,
	stateManager state.StateManager,
	metrics *metrics.Metrics,
	routeOptions route.Options,
	minIdleTime int,
) *Service {
	if minIdleTime <= 0 {
		minIdleTime = 120
	}

	return &Service{
		storeID:      storeID,
		provider:     provider,
		queue:        queue,
		repository:   repository,
		stateManager: stateManager,
		metrics:      metrics,
		routeOptions: routeOptions,
		minIdleTime:  time.Duration(minIdleTime) * time.Second,
		newBuildID:   func() string { return ulid.Make().String() },
		now:          time.Now,
	}
}

// Registration fetches the static paths once and turns them into pages and
// redirects. Skipped paths are only reported when skip_unroutable is on.
func (s *Service) Registration(ctx context.Context) (*domain.Registration, []string, error) {
	log.Infof("🔄 Fetching static paths for store %s", s.storeID)

	paths, err := s.provider.GetStaticPaths(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get static paths: %w", err)
	}
	log.Infof("📄 Got %d static paths", len(paths))

	registration, skipped, err := route.Register(paths, s.routeOptions)
	if err != nil {
		return nil, nil, err
	}

	if len(skipped) > 0 {
		s.metrics.UnroutablePaths(len(skipped))
		log.Warnf("⚠️ Skipped %d unroutable paths", len(skipped))
	}

	return registration, skipped, nil
}

// Build runs one registration pass and publishes every page and redirect for
// the workers to persist
func (s *Service) Build(ctx context.Context) (*domain.BuildInfo, error) {
	registration, skipped, err := s.Registration(ctx)
	if err != nil {
		return nil, err
	}

	buildID := s.newBuildID()
	log.Infof("🏗️ Publishing build %s: %d pages, %d redirects",
		buildID, len(registration.Pages), len(registration.Redirects))

	for _, page := range registration.Pages {
		_, err := s.queue.AddTask(ctx, &task.PageTask{
			StoreID: s.storeID,
			BuildID: buildID,
			Page:    page,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to publish page %s: %w", page.Path, err)
		}
		s.metrics.PageRegistered(page.Template.String())
	}

	for _, redirect := range registration.Redirects {
		_, err := s.queue.AddTask(ctx, &task.RedirectTask{
			StoreID:  s.storeID,
			BuildID:  buildID,
			Redirect: redirect,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to publish redirect %s: %w", redirect.FromPath, err)
		}
	}

	info := &domain.BuildInfo{
		BuildID:      buildID,
		StoreID:      s.storeID,
		StaticPaths:  len(registration.StaticPages()),
		Pages:        len(registration.Pages),
		Redirects:    len(registration.Redirects),
		SkippedPaths: skipped,
		CompletedAt:  s.now().UTC(),
	}

	if err := s.stateManager.SetLastBuild(ctx, info); err != nil {
		return nil, err
	}

	log.Infof("✅ Build %s published", buildID)
	return info, nil
}

// LastBuild returns the summary of the last published build, or nil
func (s *Service) LastBuild(ctx context.Context) (*domain.BuildInfo, error) {
	return s.stateManager.GetLastBuild(ctx, s.storeID)
}

// PublishedRegistration loads what the workers persisted for the last build.
// Pages of earlier builds that the last sitemap dropped are not included.
func (s *Service) PublishedRegistration(ctx context.Context) (*domain.Registration, error) {
	last, err := s.LastBuild(ctx)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("%w: store %s", ErrNoBuild, s.storeID)
	}

	log.Infof("🏷️ Loading build %s completed at %s", last.BuildID, last.CompletedAt.Format("2006-01-02 15:04:05"))
	return s.repository.LoadRegistration(ctx, s.storeID, last.BuildID)
}

func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	if err := s.repository.EnsureSchema(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup

	for _, taskType := range task.Types {
		s.runWorkersForStream(ctx, &wg, numWorkers, s.queue.Stream(taskType), taskType)
	}

	wg.Wait()
	return nil
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName, taskType string) {
	// Picks up messages left pending by crashed consumers
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.minIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reclaim(ctx, streamName, taskType)
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("%s-worker-%d", taskType, workerID)
			log.Infof("🚀 Starting %s worker %d", taskType, workerID)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 %s worker %d stopping", taskType, workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, consumer, streamName)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						}
						continue
					}

					if msg != nil {
						if err := s.processMessage(ctx, streamName, msg); err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}
}

// reclaim takes over messages idle past minIdleTime and processes them.
// Returns how many were claimed.
func (s *Service) reclaim(ctx context.Context, streamName, taskType string) int {
	consumer := fmt.Sprintf("autoclaimer-%s", taskType)
	claimed, err := s.queue.AutoClaim(ctx, consumer, streamName, s.minIdleTime)
	if err != nil {
		log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
		return 0
	}
	if len(claimed) > 0 {
		log.Infof("🔄 Auto-claimed %d messages from %s", len(claimed), streamName)
	}
	for _, msg := range claimed {
		if err := s.processMessage(ctx, streamName, &msg); err != nil {
			log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
		}
	}
	return len(claimed)
}

// processMessage persists one task and acks it. Failed saves stay pending and
// are picked up again by the auto-claimer. Messages that can never be decoded
// are acked and dropped.
func (s *Service) processMessage(ctx context.Context, streamName string, msg *redis.XMessage) error {
	taskType, _ := msg.Values["task_type"].(string)

	err := s.handleMessage(ctx, taskType, msg)
	s.metrics.TaskProcessed(taskType, err)

	if err != nil && !errors.Is(err, errPoisonMessage) {
		return err
	}

	if ackErr := s.queue.AckTask(ctx, streamName, msg.ID); ackErr != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, ackErr)
	}
	if err != nil {
		log.Warnf("🗑️ Dropped message %s from %s: %v", msg.ID, streamName, err)
	}
	return err
}

func (s *Service) handleMessage(ctx context.Context, taskType string, msg *redis.XMessage) error {
	if taskType == "" {
		return fmt.Errorf("%w: invalid task type in message %s", errPoisonMessage, msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("%w: invalid task data in message %s", errPoisonMessage, msg.ID)
	}

	return s.handleTask(ctx, taskType, []byte(taskData))
}

func (s *Service) handleTask(ctx context.Context, taskType string, data []byte) error {
	switch taskType {
	case "PageTask":
		pageTask, err := task.UnmarshalTask[*task.PageTask](data)
		if err != nil {
			return fmt.Errorf("%w: failed to unmarshal page task: %v", errPoisonMessage, err)
		}
		return s.repository.SavePage(ctx, pageTask.StoreID, pageTask.BuildID, pageTask.Page)

	case "RedirectTask":
		redirectTask, err := task.UnmarshalTask[*task.RedirectTask](data)
		if err != nil {
			return fmt.Errorf("%w: failed to unmarshal redirect task: %v", errPoisonMessage, err)
		}
		return s.repository.SaveRedirect(ctx, redirectTask.StoreID, redirectTask.BuildID, redirectTask.Redirect)

	default:
		return fmt.Errorf("%w: unknown task type: %s", errPoisonMessage, taskType)
	}
}
