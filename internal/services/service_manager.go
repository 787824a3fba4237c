package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/cache"
)

type serviceManager struct {
	client *api.Client
	cache  *cache.CacheManager
	logger *slog.Logger

	catalog  QuestionCatalog
	overview OverviewService
	reports  ReportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(client *api.Client, cm *cache.CacheManager, logger *slog.Logger) ServiceManager {
	return &serviceManager{
		client: client,
		cache:  cm,
		logger: logger,
	}
}

// Initialize builds the services once. An unreachable redis is an error; a
// missing one only disables the name cache.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.catalog = NewQuestionCatalog(sm.client, sm.cache, sm.logger)
	sm.overview = NewOverviewService(sm.client, sm.logger)
	sm.reports = NewReportService(sm.client, sm.logger)

	if err := sm.cache.HealthCheck(ctx); err != nil {
		if !errors.Is(err, cache.ErrCacheNotAvailable) {
			return fmt.Errorf("name cache unreachable: %w", err)
		}
		sm.logger.Warn("Name cache disabled, every lookup goes to the backend")
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

// ready returns the services, failing loudly when Initialize was skipped.
func (sm *serviceManager) ready() *serviceManager {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm
}

func (sm *serviceManager) Catalog() QuestionCatalog  { return sm.ready().catalog }
func (sm *serviceManager) Overview() OverviewService { return sm.ready().overview }
func (sm *serviceManager) Reports() ReportService    { return sm.ready().reports }

// HealthCheck reports whether the backend and, when configured, the cache
// are reachable.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return errors.New("service manager not initialized")
	}
	if sm.shutdown {
		return errors.New("service manager is shut down")
	}

	if _, err := sm.client.Ping(ctx); err != nil {
		return fmt.Errorf("backend health check failed: %w", err)
	}
	if err := sm.cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return err
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true
	sm.logger.InfoContext(ctx, "Service manager stopped")
	return nil
}
