package services

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/exam-portal/internal/api"
	"github.com/SAP-F-2025/exam-portal/internal/cache"
	"github.com/SAP-F-2025/exam-portal/internal/models"
)

const defaultLookupConcurrency = 8

// catalogService resolves display names with independent parallel lookups.
// A lookup that fails leaves its name empty: names are decoration only.
type catalogService struct {
	client      *api.Client
	cache       *cache.CacheManager
	logger      *slog.Logger
	concurrency int
}

func NewQuestionCatalog(client *api.Client, cm *cache.CacheManager, logger *slog.Logger) QuestionCatalog {
	return &catalogService{
		client:      client,
		cache:       cm,
		logger:      logger,
		concurrency: defaultLookupConcurrency,
	}
}

type topicInfo struct {
	Name      string
	SubjectID int
}

func (s *catalogService) ListQuestions(ctx context.Context, query url.Values) ([]models.QuestionView, error) {
	questions, err := s.client.Questions.List(ctx, query)
	if err != nil {
		return nil, err
	}

	topicIDs := make([]int, 0, len(questions))
	for _, q := range questions {
		topicIDs = append(topicIDs, q.TopicID)
	}
	topics := s.resolveTopics(ctx, topicIDs)

	subjectIDs := make([]int, 0, len(topics))
	for _, t := range topics {
		subjectIDs = append(subjectIDs, t.SubjectID)
	}
	subjects := s.resolveSubjects(ctx, subjectIDs)

	views := make([]models.QuestionView, len(questions))
	for i, q := range questions {
		view := models.QuestionView{Question: q}
		if t, ok := topics[q.TopicID]; ok {
			view.TopicName = t.Name
			view.SubjectID = t.SubjectID
			view.SubjectName = subjects[t.SubjectID]
		}
		views[i] = view
	}
	return views, nil
}

func (s *catalogService) ListTopics(ctx context.Context, query url.Values) ([]models.TopicView, error) {
	topics, err := s.client.Topics.List(ctx, query)
	if err != nil {
		return nil, err
	}

	subjectIDs := make([]int, 0, len(topics))
	for _, t := range topics {
		subjectIDs = append(subjectIDs, t.SubjectID)
	}
	subjects := s.resolveSubjects(ctx, subjectIDs)

	views := make([]models.TopicView, len(topics))
	for i, t := range topics {
		views[i] = models.TopicView{Topic: t, SubjectName: subjects[t.SubjectID]}
	}
	return views, nil
}

func (s *catalogService) ForgetSubject(ctx context.Context, subjectID int) {
	cache.InvalidateSubjectName(ctx, s.cache, subjectID)
}

func (s *catalogService) ForgetTopic(ctx context.Context, topicID int) {
	cache.InvalidateTopicName(ctx, s.cache, topicID)
}

func (s *catalogService) resolveTopics(ctx context.Context, ids []int) map[int]topicInfo {
	ids = uniquePositive(ids)
	out := make(map[int]topicInfo, len(ids))
	if len(ids) == 0 {
		return out
	}

	keys := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		keys = append(keys, cache.TopicKey(id), cache.TopicSubjectKey(id))
	}
	cached := s.cachedValues(ctx, keys)

	var missing []int
	for _, id := range ids {
		name, okName := cached[cache.TopicKey(id)]
		subj, okSubj := cached[cache.TopicSubjectKey(id)]
		subjectID, err := strconv.Atoi(subj)
		if okName && okSubj && err == nil {
			out[id] = topicInfo{Name: name, SubjectID: subjectID}
			continue
		}
		missing = append(missing, id)
	}

	var mu sync.Mutex
	fresh := make(map[string]string, len(missing)*2)
	s.fanOut(ctx, missing, func(ctx context.Context, id int) error {
		topic, err := s.client.Topics.Get(ctx, id)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		out[id] = topicInfo{Name: topic.Name, SubjectID: topic.SubjectID}
		fresh[cache.TopicKey(id)] = topic.Name
		fresh[cache.TopicSubjectKey(id)] = strconv.Itoa(topic.SubjectID)
		return nil
	})
	s.store(ctx, fresh)
	return out
}

func (s *catalogService) resolveSubjects(ctx context.Context, ids []int) map[int]string {
	ids = uniquePositive(ids)
	out := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return out
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cache.SubjectKey(id)
	}
	cached := s.cachedValues(ctx, keys)

	var missing []int
	for _, id := range ids {
		if name, ok := cached[cache.SubjectKey(id)]; ok {
			out[id] = name
			continue
		}
		missing = append(missing, id)
	}

	var mu sync.Mutex
	fresh := make(map[string]string, len(missing))
	s.fanOut(ctx, missing, func(ctx context.Context, id int) error {
		subject, err := s.client.Subjects.Get(ctx, id)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		out[id] = subject.Name
		fresh[cache.SubjectKey(id)] = subject.Name
		return nil
	})
	s.store(ctx, fresh)
	return out
}

// fanOut runs fn for every id concurrently. Errors are logged per id and do
// not cancel the other lookups.
func (s *catalogService) fanOut(ctx context.Context, ids []int, fn func(context.Context, int) error) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := fn(ctx, id); err != nil {
				s.logger.WarnContext(ctx, "Name lookup failed", "id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *catalogService) cachedValues(ctx context.Context, keys []string) map[string]string {
	values, err := s.cache.Names.GetMultiple(ctx, keys)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotAvailable) {
			s.logger.WarnContext(ctx, "Name cache read failed", "error", err)
		}
		return map[string]string{}
	}
	return values
}

func (s *catalogService) store(ctx context.Context, values map[string]string) {
	if len(values) == 0 {
		return
	}
	if err := s.cache.Names.SetMultiple(ctx, values, s.cache.NameTTL()); err != nil {
		s.logger.WarnContext(ctx, "Name cache write failed", "error", err)
	}
}

func uniquePositive(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
