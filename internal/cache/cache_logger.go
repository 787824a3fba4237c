package cache

import (
	"context"
	"log/slog"
)

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateSubjectName drops the cached display name of a subject.
func InvalidateSubjectName(ctx context.Context, cm *CacheManager, subjectID int) {
	SafeDelete(ctx, cm.Names, SubjectKey(subjectID))
}

// InvalidateTopicName drops the cached name and subject link of a topic.
func InvalidateTopicName(ctx context.Context, cm *CacheManager, topicID int) {
	SafeDelete(ctx, cm.Names, TopicKey(topicID), TopicSubjectKey(topicID))
}

// InvalidateAllNames clears every cached display name.
func InvalidateAllNames(ctx context.Context, cm *CacheManager) error {
	if !cm.Names.Available() {
		return ErrCacheNotAvailable
	}
	return cm.Names.InvalidatePattern(ctx, "*")
}
