package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scopesentry/backend/internal/analyzer"
	"github.com/scopesentry/backend/pkg/logger"
)

// Client caches analysis results keyed by a fingerprint of the project scope
// and the request content. Keys are namespaced per project so a scope change
// can invalidate everything the old scope produced.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func analysisKey(projectID, fingerprint string) string {
	return fmt.Sprintf("analysis:%s:%s", projectID, fingerprint)
}

func (c *Client) SetAnalysis(ctx context.Context, projectID, fingerprint string, result *analyzer.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := c.client.Set(ctx, analysisKey(projectID, fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set analysis cache: %w", err)
	}

	logger.Debug("Analysis cached",
		zap.String("project_id", projectID),
		zap.String("fingerprint", fingerprint),
	)
	return nil
}

func (c *Client) GetAnalysis(ctx context.Context, projectID, fingerprint string) (*analyzer.Result, bool, error) {
	data, err := c.client.Get(ctx, analysisKey(projectID, fingerprint)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get analysis cache: %w", err)
	}

	var result analyzer.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	logger.Debug("Analysis cache hit", zap.String("project_id", projectID))
	return &result, true, nil
}

// InvalidateProject drops every cached analysis for a project. Called when
// scope items change, since old verdicts were computed against the old scope.
func (c *Client) InvalidateProject(ctx context.Context, projectID string) error {
	iter := c.client.Scan(ctx, 0, fmt.Sprintf("analysis:%s:*", projectID), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Analysis cache invalidated", zap.String("project_id", projectID))
	return nil
}
