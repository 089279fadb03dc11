package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"golang-competitive-intel/internal/analyzer/config"
	"golang-competitive-intel/internal/analyzer/dto"
	"golang-competitive-intel/pkg/common"
	"golang-competitive-intel/pkg/logger"
	"golang-competitive-intel/pkg/telegram"
	"golang-competitive-intel/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ReportConsumer reads finalized analysis reports from the Redis stream
// and delivers them to the notification sink. Delivery failure never
// touches the persisted analysis results.
type ReportConsumer struct {
	cfg         *config.Config
	redisClient *redis.Client
	notifier    telegram.Notifier
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewReportConsumer creates a new ReportConsumer.
func NewReportConsumer(cfg *config.Config, redisClient *redis.Client, notifier telegram.Notifier, log *logger.Logger) *ReportConsumer {
	return &ReportConsumer{
		cfg:         cfg,
		redisClient: redisClient,
		notifier:    notifier,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the consumer loop on the report stream.
func (c *ReportConsumer) Start(ctx context.Context) {
	err := c.redisClient.XGroupCreateMkStream(ctx, common.RedisStreamAnalysisReport, common.RedisStreamGroup, "$").Err()
	if err != nil && !isBusyGroup(err) {
		c.logger.Error("Failed to create consumer group", logger.ErrorField(err))
	}

	c.logger.Info("Report consumer started", logger.StringField("stream", common.RedisStreamAnalysisReport))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Report consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Report consumer stopping")
				return
			default:
				c.processOne(ctx)
			}
		}
	})
}

func (c *ReportConsumer) processOne(ctx context.Context) {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamAnalysisReport, ">"},
		Count:    1,
		Block:    5 * time.Second,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return
	}
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("Failed to read report stream", logger.ErrorField(err))
		}
		return
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			c.handleMessage(ctx, message)
		}
	}
}

func (c *ReportConsumer) handleMessage(ctx context.Context, message redis.XMessage) {
	payload, ok := message.Values["payload"].(string)
	if !ok {
		c.logger.Error("Report message missing payload", logger.StringField("message_id", message.ID))
		c.ack(ctx, message.ID)
		return
	}

	var report dto.AnalysisReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		c.logger.Error("Failed to unmarshal report", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		c.ack(ctx, message.ID)
		return
	}

	messages := telegram.FormatAnalysisReport(&report)
	if err := c.notifier.SendMessages(messages); err != nil {
		// Leave the message pending so a later consumer can retry.
		c.logger.Error("Failed to deliver report", logger.ErrorField(err), logger.Field("run_id", report.Run.ID))
		return
	}

	c.logger.Info("Report delivered", logger.Field("run_id", report.Run.ID))
	c.ack(ctx, message.ID)
}

func (c *ReportConsumer) ack(ctx context.Context, messageID string) {
	if err := c.redisClient.XAck(ctx, common.RedisStreamAnalysisReport, common.RedisStreamGroup, messageID).Err(); err != nil {
		c.logger.Error("Failed to ack report message", logger.ErrorField(err), logger.StringField("message_id", messageID))
	}
}

// Stop gracefully shuts down the consumer.
func (c *ReportConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Report consumer stopped")
}

func isBusyGroup(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}
