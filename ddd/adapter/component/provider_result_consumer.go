package component

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	appsvc "videogen-service/ddd/application/app"
	"videogen-service/ddd/application/cqe"
	"videogen-service/pkg/config"
	"videogen-service/pkg/errno"
	pkgkafka "videogen-service/pkg/kafka"
	"videogen-service/pkg/logger"
	"videogen-service/pkg/manager"
)

// ProviderResultConsumerPlugin 消费 provider.results，把中继写入的结果交给状态机
type ProviderResultConsumerPlugin struct{}

func (p *ProviderResultConsumerPlugin) Name() string { return "providerResultConsumer" }

func (p *ProviderResultConsumerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := config.GetGlobalConfig()
	if deps != nil && deps.Config != nil {
		cfg = deps.Config
	}
	if cfg == nil || !cfg.Kafka.Enabled || cfg.Kafka.Topics.ProviderResults == "" {
		return nil
	}
	var app appsvc.StatusApp
	if deps != nil {
		if v, ok := deps.StatusAppService.(appsvc.StatusApp); ok {
			app = v
		}
	}
	if app == nil {
		app = appsvc.DefaultStatusApp()
	}
	topic := cfg.Kafka.Topics.ProviderResults
	reader := pkgkafka.DefaultClient().Reader(topic, cfg.Kafka.GroupID)
	return NewProviderResultConsumer(app, reader, cfg.Kafka)
}

// MessageReader kafka.Reader 中消费用到的部分
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type providerResultConsumer struct {
	app         appsvc.StatusApp
	reader      MessageReader
	backoff     time.Duration
	maxBackoff  time.Duration
	maxAttempts int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewProviderResultConsumer(app appsvc.StatusApp, reader MessageReader, cfg config.KafkaConfig) manager.Component {
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	maxBackoff := cfg.MaxRetryBackoff
	if maxBackoff < backoff {
		maxBackoff = backoff
	}
	return &providerResultConsumer{
		app:         app,
		reader:      reader,
		backoff:     backoff,
		maxBackoff:  maxBackoff,
		maxAttempts: cfg.MaxProcessAttempts,
	}
}

func (c *providerResultConsumer) Start() error {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.reader.Close()
		logger.Infof("Kafka consumer started component=%s", c.GetName())
		for {
			msg, err := c.reader.FetchMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
					logger.Debug("Kafka reader EOF")
				} else {
					logger.Warnf("Kafka read error error=%s", err.Error())
				}
				if !c.sleep(c.backoff) {
					return
				}
				continue
			}
			// 未处理完就停止时不提交，重启后从该位点重新消费
			if !c.process(msg) {
				return
			}
			if err := c.reader.CommitMessages(c.ctx, msg); err != nil && c.ctx.Err() == nil {
				logger.Warnf("Kafka commit failed offset=%d error=%v", msg.Offset, err)
			}
		}
	}()
	return nil
}

// process 处理一条消息直到可以提交，返回 false 表示消费已停止。
// 无法解析或被判定为客户端错误的消息直接跳过；其余错误按退避原地重试，
// 同一分区后面的消息在此期间不会被提交。
func (c *providerResultConsumer) process(msg kafkago.Message) bool {
	var m cqe.ProviderResultMsg
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		logger.Warnf("Kafka message unmarshal error, skipped offset=%d error=%s", msg.Offset, err.Error())
		return true
	}

	wait := c.backoff
	for attempt := 1; ; attempt++ {
		ack, err := c.app.ApplyResult(c.ctx, &m)
		if err == nil {
			logger.Info("Provider result applied", map[string]interface{}{
				"kind":         m.Kind,
				"reference_id": m.Result.ReferenceID,
				"job_id":       m.Result.JobID,
				"applied":      ack.Applied,
				"status":       ack.Status,
				"attempt":      attempt,
			})
			return true
		}
		if errno.IsClientError(errno.Decode(err)) {
			logger.Warnf("Provider result rejected, skipped offset=%d kind=%s reference_id=%s job_id=%s error=%v",
				msg.Offset, m.Kind, m.Result.ReferenceID, m.Result.JobID, err)
			return true
		}
		if c.maxAttempts > 0 && attempt >= c.maxAttempts {
			logger.Errorf("Provider result dropped after %d attempts offset=%d reference_id=%s job_id=%s error=%v",
				attempt, msg.Offset, m.Result.ReferenceID, m.Result.JobID, err)
			return true
		}
		logger.Warnf("Apply provider result failed, retrying offset=%d attempt=%d backoff=%s error=%v",
			msg.Offset, attempt, wait, err)
		if !c.sleep(wait) {
			return false
		}
		wait *= 2
		if wait > c.maxBackoff {
			wait = c.maxBackoff
		}
	}
}

func (c *providerResultConsumer) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-c.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *providerResultConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return nil
}

func (c *providerResultConsumer) GetName() string { return "providerResultConsumer" }
