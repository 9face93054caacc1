package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"videogen-service/pkg/assert"
	"videogen-service/pkg/config"
	"videogen-service/pkg/logger"
)

// Client Kafka客户端，按topic缓存writer
type Client struct {
	brokers  []string
	clientID string
	groupID  string
	dialer   *kafka.Dialer
	writers  sync.Map // topic -> *kafka.Writer
}

var (
	once      sync.Once
	singleton *Client
)

// DefaultClient 获取Kafka客户端单例
func DefaultClient() *Client {
	assert.NotCircular()
	once.Do(func() {
		singleton = &Client{}
	})
	assert.NotNil(singleton)
	return singleton
}

// MustOpen 按全局配置初始化
func (c *Client) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before Kafka client")
	}
	c.Configure(cfg.Kafka)
	for _, topic := range []string{cfg.Kafka.Topics.ProviderResults, cfg.Kafka.Topics.LifecycleEvents} {
		if topic == "" {
			continue
		}
		if err := c.EnsureTopic(topic, 3, 1); err != nil {
			logger.Warnf("Kafka ensure topic failed topic=%s error=%v", topic, err)
		}
	}
	logger.Infof("Kafka client opened brokers=%v client_id=%s", c.brokers, c.clientID)
}

// Configure 设置broker等参数，不建立连接
func (c *Client) Configure(cfg config.KafkaConfig) {
	c.brokers = cfg.BootstrapServers
	c.clientID = cfg.ClientID
	c.groupID = cfg.GroupID
	c.dialer = &kafka.Dialer{
		Timeout:  10 * time.Second,
		ClientID: c.clientID,
	}
}

// Close 关闭所有writer
func (c *Client) Close() {
	c.writers.Range(func(key, value interface{}) bool {
		if w, ok := value.(*kafka.Writer); ok {
			_ = w.Close()
		}
		c.writers.Delete(key)
		return true
	})
}

// Writer 获取topic对应的writer
func (c *Client) Writer(topic string) *kafka.Writer {
	if v, ok := c.writers.Load(topic); ok {
		return v.(*kafka.Writer)
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(c.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	actual, loaded := c.writers.LoadOrStore(topic, w)
	if loaded {
		_ = w.Close()
	}
	return actual.(*kafka.Writer)
}

// Produce 发送一条消息，同一key落在同一分区
func (c *Client) Produce(ctx context.Context, topic string, key, value []byte) error {
	if len(c.brokers) == 0 {
		return fmt.Errorf("kafka client not configured")
	}
	msg := kafka.Message{Key: key, Value: value, Time: time.Now()}
	return c.Writer(topic).WriteMessages(ctx, msg)
}

// ProduceJSON 序列化后发送
func (c *Client) ProduceJSON(ctx context.Context, topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal kafka payload: %w", err)
	}
	return c.Produce(ctx, topic, []byte(key), value)
}

// Reader 创建消费者，groupID为空时使用配置中的默认组
func (c *Client) Reader(topic, groupID string) *kafka.Reader {
	if groupID == "" {
		groupID = c.groupID
	}
	logger.Infof("Kafka reader created topic=%s group=%s brokers=%v", topic, groupID, c.brokers)
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.brokers,
		GroupID:        groupID,
		Topic:          topic,
		Dialer:         c.dialer,
		MinBytes:       1,
		MaxBytes:       10 << 20,
		CommitInterval: 0,
	})
}

// EnsureTopic 不存在时创建topic
func (c *Client) EnsureTopic(topic string, numPartitions, replicationFactor int) error {
	if len(c.brokers) == 0 {
		return nil
	}
	conn, err := kafka.Dial("tcp", c.brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	cc, err := kafka.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer cc.Close()
	return cc.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	})
}
