package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/cfg"
	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	headerEventID   = "event-id"
	headerEventType = "event-type"
)

// messageWriter - часть kafka.Writer, которую использует Producer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	writeTimeout = 10 * time.Second
	// события редкие, поэтому пачка отправляется почти сразу
	batchTimeout = 50 * time.Millisecond
)

type Producer struct {
	writer messageWriter
	client *kafka.Client
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	addr := kafka.TCP(cfg.Brokers...)

	return &Producer{
		writer: &kafka.Writer{
			Addr:                   addr,
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           batchTimeout,
			WriteTimeout:           writeTimeout,
			AllowAutoTopicCreation: false,
		},
		client: &kafka.Client{Addr: addr, Timeout: writeTimeout},
		logger: logger,
		cfg:    cfg,
	}
}

// WriteRawMessage публикует событие outbox. Ключ сообщения - id категории,
// поэтому события одной категории попадают в одну партицию по порядку.
func (p *Producer) WriteRawMessage(ctx context.Context, req *usecase.WriteRawMessageReq) error {
	value, err := EncodePayload(req)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.AggregateID),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(req.EventID)},
			{Key: headerEventType, Value: []byte(req.EventType)},
		},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// EncodePayload переводит JSON-нагрузку события в google.protobuf.Struct
// и добавляет в неё идентификатор и тип события.
func EncodePayload(req *usecase.WriteRawMessageReq) ([]byte, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(req.Payload, &fields); err != nil {
		return nil, fmt.Errorf("decode outbox payload: %w", err)
	}

	fields["eventId"] = req.EventID
	fields["eventType"] = string(req.EventType)

	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	return proto.Marshal(msg)
}

// DecodePayload - обратное преобразование, используется потребителями и тестами.
func DecodePayload(value []byte) (map[string]any, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(value, &msg); err != nil {
		return nil, err
	}

	return msg.AsMap(), nil
}

// EnsureTopic создаёт топик событий, если его ещё нет.
func (p *Producer) EnsureTopic(ctx context.Context) error {
	res, err := p.client.CreateTopics(ctx, &kafka.CreateTopicsRequest{
		Topics: []kafka.TopicConfig{{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		}},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := res.Errors[p.cfg.Topic]; err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("create topic %s: %w", p.cfg.Topic, err))
	}

	p.logger.Infof("kafka topic %s is ready", p.cfg.Topic)
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
