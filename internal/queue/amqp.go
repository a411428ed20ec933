package queue

import (
	"encoding/json"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
)

// AMQPQueue publishes each topic to a durable fanout exchange of the same
// name. Every subscriber gets its own exclusive queue, so all server
// instances see every event.
type AMQPQueue struct {
	conn   *amqp.Connection
	mu     sync.Mutex // guards pub; amqp channels are not safe for concurrent publish
	pub    *amqp.Channel
	logger *zap.Logger
}

func DialAMQP(url string, logger *zap.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQPQueue{conn: conn, pub: ch, logger: logging.OrNop(logger)}, nil
}

func declareExchange(ch *amqp.Channel, topic string) error {
	return ch.ExchangeDeclare(
		topic,    // name
		"fanout", // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := declareExchange(q.pub, topic); err != nil {
		return err
	}
	return q.pub.Publish(topic, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Subscribe consumes on a dedicated channel. The handler receives a
// json.RawMessage; a failed delivery is requeued once, then dropped.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return err
	}
	if err := declareExchange(ch, topic); err != nil {
		ch.Close()
		return err
	}
	dq, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return err
	}
	if err := ch.QueueBind(dq.Name, "", topic, false, nil); err != nil {
		ch.Close()
		return err
	}
	msgs, err := ch.Consume(dq.Name, "", false, true, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}

	log := q.logger.With(zap.String("topic", topic))
	go func() {
		defer ch.Close()
		for d := range msgs {
			if err := handler(json.RawMessage(d.Body)); err != nil {
				log.Warn("handler failed", zap.Bool("redelivered", d.Redelivered), zap.Error(err))
				d.Nack(false, !d.Redelivered)
				continue
			}
			d.Ack(false)
		}
		log.Info("consumer stopped")
	}()
	return nil
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	q.pub.Close()
	q.mu.Unlock()
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
