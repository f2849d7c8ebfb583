package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/krakosik/pollbot/internal/dto"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const pollExchange = "polls"

// Broker fans poll events out to every subscriber.
type Broker interface {
	Publish(ctx context.Context, event dto.PollEvent) error
	Subscribe(id string) (<-chan dto.PollEvent, error)
	Unsubscribe(id string) error
	Close() error
}

type rabbitBroker struct {
	conn            *amqp.Connection
	channel         *amqp.Channel
	exchangeName    string
	subscribers     map[string]chan dto.PollEvent
	subscriberMutex sync.RWMutex
	closed          chan struct{}
}

// NewBroker connects to RabbitMQ. Without a url, or when the broker is not
// reachable, an in-memory broker is returned so the bot keeps working.
func NewBroker(config dto.Config) Broker {
	if config.RabbitMQURL == "" {
		return newMemoryBroker()
	}

	broker, err := newRabbitBroker(config.RabbitMQURL)
	if err != nil {
		logrus.Errorf("Failed to connect to RabbitMQ: %v", err)
		return newMemoryBroker()
	}
	return broker
}

func newRabbitBroker(connectionStr string) (*rabbitBroker, error) {
	conn, ch, err := dialExchange(connectionStr, pollExchange)
	if err != nil {
		return nil, err
	}

	broker := &rabbitBroker{
		conn:         conn,
		channel:      ch,
		exchangeName: pollExchange,
		subscribers:  make(map[string]chan dto.PollEvent),
		closed:       make(chan struct{}),
	}

	go broker.monitorConnection(connectionStr)

	return broker, nil
}

func dialExchange(connectionStr, exchangeName string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(connectionStr)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}

	return conn, ch, nil
}

func (b *rabbitBroker) monitorConnection(connectionStr string) {
	connCloseChan := make(chan *amqp.Error, 1)
	b.conn.NotifyClose(connCloseChan)

	select {
	case err := <-connCloseChan:
		logrus.Errorf("RabbitMQ connection closed: %v", err)
	case <-b.closed:
		return
	}

	for {
		select {
		case <-time.After(5 * time.Second):
		case <-b.closed:
			return
		}

		logrus.Info("Attempting to reconnect to RabbitMQ...")
		conn, ch, err := dialExchange(connectionStr, b.exchangeName)
		if err != nil {
			logrus.Errorf("Failed to reconnect to RabbitMQ: %v", err)
			continue
		}

		b.subscriberMutex.Lock()
		oldConn := b.conn
		oldChannel := b.channel
		b.conn = conn
		b.channel = ch
		b.subscriberMutex.Unlock()

		if oldChannel != nil {
			oldChannel.Close()
		}
		if oldConn != nil {
			oldConn.Close()
		}

		b.resubscribeAll()

		go b.monitorConnection(connectionStr)
		return
	}
}

func (b *rabbitBroker) resubscribeAll() {
	b.subscriberMutex.RLock()
	defer b.subscriberMutex.RUnlock()

	for id, events := range b.subscribers {
		deliveries, err := b.consume()
		if err != nil {
			logrus.Errorf("Failed to resubscribe %s: %v", id, err)
			continue
		}
		go b.forward(id, events, deliveries)
	}
}

// consume binds a fresh exclusive queue to the exchange. Callers hold subscriberMutex.
func (b *rabbitBroker) consume() (<-chan amqp.Delivery, error) {
	q, err := b.channel.QueueDeclare(
		"",    // name - let RabbitMQ generate a unique name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}

	err = b.channel.QueueBind(
		q.Name,         // queue name
		"",             // routing key
		b.exchangeName, // exchange
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return nil, err
	}

	return b.channel.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
}

func (b *rabbitBroker) forward(id string, events chan dto.PollEvent, deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		var event dto.PollEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			logrus.Errorf("Error unmarshaling poll event for subscriber %s: %v", id, err)
			continue
		}

		b.subscriberMutex.RLock()
		if b.subscribers[id] != events {
			b.subscriberMutex.RUnlock()
			return
		}
		select {
		case events <- event:
		default:
		}
		b.subscriberMutex.RUnlock()
	}
}

func (b *rabbitBroker) Publish(ctx context.Context, event dto.PollEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b.subscriberMutex.RLock()
	ch := b.channel
	b.subscriberMutex.RUnlock()

	return ch.PublishWithContext(
		ctx,
		b.exchangeName, // exchange
		"",             // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.At,
			Type:        string(event.Type),
			Body:        body,
		})
}

func (b *rabbitBroker) Subscribe(id string) (<-chan dto.PollEvent, error) {
	b.subscriberMutex.Lock()
	defer b.subscriberMutex.Unlock()

	if events, exists := b.subscribers[id]; exists {
		return events, nil
	}

	deliveries, err := b.consume()
	if err != nil {
		return nil, err
	}

	events := make(chan dto.PollEvent, 100)
	b.subscribers[id] = events
	go b.forward(id, events, deliveries)

	return events, nil
}

func (b *rabbitBroker) Unsubscribe(id string) error {
	b.subscriberMutex.Lock()
	defer b.subscriberMutex.Unlock()

	if events, exists := b.subscribers[id]; exists {
		delete(b.subscribers, id)
		close(events)
	}

	return nil
}

func (b *rabbitBroker) Close() error {
	select {
	case <-b.closed:
		return nil
	default:
		close(b.closed)
	}

	b.subscriberMutex.Lock()
	defer b.subscriberMutex.Unlock()
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
