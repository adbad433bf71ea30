package rabbitmq

import (
	"errors"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Broker держит соединение и канал, через который публикуются события броней.
type Broker struct {
	*Publisher
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Open подключается к RabbitMQ, объявляет обменник с очередями и возвращает готовый издатель.
func Open(url string, retries int, delay time.Duration) (*Broker, error) {
	const op = "rabbitmq.Open"

	conn, err := Connect(url, retries, delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := SetupChannel(conn, ReservationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Broker{
		Publisher: NewPublisher(ch, ExchangeReservations),
		conn:      conn,
		ch:        ch,
	}, nil
}

// Close закрывает канал и соединение.
func (b *Broker) Close() error {
	return errors.Join(b.ch.Close(), b.conn.Close())
}
