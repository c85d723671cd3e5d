package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// AuditConsumer listens on the event queues and appends one line per
// event to an audit log file.
type AuditConsumer struct {
    URL     string
    LogPath string // e.g. logs/inventory.log
    Logger  *slog.Logger
}

// Run connects to RabbitMQ, declares the event queues (durable) and
// consumes until ctx is cancelled. Broker failures trigger a reconnect
// with exponential backoff capped at 30s. Messages that cannot be decoded
// are rejected without requeue.
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(a.URL)
        if err != nil {
            a.Logger.Warn("audit-consumer: dial failed", "error", err, "retry_in", backoff.String())
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = a.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        a.Logger.Warn("audit-consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (a *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        a.Logger.Warn("audit-consumer: set QoS failed", "error", err)
    }

    type delivery struct {
        queue string
        amqp.Delivery
    }
    merged := make(chan delivery)
    for _, name := range []string{OrderCreatedQueue, StockAdjustedQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        go func(name string, msgs <-chan amqp.Delivery) {
            for d := range msgs {
                select {
                case merged <- delivery{queue: name, Delivery: d}:
                case <-ctx.Done():
                    return
                }
            }
        }(name, msgs)
    }
    closed := conn.NotifyClose(make(chan *amqp.Error, 1))

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case err := <-closed:
            if err == nil {
                return errors.New("connection closed")
            }
            return err
        case d := <-merged:
            if err := a.handle(d.queue, d.Body); err != nil {
                a.Logger.Error("audit-consumer: handle message failed", "queue", d.queue, "error", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (a *AuditConsumer) handle(queue string, body []byte) error {
    line, err := FormatAuditLine(queue, body)
    if err != nil {
        return err
    }
    if err := os.MkdirAll(filepath.Dir(a.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(a.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatAuditLine decodes an event body from queue and renders it as a
// single log line terminated by a newline.
func FormatAuditLine(queue string, body []byte) (string, error) {
    switch queue {
    case OrderCreatedQueue:
        var ev OrderCreatedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Order created | order_id=%d | customer_id=%d | store_id=%d | status=%q | required=%s | event=%s\n",
            ev.CreatedAt, ev.OrderID, ev.CustomerID, ev.StoreID, ev.Status, ev.RequiredDate, ev.EventID), nil
    case StockAdjustedQueue:
        var ev StockAdjustedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return "", fmt.Errorf("unmarshal: %w", err)
        }
        return fmt.Sprintf("[%s] Stock adjusted | store_id=%d | product_id=%d | delta=%d | quantity=%d | event=%s\n",
            ev.AdjustedAt, ev.StoreID, ev.ProductID, ev.Delta, ev.Quantity, ev.EventID), nil
    default:
        return "", fmt.Errorf("unknown queue %q", queue)
    }
}
