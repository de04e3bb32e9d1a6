// Package link carries messages between the windows of the viewer over a
// gob encoded connection.
package link

import (
	"context"
	"encoding/gob"
	"errors"
	"io"
	"log"
	"net"
)

func init() {
	gob.Register(&Status{})
	gob.Register(&Settings{})
	gob.Register(&Save{})
	gob.Register(&Notice{})
}

// Status is what the render side reports back after the view changes.
type Status struct {
	Real, Imaginary, Zoom string
	ColorScheme           string
	MaxIterations         int
}

// Settings changes how the fractal is drawn.
type Settings struct {
	ColorScheme   string
	MaxIterations int
}

// Save asks the render side to draw the view on the CPU and write it to Path.
type Save struct {
	Path      string
	Antialias float64
}

// Notice is a message for the user, usually an input that was rejected.
type Notice struct {
	Message string
	Error   bool
}

const sendQueue = 32

// Link is one end of a connection. Send may be called from any goroutine.
type Link struct {
	conn net.Conn
	send chan any
}

func New(conn net.Conn) *Link {
	return &Link{
		conn: conn,
		send: make(chan any, sendQueue),
	}
}

// Send queues msg to be written. If the queue is full msg is dropped.
func (l *Link) Send(msg any) bool {
	select {
	case l.send <- msg:
		return true
	default:
		log.Printf("link queue full, dropping %T", msg)
		return false
	}
}

// Run writes queued messages and calls receive with every message read, from
// a goroutine of its own. It returns when ctx is done or the connection fails,
// closing the connection. The far end closing is not an error.
func (l *Link) Run(ctx context.Context, receive func(any)) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	defer l.conn.Close()

	go func() {
		cancel(l.receive(receive))
	}()

	enc := gob.NewEncoder(l.conn)
	for {
		select {
		case msg := <-l.send:
			if err := enc.Encode(&msg); err != nil {
				if isClosed(err) {
					return nil
				}
				return err
			}

		case <-ctx.Done():
			err := context.Cause(ctx)
			if errors.Is(err, context.Canceled) || isClosed(err) {
				return nil
			}
			return err
		}
	}
}

func (l *Link) receive(receive func(any)) error {
	dec := gob.NewDecoder(l.conn)
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if isClosed(err) {
				return context.Canceled
			}
			return err
		}
		receive(v)
	}
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed)
}
