package link

import (
	"net"
	"sync"
)

// NewPipeListener returns one end of an in memory connection, and a listener
// that hands out the other end once.
func NewPipeListener() (client net.Conn, listener net.Listener) {
	clientPipe, listenerPipe := net.Pipe()
	return clientPipe, &pipeListener{
		pipe: listenerPipe,
		done: make(chan struct{}),
	}
}

type pipeListener struct {
	mu     sync.Mutex
	pipe   net.Conn
	done   chan struct{}
	closed sync.Once
}

func (p *pipeListener) Accept() (net.Conn, error) {
	p.mu.Lock()
	pipe := p.pipe
	p.pipe = nil
	p.mu.Unlock()

	if pipe != nil {
		return pipe, nil
	}
	<-p.done
	return nil, net.ErrClosed
}

// Close stops Accept. A connection that was already accepted stays open.
func (p *pipeListener) Close() error {
	p.closed.Do(func() { close(p.done) })

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pipe != nil {
		err := p.pipe.Close()
		p.pipe = nil
		return err
	}
	return nil
}

func (p *pipeListener) Addr() net.Addr {
	return pipeAddr{}
}

type pipeAddr struct{}

func (pipeAddr) Network() string { return "pipe" }
func (pipeAddr) String() string  { return "pipe" }
