package link

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stewi1014/glmandel/gesture"
)

func TestLink_RoundTrip(t *testing.T) {
	client, listener := NewPipeListener()
	server, err := listener.Accept()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, b := New(client), New(server)
	received := make(chan any, 4)

	aDone := make(chan error, 1)
	bDone := make(chan error, 1)
	go func() { aDone <- a.Run(ctx, func(any) {}) }()
	go func() { bDone <- b.Run(ctx, func(v any) { received <- v }) }()

	a.Send(&gesture.HoverEvent{OverSettings: true})
	a.Send(&Settings{ColorScheme: "gold", MaxIterations: 500})
	a.Send(&gesture.CommitEvent{Real: "1", Imaginary: "2", Zoom: "3"})

	want := []any{
		&gesture.HoverEvent{OverSettings: true},
		&Settings{ColorScheme: "gold", MaxIterations: 500},
		&gesture.CommitEvent{Real: "1", Imaginary: "2", Zoom: "3"},
	}
	for i, w := range want {
		select {
		case v := <-received:
			switch got := v.(type) {
			case *gesture.HoverEvent:
				if *got != *w.(*gesture.HoverEvent) {
					t.Errorf("message %v = %+v", i, got)
				}
			case *Settings:
				if *got != *w.(*Settings) {
					t.Errorf("message %v = %+v", i, got)
				}
			case *gesture.CommitEvent:
				if *got != *w.(*gesture.CommitEvent) {
					t.Errorf("message %v = %+v", i, got)
				}
			default:
				t.Errorf("message %v has type %T", i, v)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("message %v never arrived", i)
		}
	}

	cancel()
	for _, done := range []chan error{aDone, bDone} {
		if err := <-done; err != nil {
			t.Errorf("Run = %v", err)
		}
	}
}

func TestLink_FarEndClosed(t *testing.T) {
	client, server := net.Pipe()
	l := New(client)

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background(), func(any) {}) }()

	server.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the far end closed")
	}
}

func TestPipeListener(t *testing.T) {
	_, listener := NewPipeListener()

	if _, err := listener.Accept(); err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		listener.Close()
	}()
	if _, err := listener.Accept(); !errors.Is(err, net.ErrClosed) {
		t.Errorf("second Accept = %v, want %v", err, net.ErrClosed)
	}
}
