// Package remote serves a touch page that steers a viewer from a phone over a
// websocket.
package remote

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stewi1014/glmandel/gesture"
)

//go:embed page.html
var page []byte

// Poster accepts events from other goroutines.
type Poster interface {
	Post(gesture.Event) bool
}

// Message is the JSON sent by the page. Points are in page pixels and are
// scaled to the viewer's surface using Width and Height.
type Message struct {
	Type      string       `json:"type"`
	Points    [][2]float64 `json:"points,omitempty"`
	Width     float64      `json:"width,omitempty"`
	Height    float64      `json:"height,omitempty"`
	DeltaY    float64      `json:"deltaY,omitempty"`
	Name      string       `json:"name,omitempty"`
	Real      string       `json:"real,omitempty"`
	Imaginary string       `json:"imaginary,omitempty"`
	Zoom      string       `json:"zoom,omitempty"`
}

// Hello is sent to the page when it connects.
type Hello struct {
	Presets gesture.Presets `json:"presets"`
}

type Server struct {
	upgrader websocket.Upgrader
	poster   Poster
	presets  gesture.Presets

	width, height atomic.Int64
}

func NewServer(poster Poster, presets gesture.Presets) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		poster:  poster,
		presets: presets,
	}
	s.SetSurface(1, 1)
	return s
}

// SetSurface records the size of the viewer's surface, so touches cover the
// same fraction of it as they did of the page.
func (s *Server) SetSurface(width, height int) {
	s.width.Store(int64(width))
	s.height.Store(int64(height))
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	})
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("touch remote listening on %v", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("remote: failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("remote: %v connected", r.RemoteAddr)
	if err := conn.WriteJSON(Hello{Presets: s.presets}); err != nil {
		log.Printf("remote: %v", err)
		return
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("remote: unexpected close: %v", err)
			}
			log.Printf("remote: %v disconnected", r.RemoteAddr)
			return
		}

		ev, err := s.Translate(msg)
		if err != nil {
			log.Printf("remote: %v", err)
			continue
		}
		s.poster.Post(ev)
	}
}

// Translate turns a page message into an event in surface pixels.
func (s *Server) Translate(msg Message) (gesture.Event, error) {
	switch msg.Type {
	case "touchstart", "touchmove", "touchend":
		points, err := s.scale(msg)
		if err != nil {
			return nil, err
		}
		phase := gesture.TouchStart
		switch msg.Type {
		case "touchmove":
			phase = gesture.TouchMove
		case "touchend":
			phase = gesture.TouchEnd
		}
		return &gesture.TouchEvent{Phase: phase, Points: points}, nil

	case "wheel":
		return &gesture.WheelEvent{DeltaY: msg.DeltaY}, nil

	case "preset":
		return &gesture.PresetEvent{Name: msg.Name}, nil

	case "commit":
		return &gesture.CommitEvent{Real: msg.Real, Imaginary: msg.Imaginary, Zoom: msg.Zoom}, nil
	}
	return nil, fmt.Errorf("unknown message type %q", msg.Type)
}

func (s *Server) scale(msg Message) ([]mgl64.Vec2, error) {
	if !(msg.Width > 0 && msg.Height > 0) {
		return nil, fmt.Errorf("%v without a page size", msg.Type)
	}

	sx := float64(s.width.Load()) / msg.Width
	sy := float64(s.height.Load()) / msg.Height

	points := make([]mgl64.Vec2, len(msg.Points))
	for i, p := range msg.Points {
		points[i] = mgl64.Vec2{p[0] * sx, p[1] * sy}
	}
	return points, nil
}
