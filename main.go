package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/spf13/cobra"

	"github.com/stewi1014/glmandel/config"
	"github.com/stewi1014/glmandel/link"
	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/remote"
	"github.com/stewi1014/glmandel/session"
)

const appID = "com.github.stewi1014.glmandel"

type options struct {
	configPath string
	debug      bool
	remote     string
	shaders    string
}

func main() {
	mainContext, mainQuit := context.WithCancelCause(context.Background())
	ctx, stop := signal.NotifyContext(mainContext, os.Interrupt)
	defer stop()

	go func() {
		defer CatchPanicToContext(mainQuit)
		mainQuit(newRootCommand().ExecuteContext(ctx))
	}()

	<-mainContext.Done()
	if err := context.Cause(mainContext); err != nil && !errors.Is(err, context.Canceled) {
		log.Println(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "glmandel",
		Short:        "Explore the Mandelbrot set with momentum scrolling",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gtkMain(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default is glmandel/config.yaml in the user config directory)")
	flags.BoolVar(&opts.debug, "debug", false, "log OpenGL debug messages")
	flags.StringVar(&opts.remote, "remote", "", "serve the touch remote on this address, like :8080")
	flags.StringVar(&opts.shaders, "shaders", "", "load shaders from this directory and reload them when they change")

	root.AddCommand(
		glfwCommand(opts),
		tuiCommand(opts),
		renderCommand(opts),
		presetsCommand(opts),
		configCommand(opts),
	)
	return root
}

func (o *options) path() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.DefaultPath()
}

// config loads the config file with the command line flags applied over it.
func (o *options) config() (*config.Config, error) {
	path, err := o.path()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if o.shaders != "" {
		cfg.Render.ShaderDir = o.shaders
	}
	if o.remote != "" {
		cfg.Remote.Addr = o.remote
	}
	return cfg, nil
}

func (o *options) session() (*config.Config, *session.Session, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}

	sources, err := programs.Load(cfg.Render.ShaderDir)
	if err != nil {
		return nil, nil, err
	}

	s, err := session.New(cfg, sources)
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

// serve starts the shader watcher and the touch remote when they are
// configured. A failure of either cancels ctx. The returned server is nil if
// the remote is off.
func serve(ctx context.Context, quit context.CancelCauseFunc, cfg *config.Config, s *session.Session) *remote.Server {
	if dir := cfg.Render.ShaderDir; dir != "" {
		go func() {
			defer CatchPanicToContext(quit)
			if err := programs.Watch(ctx, dir, s.PostSources); err != nil {
				quit(err)
			}
		}()
	}

	if cfg.Remote.Addr == "" {
		return nil
	}

	srv := remote.NewServer(s, s.Presets())
	go func() {
		defer CatchPanicToContext(quit)
		if err := srv.ListenAndServe(ctx, cfg.Remote.Addr); err != nil {
			quit(fmt.Errorf("touch remote: %w", err))
		}
	}()
	return srv
}

func gtkMain(ctx context.Context, opts *options) error {
	runtime.LockOSThread()

	cfg, s, err := opts.session()
	if err != nil {
		return err
	}

	gtk.Init(nil)
	app, err := gtk.ApplicationNew(appID, glib.APPLICATION_FLAGS_NONE)
	if err != nil {
		return fmt.Errorf("gtk.ApplicationNew failed: %w", err)
	}

	appContext, appQuit := context.WithCancelCause(ctx)
	srv := serve(appContext, appQuit, cfg, s)

	app.Connect("activate", func() {
		client, listener := link.NewPipeListener()

		renderWindow := NewRenderWindow(app, appContext, appQuit, s, srv, client, opts.debug)
		if renderWindow == nil {
			return
		}
		renderWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		renderWindow.SetTitle("glmandel")

		configWindow := NewConfigWindow(app, appContext, appQuit, listener, s.Presets())
		if configWindow == nil {
			return
		}
		configWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		configWindow.SetTitle("glmandel settings")
	})

	go func() {
		<-appContext.Done()
		glib.IdleAdd(app.Quit)
	}()
	app.Run(nil)
	return context.Cause(appContext)
}
