package main

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stewi1014/glmandel/config"
	"github.com/stewi1014/glmandel/gesture"
	"github.com/stewi1014/glmandel/snapshot"
	"github.com/stewi1014/glmandel/tui"
)

func glfwCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "glfw",
		Short: "Open a single GLFW window instead of the GTK windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return glfwMain(cmd.Context(), opts)
		},
	}
}

func tuiCommand(opts *options) *cobra.Command {
	var dir, logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Draw the set in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, s, err := opts.session()
			if err != nil {
				return err
			}
			if cfg.Remote.Addr != "" {
				log.Println("the terminal viewer does not serve the touch remote")
			}

			// log lines would tear the picture
			if logFile != "" {
				f, err := tea.LogToFile(logFile, "glmandel")
				if err != nil {
					return err
				}
				defer f.Close()
			} else {
				log.SetOutput(io.Discard)
			}
			return tui.Run(cmd.Context(), s, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "out", ".", "directory snapshots are saved to")
	cmd.Flags().StringVar(&logFile, "log", "", "append log messages to this file")
	return cmd
}

func renderCommand(opts *options) *cobra.Command {
	var (
		out           string
		preset        string
		at            [3]string
		width, height int
		antialias     float64
		caption       bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the starting view, a preset or a location to a PNG without a GPU",
		Long: "Draw to a PNG on the CPU. The starting view comes from the config file;\n" +
			"--preset jumps to a preset first, and --real, --imaginary and --zoom\n" +
			"override any part of the location.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := opts.session()
			if err != nil {
				return err
			}
			if err := s.Resize(width, height); err != nil {
				return err
			}
			if err := s.Locate(preset, at); err != nil {
				return err
			}
			uniforms := s.Frame()

			img, err := snapshot.Render(cmd.Context(), s.Program(), uniforms, width, height, antialias)
			if err != nil {
				return err
			}

			text := ""
			if caption {
				text = snapshot.Caption(s.View())
			}
			if out == "-" {
				return snapshot.Encode(cmd.OutOrStdout(), img, text)
			}
			if err := snapshot.Save(out, img, text); err != nil {
				return err
			}
			log.Printf("saved %v", out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", "mandelbrot.png", "file to write, - for standard output")
	flags.StringVarP(&preset, "preset", "p", "", "preset to draw instead of the starting view")
	flags.StringVar(&at[gesture.FieldReal], "real", "", "real part of the centre")
	flags.StringVar(&at[gesture.FieldImaginary], "imaginary", "", "imaginary part of the centre")
	flags.StringVar(&at[gesture.FieldZoom], "zoom", "", "zoom level")
	flags.IntVar(&width, "width", 1920, "image width in pixels")
	flags.IntVar(&height, "height", 1080, "image height in pixels")
	flags.Float64Var(&antialias, "antialias", 0.5, "distance between antialiasing samples in pixels, 0 to disable")
	flags.BoolVar(&caption, "caption", true, "print the location along the bottom")
	return cmd
}

func presetsCommand(opts *options) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the places that can be jumped to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			presets := cfg.AllPresets()

			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(presets)
			}

			fmt.Fprintln(cmd.OutOrStdout(), presetTable(presets))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML, ready to paste into the config file")
	return cmd
}

func presetTable(presets gesture.Presets) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("name", "real", "imaginary", "zoom").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, p := range presets {
		t.Row(p.Name, gesture.FormatCoordinate(p.Real), gesture.FormatCoordinate(p.Imaginary), gesture.FormatZoom(p.Zoom))
	}
	return t
}

func configCommand(opts *options) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the settings in use",
		Long: "Print the settings in use, after the config file and flags are applied.\n" +
			"With --write they are saved to the config file, creating it if needed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			if write {
				path, err := opts.path()
				if err != nil {
					return err
				}
				if err := config.Save(cfg, path); err != nil {
					return err
				}
				log.Printf("wrote %v", path)
				return nil
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "save to the config file")
	return cmd
}
