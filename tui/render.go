package tui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stewi1014/glmandel/programs"
)

// The terminal is redrawn often, so iterations are capped below what the GPU
// frontends allow.
const renderIterationCap = 500

var (
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	barStyle    = lipgloss.NewStyle().Background(lipgloss.Color("236"))
)

type renderedMsg struct {
	lines []string
	err   error
}

// render draws the fractal at width x height pixels off the update loop.
func render(ctx context.Context, program programs.Program, u programs.Uniforms, width, height int) tea.Cmd {
	return func() tea.Msg {
		u.MaxIterations = min(u.MaxIterations, renderIterationCap)

		img, err := program.GetImage(u, width, height)
		if err != nil {
			return renderedMsg{err: err}
		}

		buf := programs.BufferImage(programs.ToImage(img))
		if err := buf.Buffer(ctx); err != nil {
			return renderedMsg{err: err}
		}
		return renderedMsg{lines: halfBlocks(buf)}
	}
}

// halfBlocks packs two rows of pixels into each line of text, the upper pixel
// as the foreground of ▀ and the lower one as its background.
func halfBlocks(img image.Image) []string {
	b := img.Bounds()
	lines := make([]string, 0, (b.Dy()+1)/2)

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		sb.Reset()
		for x := b.Min.X; x < b.Max.X; x++ {
			top := rgb(img.At(x, y))
			bottom := top
			if y+1 < b.Max.Y {
				bottom = rgb(img.At(x, y+1))
			}
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		sb.WriteString("\x1b[0m")
		lines = append(lines, sb.String())
	}
	return lines
}

func rgb(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}
