package display

import (
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerArt string

const (
	tagline      = "notifications, read aloud"
	defaultWidth = 80
)

// RenderBanner returns the banner and tagline centred for the terminal
// behind out. Non-terminals get the default width.
func RenderBanner(out io.Writer) string {
	return renderBanner(widthOf(out))
}

func renderBanner(width int) string {
	art := BannerStyle.Render(strings.TrimRight(bannerArt, "\n"))
	block := lipgloss.JoinVertical(lipgloss.Center, art, timeStyle.Render(tagline))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block) + "\n"
}

func widthOf(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return defaultWidth
	}
	if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}
