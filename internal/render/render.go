package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"

	"github.com/jm/colorscheme/internal/preference"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type theme struct {
	label       lipgloss.Color
	faint       bool
	chromaStyle string
}

// Each value is shown in colors that read well under that scheme.
var themes = map[preference.Value]theme{
	preference.Dark:         {label: lipgloss.Color("75"), chromaStyle: "monokai"},
	preference.Light:        {label: lipgloss.Color("130"), chromaStyle: "github"},
	preference.NoPreference: {label: lipgloss.Color("245"), faint: true, chromaStyle: "monokai"},
}

type payload struct {
	ColorScheme preference.Value `json:"color_scheme"`
	GSettings   string           `json:"gsettings"`
}

type Renderer struct {
	out      io.Writer
	format   string
	useColor bool
	styled   *lipgloss.Renderer
}

type Option func(*Renderer)

func WithFormat(format string) Option {
	return func(r *Renderer) {
		if format != "" {
			r.format = format
		}
	}
}

func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.useColor = enabled
	}
}

func New(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:    out,
		format: FormatText,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.styled = lipgloss.NewRenderer(out)
	if r.useColor {
		r.styled.SetColorProfile(termenv.ANSI256)
	} else {
		r.styled.SetColorProfile(termenv.Ascii)
	}
	return r
}

// ColorEnabled resolves a --color mode against the output. "auto" colors
// only terminals and honors NO_COLOR.
func ColorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Renderer) Render(v preference.Value) error {
	switch r.format {
	case FormatText:
		return r.renderText(v)
	case FormatJSON:
		return r.renderJSON(v)
	default:
		return errors.Errorf("unknown output format %q", r.format)
	}
}

func (r *Renderer) renderText(v preference.Value) error {
	text := v.String()
	if r.useColor {
		th := themes[v]
		text = r.styled.NewStyle().Bold(!th.faint).Faint(th.faint).Foreground(th.label).Render(text)
	}
	_, err := fmt.Fprintln(r.out, text)
	return err
}

func (r *Renderer) renderJSON(v preference.Value) error {
	data, err := json.Marshal(payload{ColorScheme: v, GSettings: v.GSettings()})
	if err != nil {
		return errors.Wrap(err, "encode json")
	}
	text := string(data)
	if r.useColor {
		text = highlight(text, themes[v].chromaStyle)
	}
	_, err = fmt.Fprintln(r.out, text)
	return err
}

func highlight(content, styleName string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return content
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
