package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/searchqa"
	"golang.org/x/net/html"
)

// Ensure Converter implements searchqa.Converter at compile time.
var _ searchqa.Converter = (*Converter)(nil)

var blankLines = regexp.MustCompile(`\n{3,}`)

// Converter turns extracted page HTML into Markdown evidence text.
// By default links are reduced to their text and images are dropped:
// the model reads the evidence, it does not follow it.
type Converter struct {
	conv *converter.Converter
}

// Option configures a Converter.
type Option func(*options)

type options struct {
	keepLinks bool
}

// WithLinks keeps links and images in the output.
func WithLinks() Option {
	return func(o *options) {
		o.keepLinks = true
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	plugins := []converter.Plugin{
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	}
	if !o.keepLinks {
		plugins = append(plugins, &plainTextPlugin{})
	}

	return &Converter{conv: converter.NewConverter(converter.WithPlugins(plugins...))}
}

// Convert transforms HTML content into Markdown with runs of blank lines
// collapsed and trailing spaces removed.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", searchqa.Errorf(searchqa.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return tidy(result), nil
}

func tidy(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	md = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(md, "\n\n"))
}

// plainTextPlugin renders anchors as their text and removes images.
type plainTextPlugin struct{}

func (p *plainTextPlugin) Name() string {
	return "plaintext-links"
}

func (p *plainTextPlugin) Init(conv *converter.Converter) error {
	conv.Register.TagType("img", converter.TagTypeRemove, converter.PriorityEarly)
	conv.Register.TagType("picture", converter.TagTypeRemove, converter.PriorityEarly)
	conv.Register.RendererFor("a", converter.TagTypeInline, renderLinkText, converter.PriorityEarly)
	return nil
}

func renderLinkText(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	ctx.RenderChildNodes(ctx, w, n)
	return converter.RenderSuccess
}
