package devices

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// ChannelList is a comma separated list of hardware channel paths.
type ChannelList struct {
	Channels []*ChannelPath `@@ ( Comma @@ )*`
}

// ChannelPath is one slash separated channel path, e.g. Dev1/ao0.
type ChannelPath struct {
	Parts []string `@Ident ( Slash @Ident )+`
}

// Connection returns the path below the hardware prefix, which is how the
// connection table names the channel.
func (c *ChannelPath) Connection() string {
	return strings.Join(c.Parts[1:], "/")
}

func (c *ChannelPath) String() string {
	return strings.Join(c.Parts, "/")
}

// ChannelParser parses channel-list attributes.
type ChannelParser struct {
	parser *participle.Parser[ChannelList]
}

// NewChannelParser builds the channel-list grammar.
func NewChannelParser() (*ChannelParser, error) {
	parser, err := participle.Build[ChannelList](
		participle.Lexer(ChannelLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build channel parser: %w", err)
	}
	return &ChannelParser{parser: parser}, nil
}

// ParseString parses a channel list. An empty or blank list has no channels.
func (p *ChannelParser) ParseString(input string) ([]*ChannelPath, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	list, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("parse channel list %q: %w", input, err)
	}
	return list.Channels, nil
}

var defaultChannelParser = func() *ChannelParser {
	p, err := NewChannelParser()
	if err != nil {
		panic(err)
	}
	return p
}()

// ParseChannelList parses input with the shared parser.
func ParseChannelList(input string) ([]*ChannelPath, error) {
	return defaultChannelParser.ParseString(input)
}
