package devices

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ChannelLexer tokenises channel-list attributes such as
// "Dev1/ao0,Dev1/ao1".
var ChannelLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Ident", Pattern: `[A-Za-z0-9_.\-]+`},
	{Name: "Slash", Pattern: `/`},
	{Name: "Comma", Pattern: `,`},
})
