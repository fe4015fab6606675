package cli

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/exp/charmtone"

	"github.com/macropower/pasteflow/api/v1beta1/configs"
	"github.com/macropower/pasteflow/pkg/config"
	"github.com/macropower/pasteflow/pkg/highlight"
)

// Try to get the theme from the config, otherwise use the default theme.
func ColorSchemeFunc(c lipgloss.LightDarkFunc) fang.ColorScheme {
	cl, err := config.NewLoaderFromFile(configs.GetPath(), configs.New, configs.DefaultValidator,
		config.WithThemeFromData(),
	)
	if err != nil {
		return ThemeColorScheme(highlight.New(highlight.DefaultTheme).Style(), c)
	}

	return ThemeColorScheme(cl.Highlighter().Style(), c)
}

// ThemeColorScheme derives a help color scheme from a chroma style. Token
// types the style leaves unset fall back to fang's defaults.
func ThemeColorScheme(s *chroma.Style, c lipgloss.LightDarkFunc) fang.ColorScheme {
	cs := fang.DefaultColorScheme(c)

	fg := func(tt chroma.TokenType, fallback color.Color) color.Color {
		e := s.Get(tt)
		if !e.Colour.IsSet() {
			return fallback
		}

		return lipgloss.Color(e.Colour.String())
	}

	cs.Base = fg(chroma.Text, cs.Base)
	cs.Title = fg(chroma.Keyword, cs.Title)
	cs.Program = fg(chroma.NameFunction, cs.Program)
	cs.Command = fg(chroma.NameFunction, cs.Command)
	cs.Flag = fg(chroma.NameAttribute, cs.Flag)
	cs.FlagDefault = fg(chroma.LiteralNumber, cs.FlagDefault)
	cs.Comment = fg(chroma.Comment, cs.Comment)
	cs.DimmedArgument = fg(chroma.Comment, cs.DimmedArgument)
	cs.QuotedString = fg(chroma.LiteralString, cs.QuotedString)
	cs.Argument = fg(chroma.Text, cs.Argument)
	cs.Description = fg(chroma.Text, cs.Description)
	cs.Codeblock = c(charmtone.Salt, lipgloss.Color("#2F2E36"))

	if bg := s.Get(chroma.Background).Background; bg.IsSet() {
		cs.Codeblock = lipgloss.Color(bg.String())
	}

	errEntry := s.Get(chroma.Error)
	if errEntry.Colour.IsSet() {
		cs.ErrorHeader = [2]color.Color{charmtone.Butter, lipgloss.Color(errEntry.Colour.String())}
	}

	return cs
}
