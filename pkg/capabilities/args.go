package capabilities

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var errNoCompleter = errors.New("capabilities: completer is required")

type topicArgs struct {
	Topic string `mapstructure:"topic"`
}

type urlArgs struct {
	URL string `mapstructure:"url"`
}

type promptArgs struct {
	Prompt string `mapstructure:"prompt"`
}

type factArgs struct {
	Content    string `mapstructure:"content"`
	URL        string `mapstructure:"url"`
	Evaluation string `mapstructure:"evaluation"`
}

type reportArgs struct {
	CheckedSources string `mapstructure:"checked_sources"`
}

// decode maps the model's arguments onto a typed struct. Unknown keys are
// ignored; values are trimmed.
func decode(args map[string]string, out any) error {
	trimmed := make(map[string]string, len(args))
	for k, v := range args {
		trimmed[k] = strings.TrimSpace(v)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(trimmed); err != nil {
		return fmt.Errorf("argomenti non validi: %w", err)
	}
	return nil
}
