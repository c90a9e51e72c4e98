package openai

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// streamSSE reads a text/event-stream body and invokes onEvent once per
// complete event. Data lines belonging to one event are joined with newlines.
func streamSSE(r io.Reader, onEvent func(event string, data string) error) error {
	br := bufio.NewReader(r)
	var (
		eventName string
		dataLines []string
	)

	flush := func() error {
		if len(dataLines) == 0 {
			eventName = ""
			return nil
		}
		data := strings.Join(dataLines, "\n")
		dataLines = nil
		ev := eventName
		eventName = ""

		if onEvent == nil {
			return nil
		}
		return onEvent(ev, data)
	}

	handleLine := func(line string) error {
		// Blank line ends the event.
		if line == "" {
			return flush()
		}

		// Comment.
		if strings.HasPrefix(line, ":") {
			return nil
		}

		if strings.HasPrefix(line, "event:") {
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			return nil
		}
		if strings.HasPrefix(line, "data:") {
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
		return nil
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// the stream may end without a trailing blank line
				if line != "" {
					if hErr := handleLine(strings.TrimRight(line, "\r\n")); hErr != nil {
						return hErr
					}
				}
				return flush()
			}
			return err
		}
		if hErr := handleLine(strings.TrimRight(line, "\r\n")); hErr != nil {
			return hErr
		}
	}
}
