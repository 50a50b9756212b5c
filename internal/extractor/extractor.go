// Package extractor pulls the intended source code out of a free-form
// model response that may contain one or more fenced markdown code blocks.
package extractor

import (
	"strings"
)

// Extract walks response line by line, tracking fenced-block state, and
// returns the code the model most likely intended to produce.
//
// Blocks are collected into two ordered buckets: those tagged with the
// target language (by its canonical name or conventional short tag) and
// those with no language tag at all. A closing fence or end of input
// (an unclosed trailing block is treated as closed) commits the current
// block. If any target-tagged block was found, they are concatenated with
// a blank-line separator; otherwise, if any untagged block was found, those
// are used instead; otherwise the response is returned verbatim. Blocks
// tagged with any other language are ignored.
func Extract(response string, targetLang, targetShortTag string) string {
	var tagged []string
	var untagged []string

	lines := strings.Split(response, "\n")

	inBlock := false
	var currentTag string
	var current strings.Builder

	commit := func() {
		text := strings.TrimSuffix(current.String(), "\n")
		switch {
		case currentTag == targetLang || (targetShortTag != "" && currentTag == targetShortTag):
			tagged = append(tagged, text)
		case currentTag == "":
			untagged = append(untagged, text)
		}
		current.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if strings.HasPrefix(trimmed, "```") {
				inBlock = true
				currentTag = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
				continue
			}
			continue
		}

		// inBlock: any line starting with a fence marker closes the block,
		// regardless of what follows it on that line.
		if strings.HasPrefix(trimmed, "```") {
			inBlock = false
			commit()
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
	}

	if inBlock {
		// Unclosed trailing block: still captured.
		commit()
	}

	if len(tagged) > 0 {
		return strings.Join(tagged, "\n\n")
	}
	if len(untagged) > 0 {
		return strings.Join(untagged, "\n\n")
	}
	return response
}
