package llm

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"clinweaver/internal/types"
)

var (
	anyFenceRe   = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*[ \t]*\n?(.*?)```")
	taggedFence  = map[types.Language]*regexp.Regexp{}
	taggedFenceM sync.Mutex
)

func fenceFor(lang types.Language) *regexp.Regexp {
	taggedFenceM.Lock()
	defer taggedFenceM.Unlock()
	re, ok := taggedFence[lang]
	if !ok {
		// The tag must end at the newline, or "r" would match a "ruby" fence.
		re = regexp.MustCompile(fmt.Sprintf("(?si)```%s[ \t]*\n(.*?)```", regexp.QuoteMeta(string(lang))))
		taggedFence[lang] = re
	}
	return re
}

// ExtractCode isolates code from a backend response. It takes the first
// fenced block tagged with the requested language, falling back to the first
// fenced block of any kind, and finally to the whole trimmed response. A
// response without fence markers is therefore never an error.
func ExtractCode(response string, lang types.Language) string {
	if m := fenceFor(lang).FindStringSubmatch(response); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := anyFenceRe.FindStringSubmatch(response); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}
