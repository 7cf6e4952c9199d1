package message

import (
	"regexp"
	"strings"
	"sync"

	"github.com/beevik/etree"
)

var (
	tagCache sync.Map // tag name -> *tagPattern

	voiceLengthRegexp = regexp.MustCompile(`voicelength="(\d+)"`)
	playLengthRegexp  = regexp.MustCompile(`playlength="(\d+)"`)
	fileExtRegexp     = regexp.MustCompile(`fileext="([^"]+)"`)
	bracketRegexp     = regexp.MustCompile(`\[([^\]]+)\]`)
)

type tagPattern struct {
	cdata *regexp.Regexp
	plain *regexp.Regexp
}

func patternFor(tag string) *tagPattern {
	if p, ok := tagCache.Load(tag); ok {
		return p.(*tagPattern)
	}
	q := regexp.QuoteMeta(tag)
	p := &tagPattern{
		cdata: regexp.MustCompile(`(?is)<` + q + `(?:\s[^>]*)?><!\[CDATA\[(.*?)\]\]></` + q + `>`),
		plain: regexp.MustCompile(`(?is)<` + q + `(?:\s[^>]*)?>(.*?)</` + q + `>`),
	}
	actual, _ := tagCache.LoadOrStore(tag, p)
	return actual.(*tagPattern)
}

// ExtractTag returns the trimmed text of the first <tag> element in s,
// preferring a CDATA body. Matching is case-insensitive and tolerant of
// attributes. An empty body counts as absent.
func ExtractTag(s, tag string) (string, bool) {
	p := patternFor(tag)
	for _, re := range []*regexp.Regexp{p.cdata, p.plain} {
		if m := re.FindStringSubmatch(s); m != nil && m[1] != "" {
			v := strings.TrimSpace(m[1])
			return v, v != ""
		}
	}
	return "", false
}

// isFileAppMsg reports whether a type-49 payload describes a file transfer.
func isFileAppMsg(payload string) bool {
	if strings.Contains(payload, `type="6"`) || strings.Contains(payload, "appmsg_file_type") {
		return true
	}
	return appMsgType(payload) == "6"
}

// appMsgType parses the payload as XML and returns the text of appmsg/type.
// Payloads that are not well-formed XML yield "".
func appMsgType(payload string) string {
	start := strings.Index(payload, "<")
	if start < 0 {
		return ""
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(payload[start:]); err != nil {
		return ""
	}
	el := doc.FindElement("//appmsg/type")
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func submatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
