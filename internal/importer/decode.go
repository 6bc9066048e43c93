package importer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported in Result.
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF16   = "utf-16"
	EncodingLatin1  = "iso-8859-1"
	bomUTF8         = "\xef\xbb\xbf"
	sampleLines     = 10
	delimiterQuotes = '"'
)

// delimiters are tried in this order; earlier wins ties.
var delimiters = []rune{',', ';', '\t', '|'}

// decodeText converts raw bytes to UTF-8 text using the fallback chain
// UTF-8 (BOM stripped) -> UTF-16 (BOM required) -> Latin-1.
func decodeText(data []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xfe}), bytes.HasPrefix(data, []byte{0xfe, 0xff}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return "", "", &FileError{Kind: KindEncoding, Detail: fmt.Sprintf("decoding UTF-16: %v", err),
				Suggestion: "re-export the file as UTF-8"}
		}
		return strings.TrimPrefix(string(out), bomUTF8), EncodingUTF16, nil
	case utf8.Valid(data):
		return strings.TrimPrefix(string(data), bomUTF8), EncodingUTF8, nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", &FileError{Kind: KindEncoding, Detail: fmt.Sprintf("decoding Latin-1: %v", err),
			Suggestion: "re-export the file as UTF-8"}
	}
	return string(out), EncodingLatin1, nil
}

// detectDelimiter samples the first non-empty lines and picks the candidate
// whose count outside quotes is positive and identical on the most lines.
func detectDelimiter(text string) (rune, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == sampleLines {
			break
		}
	}
	if len(lines) == 0 {
		return 0, &FileError{Kind: KindEmpty, Detail: "file has no content",
			Suggestion: "upload a CSV export with a header row and at least one transaction"}
	}

	best := rune(0)
	bestAgree, bestCount := 0, 0
	for _, d := range delimiters {
		headerCount := countOutsideQuotes(lines[0], d)
		if headerCount == 0 {
			continue
		}
		agree := 0
		for _, line := range lines {
			if countOutsideQuotes(line, d) == headerCount {
				agree++
			}
		}
		if agree > bestAgree || (agree == bestAgree && headerCount > bestCount) {
			best, bestAgree, bestCount = d, agree, headerCount
		}
	}
	if best == 0 {
		return 0, &FileError{Kind: KindDelimiter, Detail: "could not detect a field delimiter in the header",
			Suggestion: "use comma, semicolon, tab or pipe separated columns"}
	}
	return best, nil
}

func countOutsideQuotes(line string, d rune) int {
	n := 0
	inQuotes := false
	for _, r := range line {
		switch {
		case r == delimiterQuotes:
			inQuotes = !inQuotes
		case r == d && !inQuotes:
			n++
		}
	}
	return n
}
