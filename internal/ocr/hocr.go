package ocr

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParseHOCR extracts ocrx_word tokens from an hOCR document. Words without a
// bbox property are skipped.
func ParseHOCR(r io.Reader) ([]Token, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse hocr: %w", err)
	}

	var tokens []Token
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
			box, conf, ok := parseTitle(attr(n, "title"))
			if ok {
				tokens = append(tokens, Token{
					Text:       strings.TrimSpace(textContent(n)),
					Box:        box,
					Confidence: conf,
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tokens, nil
}

// parseTitle reads "bbox x1 y1 x2 y2; x_wconf 91" style hOCR properties.
func parseTitle(title string) (image.Rectangle, float64, bool) {
	var (
		box    image.Rectangle
		hasBox bool
		conf   = -1.0
	)
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(prop)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "bbox":
			if len(fields) != 5 {
				continue
			}
			var coords [4]int
			valid := true
			for i := range coords {
				v, err := strconv.Atoi(fields[i+1])
				if err != nil {
					valid = false
					break
				}
				coords[i] = v
			}
			if valid {
				box = image.Rect(coords[0], coords[1], coords[2], coords[3])
				hasBox = true
			}
		case "x_wconf":
			if len(fields) == 2 {
				if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
					conf = v
				}
			}
		}
	}
	return box, conf, hasBox
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return sb.String()
}
