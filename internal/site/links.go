package site

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// BrokenLink is an internal link whose target was not written.
type BrokenLink struct {
	Page string
	Href string
}

// BrokenLinksError is returned by a build with link checking enabled.
type BrokenLinksError struct {
	Links []BrokenLink
}

func (e *BrokenLinksError) Error() string {
	first := e.Links[0]
	return fmt.Sprintf("%d broken links (first: %s in %s)", len(e.Links), first.Href, first.Page)
}

// CheckLinks parses every HTML file under root and reports internal href and
// src targets that do not resolve to a file. External URLs are ignored.
func CheckLinks(root, basePath string) ([]BrokenLink, error) {
	base := strings.TrimRight(basePath, "/")
	var broken []BrokenLink

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".html" {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		links, err := pageLinks(p)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", rel, err)
		}
		for _, href := range links {
			target, internal := resolveLink(href, base)
			if !internal {
				continue
			}
			if !exists(filepath.Join(root, filepath.FromSlash(target))) {
				broken = append(broken, BrokenLink{Page: filepath.ToSlash(rel), Href: href})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Page != broken[j].Page {
			return broken[i].Page < broken[j].Page
		}
		return broken[i].Href < broken[j].Href
	})
	return broken, nil
}

func pageLinks(file string) ([]string, error) {
	f, err := os.Open(file) //nolint:gosec // G304: file is under the build output
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "href" || attr.Key == "src" {
					links = append(links, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// resolveLink maps an absolute site link to a path relative to the output root.
func resolveLink(href, base string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "" || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "", false
	}

	p := u.Path
	if base != "" {
		if p != base && !strings.HasPrefix(p, base+"/") {
			return "", false
		}
		p = strings.TrimPrefix(p, base)
	}
	if p == "" || strings.HasSuffix(p, "/") {
		p += IndexFile
	}
	return path.Clean(strings.TrimPrefix(p, "/")), true
}

func exists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
