package canonical

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const maxHomepageBytes = 2 << 20

// SiteMeta 首页元数据，抓取失败时各字段为空
type SiteMeta struct {
	Title       string
	Description string
	SiteName    string
	H1          string
}

func (m SiteMeta) empty() bool {
	return m.Title == "" && m.Description == "" && m.SiteName == "" && m.H1 == ""
}

// fetchSiteMeta 抓取首页并提取 title / meta description / og:site_name / 第一个 h1。
// 任何错误都吞掉并返回空值
func (r *Resolver) fetchSiteMeta(ctx context.Context, domain string) SiteMeta {
	pageURL := r.homepageURL(domain)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return SiteMeta{}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; briefing-radar/1.0)")
	req.Header.Set("Accept", "text/html")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log().Debugf("首页抓取失败 [%s]: %v", domain, err)
		return SiteMeta{}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		r.log().Debugf("首页抓取失败 [%s]: status %d", domain, resp.StatusCode)
		return SiteMeta{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHomepageBytes))
	if err != nil {
		return SiteMeta{}
	}
	return parseSiteMeta(body, pageURL)
}

func parseSiteMeta(body []byte, pageURL string) SiteMeta {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return SiteMeta{}
	}
	meta := SiteMeta{
		Title:    clean(doc.Find("title").First().Text()),
		SiteName: clean(attr(doc, `meta[property="og:site_name"]`)),
		H1:       clean(doc.Find("h1").First().Text()),
	}
	meta.Description = clean(attr(doc, `meta[name="description"]`))
	if meta.Description == "" {
		meta.Description = clean(attr(doc, `meta[property="og:description"]`))
	}

	// 缺失描述或站点名时用正文抽取补全
	if meta.Description == "" || meta.SiteName == "" {
		u, _ := url.Parse(pageURL)
		if article, err := readability.FromReader(bytes.NewReader(body), u); err == nil {
			if meta.Description == "" {
				meta.Description = clean(article.Excerpt)
			}
			if meta.SiteName == "" {
				meta.SiteName = clean(article.SiteName)
			}
		}
	}
	return meta
}

func attr(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return v
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 300 {
		s = string(r[:300])
	}
	return s
}

func defaultHomepageURL(domain string) string {
	return fmt.Sprintf("https://%s", domain)
}

var defaultHTTPClient = &http.Client{Timeout: 10 * time.Second}
