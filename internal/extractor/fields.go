package extractor

import (
	"html"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"listing-reel-backend/internal/models"
)

const (
	FallbackDescription = "Beautiful property with modern amenities and great location."
	FallbackPrice       = "Price upon request"
	FallbackAddress     = "Beautiful Location"
	FallbackTitle       = "Real Estate Property"
	PlaceholderImage    = "https://images.unsplash.com/photo-1560518883-ce09059eeffa?w=800&h=600&fit=crop"

	MaxImages = 10
	// Dollar amounts at or below this are fees, deposits and the like.
	MinListingPrice = 50000
)

var (
	titleTagRe = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title>`)
	h1TagRe    = regexp.MustCompile(`(?is)<h1\b[^>]*>(.*?)</h1>`)
	metaTagRe  = regexp.MustCompile(`(?is)<meta\b[^>]*>`)
	imgTagRe   = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	attrRe     = regexp.MustCompile(`(?s)([a-zA-Z_:][-a-zA-Z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+))`)
	innerTagRe = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe    = regexp.MustCompile(`\s+`)

	dollarRe = regexp.MustCompile(`\$\s?(\d[\d,]*)`)

	descriptionClassRe = classTextRe("description")
	addressClassRe     = classTextRe("address")
	priceClassRe       = regexp.MustCompile(`(?is)<[a-z][a-z0-9]*\b[^>]*\bclass\s*=\s*["'][^"']*price[^"']*["'][^>]*>\s*\$?\s*(\d[\d,]*)`)

	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

	sourceLabels = []struct{ token, label string }{
		{"zillow", "Property from Zillow"},
		{"realtor", "Property from Realtor.com"},
		{"redfin", "Property from Redfin"},
	}

	priceFormatter = message.NewPrinter(language.English)
)

// classTextRe matches the first text node inside any element whose class
// attribute contains word.
func classTextRe(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<[a-z][a-z0-9]*\b[^>]*\bclass\s*=\s*["'][^"']*` + word + `[^"']*["'][^>]*>\s*([^<]+)`)
}

// pattern is one heuristic: it reports a match or nothing.
type pattern func(page string) (string, bool)

func firstMatch(page string, patterns ...pattern) (string, bool) {
	for _, p := range patterns {
		if v, ok := p(page); ok {
			return v, true
		}
	}
	return "", false
}

// Parse runs every field extractor over page. The second result names the
// fields that fell back to defaults.
func Parse(page string, pageURL *url.URL) (models.ListingData, []string) {
	var fallbacks []string
	pick := func(field, value string, ok bool) string {
		if !ok {
			fallbacks = append(fallbacks, field)
		}
		return value
	}

	title, titleOK := extractTitle(page, pageURL)
	desc, descOK := extractDescription(page)
	images, imagesOK := extractImages(page, pageURL)
	price, priceOK := extractPrice(page)
	addr, addrOK := extractAddress(page)

	return models.ListingData{
		Title:       pick("title", title, titleOK),
		Description: pick("description", desc, descOK),
		Images:      images,
		Price:       pick("price", price, priceOK),
		Address:     pick("address", addr, addrOK),
	}, appendIf(fallbacks, !imagesOK, "images")
}

func appendIf(s []string, cond bool, v string) []string {
	if cond {
		return append(s, v)
	}
	return s
}

func ExtractTitle(page string, pageURL *url.URL) string {
	v, _ := extractTitle(page, pageURL)
	return v
}

func extractTitle(page string, pageURL *url.URL) (string, bool) {
	if v, ok := firstMatch(page,
		tagText(titleTagRe),
		metaContent("property", "og:title"),
		tagText(h1TagRe),
	); ok {
		return v, true
	}

	host := ""
	if pageURL != nil {
		host = strings.ToLower(pageURL.Hostname())
	}
	for _, s := range sourceLabels {
		if strings.Contains(host, s.token) {
			return s.label, false
		}
	}
	return FallbackTitle, false
}

func ExtractDescription(page string) string {
	v, _ := extractDescription(page)
	return v
}

func extractDescription(page string) (string, bool) {
	if v, ok := firstMatch(page,
		metaContent("name", "description"),
		metaContent("property", "og:description"),
		classText(descriptionClassRe),
	); ok {
		return v, true
	}
	return FallbackDescription, false
}

func ExtractAddress(page string) string {
	v, _ := extractAddress(page)
	return v
}

func extractAddress(page string) (string, bool) {
	if v, ok := firstMatch(page,
		classText(addressClassRe),
		metaContent("property", "og:street-address"),
	); ok {
		return v, true
	}
	return FallbackAddress, false
}

// ExtractImages returns at most MaxImages unique raster image URLs in
// first-seen order, <img> tags before og:image tags.
func ExtractImages(page string, pageURL *url.URL) []string {
	v, _ := extractImages(page, pageURL)
	return v
}

func extractImages(page string, pageURL *url.URL) ([]string, bool) {
	var candidates []string
	for _, tag := range imgTagRe.FindAllString(page, -1) {
		if src, ok := attributes(tag)["src"]; ok {
			candidates = append(candidates, src)
		}
	}
	for _, tag := range metaTagRe.FindAllString(page, -1) {
		attrs := attributes(tag)
		if strings.EqualFold(attrs["property"], "og:image") {
			candidates = append(candidates, attrs["content"])
		}
	}

	images := make([]string, 0, MaxImages)
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if len(images) == MaxImages {
			break
		}
		abs, ok := resolveImageURL(c, pageURL)
		if !ok {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		images = append(images, abs)
	}

	if len(images) == 0 {
		return []string{PlaceholderImage}, false
	}
	return images, true
}

func resolveImageURL(candidate string, pageURL *url.URL) (string, bool) {
	c := strings.TrimSpace(html.UnescapeString(candidate))
	if c == "" || strings.HasPrefix(strings.ToLower(c), "data:") || pageURL == nil {
		return "", false
	}

	origin := pageURL.Scheme + "://" + pageURL.Host
	lower := strings.ToLower(c)
	switch {
	case strings.HasPrefix(c, "//"):
		c = pageURL.Scheme + ":" + c
	case strings.HasPrefix(c, "/"):
		c = origin + c
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
	default:
		c = origin + "/" + c
	}

	u, err := url.Parse(c)
	if err != nil || u.Host == "" {
		return "", false
	}
	if !imageExtensions[strings.ToLower(path.Ext(u.Path))] {
		return "", false
	}
	return c, true
}

// ExtractPrice reports the largest dollar amount above MinListingPrice.
func ExtractPrice(page string) string {
	v, _ := extractPrice(page)
	return v
}

func extractPrice(page string) (string, bool) {
	var best int64
	consider := func(token string) {
		n, err := strconv.ParseInt(strings.ReplaceAll(token, ",", ""), 10, 64)
		if err != nil || n <= MinListingPrice {
			return
		}
		if n > best {
			best = n
		}
	}

	for _, m := range dollarRe.FindAllStringSubmatch(page, -1) {
		consider(m[1])
	}
	for _, m := range priceClassRe.FindAllStringSubmatch(page, -1) {
		consider(m[1])
	}

	if best == 0 {
		return FallbackPrice, false
	}
	return FormatPrice(best), true
}

// FormatPrice renders n as US dollars with thousands separators.
func FormatPrice(n int64) string {
	return priceFormatter.Sprintf("$%d", n)
}

func tagText(re *regexp.Regexp) pattern {
	return func(page string) (string, bool) {
		m := re.FindStringSubmatch(page)
		if m == nil {
			return "", false
		}
		return cleanText(innerTagRe.ReplaceAllString(m[1], " "))
	}
}

func classText(re *regexp.Regexp) pattern {
	return func(page string) (string, bool) {
		for _, m := range re.FindAllStringSubmatch(page, -1) {
			if v, ok := cleanText(m[1]); ok {
				return v, true
			}
		}
		return "", false
	}
}

// metaContent finds the content of the first <meta> whose key attribute
// equals value, regardless of attribute order or quoting.
func metaContent(key, value string) pattern {
	return func(page string) (string, bool) {
		for _, tag := range metaTagRe.FindAllString(page, -1) {
			attrs := attributes(tag)
			if !strings.EqualFold(attrs[key], value) {
				continue
			}
			if v, ok := cleanText(attrs["content"]); ok {
				return v, true
			}
		}
		return "", false
	}
}

func attributes(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
		name := strings.ToLower(m[1])
		if _, exists := attrs[name]; exists {
			continue
		}
		attrs[name] = m[2] + m[3] + m[4]
	}
	return attrs
}

func cleanText(s string) (string, bool) {
	v := strings.TrimSpace(spaceRe.ReplaceAllString(html.UnescapeString(s), " "))
	return v, v != ""
}
