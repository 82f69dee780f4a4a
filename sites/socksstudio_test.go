package sites

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(baseURL string) Options {
	return Options{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		PageDelay:      time.Millisecond,
		MaxPages:       10,
	}
}

func listingPage(links ...string) string {
	page := "<html><body>"
	for _, link := range links {
		page += fmt.Sprintf(`<article><h2><a href="%s">Post</a></h2></article>`, link)
	}
	return page + "</body></html>"
}

// TestSocksStudioListItems verifies pagination, dedup, and the stop
// condition on an empty page.
func TestSocksStudioListItems(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage("/post-a/", "/post-b/", "/post-a/"))
	})
	mux.HandleFunc("/page/2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage("/post-b/", "/post-c/"))
	})
	mux.HandleFunc("/page/3/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage())
	})

	site := NewSocksStudio(testOptions(srv.URL))
	urls, err := site.ListItems(0)

	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/post-a/",
		srv.URL + "/post-b/",
		srv.URL + "/post-c/",
	}, urls)
}

// TestSocksStudioListItems_Limit verifies that collection stops at the
// limit without walking further pages.
func TestSocksStudioListItems_Limit(t *testing.T) {
	var page2Fetched bool
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage("/post-a/", "/post-b/", "/post-c/"))
	})
	mux.HandleFunc("/page/2/", func(w http.ResponseWriter, r *http.Request) {
		page2Fetched = true
		fmt.Fprint(w, listingPage("/post-d/"))
	})

	site := NewSocksStudio(testOptions(srv.URL))
	urls, err := site.ListItems(2)

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.False(t, page2Fetched, "limit reached on page 1, page 2 must not be fetched")
}

// TestSocksStudioListItems_FetchErrorReturnsPartial verifies that a page
// fetch failure ends pagination with partial results rather than an error.
func TestSocksStudioListItems_FetchErrorReturnsPartial(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage("/post-a/"))
	})
	mux.HandleFunc("/page/2/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	site := NewSocksStudio(testOptions(srv.URL))
	urls, err := site.ListItems(0)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/post-a/"}, urls)
}

const socksArticleHTML = `<html><head>
<script type="application/ld+json">
{
	"headline": "Invisible Cities Drawn",
	"author": {"name": "Mariabruna"},
	"datePublished": "2016-09-12",
	"keywords": "drawing, architecture"
}
</script>
</head><body>
<h1>Invisible Cities Drawn</h1>
<div class="entry-content">
	<p>Body text of the article.</p>
	<img src="/wp-content/uploads/site-logo.png">
	<img src="/wp-content/uploads/plate-1.jpg" width="800" height="600">
	<img src="/wp-content/uploads/tiny.jpg" width="120" height="40">
	<figure>
		<img src="/wp-content/uploads/plate-2.jpg">
		<figcaption>Jane Doe, Untitled Study, 1987, oil on canvas</figcaption>
	</figure>
	<img src="/wp-content/uploads/plate-1.jpg">
</div>
</body></html>`

// TestSocksStudioExtract verifies metadata extraction, image filtering,
// caption overrides, and dedup on a representative article page.
func TestSocksStudioExtract(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, socksArticleHTML)
	})

	site := NewSocksStudio(testOptions(srv.URL))
	item, err := site.Extract(srv.URL + "/article/")

	require.NoError(t, err)
	assert.Equal(t, "Invisible Cities Drawn", item.Title)
	assert.Equal(t, "Mariabruna", item.Author)
	assert.Equal(t, "2016", item.Year)
	assert.Equal(t, "drawing, architecture", item.Keywords)
	assert.Equal(t, Unknown, item.Medium)
	assert.Contains(t, item.BodyText, "Body text of the article.")

	require.Len(t, item.Images, 2)

	// Uncaptioned image inherits item metadata wholesale.
	plain := item.Images[0]
	assert.Equal(t, srv.URL+"/wp-content/uploads/plate-1.jpg", plain.URL)
	assert.Equal(t, "Mariabruna", plain.Artist)
	assert.Equal(t, "Invisible Cities Drawn", plain.Title)
	assert.Equal(t, "2016", plain.Year)

	// Captioned figure carries its own metadata.
	captioned := item.Images[1]
	assert.Equal(t, srv.URL+"/wp-content/uploads/plate-2.jpg", captioned.URL)
	assert.Equal(t, "Jane Doe", captioned.Artist)
	assert.Equal(t, "Untitled Study", captioned.Title)
	assert.Equal(t, "1987", captioned.Year)
	assert.Equal(t, "oil on canvas", captioned.Medium)
}

// TestSocksStudioExtract_FallbackTitle verifies the heading fallback when
// no structured data resolves a title.
func TestSocksStudioExtract_FallbackTitle(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<h1>  Heading   Title  </h1>
			<a href="/author/someone/">Someone</a>
			<div class="entry-content"><img src="/uploads/a.jpg"></div>
		</body></html>`)
	})

	site := NewSocksStudio(testOptions(srv.URL))
	item, err := site.Extract(srv.URL + "/article/")

	require.NoError(t, err)
	assert.Equal(t, "Heading Title", item.Title)
	assert.Equal(t, "Someone", item.Author)
	assert.Equal(t, Unknown, item.Year)
}

// TestSocksStudioExtract_ZeroImages verifies that a page without qualifying
// images is a valid result, not an error.
func TestSocksStudioExtract_ZeroImages(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>No Pictures Here</h1><article><p>text only</p></article></body></html>`)
	})

	site := NewSocksStudio(testOptions(srv.URL))
	item, err := site.Extract(srv.URL + "/article/")

	require.NoError(t, err)
	assert.Empty(t, item.Images)
}

// TestSocksStudioExtract_NoData verifies the typed no-data result when the
// page cannot be fetched.
func TestSocksStudioExtract_NoData(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	site := NewSocksStudio(testOptions(srv.URL))
	item, err := site.Extract(srv.URL + "/article/")

	assert.Nil(t, item)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoData))
}

// TestSocksStudioExtract_ProbeRejectsSmallImages verifies the byte-size
// probe end to end, including fail-open on probe errors.
func TestSocksStudioExtract_ProbeRejectsSmallImages(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><article>
			<img src="/uploads/small.jpg">
			<img src="/uploads/large.jpg">
			<img src="/uploads/broken.jpg">
		</article></body></html>`)
	})
	mux.HandleFunc("/uploads/small.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1200")
	})
	mux.HandleFunc("/uploads/large.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "90000")
	})
	mux.HandleFunc("/uploads/broken.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	opts := testOptions(srv.URL)
	opts.Probe = true
	site := NewSocksStudio(opts)

	item, err := site.Extract(srv.URL + "/article/")

	require.NoError(t, err)
	urls := make([]string, 0, len(item.Images))
	for _, img := range item.Images {
		urls = append(urls, img.URL)
	}
	assert.Equal(t, []string{
		srv.URL + "/uploads/large.jpg",
		srv.URL + "/uploads/broken.jpg",
	}, urls, "below-threshold rejected, probe failure accepted")
}
