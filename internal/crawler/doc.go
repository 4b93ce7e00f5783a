// Package crawler fetches company website pages and pulls out the parts
// that name people.
//
// A Spider walks the site breadth-first from the home page. It stays on the
// start host, treating "www." and the bare domain as one host, and stops
// when the page budget is spent. Ignore and follow globs narrow the crawl
// ("/team/*", "*.pdf").
//
// HTML pages go through a Parser. goquery supplies the title, same-host
// links, image URLs and team cards. go-readability supplies the main text
// and the article byline. Pages without a readable article fall back to the
// whole body text.
//
// An ImageScanner reads the Artist and XPAuthor EXIF tags of JPEG and TIFF
// images on the same host, and of inline data URLs.
//
// # Usage
//
//	spider := crawler.NewSpider(client.HTTPClient(), crawler.WithMaxPages(5))
//	pages, err := spider.Crawl(ctx, "https://acme.example")
package crawler
