// Package main provides the entry point for the staffscan CLI.
//
// staffscan builds employee directories for a company from LinkedIn X-ray
// search exports and the company website, then writes Excel, Markdown and
// JSON reports.
//
// Usage:
//
//	staffscan run "Acme Lettings" --location Leeds --website acme.example
//	staffscan queries "Acme Lettings" --location Leeds
//
// See --help for all available options.
package main

func main() {
	Execute()
}
