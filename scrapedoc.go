// Package scrapedoc extracts structured content (title, author, body, date)
// from listing and detail pages across multiple sites and normalizes the
// extracted HTML into Markdown.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, htmltomarkdown/, rod/).
package scrapedoc
