// Package source scrapes the gazette listing page for PDF links and
// downloads individual PDFs.
package source
