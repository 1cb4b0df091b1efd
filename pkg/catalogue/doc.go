// Package catalogue knows the layout of the online catalogue raisonné.
//
// Client fetches pages and images over HTTP and reports non-200 answers as
// typed fetch errors rather than as bodies. ExtractPage turns the artwork
// tables of one page into records grouped by year, and NextPage finds the
// page that follows the current one in the site's navigation tree.
//
// Both ExtractPage and NextPage work on the same parsed document, so each
// page is downloaded exactly once.
package catalogue
