// Package storage writes crawl output to disk.
//
// A Manager owns one directory. Images are stored as img<id><ext> and the
// collection as a single JSON document keyed by year. All writes go through
// a temporary file that is renamed into place.
package storage
