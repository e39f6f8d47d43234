// Package filter decides which files a scan should hash.
//
// A filter is a JavaScript boolean expression evaluated by the otto
// interpreter. The following variables are bound for every candidate file:
//
//	path  full path
//	name  base name
//	ext   extension including the dot, lower-cased (".jpg")
//	dir   parent directory
//	size  size in bytes
//
// Examples:
//
//	size > 1024 && ext != ".tmp"
//	/\.(jpe?g|png)$/i.test(name)
//
// An empty expression matches every file.
package filter
