/*
Package pages maps request paths onto files under a source directory.

A request path either names a regular file, which is served as-is, or a route.
Routes are served by the nearest index.html: the one in the directory the path
names, or failing that the one in the closest ancestor directory, all the way
up to the source root. This lets a single page at src/about/index.html answer
/about, /about/team and /about/team/alice alike.

The package also carries the small extension to content-type table used for
files that are passed through without rendering.
*/
package pages
