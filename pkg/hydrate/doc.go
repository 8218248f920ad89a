/*
Package hydrate turns an HTTP request into a rendered page.

A Pipeline run resolves the request path to a file with package pages. Files
with the template extension are hydrated: the GraphQL triple (query,
operation_name, variables) and props are extracted from the request, the
context is built from a GraphQL response or from props, and the file is
rendered as a Handlebars template against it. Every other file is passed
through untouched.

Each stage returns a new value (ResolvedFile, Params, Context, rendered bytes)
and nothing is shared between runs, so a Pipeline may serve any number of
requests concurrently.

Failures wrap one of pages.ErrNotFound, ErrInvalidRequest, ErrUpstream or
ErrRender; StatusCode and Outcome map them for the HTTP layer.
*/
package hydrate
