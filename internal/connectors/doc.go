// Package connectors provides implementations of the driven ports that
// reach external sources. The site connector fetches rendered pages
// from the site origin over HTTP.
package connectors
